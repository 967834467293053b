package blogservice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-app/inkwell/internal/common"
)

// NewBlogService loads the mirrored blog collection and returns the store.
func NewBlogService(ctx context.Context, kv common.KVStore) (*BlogService, error) {
	m, err := newBlogModel(ctx, kv)
	if err != nil {
		return nil, err
	}

	return &BlogService{m: m}, nil
}

// CreateBlog creates a new blog post with a fresh id, a unique slug derived
// from the title, zero views and both timestamps set to now.
func (s *BlogService) CreateBlog(ctx context.Context, req *CreateBlogRequest) (*Blog, error) {
	if req.Status == "" {
		req.Status = StatusDraft
	}
	if req.Category == "" {
		req.Category = DefaultCategory
	}

	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateUserID(v, req.UserID)
	validateStatus(v, req.Status)
	if req.Status == StatusScheduled {
		validateScheduledAt(v, req.ScheduledAt)
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	now := time.Now()
	blog := Blog{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Title:       req.Title,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		CoverImage:  req.CoverImage,
		Category:    req.Category,
		Tags:        req.Tags,
		Status:      req.Status,
		Views:       0,
		Slug:        s.m.uniqueSlug(req.Title, ""),
		CreatedAt:   now,
		UpdatedAt:   now,
		ScheduledAt: req.ScheduledAt,
	}

	if err := s.m.insert(ctx, blog); err != nil {
		return nil, err
	}

	return &blog, nil
}

// GetBlogByID returns a blog post by its id.
func (s *BlogService) GetBlogByID(id string) (*Blog, error) {
	return s.m.getByID(id)
}

// GetBlogBySlug returns a blog post by its URL slug.
func (s *BlogService) GetBlogBySlug(slug string) (*Blog, error) {
	return s.m.getBySlug(slug)
}

// GetUserBlogs returns all posts owned by the user, in insertion order.
func (s *BlogService) GetUserBlogs(userID string) []Blog {
	return s.m.getByUserID(userID)
}

// GetPublishedBlogs returns all published posts across all users, in
// insertion order. Ranking is a presentation concern, not the store's.
func (s *BlogService) GetPublishedBlogs() []Blog {
	return s.m.getPublished()
}

// UpdateBlog merges the patch into the matching record and refreshes
// UpdatedAt. A title change recomputes a unique slug; a status change goes
// through the transition table. Unknown ids are a silent no-op.
func (s *BlogService) UpdateBlog(ctx context.Context, id string, patch *UpdateBlogPatch) error {
	v := common.NewValidator()
	if patch.Title != nil {
		validateTitle(v, *patch.Title)
	}
	if patch.Content != nil {
		validateContent(v, *patch.Content)
	}
	if patch.Status != nil {
		validateStatus(v, *patch.Status)
	}
	if !v.Valid() {
		return v.ValidationError()
	}

	// Computed outside apply: uniqueSlug takes the model's read lock.
	var newSlug string
	if patch.Title != nil {
		newSlug = s.m.uniqueSlug(*patch.Title, id)
	}

	return s.m.apply(ctx, id, func(b *Blog) error {
		if patch.Status != nil {
			if !canTransition(b.Status, *patch.Status) {
				return ErrInvalidTransition
			}
			if *patch.Status == StatusScheduled && patch.ScheduledAt == nil && b.ScheduledAt == nil {
				return ErrScheduleRequired
			}
			b.Status = *patch.Status
		}
		if patch.Title != nil {
			b.Title = *patch.Title
			b.Slug = newSlug
		}
		if patch.Excerpt != nil {
			b.Excerpt = *patch.Excerpt
		}
		if patch.Content != nil {
			b.Content = *patch.Content
		}
		if patch.CoverImage != nil {
			b.CoverImage = *patch.CoverImage
		}
		if patch.Category != nil {
			b.Category = *patch.Category
		}
		if patch.Tags != nil {
			b.Tags = append([]string(nil), (*patch.Tags)...)
		}
		if patch.ScheduledAt != nil {
			at := *patch.ScheduledAt
			b.ScheduledAt = &at
		}

		b.touch()
		return nil
	})
}

// DeleteBlog removes the matching record. Idempotent if absent.
func (s *BlogService) DeleteBlog(ctx context.Context, id string) error {
	return s.m.delete(ctx, id)
}

// PublishBlog sets the post's status to published via the transition table.
func (s *BlogService) PublishBlog(ctx context.Context, id string) error {
	status := StatusPublished
	return s.UpdateBlog(ctx, id, &UpdateBlogPatch{Status: &status})
}

// UnpublishBlog sets the post's status back to draft.
func (s *BlogService) UnpublishBlog(ctx context.Context, id string) error {
	status := StatusDraft
	return s.UpdateBlog(ctx, id, &UpdateBlogPatch{Status: &status})
}

// IncrementViews adds exactly one view to the matching record. View counts
// are not content edits, so UpdatedAt is left alone. Unknown ids are a
// silent no-op.
func (s *BlogService) IncrementViews(ctx context.Context, id string) error {
	return s.m.apply(ctx, id, func(b *Blog) error {
		b.Views++
		return nil
	})
}

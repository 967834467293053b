package blogservice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/inkwell-app/inkwell/internal/common"
)

func setupTestService(t *testing.T) (*BlogService, common.KVStore) {
	t.Helper()

	kv := common.NewMemoryStore()

	s, err := NewBlogService(context.Background(), kv)
	assert.NoError(t, err)

	return s, kv
}

func testRequest() *CreateBlogRequest {
	return &CreateBlogRequest{
		UserID:  "u1",
		Title:   "My First Post",
		Excerpt: "An introduction.",
		Content: "# Hello\n\nSome content.",
		Tags:    []string{"go", "blogging"},
	}
}

func TestCreateBlog(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		s, _ := setupTestService(t)

		blog, err := s.CreateBlog(ctx, testRequest())
		assert.NoError(t, err)
		assert.NotEmpty(t, blog.ID)
		assert.Equal(t, StatusDraft, blog.Status)
		assert.Equal(t, DefaultCategory, blog.Category)
		assert.Equal(t, 0, blog.Views)
		assert.Equal(t, "my-first-post", blog.Slug)
		assert.Equal(t, blog.CreatedAt, blog.UpdatedAt)

		got, err := s.GetBlogByID(blog.ID)
		assert.NoError(t, err)
		assert.Equal(t, 0, got.Views)
		assert.Equal(t, StatusDraft, got.Status)
	})

	t.Run("requested status is kept", func(t *testing.T) {
		s, _ := setupTestService(t)

		req := testRequest()
		req.Status = StatusPublished

		blog, err := s.CreateBlog(ctx, req)
		assert.NoError(t, err)

		got, err := s.GetBlogByID(blog.ID)
		assert.NoError(t, err)
		assert.Equal(t, StatusPublished, got.Status)
	})

	t.Run("slug from punctuated title", func(t *testing.T) {
		s, _ := setupTestService(t)

		req := testRequest()
		req.Title = "Hello, World!"

		blog, err := s.CreateBlog(ctx, req)
		assert.NoError(t, err)
		assert.Equal(t, "hello-world", blog.Slug)
	})

	t.Run("slug collisions are suffixed", func(t *testing.T) {
		s, _ := setupTestService(t)

		first, err := s.CreateBlog(ctx, testRequest())
		assert.NoError(t, err)
		assert.Equal(t, "my-first-post", first.Slug)

		second, err := s.CreateBlog(ctx, testRequest())
		assert.NoError(t, err)
		assert.Equal(t, "my-first-post-2", second.Slug)

		third, err := s.CreateBlog(ctx, testRequest())
		assert.NoError(t, err)
		assert.Equal(t, "my-first-post-3", third.Slug)
	})

	t.Run("scheduled requires a publish time", func(t *testing.T) {
		s, _ := setupTestService(t)

		req := testRequest()
		req.Status = StatusScheduled

		_, err := s.CreateBlog(ctx, req)
		var validationErr common.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Errors, "scheduled_at")

		at := time.Now().Add(24 * time.Hour)
		req.ScheduledAt = &at

		blog, err := s.CreateBlog(ctx, req)
		assert.NoError(t, err)
		assert.Equal(t, StatusScheduled, blog.Status)
	})

	t.Run("invalid inputs", func(t *testing.T) {
		s, _ := setupTestService(t)

		_, err := s.CreateBlog(ctx, &CreateBlogRequest{})
		var validationErr common.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Errors, "title")
		assert.Contains(t, validationErr.Errors, "content")
		assert.Contains(t, validationErr.Errors, "user_id")
		assert.Equal(t, 0, s.m.count())
	})

	t.Run("collection survives restart", func(t *testing.T) {
		s, kv := setupTestService(t)

		blog, err := s.CreateBlog(ctx, testRequest())
		assert.NoError(t, err)

		reloaded, err := NewBlogService(ctx, kv)
		assert.NoError(t, err)

		got, err := reloaded.GetBlogByID(blog.ID)
		assert.NoError(t, err)
		assert.Equal(t, blog.Title, got.Title)
		assert.Equal(t, blog.Slug, got.Slug)
	})
}

func TestGetBlogBySlug(t *testing.T) {
	ctx := context.Background()
	s, _ := setupTestService(t)

	blog, err := s.CreateBlog(ctx, testRequest())
	assert.NoError(t, err)

	got, err := s.GetBlogBySlug("my-first-post")
	assert.NoError(t, err)
	assert.Equal(t, blog.ID, got.ID)

	_, err = s.GetBlogBySlug("no-such-slug")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestGetUserBlogs(t *testing.T) {
	ctx := context.Background()
	s, _ := setupTestService(t)

	titles := []struct {
		userID string
		title  string
	}{
		{"u1", "First by u1"},
		{"u2", "First by u2"},
		{"u1", "Second by u1"},
		{"u1", "Third by u1"},
	}

	for _, entry := range titles {
		req := testRequest()
		req.UserID = entry.userID
		req.Title = entry.title
		_, err := s.CreateBlog(ctx, req)
		assert.NoError(t, err)
	}

	blogs := s.GetUserBlogs("u1")
	assert.Len(t, blogs, 3)
	assert.Equal(t, "First by u1", blogs[0].Title)
	assert.Equal(t, "Second by u1", blogs[1].Title)
	assert.Equal(t, "Third by u1", blogs[2].Title)

	assert.Empty(t, s.GetUserBlogs("u3"))
}

func TestUpdateBlog(t *testing.T) {
	ctx := context.Background()

	t.Run("title change recomputes slug", func(t *testing.T) {
		s, _ := setupTestService(t)

		blog, err := s.CreateBlog(ctx, testRequest())
		assert.NoError(t, err)

		err = s.UpdateBlog(ctx, blog.ID, &UpdateBlogPatch{Title: strptr("New Title")})
		assert.NoError(t, err)

		got, err := s.GetBlogByID(blog.ID)
		assert.NoError(t, err)
		assert.Equal(t, "New Title", got.Title)
		assert.Equal(t, "new-title", got.Slug)
		assert.False(t, got.UpdatedAt.Before(blog.UpdatedAt))
	})

	t.Run("non-title change keeps slug", func(t *testing.T) {
		s, _ := setupTestService(t)

		blog, err := s.CreateBlog(ctx, testRequest())
		assert.NoError(t, err)

		err = s.UpdateBlog(ctx, blog.ID, &UpdateBlogPatch{Excerpt: strptr("x")})
		assert.NoError(t, err)

		got, err := s.GetBlogByID(blog.ID)
		assert.NoError(t, err)
		assert.Equal(t, "x", got.Excerpt)
		assert.Equal(t, "my-first-post", got.Slug)
	})

	t.Run("retitling to itself keeps the base slug", func(t *testing.T) {
		s, _ := setupTestService(t)

		blog, err := s.CreateBlog(ctx, testRequest())
		assert.NoError(t, err)

		err = s.UpdateBlog(ctx, blog.ID, &UpdateBlogPatch{Title: strptr("My First Post")})
		assert.NoError(t, err)

		got, err := s.GetBlogByID(blog.ID)
		assert.NoError(t, err)
		assert.Equal(t, "my-first-post", got.Slug)
	})

	t.Run("unknown id is a silent no-op", func(t *testing.T) {
		s, _ := setupTestService(t)

		err := s.UpdateBlog(ctx, "no-such-id", &UpdateBlogPatch{Excerpt: strptr("x")})
		assert.NoError(t, err)
	})

	t.Run("tags are replaced wholesale", func(t *testing.T) {
		s, _ := setupTestService(t)

		blog, err := s.CreateBlog(ctx, testRequest())
		assert.NoError(t, err)

		newTags := []string{"rewritten"}
		err = s.UpdateBlog(ctx, blog.ID, &UpdateBlogPatch{Tags: &newTags})
		assert.NoError(t, err)

		got, err := s.GetBlogByID(blog.ID)
		assert.NoError(t, err)
		assert.Equal(t, []string{"rewritten"}, got.Tags)
	})
}

func TestDeleteBlog(t *testing.T) {
	ctx := context.Background()
	s, _ := setupTestService(t)

	blog, err := s.CreateBlog(ctx, testRequest())
	assert.NoError(t, err)

	err = s.DeleteBlog(ctx, blog.ID)
	assert.NoError(t, err)

	_, err = s.GetBlogByID(blog.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	// deleting again does not error
	err = s.DeleteBlog(ctx, blog.ID)
	assert.NoError(t, err)
}

func TestIncrementViews(t *testing.T) {
	ctx := context.Background()
	s, _ := setupTestService(t)

	blog, err := s.CreateBlog(ctx, testRequest())
	assert.NoError(t, err)

	const n = 5
	for i := 0; i < n; i++ {
		err := s.IncrementViews(ctx, blog.ID)
		assert.NoError(t, err)
	}

	got, err := s.GetBlogByID(blog.ID)
	assert.NoError(t, err)
	assert.Equal(t, n, got.Views)

	// view counts are not content edits
	assert.Equal(t, blog.Title, got.Title)
	assert.Equal(t, blog.Slug, got.Slug)
	assert.True(t, got.UpdatedAt.Equal(blog.UpdatedAt))

	// unknown id is a silent no-op
	err = s.IncrementViews(ctx, "no-such-id")
	assert.NoError(t, err)
}

func TestGetPublishedBlogs(t *testing.T) {
	ctx := context.Background()
	s, _ := setupTestService(t)

	draft, err := s.CreateBlog(ctx, testRequest())
	assert.NoError(t, err)

	reqA := testRequest()
	reqA.Title = "Published A"
	reqA.Status = StatusPublished
	a, err := s.CreateBlog(ctx, reqA)
	assert.NoError(t, err)

	reqB := testRequest()
	reqB.UserID = "u2"
	reqB.Title = "Published B"
	reqB.Status = StatusPublished
	b, err := s.CreateBlog(ctx, reqB)
	assert.NoError(t, err)

	published := s.GetPublishedBlogs()
	assert.Len(t, published, 2)
	assert.Equal(t, a.ID, published[0].ID)
	assert.Equal(t, b.ID, published[1].ID)

	for _, p := range published {
		assert.NotEqual(t, draft.ID, p.ID)
	}
}

func strptr(s string) *string {
	return &s
}

package blogservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/inkwell-app/inkwell/internal/common"
	"github.com/inkwell-app/inkwell/internal/slug"
)

var ErrRecordNotFound = errors.New("record not found")

// BlogModel holds the blog collection in memory and mirrors it to the
// key-value store under the "blogs" key on every mutation. The mirror is
// read back only by load at startup; insertion order is preserved.
type BlogModel struct {
	mu    sync.RWMutex
	kv    common.KVStore
	blogs []Blog
}

func newBlogModel(ctx context.Context, kv common.KVStore) (*BlogModel, error) {
	m := &BlogModel{kv: kv}
	if err := m.load(ctx); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *BlogModel) load(ctx context.Context) error {
	data, ok, err := m.kv.Get(ctx, common.KeyBlogs)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	return json.Unmarshal(data, &m.blogs)
}

// saveLocked writes the collection through to the mirror. Callers must hold mu.
func (m *BlogModel) saveLocked(ctx context.Context) error {
	data, err := json.Marshal(m.blogs)
	if err != nil {
		return err
	}

	return m.kv.Set(ctx, common.KeyBlogs, data)
}

func (m *BlogModel) insert(ctx context.Context, b Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blogs = append(m.blogs, b.clone())

	return m.saveLocked(ctx)
}

func (m *BlogModel) getByID(id string) (*Blog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, b := range m.blogs {
		if b.ID == id {
			blog := b.clone()
			return &blog, nil
		}
	}

	return nil, ErrRecordNotFound
}

func (m *BlogModel) getBySlug(s string) (*Blog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, b := range m.blogs {
		if b.Slug == s {
			blog := b.clone()
			return &blog, nil
		}
	}

	return nil, ErrRecordNotFound
}

func (m *BlogModel) getByUserID(userID string) []Blog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var blogs []Blog
	for _, b := range m.blogs {
		if b.UserID == userID {
			blogs = append(blogs, b.clone())
		}
	}

	return blogs
}

func (m *BlogModel) getPublished() []Blog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var blogs []Blog
	for _, b := range m.blogs {
		if b.Status == StatusPublished {
			blogs = append(blogs, b.clone())
		}
	}

	return blogs
}

// apply runs fn against the matching record and mirrors the collection.
// When fn returns an error the record is left untouched and nothing is
// mirrored. A missing id is a silent no-op, per the store contract.
func (m *BlogModel) apply(ctx context.Context, id string, fn func(*Blog) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.blogs {
		if m.blogs[i].ID == id {
			updated := m.blogs[i].clone()
			if err := fn(&updated); err != nil {
				return err
			}
			m.blogs[i] = updated
			return m.saveLocked(ctx)
		}
	}

	return nil
}

func (m *BlogModel) delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.blogs {
		if m.blogs[i].ID == id {
			m.blogs = append(m.blogs[:i], m.blogs[i+1:]...)
			return m.saveLocked(ctx)
		}
	}

	// absent id: idempotent no-op
	return nil
}

func (m *BlogModel) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.blogs)
}

// uniqueSlug derives a slug from title that no record other than excludeID
// carries, suffixing -2, -3, ... on collision.
func (m *BlogModel) uniqueSlug(title, excludeID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	base := slug.Generate(title)

	candidate := base
	for n := 2; m.slugTakenLocked(candidate, excludeID); n++ {
		candidate = fmt.Sprintf("%s-%d", base, n)
	}

	return candidate
}

func (m *BlogModel) slugTakenLocked(s, excludeID string) bool {
	for _, b := range m.blogs {
		if b.Slug == s && b.ID != excludeID {
			return true
		}
	}

	return false
}

// clone copies the record deeply enough that callers cannot mutate store
// state without going through an update operation.
func (b Blog) clone() Blog {
	c := b
	if b.Tags != nil {
		c.Tags = append([]string(nil), b.Tags...)
	}
	if b.ScheduledAt != nil {
		at := *b.ScheduledAt
		c.ScheduledAt = &at
	}
	return c
}

// touch refreshes the last-update timestamp. View increments do not touch.
func (b *Blog) touch() {
	b.UpdatedAt = time.Now()
}

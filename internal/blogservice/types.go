package blogservice

import (
	"time"
)

type BlogStatus string

const (
	StatusDraft     BlogStatus = "draft"
	StatusPublished BlogStatus = "published"
	StatusScheduled BlogStatus = "scheduled"
)

// DefaultCategory is applied when a post is created without one.
const DefaultCategory = "General"

type Blog struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	// Content is stored in Markdown format.
	Content     string     `json:"content"`
	CoverImage  string     `json:"cover_image,omitempty"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags,omitempty"`
	Status      BlogStatus `json:"status"`
	Views       int        `json:"views"`
	Slug        string     `json:"slug"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// BlogService owns the blog collection across all users. The collection
// lives in memory and is mirrored to the key-value store on every mutation.
type BlogService struct {
	m *BlogModel
}

type CreateBlogRequest struct {
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	CoverImage  string     `json:"cover_image"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	Status      BlogStatus `json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// UpdateBlogPatch carries the fields an edit may change. Nil fields are left
// untouched. A title change recomputes the slug; a status change goes
// through the transition table.
type UpdateBlogPatch struct {
	Title       *string     `json:"title"`
	Excerpt     *string     `json:"excerpt"`
	Content     *string     `json:"content"`
	CoverImage  *string     `json:"cover_image"`
	Category    *string     `json:"category"`
	Tags        *[]string   `json:"tags"`
	Status      *BlogStatus `json:"status"`
	ScheduledAt *time.Time  `json:"scheduled_at"`
}

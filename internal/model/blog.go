package model

import "time"

// Blog is an editorial post written by an administrator. Unpublished
// posts are only visible through the admin endpoints.
type Blog struct {
	ID          uint64    `json:"id"`
	AuthorID    uint64    `json:"author_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CoverImage  *string   `json:"cover_image"` // nullable URL
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

package model

import "time"

// Comment is a user review of a movie with an optional star rating.
// A rating of zero means "no rating given" and is excluded from the
// movie's aggregate rating.
type Comment struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	MovieID   uint64    `json:"movie_id"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"` // 0 - 5, 0 = unrated
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentDetail joins a comment with the author's display name for
// public listings.
type CommentDetail struct {
	Comment
	AuthorName string `json:"author_name"`
}

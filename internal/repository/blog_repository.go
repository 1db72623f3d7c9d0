package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/movietix/booking-api/internal/model"
)

// ErrBlogNotFound indicates that a blog post was not located in the DB.
var ErrBlogNotFound = errors.New("blog post not found")

// BlogRepo manages persistence for editorial blog posts.
type BlogRepo struct {
	db *sql.DB
}

// NewBlogRepo constructs a BlogRepo given a DB handle.
func NewBlogRepo(db *sql.DB) *BlogRepo {
	return &BlogRepo{db: db}
}

const blogColumns = `id, author_id, title, content, cover_image, is_published, created_at, updated_at`

// Create inserts a new post and fills in its generated fields.
func (r *BlogRepo) Create(ctx context.Context, b *model.Blog) error {
	const q = `INSERT INTO blogs (author_id, title, content, cover_image, is_published) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, b.AuthorID, b.Title, b.Content, b.CoverImage, b.IsPublished)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*b = *got
	return nil
}

// GetByID returns one post, published or not.
func (r *BlogRepo) GetByID(ctx context.Context, id uint64) (*model.Blog, error) {
	const q = `SELECT ` + blogColumns + ` FROM blogs WHERE id = ?`
	var b model.Blog
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.AuthorID, &b.Title, &b.Content, &b.CoverImage, &b.IsPublished, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBlogNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns posts newest first.  publishedOnly hides drafts, which
// is what the public listing uses.
func (r *BlogRepo) List(ctx context.Context, publishedOnly bool) ([]*model.Blog, error) {
	q := `SELECT ` + blogColumns + ` FROM blogs`
	if publishedOnly {
		q += " WHERE is_published = TRUE"
	}
	q += " ORDER BY created_at DESC, id DESC"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.Blog, 0)
	for rows.Next() {
		var b model.Blog
		if err := rows.Scan(&b.ID, &b.AuthorID, &b.Title, &b.Content, &b.CoverImage,
			&b.IsPublished, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// BlogUpdate carries a partial update: nil fields are left unchanged.
type BlogUpdate struct {
	Title       *string
	Content     *string
	CoverImage  *string
	IsPublished *bool
}

// Update applies a partial update and returns the fresh row.
func (r *BlogRepo) Update(ctx context.Context, id uint64, upd BlogUpdate) (*model.Blog, error) {
	var b setBuilder
	if upd.Title != nil {
		b.add("title", *upd.Title)
	}
	if upd.Content != nil {
		b.add("content", *upd.Content)
	}
	if upd.CoverImage != nil {
		b.add("cover_image", *upd.CoverImage)
	}
	if upd.IsPublished != nil {
		b.add("is_published", *upd.IsPublished)
	}
	if !b.empty() {
		args := append(b.args, id)
		if _, err := r.db.ExecContext(ctx, "UPDATE blogs SET "+b.clause()+" WHERE id = ?", args...); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a post.
func (r *BlogRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM blogs WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBlogNotFound
	}
	return nil
}

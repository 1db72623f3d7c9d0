package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/movietix/booking-api/internal/model"
)

// ErrCommentNotFound indicates that a comment was not located in the DB.
var ErrCommentNotFound = errors.New("comment not found")

// CommentRepo manages persistence for movie comments.  Comments are
// soft-deleted; only active ones show up in listings and in the
// rating aggregate.
type CommentRepo struct {
	db *sql.DB
}

// NewCommentRepo constructs a CommentRepo given a DB handle.
func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

const commentColumns = `co.id, co.user_id, co.movie_id, co.content, co.rating, co.is_active, co.created_at, co.updated_at`

// Create inserts a new comment and fills in its generated fields.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	const q = `INSERT INTO comments (user_id, movie_id, content, rating) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.UserID, c.MovieID, c.Content, c.Rating)
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
	*c = *got
	return nil
}

// GetByID returns one comment, active or not.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (*model.Comment, error) {
	const q = `SELECT ` + commentColumns + ` FROM comments co WHERE co.id = ?`
	var c model.Comment
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.UserID, &c.MovieID, &c.Content, &c.Rating, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByMovie returns the active comments on a movie, newest first,
// with the author's display name joined in.
func (r *CommentRepo) ListByMovie(ctx context.Context, movieID uint64) ([]*model.CommentDetail, error) {
	const q = `SELECT ` + commentColumns + `, u.full_name
	           FROM comments co
	           JOIN users u ON u.id = co.user_id
	           WHERE co.movie_id = ? AND co.is_active = TRUE
	           ORDER BY co.created_at DESC, co.id DESC`
	rows, err := r.db.QueryContext(ctx, q, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.CommentDetail, 0)
	for rows.Next() {
		var d model.CommentDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.MovieID, &d.Content, &d.Rating,
			&d.IsActive, &d.CreatedAt, &d.UpdatedAt, &d.AuthorName); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites a comment's content and rating.
func (r *CommentRepo) Update(ctx context.Context, id uint64, content string, rating int) (*model.Comment, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE comments SET content = ?, rating = ? WHERE id = ?", content, rating, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Deactivate soft-deletes a comment, dropping it from listings and
// from the movie's rating aggregate.
func (r *CommentRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE comments SET is_active = FALSE WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// AverageRating computes the mean of the active, nonzero ratings on a
// movie.  Zero means unrated and is excluded; a movie with no rated
// comments averages to 0.
func (r *CommentRepo) AverageRating(ctx context.Context, movieID uint64) (float64, error) {
	const q = `SELECT COALESCE(AVG(rating), 0)
	           FROM comments
	           WHERE movie_id = ? AND is_active = TRUE AND rating > 0`
	var avg float64
	if err := r.db.QueryRowContext(ctx, q, movieID).Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}

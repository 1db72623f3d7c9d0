// This file defines repository methods for the movie catalog.  Movies
// carry a denormalized rating column maintained from comment ratings,
// and a release-date based now-showing / coming-soon split used by the
// public listing endpoint.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/movietix/booking-api/internal/model"
)

// ErrMovieNotFound is returned when a movie cannot be found in the DB.
var ErrMovieNotFound = errors.New("movie not found")

// MovieRepo encapsulates database queries for the movies table.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

const movieColumns = `id, title, description, director, actors, genre, duration_min, release_date, poster, trailer, rating, is_active, created_at, updated_at`

// Create inserts a new movie.  The actors list is stored as a JSON
// array column.  On success the full record, including DB defaults, is
// written back into m.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	actors, err := json.Marshal(m.Actors)
	if err != nil {
		return err
	}
	const q = `INSERT INTO movies (title, description, director, actors, genre, duration_min, release_date, poster, trailer)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		m.Title, m.Description, m.Director, actors, m.Genre, m.DurationMin, m.ReleaseDate, m.Poster, m.Trailer)
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
	*m = *got
	return nil
}

// GetByID fetches a movie by its ID, active or not.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	const q = "SELECT " + movieColumns + " FROM movies WHERE id = ?"
	m, err := scanMovie(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	return m, err
}

// ResolveMovie fetches a movie only when it exists and is active.  It is
// the catalog lookup used to validate schedule creation.
func (r *MovieRepo) ResolveMovie(ctx context.Context, id uint64) (*model.Movie, error) {
	const q = "SELECT " + movieColumns + " FROM movies WHERE id = ? AND is_active = TRUE"
	m, err := scanMovie(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	return m, err
}

// ListActive returns active movies, optionally filtered by release
// status: "now-showing" keeps movies released on or before today,
// "coming-soon" keeps future releases.  Results are ordered newest
// release first, then newest row first, matching the public catalog.
func (r *MovieRepo) ListActive(ctx context.Context, status string) ([]*model.Movie, error) {
	q := "SELECT " + movieColumns + " FROM movies WHERE is_active = TRUE"
	args := []interface{}{}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	switch status {
	case "now-showing":
		q += " AND release_date <= ?"
		args = append(args, today)
	case "coming-soon":
		q += " AND release_date > ?"
		args = append(args, today)
	}
	q += " ORDER BY release_date DESC, created_at DESC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MovieUpdate carries an administrative partial update; nil fields are
// left unchanged.  Rating is absent on purpose: the aggregate only
// moves through UpdateRating.
type MovieUpdate struct {
	Title       *string
	Description *string
	Director    *string
	Actors      *[]string
	Genre       *string
	DurationMin *int
	ReleaseDate *time.Time
	Poster      *string
	Trailer     *string
	IsActive    *bool
}

// Update applies a partial update and returns the fresh record.
func (r *MovieRepo) Update(ctx context.Context, id uint64, upd MovieUpdate) (*model.Movie, error) {
	var b setBuilder
	if upd.Title != nil {
		b.add("title", *upd.Title)
	}
	if upd.Description != nil {
		b.add("description", *upd.Description)
	}
	if upd.Director != nil {
		b.add("director", *upd.Director)
	}
	if upd.Actors != nil {
		actors, err := json.Marshal(*upd.Actors)
		if err != nil {
			return nil, err
		}
		b.add("actors", actors)
	}
	if upd.Genre != nil {
		b.add("genre", *upd.Genre)
	}
	if upd.DurationMin != nil {
		b.add("duration_min", *upd.DurationMin)
	}
	if upd.ReleaseDate != nil {
		b.add("release_date", *upd.ReleaseDate)
	}
	if upd.Poster != nil {
		b.add("poster", *upd.Poster)
	}
	if upd.Trailer != nil {
		b.add("trailer", *upd.Trailer)
	}
	if upd.IsActive != nil {
		b.add("is_active", *upd.IsActive)
	}
	if !b.empty() {
		args := append(b.args, id)
		if _, err := r.db.ExecContext(ctx, "UPDATE movies SET "+b.clause()+" WHERE id = ?", args...); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// UpdateRating overwrites the denormalized aggregate rating.  It is
// called by the comment handler after every comment mutation.
func (r *MovieRepo) UpdateRating(ctx context.Context, id uint64, rating float64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE movies SET rating = ? WHERE id = ?", rating, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Unchanged rating also affects zero rows; only report missing movies.
		var exists uint64
		if err := r.db.QueryRowContext(ctx, "SELECT id FROM movies WHERE id = ?", id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrMovieNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a movie.  Blocked with ErrConflict while schedules
// reference it; comments are removed alongside the movie.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	var n int
	if err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM schedules WHERE movie_id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		err = ErrConflict
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM comments WHERE movie_id = ?", id); err != nil {
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id); err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		err = ErrMovieNotFound
		return err
	}
	return nil
}

func scanMovie(s rowScanner) (*model.Movie, error) {
	var (
		m       model.Movie
		actors  []byte
		poster  sql.NullString
		trailer sql.NullString
	)
	if err := s.Scan(&m.ID, &m.Title, &m.Description, &m.Director, &actors, &m.Genre,
		&m.DurationMin, &m.ReleaseDate, &poster, &trailer, &m.Rating, &m.IsActive,
		&m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if len(actors) > 0 {
		if err := json.Unmarshal(actors, &m.Actors); err != nil {
			return nil, err
		}
	}
	if poster.Valid {
		p := poster.String
		m.Poster = &p
	}
	if trailer.Valid {
		t := trailer.String
		m.Trailer = &t
	}
	return &m, nil
}

// This file contains data access logic for schedules.  A Schedule is
// one bookable showing; its available_seats column is the live capacity
// counter that the booking engine debits and credits.  The counter is
// only ever written through the bounded UPDATE in adjustSeats, which
// carries the 0..total_seats invariant in its WHERE clause so a
// violating adjustment affects zero rows instead of corrupting state.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/movietix/booking-api/internal/model"
)

// ErrScheduleNotFound indicates that a schedule was not located in the DB.
var ErrScheduleNotFound = errors.New("schedule not found")

// ScheduleRepo manages persistence for schedules.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo constructs a ScheduleRepo given a DB handle.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

const scheduleColumns = `s.id, s.movie_id, s.cinema_id, s.room, s.show_time, s.price_cents, s.total_seats, s.available_seats, s.is_active, s.created_at, s.updated_at`

// Create inserts a new schedule.  Catalog validation (movie and cinema
// must resolve to active rows) is the schedule service's job; this
// method only persists.  On success the generated ID and DB defaults
// are populated on the given model.
func (r *ScheduleRepo) Create(ctx context.Context, s *model.Schedule) error {
	const q = `INSERT INTO schedules (movie_id, cinema_id, room, show_time, price_cents, total_seats, available_seats)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		s.MovieID, s.CinemaID, s.Room, s.ShowTime, s.PriceCents, s.TotalSeats, s.AvailableSeats)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	det, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*s = det.Schedule
	return nil
}

// GetByID returns one schedule joined with its movie title and cinema
// name, active or not.  ErrScheduleNotFound when absent.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (*model.ScheduleDetail, error) {
	const q = `SELECT ` + scheduleColumns + `, m.title, c.name
	           FROM schedules s
	           JOIN movies m ON m.id = s.movie_id
	           JOIN cinemas c ON c.id = s.cinema_id
	           WHERE s.id = ?`
	det, err := scanScheduleDetail(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	return det, err
}

// List returns active schedules ordered by show time ascending,
// optionally filtered by movie and/or cinema.
func (r *ScheduleRepo) List(ctx context.Context, movieID, cinemaID *uint64) ([]*model.ScheduleDetail, error) {
	q := `SELECT ` + scheduleColumns + `, m.title, c.name
	      FROM schedules s
	      JOIN movies m ON m.id = s.movie_id
	      JOIN cinemas c ON c.id = s.cinema_id
	      WHERE s.is_active = TRUE`
	args := []interface{}{}
	if movieID != nil {
		q += " AND s.movie_id = ?"
		args = append(args, *movieID)
	}
	if cinemaID != nil {
		q += " AND s.cinema_id = ?"
		args = append(args, *cinemaID)
	}
	q += " ORDER BY s.show_time ASC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.ScheduleDetail, 0)
	for rows.Next() {
		det, err := scanScheduleDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, det)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies an administrative partial update of everything except
// the available_seats counter, which only AdjustAvailableSeats may
// touch.  Shrinking total_seats below the seats already claimed is
// rejected with ErrSeatCountRange.
func (r *ScheduleRepo) Update(ctx context.Context, id uint64, upd model.ScheduleUpdate) (*model.ScheduleDetail, error) {
	var b setBuilder
	if upd.MovieID != nil {
		b.add("movie_id", *upd.MovieID)
	}
	if upd.CinemaID != nil {
		b.add("cinema_id", *upd.CinemaID)
	}
	if upd.Room != nil {
		b.add("room", *upd.Room)
	}
	if upd.ShowTime != nil {
		b.add("show_time", *upd.ShowTime)
	}
	if upd.PriceCents != nil {
		b.add("price_cents", *upd.PriceCents)
	}
	if upd.IsActive != nil {
		b.add("is_active", *upd.IsActive)
	}
	if upd.TotalSeats != nil {
		// Keep the counter invariant: the claimed seat count
		// (total - available) must still fit under the new total.
		res, err := r.db.ExecContext(ctx,
			`UPDATE schedules
			 SET available_seats = available_seats + (? - total_seats), total_seats = ?
			 WHERE id = ? AND total_seats - available_seats <= ? AND ? >= 0`,
			*upd.TotalSeats, *upd.TotalSeats, id, *upd.TotalSeats, *upd.TotalSeats)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			if _, err := r.GetByID(ctx, id); err != nil {
				return nil, err
			}
			return nil, ErrSeatCountRange
		}
	}
	if !b.empty() {
		args := append(b.args, id)
		if _, err := r.db.ExecContext(ctx, "UPDATE schedules SET "+b.clause()+" WHERE id = ?", args...); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// AdjustAvailableSeats applies available_seats += delta as a single
// atomic statement and returns the updated schedule.  An adjustment
// that would leave the counter outside 0..total_seats affects zero
// rows and is reported as ErrSeatCountRange; a missing schedule is
// ErrScheduleNotFound.  This is the sole mutation path of the counter.
func (r *ScheduleRepo) AdjustAvailableSeats(ctx context.Context, id uint64, delta int) (*model.Schedule, error) {
	if err := adjustSeats(ctx, r.db, id, delta); err != nil {
		return nil, err
	}
	det, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &det.Schedule, nil
}

// Delete removes a schedule.  Blocked with ErrConflict while tickets
// reference it, so booking history can never dangle.
func (r *ScheduleRepo) Delete(ctx context.Context, id uint64) error {
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
	if err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM tickets WHERE schedule_id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		err = ErrConflict
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, "DELETE FROM schedules WHERE id = ?", id); err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		err = ErrScheduleNotFound
		return err
	}
	return nil
}

// execer covers *sql.DB and *sql.Tx so the bounded counter UPDATE can
// run standalone or inside a booking transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// adjustSeats runs the bounded counter UPDATE against db or tx.
func adjustSeats(ctx context.Context, ex execer, id uint64, delta int) error {
	const q = `UPDATE schedules
	           SET available_seats = available_seats + ?
	           WHERE id = ? AND available_seats + ? >= 0 AND available_seats + ? <= total_seats`
	res, err := ex.ExecContext(ctx, q, delta, id, delta, delta)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish a missing row from a bound violation.
		var exists uint64
		err := ex.QueryRowContext(ctx, "SELECT id FROM schedules WHERE id = ?", id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrScheduleNotFound
		}
		if err != nil {
			return err
		}
		if delta != 0 {
			return ErrSeatCountRange
		}
	}
	return nil
}

func scanSchedule(s rowScanner, sc *model.Schedule, extra ...interface{}) error {
	dest := []interface{}{
		&sc.ID, &sc.MovieID, &sc.CinemaID, &sc.Room, &sc.ShowTime,
		&sc.PriceCents, &sc.TotalSeats, &sc.AvailableSeats, &sc.IsActive,
		&sc.CreatedAt, &sc.UpdatedAt,
	}
	dest = append(dest, extra...)
	return s.Scan(dest...)
}

func scanScheduleDetail(s rowScanner) (*model.ScheduleDetail, error) {
	var det model.ScheduleDetail
	if err := scanSchedule(s, &det.Schedule, &det.MovieTitle, &det.CinemaName); err != nil {
		return nil, err
	}
	return &det, nil
}

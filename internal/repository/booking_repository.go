// This file contains data access logic for tickets.  Every mutation of
// booking state happens inside a transaction obtained from Begin: the
// schedule row is locked FOR UPDATE first, which serializes concurrent
// bookings and cancellations on the same showing, and the ticket write
// and counter adjustment then commit or roll back together.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/movietix/booking-api/internal/model"
	"github.com/movietix/booking-api/internal/service/ports"
)

// ErrTicketNotFound indicates that a ticket was not located in the DB.
var ErrTicketNotFound = errors.New("ticket not found")

// BookingRepo manages persistence for tickets.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo given a DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// Begin opens a booking transaction.  The caller must Commit or
// Rollback it; the booking service does so with a committed-flag defer.
func (r *BookingRepo) Begin(ctx context.Context) (ports.BookingTx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &BookingTx{tx: tx}, nil
}

const ticketColumns = `t.id, t.reference, t.user_id, t.schedule_id, t.seats, t.quantity, t.total_price_cents, t.status, t.created_at, t.updated_at`

const ticketDetailQuery = `SELECT ` + ticketColumns + `, s.room, s.show_time, m.title, c.name, u.email
	FROM tickets t
	JOIN schedules s ON s.id = t.schedule_id
	JOIN movies m ON m.id = s.movie_id
	JOIN cinemas c ON c.id = s.cinema_id
	JOIN users u ON u.id = t.user_id`

// GetTicket returns one ticket with its schedule, movie, cinema and
// buyer context.  ErrTicketNotFound when absent.
func (r *BookingRepo) GetTicket(ctx context.Context, id uint64) (*model.TicketDetail, error) {
	det, err := scanTicketDetail(r.db.QueryRowContext(ctx, ticketDetailQuery+" WHERE t.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	return det, err
}

// ListTickets returns tickets newest first, optionally restricted to
// one buyer.  userID == 0 means all users (admin listing).
func (r *BookingRepo) ListTickets(ctx context.Context, userID uint64) ([]*model.TicketDetail, error) {
	q := ticketDetailQuery
	args := []interface{}{}
	if userID != 0 {
		q += " WHERE t.user_id = ?"
		args = append(args, userID)
	}
	q += " ORDER BY t.created_at DESC, t.id DESC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.TicketDetail, 0)
	for rows.Next() {
		det, err := scanTicketDetail(rows)
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

// DeleteTicket removes a ticket row outright.  Capacity already freed
// by a cancellation stays freed; a confirmed ticket's seats are not
// returned here, deletion is an administrative purge not a refund.
func (r *BookingRepo) DeleteTicket(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tickets WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// BookingTx is one in-flight booking or cancellation transaction.
type BookingTx struct {
	tx *sql.Tx
}

// Commit commits the transaction.
func (t *BookingTx) Commit() error { return t.tx.Commit() }

// Rollback aborts the transaction.  Safe to call after Commit.
func (t *BookingTx) Rollback() error { return t.tx.Rollback() }

// ScheduleForUpdate loads a schedule row under an exclusive row lock.
// Concurrent transactions touching the same schedule block here until
// the holder commits, which is what makes seat checks race-free.
func (t *BookingTx) ScheduleForUpdate(ctx context.Context, id uint64) (*model.Schedule, error) {
	const q = `SELECT ` + scheduleColumns + ` FROM schedules s WHERE s.id = ? FOR UPDATE`
	var s model.Schedule
	err := scanSchedule(t.tx.QueryRowContext(ctx, q, id), &s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ConfirmedSeats returns every seat label currently held by a
// CONFIRMED ticket on the schedule.  Runs under the schedule row lock,
// so the returned set cannot change before the transaction ends.
func (t *BookingTx) ConfirmedSeats(ctx context.Context, scheduleID uint64) ([]string, error) {
	const q = `SELECT seats FROM tickets WHERE schedule_id = ? AND status = ?`
	rows, err := t.tx.QueryContext(ctx, q, scheduleID, model.TicketConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var taken []string
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var seats []string
		if err := json.Unmarshal(raw, &seats); err != nil {
			return nil, err
		}
		taken = append(taken, seats...)
	}
	return taken, rows.Err()
}

// InsertTicket persists a new ticket and fills in its generated ID and
// timestamps.
func (t *BookingTx) InsertTicket(ctx context.Context, tk *model.Ticket) error {
	seats, err := json.Marshal(tk.Seats)
	if err != nil {
		return err
	}
	const q = `INSERT INTO tickets (reference, user_id, schedule_id, seats, quantity, total_price_cents, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q,
		tk.Reference, tk.UserID, tk.ScheduleID, seats, tk.Quantity, tk.TotalPriceCents, tk.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	tk.ID = uint64(id)
	const readback = `SELECT created_at, updated_at FROM tickets WHERE id = ?`
	return t.tx.QueryRowContext(ctx, readback, tk.ID).Scan(&tk.CreatedAt, &tk.UpdatedAt)
}

// TicketForUpdate loads a ticket under an exclusive row lock so a
// status transition cannot race with another cancellation.
func (t *BookingTx) TicketForUpdate(ctx context.Context, id uint64) (*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.id = ? FOR UPDATE`
	tk, err := scanTicket(t.tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	return tk, err
}

// SetTicketStatus updates a ticket's status.
func (t *BookingTx) SetTicketStatus(ctx context.Context, id uint64, status model.TicketStatus) error {
	res, err := t.tx.ExecContext(ctx, "UPDATE tickets SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// AdjustAvailableSeats applies the bounded counter UPDATE inside this
// transaction, so the debit/credit commits atomically with the ticket.
func (t *BookingTx) AdjustAvailableSeats(ctx context.Context, scheduleID uint64, delta int) error {
	return adjustSeats(ctx, t.tx, scheduleID, delta)
}

func scanTicket(s rowScanner) (*model.Ticket, error) {
	var tk model.Ticket
	var raw []byte
	err := s.Scan(&tk.ID, &tk.Reference, &tk.UserID, &tk.ScheduleID, &raw,
		&tk.Quantity, &tk.TotalPriceCents, &tk.Status, &tk.CreatedAt, &tk.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &tk.Seats); err != nil {
		return nil, err
	}
	return &tk, nil
}

func scanTicketDetail(s rowScanner) (*model.TicketDetail, error) {
	var det model.TicketDetail
	var raw []byte
	err := s.Scan(&det.ID, &det.Reference, &det.UserID, &det.ScheduleID, &raw,
		&det.Quantity, &det.TotalPriceCents, &det.Status, &det.CreatedAt, &det.UpdatedAt,
		&det.Room, &det.ShowTime, &det.MovieTitle, &det.CinemaName, &det.UserEmail)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &det.Seats); err != nil {
		return nil, err
	}
	return &det, nil
}

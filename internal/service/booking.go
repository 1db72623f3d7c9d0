// Package service holds the business rules that sit between the HTTP
// handlers and the repositories.  The booking service is the heart of
// it: every seat purchase and cancellation runs inside one DB
// transaction that locks the schedule row, so two buyers can never
// hold the same seat and the availability counter can never drift from
// the set of confirmed tickets.
package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/movietix/booking-api/internal/model"
	"github.com/movietix/booking-api/internal/repository"
	"github.com/movietix/booking-api/internal/service/ports"
)

// MaxSeatsPerBooking caps one purchase.  Matches the largest group a
// box office would sell in one order.
const MaxSeatsPerBooking = 10

// BookingService books and cancels tickets.
type BookingService struct {
	store  ports.BookingStore
	events ports.EventPublisher
	now    func() time.Time
}

// NewBookingService constructs a BookingService.  events may be nil
// when no broker is configured.
func NewBookingService(store ports.BookingStore, events ports.EventPublisher) *BookingService {
	return &BookingService{store: store, events: events, now: time.Now}
}

// Create books the given seats on a schedule for the user.  The whole
// flow runs under the schedule's row lock: seat conflict scan, ticket
// insert and counter debit either all commit or none do.  The ticket
// price is frozen from the schedule at purchase time.
func (s *BookingService) Create(ctx context.Context, userID, scheduleID uint64, seats []string) (*model.Ticket, error) {
	seats, err := normalizeSeats(seats)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	sched, err := tx.ScheduleForUpdate(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if !sched.IsActive {
		return nil, ErrValidation
	}
	if !sched.ShowTime.After(s.now()) {
		return nil, ErrPastShowtime
	}
	if len(seats) > sched.AvailableSeats {
		return nil, ErrInsufficientSeats
	}

	taken, err := tx.ConfirmedSeats(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if conflict := intersect(seats, taken); len(conflict) > 0 {
		return nil, &SeatConflictError{Seats: conflict}
	}

	ticket := &model.Ticket{
		Reference:       uuid.NewString(),
		UserID:          userID,
		ScheduleID:      scheduleID,
		Seats:           seats,
		Quantity:        len(seats),
		TotalPriceCents: sched.PriceCents * int64(len(seats)),
		Status:          model.TicketConfirmed,
	}
	if err := tx.InsertTicket(ctx, ticket); err != nil {
		return nil, err
	}
	if err := tx.AdjustAvailableSeats(ctx, scheduleID, -len(seats)); err != nil {
		if errors.Is(err, repository.ErrSeatCountRange) {
			return nil, ErrInsufficientSeats
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.publish(func(p ports.EventPublisher) error { return p.TicketConfirmed(ticket) })
	return ticket, nil
}

// Cancel flips a ticket to CANCELLED and returns its seats to the
// pool.  Owners may cancel their own tickets, admins anyone's, and
// only before the showing starts.  Cancelling twice fails with
// ErrAlreadyCancelled so capacity is credited exactly once.
func (s *BookingService) Cancel(ctx context.Context, callerID uint64, admin bool, ticketID uint64) (*model.Ticket, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ticket, err := tx.TicketForUpdate(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !admin && ticket.UserID != callerID {
		// Tickets outside the caller's scope look absent, never
		// forbidden, so their existence is not leaked.
		return nil, repository.ErrTicketNotFound
	}
	if ticket.Status == model.TicketCancelled {
		return nil, ErrAlreadyCancelled
	}

	sched, err := tx.ScheduleForUpdate(ctx, ticket.ScheduleID)
	if err != nil {
		return nil, err
	}
	if !sched.ShowTime.After(s.now()) {
		return nil, ErrPastShowtime
	}

	if err := tx.SetTicketStatus(ctx, ticketID, model.TicketCancelled); err != nil {
		return nil, err
	}
	if err := tx.AdjustAvailableSeats(ctx, ticket.ScheduleID, ticket.Quantity); err != nil {
		return nil, err
	}
	// Re-read under the lock so the caller sees the row as persisted,
	// including the refreshed updated_at.
	ticket, err = tx.TicketForUpdate(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.publish(func(p ports.EventPublisher) error { return p.TicketCancelled(ticket) })
	return ticket, nil
}

// List returns tickets visible to the caller, newest first.  Regular
// users always get their own; admins get everyone's, or one user's
// when filterUserID is set.
func (s *BookingService) List(ctx context.Context, callerID uint64, admin bool, filterUserID *uint64) ([]*model.TicketDetail, error) {
	target := callerID
	if admin {
		target = 0
		if filterUserID != nil {
			target = *filterUserID
		}
	}
	return s.store.ListTickets(ctx, target)
}

// Get returns one ticket with full context.  Non-admins may only read
// their own tickets; anything else reports not found rather than
// confirming the ticket exists.
func (s *BookingService) Get(ctx context.Context, callerID uint64, admin bool, ticketID uint64) (*model.TicketDetail, error) {
	det, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !admin && det.UserID != callerID {
		return nil, repository.ErrTicketNotFound
	}
	return det, nil
}

// Remove hard-deletes a ticket record.  Admin only (enforced at the
// route).  Deletion is a record purge, not a cancellation: a confirmed
// ticket's seats stay debited from the schedule.
func (s *BookingService) Remove(ctx context.Context, ticketID uint64) error {
	return s.store.DeleteTicket(ctx, ticketID)
}

func (s *BookingService) publish(fn func(ports.EventPublisher) error) {
	if s.events == nil {
		return
	}
	if err := fn(s.events); err != nil {
		log.Printf("event publish failed: %v", err)
	}
}

// normalizeSeats trims labels, rejects empties and duplicates and
// enforces the per-booking cap.  Returns the cleaned slice.
func normalizeSeats(seats []string) ([]string, error) {
	if len(seats) == 0 || len(seats) > MaxSeatsPerBooking {
		return nil, ErrValidation
	}
	out := make([]string, 0, len(seats))
	seen := make(map[string]struct{}, len(seats))
	for _, raw := range seats {
		seat := strings.ToUpper(strings.TrimSpace(raw))
		if seat == "" {
			return nil, ErrValidation
		}
		if _, dup := seen[seat]; dup {
			return nil, ErrValidation
		}
		seen[seat] = struct{}{}
		out = append(out, seat)
	}
	return out, nil
}

// intersect returns the requested seats that appear in taken, sorted
// for stable error messages.
func intersect(requested, taken []string) []string {
	set := make(map[string]struct{}, len(taken))
	for _, s := range taken {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range requested {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

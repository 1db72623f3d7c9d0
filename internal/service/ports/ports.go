// Package ports declares the persistence and messaging interfaces the
// service layer depends on.  The MySQL repositories implement them in
// production; tests substitute in-memory fakes.
package ports

import (
	"context"

	"github.com/movietix/booking-api/internal/model"
)

// BookingStore provides ticket persistence and booking transactions.
type BookingStore interface {
	Begin(ctx context.Context) (BookingTx, error)
	GetTicket(ctx context.Context, id uint64) (*model.TicketDetail, error)
	ListTickets(ctx context.Context, userID uint64) ([]*model.TicketDetail, error)
	DeleteTicket(ctx context.Context, id uint64) error
}

// BookingTx is one booking or cancellation transaction.  The schedule
// row lock taken by ScheduleForUpdate serializes all concurrent work
// on the same showing for the lifetime of the transaction.
type BookingTx interface {
	Commit() error
	Rollback() error
	ScheduleForUpdate(ctx context.Context, id uint64) (*model.Schedule, error)
	ConfirmedSeats(ctx context.Context, scheduleID uint64) ([]string, error)
	InsertTicket(ctx context.Context, t *model.Ticket) error
	TicketForUpdate(ctx context.Context, id uint64) (*model.Ticket, error)
	SetTicketStatus(ctx context.Context, id uint64, status model.TicketStatus) error
	AdjustAvailableSeats(ctx context.Context, scheduleID uint64, delta int) error
}

// ScheduleStore provides schedule persistence for the schedule service.
type ScheduleStore interface {
	Create(ctx context.Context, s *model.Schedule) error
	GetByID(ctx context.Context, id uint64) (*model.ScheduleDetail, error)
	List(ctx context.Context, movieID, cinemaID *uint64) ([]*model.ScheduleDetail, error)
	Update(ctx context.Context, id uint64, upd model.ScheduleUpdate) (*model.ScheduleDetail, error)
	AdjustAvailableSeats(ctx context.Context, id uint64, delta int) (*model.Schedule, error)
	Delete(ctx context.Context, id uint64) error
}

// Catalog resolves active movies and cinemas for schedule validation.
type Catalog interface {
	ResolveMovie(ctx context.Context, id uint64) (*model.Movie, error)
	ResolveCinema(ctx context.Context, id uint64) (*model.Cinema, error)
}

// EventPublisher emits booking lifecycle events.  Publishing is best
// effort and happens only after the owning transaction has committed.
type EventPublisher interface {
	TicketConfirmed(t *model.Ticket) error
	TicketCancelled(t *model.Ticket) error
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/movietix/booking-api/internal/model"
	"github.com/movietix/booking-api/internal/repository"
	"github.com/movietix/booking-api/internal/service/ports"
)

// ScheduleService manages showings.  It validates catalog references
// before touching the store: a schedule may only point at an active
// movie and an active cinema.
type ScheduleService struct {
	store   ports.ScheduleStore
	catalog ports.Catalog
	now     func() time.Time
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(store ports.ScheduleStore, catalog ports.Catalog) *ScheduleService {
	return &ScheduleService{store: store, catalog: catalog, now: time.Now}
}

// ScheduleInput carries the fields needed to create a schedule.
// AvailableSeats nil means all seats start free.
type ScheduleInput struct {
	MovieID        uint64
	CinemaID       uint64
	Room           string
	ShowTime       time.Time
	PriceCents     int64
	TotalSeats     int
	AvailableSeats *int
}

// Create validates and persists a new schedule.
func (s *ScheduleService) Create(ctx context.Context, in ScheduleInput) (*model.ScheduleDetail, error) {
	if in.Room == "" || in.TotalSeats <= 0 || in.PriceCents < 0 {
		return nil, ErrValidation
	}
	if !in.ShowTime.After(s.now()) {
		return nil, ErrPastShowtime
	}
	available := in.TotalSeats
	if in.AvailableSeats != nil {
		available = *in.AvailableSeats
	}
	if available < 0 || available > in.TotalSeats {
		return nil, ErrValidation
	}
	if err := s.resolveCatalog(ctx, &in.MovieID, &in.CinemaID); err != nil {
		return nil, err
	}
	sched := &model.Schedule{
		MovieID:        in.MovieID,
		CinemaID:       in.CinemaID,
		Room:           in.Room,
		ShowTime:       in.ShowTime,
		PriceCents:     in.PriceCents,
		TotalSeats:     in.TotalSeats,
		AvailableSeats: available,
	}
	if err := s.store.Create(ctx, sched); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, sched.ID)
}

// Get returns one schedule with its movie and cinema context.
func (s *ScheduleService) Get(ctx context.Context, id uint64) (*model.ScheduleDetail, error) {
	return s.store.GetByID(ctx, id)
}

// List returns active schedules, optionally filtered by movie or cinema.
func (s *ScheduleService) List(ctx context.Context, movieID, cinemaID *uint64) ([]*model.ScheduleDetail, error) {
	return s.store.List(ctx, movieID, cinemaID)
}

// Update applies a partial update.  Re-pointed movie or cinema
// references are validated against the catalog first.
func (s *ScheduleService) Update(ctx context.Context, id uint64, upd model.ScheduleUpdate) (*model.ScheduleDetail, error) {
	if upd.Room != nil && *upd.Room == "" {
		return nil, ErrValidation
	}
	if upd.PriceCents != nil && *upd.PriceCents < 0 {
		return nil, ErrValidation
	}
	if upd.TotalSeats != nil && *upd.TotalSeats <= 0 {
		return nil, ErrValidation
	}
	if upd.ShowTime != nil && !upd.ShowTime.After(s.now()) {
		return nil, ErrPastShowtime
	}
	if err := s.resolveCatalog(ctx, upd.MovieID, upd.CinemaID); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, id, upd)
}

// AdjustAvailableSeats applies a manual counter correction, e.g. after
// an offline sale.  Bounds are enforced by the store.
func (s *ScheduleService) AdjustAvailableSeats(ctx context.Context, id uint64, delta int) (*model.Schedule, error) {
	return s.store.AdjustAvailableSeats(ctx, id, delta)
}

// Delete removes a schedule.  The store refuses while tickets exist.
func (s *ScheduleService) Delete(ctx context.Context, id uint64) error {
	return s.store.Delete(ctx, id)
}

// resolveCatalog checks that the referenced movie and cinema exist and
// are active.  Nil IDs are skipped, which serves partial updates.
func (s *ScheduleService) resolveCatalog(ctx context.Context, movieID, cinemaID *uint64) error {
	if movieID != nil {
		if _, err := s.catalog.ResolveMovie(ctx, *movieID); err != nil {
			if errors.Is(err, repository.ErrMovieNotFound) {
				return ErrValidation
			}
			return err
		}
	}
	if cinemaID != nil {
		if _, err := s.catalog.ResolveCinema(ctx, *cinemaID); err != nil {
			if errors.Is(err, repository.ErrCinemaNotFound) {
				return ErrValidation
			}
			return err
		}
	}
	return nil
}

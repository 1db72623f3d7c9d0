package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movietix/booking-api/internal/model"
	"github.com/movietix/booking-api/internal/repository"
)

// fakeScheduleStore is an in-memory ScheduleStore.
type fakeScheduleStore struct {
	schedules map[uint64]model.Schedule
	nextID    uint64
}

func newFakeScheduleStore() *fakeScheduleStore {
	return &fakeScheduleStore{schedules: map[uint64]model.Schedule{}}
}

func (s *fakeScheduleStore) Create(ctx context.Context, sc *model.Schedule) error {
	s.nextID++
	sc.ID = s.nextID
	sc.IsActive = true
	s.schedules[sc.ID] = *sc
	return nil
}

func (s *fakeScheduleStore) GetByID(ctx context.Context, id uint64) (*model.ScheduleDetail, error) {
	sc, ok := s.schedules[id]
	if !ok {
		return nil, repository.ErrScheduleNotFound
	}
	return &model.ScheduleDetail{Schedule: sc}, nil
}

func (s *fakeScheduleStore) List(ctx context.Context, movieID, cinemaID *uint64) ([]*model.ScheduleDetail, error) {
	var out []*model.ScheduleDetail
	for _, sc := range s.schedules {
		if !sc.IsActive {
			continue
		}
		if movieID != nil && sc.MovieID != *movieID {
			continue
		}
		if cinemaID != nil && sc.CinemaID != *cinemaID {
			continue
		}
		sc := sc
		out = append(out, &model.ScheduleDetail{Schedule: sc})
	}
	return out, nil
}

func (s *fakeScheduleStore) Update(ctx context.Context, id uint64, upd model.ScheduleUpdate) (*model.ScheduleDetail, error) {
	sc, ok := s.schedules[id]
	if !ok {
		return nil, repository.ErrScheduleNotFound
	}
	if upd.MovieID != nil {
		sc.MovieID = *upd.MovieID
	}
	if upd.CinemaID != nil {
		sc.CinemaID = *upd.CinemaID
	}
	if upd.Room != nil {
		sc.Room = *upd.Room
	}
	if upd.ShowTime != nil {
		sc.ShowTime = *upd.ShowTime
	}
	if upd.PriceCents != nil {
		sc.PriceCents = *upd.PriceCents
	}
	if upd.IsActive != nil {
		sc.IsActive = *upd.IsActive
	}
	if upd.TotalSeats != nil {
		claimed := sc.TotalSeats - sc.AvailableSeats
		if *upd.TotalSeats < claimed {
			return nil, repository.ErrSeatCountRange
		}
		sc.AvailableSeats = *upd.TotalSeats - claimed
		sc.TotalSeats = *upd.TotalSeats
	}
	s.schedules[id] = sc
	return &model.ScheduleDetail{Schedule: sc}, nil
}

func (s *fakeScheduleStore) AdjustAvailableSeats(ctx context.Context, id uint64, delta int) (*model.Schedule, error) {
	sc, ok := s.schedules[id]
	if !ok {
		return nil, repository.ErrScheduleNotFound
	}
	next := sc.AvailableSeats + delta
	if next < 0 || next > sc.TotalSeats {
		return nil, repository.ErrSeatCountRange
	}
	sc.AvailableSeats = next
	s.schedules[id] = sc
	return &sc, nil
}

func (s *fakeScheduleStore) Delete(ctx context.Context, id uint64) error {
	if _, ok := s.schedules[id]; !ok {
		return repository.ErrScheduleNotFound
	}
	delete(s.schedules, id)
	return nil
}

// fakeCatalog resolves whatever IDs it was seeded with.
type fakeCatalog struct {
	movies  map[uint64]bool
	cinemas map[uint64]bool
}

func (f *fakeCatalog) ResolveMovie(ctx context.Context, id uint64) (*model.Movie, error) {
	if !f.movies[id] {
		return nil, repository.ErrMovieNotFound
	}
	return &model.Movie{ID: id, IsActive: true}, nil
}

func (f *fakeCatalog) ResolveCinema(ctx context.Context, id uint64) (*model.Cinema, error) {
	if !f.cinemas[id] {
		return nil, repository.ErrCinemaNotFound
	}
	return &model.Cinema{ID: id, IsActive: true}, nil
}

func newTestSchedule(store *fakeScheduleStore) *ScheduleService {
	svc := NewScheduleService(store, &fakeCatalog{
		movies:  map[uint64]bool{1: true},
		cinemas: map[uint64]bool{1: true},
	})
	svc.now = fixedNow
	return svc
}

func validInput() ScheduleInput {
	return ScheduleInput{
		MovieID:    1,
		CinemaID:   1,
		Room:       "Room 2",
		ShowTime:   fixedNow().Add(24 * time.Hour),
		PriceCents: 1200,
		TotalSeats: 80,
	}
}

func TestScheduleCreateDefaultsAvailableToTotal(t *testing.T) {
	store := newFakeScheduleStore()
	svc := newTestSchedule(store)

	sched, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, 80, sched.TotalSeats)
	assert.Equal(t, 80, sched.AvailableSeats)
	assert.True(t, sched.IsActive)
}

func TestScheduleCreateExplicitAvailable(t *testing.T) {
	store := newFakeScheduleStore()
	svc := newTestSchedule(store)

	in := validInput()
	avail := 30
	in.AvailableSeats = &avail
	sched, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 30, sched.AvailableSeats)

	in = validInput()
	bad := 81
	in.AvailableSeats = &bad
	_, err = svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestScheduleCreateValidation(t *testing.T) {
	store := newFakeScheduleStore()
	svc := newTestSchedule(store)

	in := validInput()
	in.Room = ""
	_, err := svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)

	in = validInput()
	in.TotalSeats = 0
	_, err = svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)

	in = validInput()
	in.ShowTime = fixedNow().Add(-time.Hour)
	_, err = svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrPastShowtime)

	in = validInput()
	in.MovieID = 42
	_, err = svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)

	in = validInput()
	in.CinemaID = 42
	_, err = svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestScheduleUpdateValidatesCatalogRefs(t *testing.T) {
	store := newFakeScheduleStore()
	svc := newTestSchedule(store)

	sched, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	badMovie := uint64(42)
	_, err = svc.Update(context.Background(), sched.ID, model.ScheduleUpdate{MovieID: &badMovie})
	assert.ErrorIs(t, err, ErrValidation)

	price := int64(2000)
	updated, err := svc.Update(context.Background(), sched.ID, model.ScheduleUpdate{PriceCents: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), updated.PriceCents)
}

func TestScheduleAdjustSeatsBounds(t *testing.T) {
	store := newFakeScheduleStore()
	svc := newTestSchedule(store)

	sched, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	got, err := svc.AdjustAvailableSeats(context.Background(), sched.ID, -10)
	require.NoError(t, err)
	assert.Equal(t, 70, got.AvailableSeats)

	_, err = svc.AdjustAvailableSeats(context.Background(), sched.ID, 11)
	assert.ErrorIs(t, err, repository.ErrSeatCountRange)

	_, err = svc.AdjustAvailableSeats(context.Background(), sched.ID, -71)
	assert.ErrorIs(t, err, repository.ErrSeatCountRange)
}

func TestScheduleListFilters(t *testing.T) {
	store := newFakeScheduleStore()
	svc := NewScheduleService(store, &fakeCatalog{
		movies:  map[uint64]bool{1: true, 2: true},
		cinemas: map[uint64]bool{1: true, 2: true},
	})
	svc.now = fixedNow

	a := validInput()
	_, err := svc.Create(context.Background(), a)
	require.NoError(t, err)
	b := validInput()
	b.MovieID = 2
	b.CinemaID = 2
	_, err = svc.Create(context.Background(), b)
	require.NoError(t, err)

	all, err := svc.List(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	movie := uint64(2)
	filtered, err := svc.List(context.Background(), &movie, nil)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, uint64(2), filtered[0].MovieID)
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movietix/booking-api/internal/model"
	"github.com/movietix/booking-api/internal/repository"
	"github.com/movietix/booking-api/internal/service/ports"
)

// fakeStore is an in-memory BookingStore. Transactions snapshot the
// state on Begin and restore it on Rollback, which mirrors how the
// MySQL layer behaves from the service's point of view.
type fakeStore struct {
	schedules map[uint64]model.Schedule
	tickets   map[uint64]model.Ticket
	nextID    uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		schedules: map[uint64]model.Schedule{},
		tickets:   map[uint64]model.Ticket{},
	}
}

func (s *fakeStore) addSchedule(sc model.Schedule) { s.schedules[sc.ID] = sc }

func (s *fakeStore) Begin(ctx context.Context) (ports.BookingTx, error) {
	snapSched := make(map[uint64]model.Schedule, len(s.schedules))
	for k, v := range s.schedules {
		snapSched[k] = v
	}
	snapTick := make(map[uint64]model.Ticket, len(s.tickets))
	for k, v := range s.tickets {
		snapTick[k] = v
	}
	return &fakeTx{store: s, snapSched: snapSched, snapTick: snapTick, snapNext: s.nextID}, nil
}

func (s *fakeStore) GetTicket(ctx context.Context, id uint64) (*model.TicketDetail, error) {
	t, ok := s.tickets[id]
	if !ok {
		return nil, repository.ErrTicketNotFound
	}
	return &model.TicketDetail{Ticket: t}, nil
}

func (s *fakeStore) ListTickets(ctx context.Context, userID uint64) ([]*model.TicketDetail, error) {
	var out []*model.TicketDetail
	for _, t := range s.tickets {
		if userID == 0 || t.UserID == userID {
			t := t
			out = append(out, &model.TicketDetail{Ticket: t})
		}
	}
	return out, nil
}

func (s *fakeStore) DeleteTicket(ctx context.Context, id uint64) error {
	if _, ok := s.tickets[id]; !ok {
		return repository.ErrTicketNotFound
	}
	delete(s.tickets, id)
	return nil
}

type fakeTx struct {
	store     *fakeStore
	snapSched map[uint64]model.Schedule
	snapTick  map[uint64]model.Ticket
	snapNext  uint64
	done      bool
}

func (t *fakeTx) Commit() error {
	t.done = true
	return nil
}

func (t *fakeTx) Rollback() error {
	if !t.done {
		t.store.schedules = t.snapSched
		t.store.tickets = t.snapTick
		t.store.nextID = t.snapNext
		t.done = true
	}
	return nil
}

func (t *fakeTx) ScheduleForUpdate(ctx context.Context, id uint64) (*model.Schedule, error) {
	s, ok := t.store.schedules[id]
	if !ok {
		return nil, repository.ErrScheduleNotFound
	}
	return &s, nil
}

func (t *fakeTx) ConfirmedSeats(ctx context.Context, scheduleID uint64) ([]string, error) {
	var taken []string
	for _, tk := range t.store.tickets {
		if tk.ScheduleID == scheduleID && tk.Status == model.TicketConfirmed {
			taken = append(taken, tk.Seats...)
		}
	}
	return taken, nil
}

func (t *fakeTx) InsertTicket(ctx context.Context, tk *model.Ticket) error {
	t.store.nextID++
	tk.ID = t.store.nextID
	tk.CreatedAt = time.Now()
	tk.UpdatedAt = tk.CreatedAt
	t.store.tickets[tk.ID] = *tk
	return nil
}

func (t *fakeTx) TicketForUpdate(ctx context.Context, id uint64) (*model.Ticket, error) {
	tk, ok := t.store.tickets[id]
	if !ok {
		return nil, repository.ErrTicketNotFound
	}
	return &tk, nil
}

func (t *fakeTx) SetTicketStatus(ctx context.Context, id uint64, status model.TicketStatus) error {
	tk, ok := t.store.tickets[id]
	if !ok {
		return repository.ErrTicketNotFound
	}
	tk.Status = status
	tk.UpdatedAt = time.Now()
	t.store.tickets[id] = tk
	return nil
}

func (t *fakeTx) AdjustAvailableSeats(ctx context.Context, scheduleID uint64, delta int) error {
	s, ok := t.store.schedules[scheduleID]
	if !ok {
		return repository.ErrScheduleNotFound
	}
	next := s.AvailableSeats + delta
	if next < 0 || next > s.TotalSeats {
		return repository.ErrSeatCountRange
	}
	s.AvailableSeats = next
	t.store.schedules[scheduleID] = s
	return nil
}

// fakeEvents records published ticket events.
type fakeEvents struct {
	confirmed []*model.Ticket
	cancelled []*model.Ticket
	err       error
}

func (f *fakeEvents) TicketConfirmed(t *model.Ticket) error {
	f.confirmed = append(f.confirmed, t)
	return f.err
}

func (f *fakeEvents) TicketCancelled(t *model.Ticket) error {
	f.cancelled = append(f.cancelled, t)
	return f.err
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newTestBooking(store *fakeStore, events ports.EventPublisher) *BookingService {
	svc := NewBookingService(store, events)
	svc.now = fixedNow
	return svc
}

func futureSchedule(id uint64) model.Schedule {
	return model.Schedule{
		ID:             id,
		MovieID:        1,
		CinemaID:       1,
		Room:           "Room 1",
		ShowTime:       fixedNow().Add(4 * time.Hour),
		PriceCents:     1500,
		TotalSeats:     50,
		AvailableSeats: 50,
		IsActive:       true,
	}
}

func TestCreateBooksSeatsAndFreezesPrice(t *testing.T) {
	store := newFakeStore()
	store.addSchedule(futureSchedule(1))
	events := &fakeEvents{}
	svc := newTestBooking(store, events)

	ticket, err := svc.Create(context.Background(), 7, 1, []string{"a1", "A2 "})
	require.NoError(t, err)

	assert.Equal(t, model.TicketConfirmed, ticket.Status)
	assert.Equal(t, []string{"A1", "A2"}, ticket.Seats)
	assert.Equal(t, 2, ticket.Quantity)
	assert.Equal(t, int64(3000), ticket.TotalPriceCents)
	assert.NotEmpty(t, ticket.Reference)
	assert.Equal(t, 48, store.schedules[1].AvailableSeats)
	require.Len(t, events.confirmed, 1)
}

func TestCreateRejectsTakenSeats(t *testing.T) {
	store := newFakeStore()
	store.addSchedule(futureSchedule(1))
	svc := newTestBooking(store, nil)

	_, err := svc.Create(context.Background(), 7, 1, []string{"A1", "A2"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 8, 1, []string{"A2", "B1"})
	var conflict *SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"A2"}, conflict.Seats)

	// The failed attempt must not leak a ticket or move the counter.
	assert.Len(t, store.tickets, 1)
	assert.Equal(t, 48, store.schedules[1].AvailableSeats)
}

func TestCreateSeatsFromCancelledTicketAreFree(t *testing.T) {
	store := newFakeStore()
	store.addSchedule(futureSchedule(1))
	svc := newTestBooking(store, nil)

	first, err := svc.Create(context.Background(), 7, 1, []string{"A1"})
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), 7, false, first.ID)
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), 8, 1, []string{"A1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, second.Seats)
	assert.Equal(t, 49, store.schedules[1].AvailableSeats)
}

func TestCreateInsufficientCapacity(t *testing.T) {
	store := newFakeStore()
	sched := futureSchedule(1)
	sched.TotalSeats = 2
	sched.AvailableSeats = 1
	store.addSchedule(sched)
	svc := newTestBooking(store, nil)

	_, err := svc.Create(context.Background(), 7, 1, []string{"A1", "A2"})
	assert.ErrorIs(t, err, ErrInsufficientSeats)
	assert.Empty(t, store.tickets)
}

func TestCreatePastShowtime(t *testing.T) {
	store := newFakeStore()
	sched := futureSchedule(1)
	sched.ShowTime = fixedNow().Add(-time.Minute)
	store.addSchedule(sched)
	svc := newTestBooking(store, nil)

	_, err := svc.Create(context.Background(), 7, 1, []string{"A1"})
	assert.ErrorIs(t, err, ErrPastShowtime)
}

func TestCreateInactiveSchedule(t *testing.T) {
	store := newFakeStore()
	sched := futureSchedule(1)
	sched.IsActive = false
	store.addSchedule(sched)
	svc := newTestBooking(store, nil)

	_, err := svc.Create(context.Background(), 7, 1, []string{"A1"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateSeatValidation(t *testing.T) {
	store := newFakeStore()
	store.addSchedule(futureSchedule(1))
	svc := newTestBooking(store, nil)

	cases := map[string][]string{
		"empty":     {},
		"blank":     {"A1", "  "},
		"duplicate": {"A1", "a1"},
		"too many":  {"A1", "A2", "A3", "A4", "A5", "A6", "A7", "A8", "A9", "A10", "A11"},
	}
	for name, seats := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 7, 1, seats)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateMissingSchedule(t *testing.T) {
	svc := newTestBooking(newFakeStore(), nil)
	_, err := svc.Create(context.Background(), 7, 99, []string{"A1"})
	assert.ErrorIs(t, err, repository.ErrScheduleNotFound)
}

func TestCancelRestoresCapacityOnce(t *testing.T) {
	store := newFakeStore()
	store.addSchedule(futureSchedule(1))
	events := &fakeEvents{}
	svc := newTestBooking(store, events)

	ticket, err := svc.Create(context.Background(), 7, 1, []string{"A1", "A2", "A3"})
	require.NoError(t, err)
	require.Equal(t, 47, store.schedules[1].AvailableSeats)

	cancelled, err := svc.Cancel(context.Background(), 7, false, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TicketCancelled, cancelled.Status)
	assert.Equal(t, 50, store.schedules[1].AvailableSeats)
	require.Len(t, events.cancelled, 1)

	// A second cancel must fail and must not credit the counter again.
	_, err = svc.Cancel(context.Background(), 7, false, ticket.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.Equal(t, 50, store.schedules[1].AvailableSeats)
}

func TestCancelOwnership(t *testing.T) {
	store := newFakeStore()
	store.addSchedule(futureSchedule(1))
	svc := newTestBooking(store, nil)

	ticket, err := svc.Create(context.Background(), 7, 1, []string{"A1"})
	require.NoError(t, err)

	// Someone else's ticket reads as absent so its existence is not
	// revealed to the caller.
	_, err = svc.Cancel(context.Background(), 8, false, ticket.ID)
	assert.ErrorIs(t, err, repository.ErrTicketNotFound)

	// Admins may cancel anyone's ticket.
	_, err = svc.Cancel(context.Background(), 99, true, ticket.ID)
	assert.NoError(t, err)
}

func TestCancelReturnsPersistedRow(t *testing.T) {
	store := newFakeStore()
	store.addSchedule(futureSchedule(1))
	svc := newTestBooking(store, nil)

	ticket, err := svc.Create(context.Background(), 7, 1, []string{"A1"})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), 7, false, ticket.ID)
	require.NoError(t, err)

	stored := store.tickets[ticket.ID]
	assert.Equal(t, model.TicketCancelled, stored.Status)
	assert.Equal(t, stored.Status, cancelled.Status)
	assert.Equal(t, stored.UpdatedAt, cancelled.UpdatedAt)
}

func TestCancelAfterShowtime(t *testing.T) {
	store := newFakeStore()
	store.addSchedule(futureSchedule(1))
	svc := newTestBooking(store, nil)

	ticket, err := svc.Create(context.Background(), 7, 1, []string{"A1"})
	require.NoError(t, err)

	svc.now = func() time.Time { return fixedNow().Add(5 * time.Hour) }
	_, err = svc.Cancel(context.Background(), 7, false, ticket.ID)
	assert.ErrorIs(t, err, ErrPastShowtime)
	assert.Equal(t, 49, store.schedules[1].AvailableSeats)
}

func TestListScoping(t *testing.T) {
	store := newFakeStore()
	store.addSchedule(futureSchedule(1))
	svc := newTestBooking(store, nil)

	_, err := svc.Create(context.Background(), 7, 1, []string{"A1"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 8, 1, []string{"B1"})
	require.NoError(t, err)

	own, err := svc.List(context.Background(), 7, false, nil)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, uint64(7), own[0].UserID)

	all, err := svc.List(context.Background(), 99, true, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	target := uint64(8)
	filtered, err := svc.List(context.Background(), 99, true, &target)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, uint64(8), filtered[0].UserID)

	// Non-admins cannot use the filter to see someone else's tickets.
	other := uint64(8)
	mine, err := svc.List(context.Background(), 7, false, &other)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, uint64(7), mine[0].UserID)
}

func TestGetOwnership(t *testing.T) {
	store := newFakeStore()
	store.addSchedule(futureSchedule(1))
	svc := newTestBooking(store, nil)

	ticket, err := svc.Create(context.Background(), 7, 1, []string{"A1"})
	require.NoError(t, err)

	// An out-of-scope read must be indistinguishable from a missing
	// ticket.
	_, err = svc.Get(context.Background(), 8, false, ticket.ID)
	assert.ErrorIs(t, err, repository.ErrTicketNotFound)

	_, adminErr := svc.Get(context.Background(), 99, true, ticket.ID)
	assert.NoError(t, adminErr)

	got, err := svc.Get(context.Background(), 7, false, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)
}

func TestRemoveDoesNotRestoreCapacity(t *testing.T) {
	store := newFakeStore()
	store.addSchedule(futureSchedule(1))
	svc := newTestBooking(store, nil)

	ticket, err := svc.Create(context.Background(), 7, 1, []string{"A1", "A2"})
	require.NoError(t, err)
	require.Equal(t, 48, store.schedules[1].AvailableSeats)

	require.NoError(t, svc.Remove(context.Background(), ticket.ID))
	assert.Empty(t, store.tickets)
	// Deletion purges the record only; the seats stay claimed.
	assert.Equal(t, 48, store.schedules[1].AvailableSeats)

	err = svc.Remove(context.Background(), ticket.ID)
	assert.ErrorIs(t, err, repository.ErrTicketNotFound)
}

func TestPublishFailureDoesNotFailBooking(t *testing.T) {
	store := newFakeStore()
	store.addSchedule(futureSchedule(1))
	events := &fakeEvents{err: errors.New("broker down")}
	svc := newTestBooking(store, events)

	ticket, err := svc.Create(context.Background(), 7, 1, []string{"A1"})
	require.NoError(t, err)
	assert.Equal(t, model.TicketConfirmed, ticket.Status)
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movietix/booking-api/internal/model"
	"github.com/movietix/booking-api/internal/repository"
	"github.com/movietix/booking-api/internal/service"
	"github.com/movietix/booking-api/internal/service/ports"
)

// stubStore backs the booking service with one schedule and an
// append-only ticket list, enough to drive the HTTP layer.
type stubStore struct {
	schedule model.Schedule
	tickets  []model.Ticket
}

func (s *stubStore) Begin(ctx context.Context) (ports.BookingTx, error) { return &stubTx{s: s}, nil }

func (s *stubStore) GetTicket(ctx context.Context, id uint64) (*model.TicketDetail, error) {
	for _, t := range s.tickets {
		if t.ID == id {
			return &model.TicketDetail{Ticket: t}, nil
		}
	}
	return nil, repository.ErrTicketNotFound
}

func (s *stubStore) ListTickets(ctx context.Context, userID uint64) ([]*model.TicketDetail, error) {
	out := make([]*model.TicketDetail, 0)
	for _, t := range s.tickets {
		if userID == 0 || t.UserID == userID {
			t := t
			out = append(out, &model.TicketDetail{Ticket: t})
		}
	}
	return out, nil
}

func (s *stubStore) DeleteTicket(ctx context.Context, id uint64) error {
	for i, t := range s.tickets {
		if t.ID == id {
			s.tickets = append(s.tickets[:i], s.tickets[i+1:]...)
			return nil
		}
	}
	return repository.ErrTicketNotFound
}

type stubTx struct {
	s *stubStore
}

func (t *stubTx) Commit() error   { return nil }
func (t *stubTx) Rollback() error { return nil }

func (t *stubTx) ScheduleForUpdate(ctx context.Context, id uint64) (*model.Schedule, error) {
	if id != t.s.schedule.ID {
		return nil, repository.ErrScheduleNotFound
	}
	sc := t.s.schedule
	return &sc, nil
}

func (t *stubTx) ConfirmedSeats(ctx context.Context, scheduleID uint64) ([]string, error) {
	var taken []string
	for _, tk := range t.s.tickets {
		if tk.ScheduleID == scheduleID && tk.Status == model.TicketConfirmed {
			taken = append(taken, tk.Seats...)
		}
	}
	return taken, nil
}

func (t *stubTx) InsertTicket(ctx context.Context, tk *model.Ticket) error {
	tk.ID = uint64(len(t.s.tickets) + 1)
	t.s.tickets = append(t.s.tickets, *tk)
	return nil
}

func (t *stubTx) TicketForUpdate(ctx context.Context, id uint64) (*model.Ticket, error) {
	for _, tk := range t.s.tickets {
		if tk.ID == id {
			tk := tk
			return &tk, nil
		}
	}
	return nil, repository.ErrTicketNotFound
}

func (t *stubTx) SetTicketStatus(ctx context.Context, id uint64, status model.TicketStatus) error {
	for i, tk := range t.s.tickets {
		if tk.ID == id {
			t.s.tickets[i].Status = status
			return nil
		}
	}
	return repository.ErrTicketNotFound
}

func (t *stubTx) AdjustAvailableSeats(ctx context.Context, scheduleID uint64, delta int) error {
	next := t.s.schedule.AvailableSeats + delta
	if next < 0 || next > t.s.schedule.TotalSeats {
		return repository.ErrSeatCountRange
	}
	t.s.schedule.AvailableSeats = next
	return nil
}

func newBookingEnv() (*stubStore, *BookingHandler) {
	store := &stubStore{schedule: model.Schedule{
		ID:             1,
		Room:           "Room 1",
		ShowTime:       time.Now().Add(2 * time.Hour),
		PriceCents:     1000,
		TotalSeats:     10,
		AvailableSeats: 10,
		IsActive:       true,
	}}
	return store, NewBookingHandler(service.NewBookingService(store, nil))
}

func doRequest(h echo.HandlerFunc, method, target, body string, userID interface{}, role string) *httptest.ResponseRecorder {
	e := echo.New()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != nil {
		c.Set("user_id", userID)
		c.Set("role", role)
	}
	// Route params for /:id style paths.
	if i := strings.LastIndex(target, "/"); i > 0 {
		if tail := target[i+1:]; tail != "" && !strings.Contains(tail, "?") {
			c.SetParamNames("id")
			c.SetParamValues(tail)
		}
	}
	_ = h(c)
	return rec
}

func TestBookingCreateReturnsTicket(t *testing.T) {
	store, h := newBookingEnv()

	rec := doRequest(h.Create, http.MethodPost, "/v1/bookings",
		`{"schedule_id":1,"seats":["A1","A2"]}`, float64(7), model.RoleUser)

	require.Equal(t, http.StatusCreated, rec.Code)
	var ticket model.Ticket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ticket))
	assert.Equal(t, model.TicketConfirmed, ticket.Status)
	assert.Equal(t, int64(2000), ticket.TotalPriceCents)
	assert.Equal(t, 8, store.schedule.AvailableSeats)
}

func TestBookingCreateRequiresSession(t *testing.T) {
	_, h := newBookingEnv()
	rec := doRequest(h.Create, http.MethodPost, "/v1/bookings",
		`{"schedule_id":1,"seats":["A1"]}`, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBookingCreateValidatesBody(t *testing.T) {
	_, h := newBookingEnv()

	rec := doRequest(h.Create, http.MethodPost, "/v1/bookings",
		`{"seats":["A1"]}`, float64(7), model.RoleUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(h.Create, http.MethodPost, "/v1/bookings",
		`{"schedule_id":1,"seats":[]}`, float64(7), model.RoleUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingCreateSeatConflictNamesSeats(t *testing.T) {
	_, h := newBookingEnv()

	rec := doRequest(h.Create, http.MethodPost, "/v1/bookings",
		`{"schedule_id":1,"seats":["A1"]}`, float64(7), model.RoleUser)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h.Create, http.MethodPost, "/v1/bookings",
		`{"schedule_id":1,"seats":["A1","B2"]}`, float64(8), model.RoleUser)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Seats []string `json:"seats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"A1"}, body.Seats)
}

func TestBookingGetScopesToOwner(t *testing.T) {
	_, h := newBookingEnv()

	rec := doRequest(h.Create, http.MethodPost, "/v1/bookings",
		`{"schedule_id":1,"seats":["A1"]}`, float64(7), model.RoleUser)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Another user's ticket reads as 404, not 403, so the response
	// does not confirm the ticket exists.
	rec = doRequest(h.Get, http.MethodGet, "/v1/bookings/1", "", float64(8), model.RoleUser)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(h.Get, http.MethodGet, "/v1/bookings/1", "", float64(7), model.RoleUser)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(h.Get, http.MethodGet, "/v1/bookings/1", "", float64(9), model.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBookingCancelEndpoint(t *testing.T) {
	store, h := newBookingEnv()

	rec := doRequest(h.Create, http.MethodPost, "/v1/bookings",
		`{"schedule_id":1,"seats":["A1","A2"]}`, float64(7), model.RoleUser)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 8, store.schedule.AvailableSeats)

	// Cancel needs the :id param, so target ends with /1.
	rec = doRequest(h.Cancel, http.MethodPost, "/v1/bookings/1", "", float64(7), model.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, store.schedule.AvailableSeats)

	rec = doRequest(h.Cancel, http.MethodPost, "/v1/bookings/1", "", float64(7), model.RoleUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingRemoveEndpoint(t *testing.T) {
	store, h := newBookingEnv()

	rec := doRequest(h.Create, http.MethodPost, "/v1/bookings",
		`{"schedule_id":1,"seats":["A1"]}`, float64(7), model.RoleUser)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h.Remove, http.MethodDelete, "/v1/bookings/1", "", float64(9), model.RoleAdmin)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, store.tickets)

	rec = doRequest(h.Remove, http.MethodDelete, "/v1/bookings/1", "", float64(9), model.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingGetInvalidID(t *testing.T) {
	_, h := newBookingEnv()
	rec := doRequest(h.Get, http.MethodGet, "/v1/bookings/abc", "", float64(7), model.RoleUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/movietix/booking-api/internal/model"
	"github.com/movietix/booking-api/internal/service"
)

// ScheduleHandler exposes schedule endpoints. Listing and lookup are
// public; create, update, seat adjustment and delete are admin only.
type ScheduleHandler struct {
	Schedules *service.ScheduleService
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(s *service.ScheduleService) *ScheduleHandler {
	if s == nil {
		panic("nil service passed to NewScheduleHandler")
	}
	return &ScheduleHandler{Schedules: s}
}

type createScheduleReq struct {
	MovieID        uint64    `json:"movie_id"`
	CinemaID       uint64    `json:"cinema_id"`
	Room           string    `json:"room"`
	ShowTime       time.Time `json:"show_time"`
	PriceCents     int64     `json:"price_cents"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats *int      `json:"available_seats"`
}

type updateScheduleReq struct {
	MovieID    *uint64    `json:"movie_id"`
	CinemaID   *uint64    `json:"cinema_id"`
	Room       *string    `json:"room"`
	ShowTime   *time.Time `json:"show_time"`
	PriceCents *int64     `json:"price_cents"`
	TotalSeats *int       `json:"total_seats"`
	IsActive   *bool      `json:"is_active"`
}

// Create handles POST /v1/schedules.
func (h *ScheduleHandler) Create(c echo.Context) error {
	var req createScheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.MovieID == 0 || req.CinemaID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id and cinema_id are required"})
	}
	sched, err := h.Schedules.Create(c.Request().Context(), service.ScheduleInput{
		MovieID:        req.MovieID,
		CinemaID:       req.CinemaID,
		Room:           req.Room,
		ShowTime:       req.ShowTime,
		PriceCents:     req.PriceCents,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.AvailableSeats,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, sched)
}

// List handles GET /v1/schedules with optional ?movie_id= and
// ?cinema_id= filters. Only active schedules are returned.
func (h *ScheduleHandler) List(c echo.Context) error {
	movieID, ok := parseQueryID(c, "movie_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie_id"})
	}
	cinemaID, ok := parseQueryID(c, "cinema_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cinema_id"})
	}
	items, err := h.Schedules.List(c.Request().Context(), movieID, cinemaID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /v1/schedules/:id.
func (h *ScheduleHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	sched, err := h.Schedules.Get(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, sched)
}

// Update handles PATCH /v1/schedules/:id.
func (h *ScheduleHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateScheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	sched, err := h.Schedules.Update(c.Request().Context(), id, model.ScheduleUpdate{
		MovieID:    req.MovieID,
		CinemaID:   req.CinemaID,
		Room:       req.Room,
		ShowTime:   req.ShowTime,
		PriceCents: req.PriceCents,
		TotalSeats: req.TotalSeats,
		IsActive:   req.IsActive,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, sched)
}

// AdjustSeats handles POST /v1/schedules/:id/seats. It applies a
// manual correction to the availability counter, e.g. after a box
// office sale outside the API.
func (h *ScheduleHandler) AdjustSeats(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.Bind(&req); err != nil || req.Delta == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "delta is required"})
	}
	sched, err := h.Schedules.AdjustAvailableSeats(c.Request().Context(), id, req.Delta)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, sched)
}

// Delete handles DELETE /v1/schedules/:id.
func (h *ScheduleHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Schedules.Delete(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// parseQueryID parses an optional numeric query parameter. Missing
// means nil; malformed means not ok.
func parseQueryID(c echo.Context, name string) (*uint64, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return nil, false
	}
	return &n, true
}

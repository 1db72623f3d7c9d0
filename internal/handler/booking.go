package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/movietix/booking-api/internal/service"
)

// BookingHandler exposes the ticket booking endpoints.
type BookingHandler struct {
	Bookings *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(b *service.BookingService) *BookingHandler {
	if b == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: b}
}

type createBookingReq struct {
	ScheduleID uint64   `json:"schedule_id"`
	Seats      []string `json:"seats"`
}

// Create handles POST /v1/bookings. It books the requested seats for
// the authenticated user and returns the confirmed ticket.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.ScheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "schedule_id is required"})
	}
	ticket, err := h.Bookings.Create(c.Request().Context(), userID, req.ScheduleID, req.Seats)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, ticket)
}

// List handles GET /v1/bookings. Regular users see their own tickets;
// admins see everyone's and may filter with ?user_id=N.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var filter *uint64
	if raw := c.QueryParam("user_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
		}
		filter = &n
	}
	tickets, err := h.Bookings.List(c.Request().Context(), userID, isAdmin(c), filter)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, tickets)
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ticket, err := h.Bookings.Get(c.Request().Context(), userID, isAdmin(c), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, ticket)
}

// Cancel handles POST /v1/bookings/:id/cancel. The seats return to the
// schedule's pool and the ticket flips to CANCELLED.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ticket, err := h.Bookings.Cancel(c.Request().Context(), userID, isAdmin(c), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, ticket)
}

// Remove handles DELETE /v1/bookings/:id (admin only). It purges the
// ticket record without touching the schedule's seat counter.
func (h *BookingHandler) Remove(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Bookings.Remove(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/movietix/booking-api/internal/model"
	"github.com/movietix/booking-api/internal/repository"
)

// CinemaHandler exposes the cinema catalog endpoints. Reads are
// public; mutations are admin only.
type CinemaHandler struct {
	Cinemas *repository.CinemaRepo
}

// NewCinemaHandler constructs a CinemaHandler.
func NewCinemaHandler(r *repository.CinemaRepo) *CinemaHandler {
	if r == nil {
		panic("nil repository passed to NewCinemaHandler")
	}
	return &CinemaHandler{Cinemas: r}
}

type cinemaReq struct {
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	Phone      *string `json:"phone"`
	TotalRooms int     `json:"total_rooms"`
}

// Create handles POST /v1/cinemas.
func (h *CinemaHandler) Create(c echo.Context) error {
	var req cinemaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.TotalRooms <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and total_rooms are required"})
	}
	cinema := &model.Cinema{
		Name:       req.Name,
		Address:    req.Address,
		City:       req.City,
		Phone:      req.Phone,
		TotalRooms: req.TotalRooms,
	}
	if err := h.Cinemas.Create(c.Request().Context(), cinema); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, cinema)
}

// List handles GET /v1/cinemas. Only active cinemas are returned.
func (h *CinemaHandler) List(c echo.Context) error {
	cinemas, err := h.Cinemas.ListActive(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, cinemas)
}

// Get handles GET /v1/cinemas/:id.
func (h *CinemaHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cinema, err := h.Cinemas.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, cinema)
}

type cinemaUpdateReq struct {
	Name       *string `json:"name"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	Phone      *string `json:"phone"`
	TotalRooms *int    `json:"total_rooms"`
	IsActive   *bool   `json:"is_active"`
}

// Update handles PATCH /v1/cinemas/:id.
func (h *CinemaHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req cinemaUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name cannot be empty"})
	}
	if req.TotalRooms != nil && *req.TotalRooms <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid total_rooms"})
	}
	cinema, err := h.Cinemas.Update(c.Request().Context(), id,
		req.Name, req.Address, req.City, req.Phone, req.TotalRooms, req.IsActive)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, cinema)
}

// Delete handles DELETE /v1/cinemas/:id. Blocked while schedules
// still reference the cinema.
func (h *CinemaHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Cinemas.Delete(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

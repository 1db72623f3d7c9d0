package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/movietix/booking-api/internal/model"
	"github.com/movietix/booking-api/internal/repository"
)

// MovieHandler exposes the movie catalog endpoints. Reads are public;
// mutations are admin only.
type MovieHandler struct {
	Movies *repository.MovieRepo
}

// NewMovieHandler constructs a MovieHandler.
func NewMovieHandler(m *repository.MovieRepo) *MovieHandler {
	if m == nil {
		panic("nil repository passed to NewMovieHandler")
	}
	return &MovieHandler{Movies: m}
}

type movieReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Director    string   `json:"director"`
	Actors      []string `json:"actors"`
	Genre       string   `json:"genre"`
	DurationMin int      `json:"duration_min"`
	ReleaseDate string   `json:"release_date"` // "2006-01-02"
	Poster      *string  `json:"poster"`
	Trailer     *string  `json:"trailer"`
}

// Create handles POST /v1/movies.
func (h *MovieHandler) Create(c echo.Context) error {
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.DurationMin <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and duration_min are required"})
	}
	release, err := parseDate(req.ReleaseDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid release_date"})
	}
	movie := &model.Movie{
		Title:       req.Title,
		Description: req.Description,
		Director:    req.Director,
		Actors:      req.Actors,
		Genre:       req.Genre,
		DurationMin: req.DurationMin,
		ReleaseDate: release,
		Poster:      req.Poster,
		Trailer:     req.Trailer,
	}
	if err := h.Movies.Create(c.Request().Context(), movie); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, movie)
}

// List handles GET /v1/movies. The optional ?status= filter accepts
// "now-showing" (released) or "coming-soon" (future release date).
func (h *MovieHandler) List(c echo.Context) error {
	status := strings.ToLower(strings.TrimSpace(c.QueryParam("status")))
	switch status {
	case "", "now-showing", "coming-soon":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	movies, err := h.Movies.ListActive(c.Request().Context(), status)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, movies)
}

// Get handles GET /v1/movies/:id.
func (h *MovieHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	movie, err := h.Movies.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, movie)
}

type movieUpdateReq struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Director    *string   `json:"director"`
	Actors      *[]string `json:"actors"`
	Genre       *string   `json:"genre"`
	DurationMin *int      `json:"duration_min"`
	ReleaseDate *string   `json:"release_date"`
	Poster      *string   `json:"poster"`
	Trailer     *string   `json:"trailer"`
	IsActive    *bool     `json:"is_active"`
}

// Update handles PATCH /v1/movies/:id.
func (h *MovieHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req movieUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title cannot be empty"})
	}
	if req.DurationMin != nil && *req.DurationMin <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid duration_min"})
	}
	upd := repository.MovieUpdate{
		Title:       req.Title,
		Description: req.Description,
		Director:    req.Director,
		Actors:      req.Actors,
		Genre:       req.Genre,
		DurationMin: req.DurationMin,
		Poster:      req.Poster,
		Trailer:     req.Trailer,
		IsActive:    req.IsActive,
	}
	if req.ReleaseDate != nil {
		release, err := parseDate(*req.ReleaseDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid release_date"})
		}
		upd.ReleaseDate = &release
	}
	movie, err := h.Movies.Update(c.Request().Context(), id, upd)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, movie)
}

// Delete handles DELETE /v1/movies/:id. Blocked while schedules still
// reference the movie.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Movies.Delete(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// parseDate accepts a date-only or RFC3339 timestamp string.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

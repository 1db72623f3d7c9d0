package handler

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/movietix/booking-api/internal/model"
	"github.com/movietix/booking-api/internal/repository"
)

// CommentHandler exposes movie comments. Every mutation recomputes the
// movie's denormalized rating from the active nonzero ratings.
type CommentHandler struct {
	Comments *repository.CommentRepo
	Movies   *repository.MovieRepo
}

// NewCommentHandler constructs a CommentHandler.
func NewCommentHandler(co *repository.CommentRepo, m *repository.MovieRepo) *CommentHandler {
	if co == nil || m == nil {
		panic("nil repository passed to NewCommentHandler")
	}
	return &CommentHandler{Comments: co, Movies: m}
}

type commentReq struct {
	Content string `json:"content"`
	Rating  int    `json:"rating"` // 0 = no rating
}

// Create handles POST /v1/movies/:id/comments.
func (h *CommentHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	movieID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" || req.Rating < 0 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content and a rating between 0 and 5 are required"})
	}
	if _, err := h.Movies.ResolveMovie(c.Request().Context(), movieID); err != nil {
		return writeErr(c, err)
	}
	comment := &model.Comment{
		UserID:  userID,
		MovieID: movieID,
		Content: req.Content,
		Rating:  req.Rating,
	}
	if err := h.Comments.Create(c.Request().Context(), comment); err != nil {
		return writeErr(c, err)
	}
	h.refreshRating(c.Request().Context(), movieID)
	return c.JSON(http.StatusCreated, comment)
}

// ListByMovie handles GET /v1/movies/:id/comments.
func (h *CommentHandler) ListByMovie(c echo.Context) error {
	movieID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	comments, err := h.Comments.ListByMovie(c.Request().Context(), movieID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, comments)
}

// Update handles PATCH /v1/comments/:id. Authors may edit their own
// comments, admins anyone's.
func (h *CommentHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" || req.Rating < 0 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content and a rating between 0 and 5 are required"})
	}
	existing, err := h.Comments.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	if !isAdmin(c) && existing.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	comment, err := h.Comments.Update(c.Request().Context(), id, req.Content, req.Rating)
	if err != nil {
		return writeErr(c, err)
	}
	h.refreshRating(c.Request().Context(), existing.MovieID)
	return c.JSON(http.StatusOK, comment)
}

// Delete handles DELETE /v1/comments/:id. Soft delete; the comment
// drops out of listings and the rating aggregate.
func (h *CommentHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	existing, err := h.Comments.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	if !isAdmin(c) && existing.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Comments.Deactivate(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	h.refreshRating(c.Request().Context(), existing.MovieID)
	return c.NoContent(http.StatusNoContent)
}

// refreshRating recomputes the movie's aggregate rating. The comment
// write already succeeded, so a failure here is logged rather than
// surfaced; the aggregate heals on the next comment mutation.
func (h *CommentHandler) refreshRating(ctx context.Context, movieID uint64) {
	avg, err := h.Comments.AverageRating(ctx, movieID)
	if err == nil {
		err = h.Movies.UpdateRating(ctx, movieID, avg)
	}
	if err != nil {
		log.Printf("refresh rating for movie %d: %v", movieID, err)
	}
}

package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/movietix/booking-api/internal/model"
	"github.com/movietix/booking-api/internal/repository"
)

// BlogHandler exposes the editorial blog endpoints. Published posts
// are public; authoring is admin only.
type BlogHandler struct {
	Blogs *repository.BlogRepo
}

// NewBlogHandler constructs a BlogHandler.
func NewBlogHandler(b *repository.BlogRepo) *BlogHandler {
	if b == nil {
		panic("nil repository passed to NewBlogHandler")
	}
	return &BlogHandler{Blogs: b}
}

type blogReq struct {
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	CoverImage  *string `json:"cover_image"`
	IsPublished bool    `json:"is_published"`
}

// Create handles POST /v1/blogs.
func (h *BlogHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req blogReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.Content) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and content are required"})
	}
	blog := &model.Blog{
		AuthorID:    userID,
		Title:       req.Title,
		Content:     req.Content,
		CoverImage:  req.CoverImage,
		IsPublished: req.IsPublished,
	}
	if err := h.Blogs.Create(c.Request().Context(), blog); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, blog)
}

// List handles GET /v1/blogs. The public listing shows published
// posts only; admins see drafts too.
func (h *BlogHandler) List(c echo.Context) error {
	blogs, err := h.Blogs.List(c.Request().Context(), !isAdmin(c))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, blogs)
}

// Get handles GET /v1/blogs/:id. Drafts are only visible to admins.
func (h *BlogHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	blog, err := h.Blogs.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	if !blog.IsPublished && !isAdmin(c) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	return c.JSON(http.StatusOK, blog)
}

type blogUpdateReq struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	CoverImage  *string `json:"cover_image"`
	IsPublished *bool   `json:"is_published"`
}

// Update handles PATCH /v1/blogs/:id.
func (h *BlogHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req blogUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title cannot be empty"})
	}
	blog, err := h.Blogs.Update(c.Request().Context(), id, repository.BlogUpdate{
		Title:       req.Title,
		Content:     req.Content,
		CoverImage:  req.CoverImage,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, blog)
}

// Delete handles DELETE /v1/blogs/:id.
func (h *BlogHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Blogs.Delete(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

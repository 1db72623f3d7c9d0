package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/movietix/booking-api/internal/model"
	"github.com/movietix/booking-api/internal/repository"
)

// UserStore is the slice of the user repository the admin account
// endpoints need.
type UserStore interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	Update(ctx context.Context, id uint64, upd repository.UserUpdate) (model.User, error)
	SetRole(ctx context.Context, id uint64, role string) (model.User, error)
	Deactivate(ctx context.Context, id uint64) error
}

// SessionRevoker invalidates every refresh token a user holds.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// UserHandler exposes account administration. All routes are behind
// the ADMIN role.
type UserHandler struct {
	Users  UserStore
	Tokens SessionRevoker
}

func NewUserHandler(u UserStore, t SessionRevoker) *UserHandler {
	return &UserHandler{Users: u, Tokens: t}
}

type userUpdateReq struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	IsActive *bool   `json:"is_active"`
}
type userRoleReq struct {
	Role string `json:"role"`
}

// accountResp is the admin view of a user row. The password hash and
// reset token never leave the server.
type accountResp struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toAccountResp(u model.User) accountResp {
	return accountResp{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// List returns every account, newest first.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	out := make([]accountResp, 0, len(users))
	for _, u := range users {
		out = append(out, toAccountResp(u))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one account.
func (h *UserHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if err == sql.ErrNoRows {
		return writeErr(c, repository.ErrUserNotFound)
	}
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, toAccountResp(u))
}

// Update changes email, name or active flag. Reactivating a
// deactivated account goes through is_active here.
func (h *UserHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req userUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == nil && req.FullName == nil && req.IsActive == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	if req.Email != nil && !strings.Contains(*req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}

	u, err := h.Users.Update(c.Request().Context(), id, repository.UserUpdate{
		Email:    req.Email,
		FullName: req.FullName,
		IsActive: req.IsActive,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, toAccountResp(u))
}

// UpdateRole promotes or demotes an account. An admin cannot change
// their own role, so the system always keeps at least the caller as
// admin.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req userRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role != model.RoleAdmin && role != model.RoleUser {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be ADMIN or USER"})
	}
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	if callerID == id {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot change own role"})
	}

	u, err := h.Users.SetRole(c.Request().Context(), id, role)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, toAccountResp(u))
}

// Deactivate disables an account and revokes its refresh tokens so
// existing sessions die with it. The row stays for attribution.
func (h *UserHandler) Deactivate(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	if callerID == id {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot deactivate own account"})
	}

	ctx := c.Request().Context()
	if err := h.Users.Deactivate(ctx, id); err != nil {
		return writeErr(c, err)
	}
	if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

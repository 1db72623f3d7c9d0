package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by the auth middleware and read by handlers and the
// rate limiter.  user_id is always a uint64, role always a string.
const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// identity is the caller extracted from a verified access token.
type identity struct {
	userID uint64
	role   string
}

// JWTAuth validates the Bearer access token and stores the caller's id
// and role in the request context.  Handlers behind it read them via
// c.Get("user_id") (uint64) and c.Get("role") (string).
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			id, ok := parseIdentity(strings.TrimPrefix(auth, "Bearer "), secret)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(ctxUserID, id.userID)
			c.Set(ctxRole, id.role)
			return next(c)
		}
	}
}

// OptionalJWT populates user_id and role when a valid Bearer token is
// present but lets the request through either way.  Used on public
// routes whose responses widen for privileged callers, like blog
// listings that include drafts for admins.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				if id, ok := parseIdentity(strings.TrimPrefix(auth, "Bearer "), secret); ok {
					c.Set(ctxUserID, id.userID)
					c.Set(ctxRole, id.role)
				}
			}
			return next(c)
		}
	}
}

// parseIdentity verifies an HS256 token against the secret and pulls
// the sub and role claims out as concrete types.  A token without a
// numeric subject is rejected.
func parseIdentity(raw, secret string) (identity, bool) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return identity{}, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return identity{}, false
	}

	var id identity
	switch sub := claims["sub"].(type) {
	case float64:
		if sub < 0 {
			return identity{}, false
		}
		id.userID = uint64(sub)
	case uint64:
		id.userID = sub
	default:
		return identity{}, false
	}
	if role, ok := claims["role"].(string); ok {
		id.role = role
	}
	return id, id.userID != 0
}

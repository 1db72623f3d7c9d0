// Package router wires HTTP routes to their handlers. Public reads
// carry no middleware; authenticated groups run JWTAuth, and admin
// groups additionally require the ADMIN role.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/movietix/booking-api/internal/handler"
	"github.com/movietix/booking-api/internal/middleware"
	"github.com/movietix/booking-api/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Register,
// login, token exchange and the password reset flow live under
// /v1/auth and need no session; /v1/me and logout-all require a token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.POST("/auth/logout-all", a.LogoutAll)
}

// RegisterUsers registers account administration under /v1/users.
// Everything here is admin only.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, jwtSecret string) {
	g := e.Group("/v1/users",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("", u.List)
	g.GET("/:id", u.Get)
	g.PATCH("/:id", u.Update)
	g.PATCH("/:id/role", u.UpdateRole)
	g.DELETE("/:id", u.Deactivate)
}

// RegisterCatalog registers movie, cinema and schedule endpoints.
// Reads are public so guests can browse before signing up; mutations
// require the ADMIN role. The extra middleware (response cache, rate
// limiter) is applied to the public reads only.
func RegisterCatalog(e *echo.Echo, m *handler.MovieHandler, ci *handler.CinemaHandler, s *handler.ScheduleHandler, jwtSecret string, public ...echo.MiddlewareFunc) {
	g := e.Group("/v1", public...)
	g.GET("/movies", m.List)
	g.GET("/movies/:id", m.Get)
	g.GET("/cinemas", ci.List)
	g.GET("/cinemas/:id", ci.Get)
	g.GET("/schedules", s.List)
	g.GET("/schedules/:id", s.Get)

	admin := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	admin.POST("/movies", m.Create)
	admin.PATCH("/movies/:id", m.Update)
	admin.DELETE("/movies/:id", m.Delete)
	admin.POST("/cinemas", ci.Create)
	admin.PATCH("/cinemas/:id", ci.Update)
	admin.DELETE("/cinemas/:id", ci.Delete)
	admin.POST("/schedules", s.Create)
	admin.PATCH("/schedules/:id", s.Update)
	admin.POST("/schedules/:id/seats", s.AdjustSeats)
	admin.DELETE("/schedules/:id", s.Delete)
}

// RegisterBookings registers the ticket endpoints. Every route needs a
// session; record deletion is admin only.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1/bookings",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleUser),
	)
	g.POST("", b.Create)
	g.GET("", b.List)
	g.GET("/:id", b.Get)
	g.POST("/:id/cancel", b.Cancel)

	admin := e.Group("/v1/bookings",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	admin.DELETE("/:id", b.Remove)
}

// RegisterContent registers comment and blog endpoints. Listings are
// public; writing comments needs a session, and blog authoring is
// admin only.
func RegisterContent(e *echo.Echo, co *handler.CommentHandler, bl *handler.BlogHandler, jwtSecret string) {
	e.GET("/v1/movies/:id/comments", co.ListByMovie)
	// Drafts widen the blog responses for admins, so these public
	// routes read the token when one is sent.
	e.GET("/v1/blogs", bl.List, middleware.OptionalJWT(jwtSecret))
	e.GET("/v1/blogs/:id", bl.Get, middleware.OptionalJWT(jwtSecret))

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.POST("/movies/:id/comments", co.Create)
	auth.PATCH("/comments/:id", co.Update)
	auth.DELETE("/comments/:id", co.Delete)

	admin := e.Group("/v1/blogs",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	admin.POST("", bl.Create)
	admin.PATCH("/:id", bl.Update)
	admin.DELETE("/:id", bl.Delete)
}

package repository

import (
	"context"

	"github.com/movietix/booking-api/internal/model"
)

// Catalog bundles the movie and cinema lookups the schedule service
// needs for reference validation.
type Catalog struct {
	Movies  *MovieRepo
	Cinemas *CinemaRepo
}

// ResolveMovie returns the movie if it exists and is active.
func (c *Catalog) ResolveMovie(ctx context.Context, id uint64) (*model.Movie, error) {
	return c.Movies.ResolveMovie(ctx, id)
}

// ResolveCinema returns the cinema if it exists and is active.
func (c *Catalog) ResolveCinema(ctx context.Context, id uint64) (*model.Cinema, error) {
	return c.Cinemas.ResolveCinema(ctx, id)
}

package service

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors returned by the services.  Handlers translate them to
// HTTP statuses; other failures pass through as internal errors.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInsufficientSeats = errors.New("not enough seats available")
	ErrPastShowtime      = errors.New("showtime already started")
	ErrAlreadyCancelled  = errors.New("ticket already cancelled")
)

// SeatConflictError reports which requested seats are already taken so
// the client can pick different ones.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats already booked: %s", strings.Join(e.Seats, ", "))
}

// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// services and handlers to distinguish between different failure
// scenarios. For example, ErrForbidden indicates that the current user
// is not authorized to perform an operation on a resource owned by
// someone else, while ErrConflict signals that an operation cannot
// proceed due to existing dependent records (e.g. deleting a schedule
// that tickets still reference).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as attempting to
// delete a movie, cinema or schedule that still has dependent
// rows. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrSeatCountRange is returned when a seat counter adjustment would
// take a schedule's available_seats outside 0..total_seats. The
// bounded UPDATE enforcing this is the single mutation path for the
// counter; handlers should translate this into an HTTP 400 response.
var ErrSeatCountRange = errors.New("seat count out of range")

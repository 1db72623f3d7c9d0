package model

import "time"

// Movie is a catalog entry that schedules point to. Rating is the mean
// of active comment ratings greater than zero, recomputed whenever a
// comment is created, updated or removed.
type Movie struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Director    string    `json:"director"`
	Actors      []string  `json:"actors"` // JSON column
	Genre       string    `json:"genre"`
	DurationMin int       `json:"duration_min"`
	ReleaseDate time.Time `json:"release_date"`
	Poster      *string   `json:"poster"`  // nullable URL
	Trailer     *string   `json:"trailer"` // nullable URL
	Rating      float64   `json:"rating"`  // 0.0 - 5.0
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

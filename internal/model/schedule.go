package model

import "time"

// Schedule represents one bookable showing of a movie in a cinema room.
// The AvailableSeats counter is live capacity: it is decremented when a
// ticket is confirmed and incremented when a confirmed ticket is
// cancelled, and must always satisfy 0 <= AvailableSeats <= TotalSeats.
// The counter is only ever mutated through the schedule repository's
// AdjustAvailableSeats methods so that the bound is enforced in one place.
//
// Fields:
//  ID             – primary key of the schedule.
//  MovieID        – foreign key into the movies table.
//  CinemaID       – foreign key into the cinemas table.
//  Room           – label of the room inside the cinema (e.g. "Room 3").
//  ShowTime       – when the showing starts (UTC).
//  PriceCents     – ticket price per seat in minor units.
//  TotalSeats     – fixed seat capacity of the showing.
//  AvailableSeats – live count of unclaimed seats.
//  IsActive       – inactive schedules are hidden from listings.
type Schedule struct {
	ID             uint64    `json:"id"`
	MovieID        uint64    `json:"movie_id"`
	CinemaID       uint64    `json:"cinema_id"`
	Room           string    `json:"room"`
	ShowTime       time.Time `json:"show_time"` // UTC
	PriceCents     int64     `json:"price_cents"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ScheduleDetail is a Schedule joined with the names of the movie and
// cinema it points to, as returned by listing and lookup queries.
type ScheduleDetail struct {
	Schedule
	MovieTitle string `json:"movie_title"`
	CinemaName string `json:"cinema_name"`
}

// ScheduleUpdate carries an administrative partial update of a schedule.
// Nil fields are left unchanged. AvailableSeats is deliberately absent:
// the live counter may only move through AdjustAvailableSeats.
type ScheduleUpdate struct {
	MovieID    *uint64
	CinemaID   *uint64
	Room       *string
	ShowTime   *time.Time
	PriceCents *int64
	TotalSeats *int
	IsActive   *bool
}

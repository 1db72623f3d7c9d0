package model

import "time"

// Cinema represents a venue that hosts scheduled showings.
// Inactive cinemas are hidden from public listings and cannot be
// referenced by newly created schedules.  This struct corresponds
// to a row in the `cinemas` table.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – display name of the cinema.
//  Address    – street address.
//  City       – city the cinema is located in.
//  Phone      – optional contact number.
//  TotalRooms – number of rooms the venue has.
//  IsActive   – whether the cinema is visible and bookable.
type Cinema struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	Phone      *string   `json:"phone"` // nullable
	TotalRooms int       `json:"total_rooms"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

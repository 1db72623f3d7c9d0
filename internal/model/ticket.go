package model

import "time"

// TicketStatus enumerates the lifecycle states of a ticket. Tickets are
// created directly as CONFIRMED; the only transition the API performs is
// CONFIRMED -> CANCELLED. PENDING exists in the enum as the extension
// point for a future hold phase but no code path currently produces it.
type TicketStatus string

const (
	TicketPending   TicketStatus = "PENDING"
	TicketConfirmed TicketStatus = "CONFIRMED"
	TicketCancelled TicketStatus = "CANCELLED"
)

// Ticket represents one booking of specific seats against a schedule.
// Seats are opaque labels such as "A1"; within a ticket they are unique,
// and across all CONFIRMED tickets of the same schedule they are globally
// unique. TotalPriceCents is frozen at creation time (price per seat at
// that moment multiplied by quantity) and is never recomputed when the
// schedule's price changes later.
//
// Fields:
//  ID              – primary key of the ticket.
//  Reference       – UUID booking reference handed to the customer.
//  UserID          – owner of the booking.
//  ScheduleID      – the showing this ticket claims seats on.
//  Seats           – seat labels booked, stored as a JSON array column.
//  Quantity        – number of seats; always equals len(Seats).
//  TotalPriceCents – frozen total price in minor units.
//  Status          – PENDING, CONFIRMED or CANCELLED.
type Ticket struct {
	ID              uint64       `json:"id"`
	Reference       string       `json:"reference"`
	UserID          uint64       `json:"user_id"`
	ScheduleID      uint64       `json:"schedule_id"`
	Seats           []string     `json:"seats"` // JSON column
	Quantity        int          `json:"quantity"`
	TotalPriceCents int64        `json:"total_price_cents"`
	Status          TicketStatus `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// TicketDetail is a Ticket enriched with its schedule context so callers
// can show what was booked (and check cancellation eligibility) without
// extra lookups.
type TicketDetail struct {
	Ticket
	Room       string    `json:"room"`
	ShowTime   time.Time `json:"show_time"`
	MovieTitle string    `json:"movie_title"`
	CinemaName string    `json:"cinema_name"`
	UserEmail  string    `json:"user_email"`
}

// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketEvent is published when a ticket is confirmed or cancelled.
// It carries enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type TicketEvent struct {
	TicketID        uint64   `json:"ticket_id"`
	Reference       string   `json:"reference"`
	UserID          uint64   `json:"user_id"`
	ScheduleID      uint64   `json:"schedule_id"`
	Seats           []string `json:"seats"`
	Quantity        int      `json:"quantity"`
	TotalPriceCents int64    `json:"total_price_cents"`
	OccurredAt      string   `json:"occurred_at"`
}

// Queue names.  One durable queue per ticket lifecycle transition.
const (
	TicketConfirmedQueue = "ticket.confirmed"
	TicketCancelledQueue = "ticket.cancelled"
)

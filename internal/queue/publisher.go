package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/movietix/booking-api/internal/model"
)

// Publisher publishes ticket lifecycle events to RabbitMQ.  It dials
// per publish and never panics; any error is logged and returned so
// the caller can choose to ignore it.  Messages are persistent.
type Publisher struct {
	url string
}

// NewPublisher constructs a Publisher for the given AMQP URL.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// TicketConfirmed publishes the ticket to the ticket.confirmed queue.
func (p *Publisher) TicketConfirmed(t *model.Ticket) error {
	return p.publish(TicketConfirmedQueue, t)
}

// TicketCancelled publishes the ticket to the ticket.cancelled queue.
func (p *Publisher) TicketCancelled(t *model.Ticket) error {
	return p.publish(TicketCancelledQueue, t)
}

func (p *Publisher) publish(queueName string, t *model.Ticket) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare.  Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(TicketEvent{
		TicketID:        t.ID,
		Reference:       t.Reference,
		UserID:          t.UserID,
		ScheduleID:      t.ScheduleID,
		Seats:           t.Seats,
		Quantity:        t.Quantity,
		TotalPriceCents: t.TotalPriceCents,
		OccurredAt:      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(context.Background(), "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

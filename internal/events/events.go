// Package events publishes domain events after a mutation commits. Delivery
// is best effort: publishers never roll back the write that produced them.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Topic string

const (
	TopicBookingCreated       Topic = "booking.created"
	TopicBookingStatusChanged Topic = "booking.status_changed"
	TopicMachineStatusChanged Topic = "machine.status_changed"
	TopicCertificationGranted Topic = "certification.granted"
	TopicUserActiveChanged    Topic = "user.active_changed"
	TopicQuizAttempted        Topic = "quiz.attempted"
)

type Event struct {
	ID         string    `json:"id"`
	Topic      Topic     `json:"topic"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data,omitempty"`
}

func New(topic Topic, actor string, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Topic:      topic,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Package notify delivers interview events to the job board's notification pipeline.
// Delivery is fire-and-forget: a failed or dropped event never affects the state
// transition that produced it.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventProposed  EventType = "interview.proposed"
	EventConfirmed EventType = "interview.confirmed"
	EventCancelled EventType = "interview.cancelled"
	EventCompleted EventType = "interview.completed"
	EventNoShow    EventType = "interview.no_show"
	EventUpdated   EventType = "interview.updated"
)

type Event struct {
	Type          EventType `json:"event_type"`
	InterviewID   uuid.UUID `json:"interview_id"`
	Recipient     string    `json:"recipient"`
	ApplicationID string    `json:"application_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Notifier accepts events without blocking the caller.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// Publisher performs the actual delivery of a single event.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

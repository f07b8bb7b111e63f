// Package notify delivers payout group events to members and operators.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// EventType names what happened to a group.
type EventType string

const (
	EventContributionRecorded EventType = "contribution.recorded"
	EventGroupReady           EventType = "group.ready"
	EventPayoutProcessed      EventType = "payout.processed"
	EventCycleSkipped         EventType = "cycle.skipped"
	EventGroupCompleted       EventType = "group.completed"
	EventContributionReminder EventType = "contribution.reminder"
)

// Event is the message handed to a Notifier. Fields that do not apply to an
// event type are left zero.
type Event struct {
	Type      EventType `json:"type"`
	GroupID   string    `json:"group_id"`
	GroupName string    `json:"group_name,omitempty"`
	Cycle     int       `json:"cycle"`

	// MemberID is the contributor for contribution events.
	MemberID string `json:"member_id,omitempty"`

	// RecipientID is the member paid, or due to be paid, this cycle.
	RecipientID string `json:"recipient_id,omitempty"`

	Amount int64 `json:"amount,omitempty"`
	Forced bool  `json:"forced,omitempty"`

	// Unpaid lists members without a paid contribution (reminders).
	Unpaid []string `json:"unpaid,omitempty"`

	DueDate    time.Time `json:"due_date,omitzero"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ToJSON serializes the event for transport.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier receives events after the engine has committed the change that
// produced them.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, event Event) error

func (f NotifierFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log writes events to a structured logger.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(ctx context.Context, event Event) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Group event",
		"type", event.Type,
		"group_id", event.GroupID,
		"cycle", event.Cycle,
		"member_id", event.MemberID,
		"recipient_id", event.RecipientID,
		"amount", event.Amount,
		"forced", event.Forced,
		"unpaid", event.Unpaid,
	)
	return nil
}

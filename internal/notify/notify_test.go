package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	err      error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func TestAMQPNotify(t *testing.T) {
	ch := &fakeChannel{}
	n := &AMQP{channel: ch, exchange: "vikoba", timeout: time.Second}

	event := Event{
		Type:        EventPayoutProcessed,
		GroupID:     "g1",
		Cycle:       2,
		RecipientID: "jane",
		Amount:      250000,
		OccurredAt:  time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := n.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if ch.exchange != "vikoba" || ch.key != string(EventPayoutProcessed) {
		t.Errorf("published to %s/%s", ch.exchange, ch.key)
	}
	if ch.msg.DeliveryMode != amqp091.Persistent {
		t.Error("expected persistent delivery")
	}

	var decoded Event
	if err := json.Unmarshal(ch.msg.Body, &decoded); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if decoded.RecipientID != "jane" || decoded.Cycle != 2 || decoded.Amount != 250000 {
		t.Errorf("unexpected body: %+v", decoded)
	}
}

func TestAMQPNotifyError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	n := &AMQP{channel: ch, exchange: "vikoba", timeout: time.Second}

	if err := n.Notify(context.Background(), Event{Type: EventCycleSkipped}); err == nil {
		t.Error("expected publish error")
	}
}

func TestMulti(t *testing.T) {
	var calls int
	ok := NotifierFunc(func(context.Context, Event) error { calls++; return nil })
	bad := NotifierFunc(func(context.Context, Event) error { calls++; return errors.New("boom") })

	err := Multi{ok, bad, ok}.Notify(context.Background(), Event{Type: EventGroupReady})
	if err == nil {
		t.Error("expected joined error")
	}
	if calls != 3 {
		t.Errorf("expected every notifier to be called, got %d", calls)
	}
}

func TestEventJSONOmitsZeroDueDate(t *testing.T) {
	body, err := Event{Type: EventCycleSkipped, GroupID: "g"}.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, ok := raw["due_date"]; ok {
		t.Errorf("expected due_date to be omitted, got %s", body)
	}
}

package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"polity/internal/shared/events"
)

type fakeSource struct {
	pending   []Message
	published map[string]time.Time
}

func (f *fakeSource) ListPendingOutbox(_ context.Context, limit int) ([]Message, error) {
	if limit > len(f.pending) {
		limit = len(f.pending)
	}
	batch := make([]Message, limit)
	copy(batch, f.pending[:limit])
	return batch, nil
}

func (f *fakeSource) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	if f.published == nil {
		f.published = map[string]time.Time{}
	}
	f.published[outboxID] = publishedAt
	remaining := f.pending[:0]
	for _, row := range f.pending {
		if row.OutboxID != outboxID {
			remaining = append(remaining, row)
		}
	}
	f.pending = remaining
	return nil
}

type capturingPublisher struct {
	topics []string
	events []events.Envelope
	err    error
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, event events.Envelope) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func outboxRow(t *testing.T, outboxID, eventType, partitionKey string) Message {
	t.Helper()
	occurredAt := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)
	envelope, err := events.New(outboxID, eventType, "membership", "account", partitionKey, occurredAt, map[string]any{
		"account": partitionKey,
	})
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return Message{
		OutboxID:     outboxID,
		EventType:    eventType,
		PartitionKey: partitionKey,
		Payload:      payload,
		CreatedAt:    occurredAt,
	}
}

func TestRunOncePublishesAndMarksRows(t *testing.T) {
	source := &fakeSource{pending: []Message{
		outboxRow(t, "out-1", "membership.member_added", "alice"),
		outboxRow(t, "out-2", "membership.compliance_updated", "alice"),
	}}
	publisher := &capturingPublisher{}

	relay := Relay{Name: "membership-outbox", Outbox: source, Publisher: publisher}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(publisher.events) != 2 {
		t.Fatalf("published %d events, want 2", len(publisher.events))
	}
	if publisher.topics[0] != "membership.member_added" {
		t.Fatalf("topic = %s, want membership.member_added", publisher.topics[0])
	}
	if len(source.pending) != 0 {
		t.Fatalf("%d rows still pending, want 0", len(source.pending))
	}
	if _, ok := source.published["out-2"]; !ok {
		t.Fatalf("out-2 was not marked published")
	}
}

func TestRunOnceStopsOnPublishFailure(t *testing.T) {
	source := &fakeSource{pending: []Message{
		outboxRow(t, "out-1", "membership.member_added", "alice"),
	}}
	publisher := &capturingPublisher{err: errors.New("broker down")}

	relay := Relay{Name: "membership-outbox", Outbox: source, Publisher: publisher}
	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatal("expected publish error")
	}

	// The row stays pending so the next cycle retries it.
	if len(source.pending) != 1 {
		t.Fatalf("%d rows pending, want 1", len(source.pending))
	}
	if len(source.published) != 0 {
		t.Fatalf("rows were marked published despite failure")
	}
}

func TestRunOnceHonorsBatchSize(t *testing.T) {
	source := &fakeSource{pending: []Message{
		outboxRow(t, "out-1", "membership.member_added", "alice"),
		outboxRow(t, "out-2", "membership.member_added", "bob"),
		outboxRow(t, "out-3", "membership.member_added", "carol"),
	}}
	publisher := &capturingPublisher{}

	relay := Relay{Name: "membership-outbox", Outbox: source, Publisher: publisher, BatchSize: 2}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(publisher.events) != 2 {
		t.Fatalf("published %d events, want 2", len(publisher.events))
	}
	if len(source.pending) != 1 {
		t.Fatalf("%d rows pending, want 1", len(source.pending))
	}
}

package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"
)

type stubReplayStore struct {
	events map[int64]*Event
	failed []*Event
	sent   []int64
	parked []int64
}

func (s *stubReplayStore) GetEventByID(ctx context.Context, eventID int64) (*Event, error) {
	e, ok := s.events[eventID]
	if !ok {
		return nil, fmt.Errorf("event not found: %d", eventID)
	}
	return e, nil
}

func (s *stubReplayStore) GetFailedEvents(ctx context.Context, limit int) ([]*Event, error) {
	if limit < len(s.failed) {
		return s.failed[:limit], nil
	}
	return s.failed, nil
}

func (s *stubReplayStore) MarkAsSent(ctx context.Context, eventID int64) error {
	s.sent = append(s.sent, eventID)
	return nil
}

func (s *stubReplayStore) MarkAsFailed(ctx context.Context, eventID int64, maxRetries int) error {
	s.parked = append(s.parked, eventID)
	return nil
}

type stubPublisher struct {
	published []string
	failKeys  map[string]bool
}

func (p *stubPublisher) PublishWithContext(ctx context.Context, routingKey string, payload any) error {
	if p.failKeys[routingKey] {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, routingKey)
	return nil
}

func parkedEvent(id int64, routingKey string) *Event {
	return &Event{
		ID:         id,
		RoutingKey: routingKey,
		Payload:    json.RawMessage(`{"board_id":1}`),
		Status:     "failed",
	}
}

func TestReplayEventMarksSent(t *testing.T) {
	e := parkedEvent(7, "board.created")
	store := &stubReplayStore{events: map[int64]*Event{7: e}}
	pub := &stubPublisher{}
	svc := NewReplayService(store, pub, zap.NewNop())

	if err := svc.ReplayEvent(context.Background(), 7); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(pub.published) != 1 || pub.published[0] != "board.created" {
		t.Fatalf("published = %v", pub.published)
	}
	if len(store.sent) != 1 || store.sent[0] != 7 {
		t.Fatalf("sent = %v", store.sent)
	}
}

func TestReplayEventPublishFailureParksEvent(t *testing.T) {
	e := parkedEvent(7, "board.created")
	store := &stubReplayStore{events: map[int64]*Event{7: e}}
	pub := &stubPublisher{failKeys: map[string]bool{"board.created": true}}
	svc := NewReplayService(store, pub, zap.NewNop())

	if err := svc.ReplayEvent(context.Background(), 7); err == nil {
		t.Fatal("expected error")
	}
	if len(store.sent) != 0 {
		t.Fatalf("sent = %v, want none", store.sent)
	}
	if len(store.parked) != 1 || store.parked[0] != 7 {
		t.Fatalf("parked = %v", store.parked)
	}
}

func TestReplayFailedEventsCountsSuccesses(t *testing.T) {
	a := parkedEvent(1, "board.created")
	b := parkedEvent(2, "goal.archived")
	c := parkedEvent(3, "board.deleted")
	store := &stubReplayStore{
		events: map[int64]*Event{1: a, 2: b, 3: c},
		failed: []*Event{a, b, c},
	}
	pub := &stubPublisher{failKeys: map[string]bool{"goal.archived": true}}
	svc := NewReplayService(store, pub, zap.NewNop())

	count, err := svc.ReplayFailedEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("replay failed events: %v", err)
	}
	if count != 2 {
		t.Fatalf("success count = %d, want 2", count)
	}
	if len(store.parked) != 1 || store.parked[0] != 2 {
		t.Fatalf("parked = %v", store.parked)
	}
}

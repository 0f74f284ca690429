package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	kafka "github.com/segmentio/kafka-go"

	"canvascore/pkg/domain"
)

type captureWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishKeysByEventID(t *testing.T) {
	w := &captureWriter{}
	p := NewPublisherWithWriter(w)
	ev := domain.Event{
		ID:        "event-100-abc",
		Kind:      domain.KindEvent,
		Type:      domain.EventTaskCompleted,
		MemberID:  "member-1",
		Source:    domain.EventSource{EntityID: "task-1", EntityKind: domain.KindTask},
		Approved:  true,
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "event-100-abc" {
		t.Fatalf("unexpected key %q", w.msgs[0].Key)
	}
	var decoded domain.Event
	if err := json.Unmarshal(w.msgs[0].Value, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.Type != domain.EventTaskCompleted || !decoded.Approved {
		t.Fatalf("unexpected payload %+v", decoded)
	}
}

func TestPublishRejectsEmptyID(t *testing.T) {
	w := &captureWriter{}
	p := NewPublisherWithWriter(w)
	if err := p.Publish(context.Background(), domain.Event{}); err == nil {
		t.Fatalf("expected error for empty id")
	}
	if len(w.msgs) != 0 {
		t.Fatalf("no message should be written")
	}
}

func TestPublishSurfacesWriteError(t *testing.T) {
	w := &captureWriter{err: errors.New("broker down")}
	p := NewPublisherWithWriter(w)
	err := p.Publish(context.Background(), domain.Event{ID: "event-1"})
	if err == nil || !errors.Is(err, w.err) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
}

func TestCloseDelegates(t *testing.T) {
	w := &captureWriter{}
	p := NewPublisherWithWriter(w)
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !w.closed {
		t.Fatalf("writer not closed")
	}
}

package core

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"canvascore/pkg/domain"
)

func TestNewEventSourcePrecedence(t *testing.T) {
	cases := []struct {
		name     string
		payload  EventPayload
		wantID   string
		wantKind EntityKind
	}{
		{
			name:     "entity id wins over everything",
			payload:  EventPayload{EntityID: "e-1", EntityKind: domain.KindScreen, ElementID: "el-1", TaskID: "t-1", ComponentID: "c-1"},
			wantID:   "e-1",
			wantKind: domain.KindScreen,
		},
		{
			name:     "element id second",
			payload:  EventPayload{ElementID: "el-1", TaskID: "t-1", ComponentID: "c-1"},
			wantID:   "el-1",
			wantKind: domain.KindElement,
		},
		{
			name:     "task id third",
			payload:  EventPayload{TaskID: "t-1", ComponentID: "c-1"},
			wantID:   "t-1",
			wantKind: domain.KindTask,
		},
		{
			name:     "component id fourth",
			payload:  EventPayload{ComponentID: "c-1"},
			wantID:   "c-1",
			wantKind: domain.KindComponent,
		},
		{
			name:    "empty payload falls back to unknown",
			payload: EventPayload{},
			wantID:  "unknown",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event := NewEvent(domain.EventTaskCreated, "member-1", tc.payload)
			if event.Source.EntityID != tc.wantID {
				t.Fatalf("source id %q, want %q", event.Source.EntityID, tc.wantID)
			}
			if event.Source.EntityKind != tc.wantKind {
				t.Fatalf("source kind %q, want %q", event.Source.EntityKind, tc.wantKind)
			}
		})
	}
}

func TestNewEventEnvelopeShape(t *testing.T) {
	event := NewEvent(domain.EventTaskCreated, "member-1", EventPayload{TaskID: "t1"})
	if !event.Approved {
		t.Fatalf("approved must be true")
	}
	if event.Kind != domain.KindEvent {
		t.Fatalf("kind %q", event.Kind)
	}
	if event.MemberID != "member-1" {
		t.Fatalf("member %q", event.MemberID)
	}
	if event.Timestamp.Location() != time.UTC {
		t.Fatalf("timestamp not UTC: %v", event.Timestamp)
	}
	if time.Since(event.Timestamp) > time.Minute {
		t.Fatalf("stale timestamp %v", event.Timestamp)
	}
}

func TestNewEventAtIDFormat(t *testing.T) {
	now := time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)
	event := NewEventAt(domain.EventScreenCreated, "m", EventPayload{}, now)
	if !strings.HasPrefix(event.ID, "event-") {
		t.Fatalf("id %q missing prefix", event.ID)
	}
	parts := strings.Split(strings.TrimPrefix(event.ID, "event-"), "-")
	if len(parts) != 2 {
		t.Fatalf("id %q not time-suffix form", event.ID)
	}
	millis, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		t.Fatalf("id time component: %v", err)
	}
	if millis != now.UnixMilli() {
		t.Fatalf("id time %d, want %d", millis, now.UnixMilli())
	}
	if len(parts[1]) != 8 {
		t.Fatalf("random suffix %q, want 8 hex chars", parts[1])
	}
	if !event.Timestamp.Equal(now) {
		t.Fatalf("timestamp %v, want %v", event.Timestamp, now)
	}
}

func TestNewEventIDsDiffer(t *testing.T) {
	now := time.Now().UTC()
	a := NewEventAt(domain.EventChatMessage, "m", EventPayload{}, now)
	b := NewEventAt(domain.EventChatMessage, "m", EventPayload{}, now)
	if a.ID == b.ID {
		t.Fatalf("ids collided: %q", a.ID)
	}
}

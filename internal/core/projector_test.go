package core

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"canvascore/pkg/domain"
)

func projectorEvent(eventType EventType, payload EventPayload) Event {
	return NewEventAt(eventType, "member-1", payload, time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC))
}

func TestActivityIDDerivedFromEventID(t *testing.T) {
	p := NewProjector()
	event := projectorEvent(domain.EventTaskCreated, EventPayload{TaskID: "t1", Title: "Ship it"})
	activity := p.Activity(event)
	if activity.ID != "activity-"+event.ID {
		t.Fatalf("activity id %q", activity.ID)
	}
	if activity.EventID != event.ID {
		t.Fatalf("event id %q", activity.EventID)
	}
	if activity.Kind != domain.KindActivity {
		t.Fatalf("kind %q", activity.Kind)
	}
	if !activity.CreatedAt.Equal(event.Timestamp) {
		t.Fatalf("created at %v", activity.CreatedAt)
	}
}

func TestActivityProjectionIsIdempotent(t *testing.T) {
	p := NewProjector()
	event := projectorEvent(domain.EventCommentAdded, EventPayload{Comment: "looks good"})
	first := p.Activity(event)
	second := p.Activity(event)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("projections differ:\n%+v\n%+v", first, second)
	}
}

func TestActivityDefaultFallback(t *testing.T) {
	p := NewProjector()
	event := projectorEvent(EventType("plugin.custom"), EventPayload{EntityID: "x-1", EntityKind: domain.KindScreen})
	activity := p.Activity(event)
	if activity.Title != "plugin.custom" {
		t.Fatalf("title %q", activity.Title)
	}
	if !strings.Contains(activity.Text, "x-1") {
		t.Fatalf("text %q should mention source entity", activity.Text)
	}
}

func TestCommentTruncation(t *testing.T) {
	p := NewProjector()
	cases := []struct {
		name    string
		comment string
		want    string
	}{
		{"short passes through", "fine as is", "fine as is"},
		{"exactly fifty unchanged", strings.Repeat("a", 50), strings.Repeat("a", 50)},
		{"fifty-one truncated", strings.Repeat("a", 51), strings.Repeat("a", 50) + "..."},
		{"multibyte counts runes", strings.Repeat("ä", 60), strings.Repeat("ä", 50) + "..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event := projectorEvent(domain.EventCommentAdded, EventPayload{Comment: tc.comment})
			activity := p.Activity(event)
			if activity.Text != tc.want {
				t.Fatalf("text %q, want %q", activity.Text, tc.want)
			}
		})
	}
}

func TestNotificationUnmappedTypesDropped(t *testing.T) {
	p := NewProjector()
	unmapped := []EventType{
		domain.EventScreenCreated,
		domain.EventElementCreated,
		domain.EventVariableUpdated,
		domain.EventTaskCreated,
		domain.EventCommentResolved,
		domain.EventChatMessage,
		EventType("plugin.custom"),
	}
	for _, eventType := range unmapped {
		if _, ok := p.Notification(projectorEvent(eventType, EventPayload{})); ok {
			t.Fatalf("type %s should not produce a notification", eventType)
		}
		if p.HasNotification(eventType) {
			t.Fatalf("HasNotification(%s) should be false", eventType)
		}
	}
}

func TestNotificationMappings(t *testing.T) {
	p := NewProjector()
	cases := []struct {
		eventType EventType
		payload   EventPayload
		wantType  domain.NotificationType
		wantText  string
	}{
		{domain.EventTaskCompleted, EventPayload{Title: "Review"}, domain.NotificationSuccess, `Task "Review" completed`},
		{domain.EventCommentAdded, EventPayload{Comment: "nice"}, domain.NotificationInfo, "New comment: nice"},
		{domain.EventMemberJoined, EventPayload{Name: "Sam"}, domain.NotificationInfo, "Sam joined the workspace"},
		{domain.EventComponentPublished, EventPayload{Name: "Button"}, domain.NotificationSuccess, `Component "Button" published`},
		{domain.EventElementDeleted, EventPayload{Name: "Hero"}, domain.NotificationWarning, `Element "Hero" was removed`},
	}
	for _, tc := range cases {
		t.Run(string(tc.eventType), func(t *testing.T) {
			event := projectorEvent(tc.eventType, tc.payload)
			n, ok := p.Notification(event)
			if !ok {
				t.Fatalf("expected notification")
			}
			if n.Type != tc.wantType {
				t.Fatalf("type %q, want %q", n.Type, tc.wantType)
			}
			if n.Text != tc.wantText {
				t.Fatalf("text %q, want %q", n.Text, tc.wantText)
			}
			if n.ID != "notification-"+event.ID || n.EventID != event.ID {
				t.Fatalf("ids %q / %q", n.ID, n.EventID)
			}
			if n.MemberID != event.MemberID {
				t.Fatalf("member %q", n.MemberID)
			}
		})
	}
}

func TestNotificationLongCommentTruncated(t *testing.T) {
	p := NewProjector()
	event := projectorEvent(domain.EventCommentAdded, EventPayload{Comment: strings.Repeat("x", 80)})
	n, ok := p.Notification(event)
	if !ok {
		t.Fatalf("expected notification")
	}
	want := "New comment: " + strings.Repeat("x", 50) + "..."
	if n.Text != want {
		t.Fatalf("text %q, want %q", n.Text, want)
	}
}

func TestProjectionDoesNotMutateEvent(t *testing.T) {
	p := NewProjector()
	event := projectorEvent(domain.EventCommentAdded, EventPayload{Comment: strings.Repeat("y", 70)})
	before := event
	_ = p.Activity(event)
	_, _ = p.Notification(event)
	if !reflect.DeepEqual(before, event) {
		t.Fatalf("event mutated by projection")
	}
}

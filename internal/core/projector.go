package core

import (
	"fmt"

	"canvascore/pkg/domain"
)

// commentPreviewLimit bounds display text derived from free-form input.
const commentPreviewLimit = 50

// truncate shortens s to limit runes and appends an ellipsis marker. Input
// at or under the limit passes through unchanged.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// ActivityMapper projects an event into its activity record.
type ActivityMapper func(Event) Activity

// NotificationMapper projects an event into its notification record.
type NotificationMapper func(Event) Notification

// activityBase fills the fields every activity projection shares. The id is
// a deterministic function of the event id, so re-projecting the same event
// is idempotent.
func activityBase(event Event) Activity {
	return Activity{
		ID:        "activity-" + event.ID,
		Kind:      domain.KindActivity,
		EventID:   event.ID,
		Source:    event.Source,
		CreatedAt: event.Timestamp,
		UpdatedAt: event.Timestamp,
	}
}

func notificationBase(event Event) Notification {
	return Notification{
		ID:        "notification-" + event.ID,
		Kind:      domain.KindNotification,
		EventID:   event.ID,
		MemberID:  event.MemberID,
		Source:    event.Source,
		CreatedAt: event.Timestamp,
	}
}

// defaultActivityMapper produces a generic record for event types without a
// dedicated mapper. There is deliberately no notification counterpart:
// unmapped event types yield no notification at all.
func defaultActivityMapper(event Event) Activity {
	activity := activityBase(event)
	activity.Title = string(event.Type)
	activity.Text = fmt.Sprintf("%s on %s %s", event.Type, event.Source.EntityKind, event.Source.EntityID)
	return activity
}

func screenCreatedActivity(event Event) Activity {
	activity := activityBase(event)
	activity.Title = "Screen created"
	activity.Text = fmt.Sprintf("created screen %q", event.Payload.Name)
	return activity
}

func elementCreatedActivity(event Event) Activity {
	activity := activityBase(event)
	activity.Title = "Element added"
	activity.Text = fmt.Sprintf("added element %q", event.Payload.Name)
	return activity
}

func elementDeletedActivity(event Event) Activity {
	activity := activityBase(event)
	activity.Title = "Element removed"
	activity.Text = fmt.Sprintf("removed element %q", event.Payload.Name)
	return activity
}

func componentPublishedActivity(event Event) Activity {
	activity := activityBase(event)
	activity.Title = "Component published"
	activity.Text = fmt.Sprintf("published component %q", event.Payload.Name)
	if event.Payload.Tag != "" {
		activity.Text += fmt.Sprintf(" with tag %q", event.Payload.Tag)
	}
	return activity
}

func variableUpdatedActivity(event Event) Activity {
	activity := activityBase(event)
	activity.Title = "Variable updated"
	activity.Text = fmt.Sprintf("updated variable %q", event.Payload.Name)
	return activity
}

func taskCreatedActivity(event Event) Activity {
	activity := activityBase(event)
	activity.Title = "Task created"
	activity.Text = fmt.Sprintf("created task %q", event.Payload.Title)
	return activity
}

func taskCompletedActivity(event Event) Activity {
	activity := activityBase(event)
	activity.Title = "Task completed"
	activity.Text = fmt.Sprintf("completed task %q", event.Payload.Title)
	return activity
}

func commentAddedActivity(event Event) Activity {
	activity := activityBase(event)
	activity.Title = "Comment added"
	activity.Text = truncate(event.Payload.Comment, commentPreviewLimit)
	return activity
}

func commentResolvedActivity(event Event) Activity {
	activity := activityBase(event)
	activity.Title = "Comment resolved"
	activity.Text = truncate(event.Payload.Comment, commentPreviewLimit)
	return activity
}

func memberJoinedActivity(event Event) Activity {
	activity := activityBase(event)
	activity.Title = "Member joined"
	activity.Text = fmt.Sprintf("%s joined the workspace", event.Payload.Name)
	return activity
}

func chatMessageActivity(event Event) Activity {
	activity := activityBase(event)
	activity.Title = "New message"
	activity.Text = truncate(event.Payload.Message, commentPreviewLimit)
	return activity
}

func taskCompletedNotification(event Event) Notification {
	n := notificationBase(event)
	n.Type = NotificationSuccess
	n.Text = fmt.Sprintf("Task %q completed", event.Payload.Title)
	return n
}

func commentAddedNotification(event Event) Notification {
	n := notificationBase(event)
	n.Type = NotificationInfo
	n.Text = "New comment: " + truncate(event.Payload.Comment, commentPreviewLimit)
	return n
}

func memberJoinedNotification(event Event) Notification {
	n := notificationBase(event)
	n.Type = NotificationInfo
	n.Text = fmt.Sprintf("%s joined the workspace", event.Payload.Name)
	return n
}

func componentPublishedNotification(event Event) Notification {
	n := notificationBase(event)
	n.Type = NotificationSuccess
	n.Text = fmt.Sprintf("Component %q published", event.Payload.Name)
	return n
}

func elementDeletedNotification(event Event) Notification {
	n := notificationBase(event)
	n.Type = NotificationWarning
	n.Text = fmt.Sprintf("Element %q was removed", event.Payload.Name)
	return n
}

// Projector holds the per-event-type dispatch tables. An event type can have
// an activity mapper, a notification mapper, both, or neither. The tables
// are assembled at construction and read-only afterwards.
type Projector struct {
	activities    map[EventType]ActivityMapper
	notifications map[EventType]NotificationMapper
}

// NewProjector builds the default dispatch tables.
func NewProjector() *Projector {
	return &Projector{
		activities: map[EventType]ActivityMapper{
			domain.EventScreenCreated:      screenCreatedActivity,
			domain.EventElementCreated:     elementCreatedActivity,
			domain.EventElementDeleted:     elementDeletedActivity,
			domain.EventComponentPublished: componentPublishedActivity,
			domain.EventVariableUpdated:    variableUpdatedActivity,
			domain.EventTaskCreated:        taskCreatedActivity,
			domain.EventTaskCompleted:      taskCompletedActivity,
			domain.EventCommentAdded:       commentAddedActivity,
			domain.EventCommentResolved:    commentResolvedActivity,
			domain.EventMemberJoined:       memberJoinedActivity,
			domain.EventChatMessage:        chatMessageActivity,
		},
		notifications: map[EventType]NotificationMapper{
			domain.EventTaskCompleted:      taskCompletedNotification,
			domain.EventCommentAdded:       commentAddedNotification,
			domain.EventMemberJoined:       memberJoinedNotification,
			domain.EventComponentPublished: componentPublishedNotification,
			domain.EventElementDeleted:     elementDeletedNotification,
		},
	}
}

// Activity projects the event through its type's mapper, falling back to
// the default mapper for unmapped types.
func (p *Projector) Activity(event Event) Activity {
	if mapper, ok := p.activities[event.Type]; ok {
		return mapper(event)
	}
	return defaultActivityMapper(event)
}

// Notification projects the event through its type's mapper. Unmapped event
// types return ok=false and produce nothing; there is no default.
func (p *Projector) Notification(event Event) (Notification, bool) {
	mapper, ok := p.notifications[event.Type]
	if !ok {
		return Notification{}, false
	}
	return mapper(event), true
}

// HasNotification reports whether a notification mapper is registered for
// the event type.
func (p *Projector) HasNotification(eventType EventType) bool {
	_, ok := p.notifications[eventType]
	return ok
}

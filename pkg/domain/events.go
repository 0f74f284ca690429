package domain

import "time"

// EventType identifies the business occurrence an event records.
type EventType string

// Known event types. The projection tables key on these values; an unknown
// type still produces a valid envelope and falls back to the default
// activity mapper.
const (
	EventScreenCreated      EventType = "screen.created"
	EventElementCreated     EventType = "element.created"
	EventElementDeleted     EventType = "element.deleted"
	EventComponentPublished EventType = "component.published"
	EventVariableUpdated    EventType = "variable.updated"
	EventTaskCreated        EventType = "task.created"
	EventTaskCompleted      EventType = "task.completed"
	EventCommentAdded       EventType = "comment.added"
	EventCommentResolved    EventType = "comment.resolved"
	EventMemberJoined       EventType = "member.joined"
	EventChatMessage        EventType = "chat.message"
)

// EventSource identifies the entity an event originated from.
type EventSource struct {
	EntityID   string     `json:"entity_id"`
	EntityKind EntityKind `json:"entity_kind"`
}

// EventPayload carries the raw business fields attached to an event. Which
// fields are populated depends on the event type; mappers read the ones they
// need and ignore the rest.
type EventPayload struct {
	EntityID    string         `json:"entity_id,omitempty"`
	ElementID   string         `json:"element_id,omitempty"`
	TaskID      string         `json:"task_id,omitempty"`
	ComponentID string         `json:"component_id,omitempty"`
	ScreenID    string         `json:"screen_id,omitempty"`
	EntityKind  EntityKind     `json:"entity_kind,omitempty"`
	Name        string         `json:"name,omitempty"`
	Title       string         `json:"title,omitempty"`
	Comment     string         `json:"comment,omitempty"`
	Message     string         `json:"message,omitempty"`
	Tag         string         `json:"tag,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// Event is a normalized, timestamped record of a business occurrence.
// Events are immutable once created and append-only in persistence; the
// envelope id is best-effort unique (time component plus random suffix),
// not a strictly monotonic or collision-free identifier.
type Event struct {
	ID        string       `json:"id"`
	Kind      EntityKind   `json:"kind"`
	Type      EventType    `json:"type"`
	MemberID  string       `json:"member_id"`
	Source    EventSource  `json:"source"`
	Payload   EventPayload `json:"payload"`
	Approved  bool         `json:"approved"`
	Timestamp time.Time    `json:"timestamp"`
}

// EntityID implements Entity.
func (e Event) EntityID() string { return e.ID }

// EntityKind implements Entity.
func (Event) EntityKind() EntityKind { return KindEvent }

// Owner implements Entity; events are not part of the ownership hierarchy.
func (Event) Owner() *OwnerRef { return nil }

// Activity is a human-readable log projection derived from an Event. The
// derivation is one-to-one and idempotent: the id is a deterministic
// function of the event id.
type Activity struct {
	ID        string      `json:"id"`
	Kind      EntityKind  `json:"kind"`
	EventID   string      `json:"event_id"`
	Title     string      `json:"title"`
	Text      string      `json:"text"`
	Source    EventSource `json:"source"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// EntityID implements Entity.
func (a Activity) EntityID() string { return a.ID }

// EntityKind implements Entity.
func (Activity) EntityKind() EntityKind { return KindActivity }

// Owner implements Entity.
func (Activity) Owner() *OwnerRef { return nil }

// NotificationType tags a notification with a severity.
type NotificationType string

// Notification severities.
const (
	NotificationSuccess NotificationType = "success"
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification is a human-readable alert projection derived from an Event.
// Event types with no registered notification mapper produce no
// notification at all.
type Notification struct {
	ID        string           `json:"id"`
	Kind      EntityKind       `json:"kind"`
	EventID   string           `json:"event_id"`
	Type      NotificationType `json:"type"`
	Text      string           `json:"text"`
	MemberID  string           `json:"member_id,omitempty"`
	Read      bool             `json:"read"`
	Source    EventSource      `json:"source"`
	CreatedAt time.Time        `json:"created_at"`
}

// EntityID implements Entity.
func (n Notification) EntityID() string { return n.ID }

// EntityKind implements Entity.
func (Notification) EntityKind() EntityKind { return KindNotification }

// Owner implements Entity.
func (Notification) Owner() *OwnerRef { return nil }

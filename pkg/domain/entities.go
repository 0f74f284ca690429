// Package domain defines the core workspace entities, event and projection
// types, and rule evaluation primitives used by canvascore.
package domain

import "time"

// EntityKind identifies the type of record stored in the workspace.
type EntityKind string

// Supported entity kind identifiers used in Change records, ownership
// references, and persistence buckets.
const (
	// KindScreen identifies a top-level design screen.
	KindScreen EntityKind = "screen"
	// KindElement identifies a visual element placed on a screen or nested inside another element.
	KindElement EntityKind = "element"
	// KindComponent identifies a reusable component definition.
	KindComponent EntityKind = "component"
	// KindVariable identifies a design variable bound to a component.
	KindVariable EntityKind = "variable"
	// KindTask identifies a work item attached to the workspace.
	KindTask EntityKind = "task"
	// KindComment identifies a discussion comment anchored to another entity.
	KindComment EntityKind = "comment"
	// KindChat identifies a chat thread.
	KindChat EntityKind = "chat"
	// KindMember identifies a workspace member.
	KindMember EntityKind = "member"
	// KindEvent identifies a normalized event envelope.
	KindEvent EntityKind = "event"
	// KindActivity identifies an activity projection derived from an event.
	KindActivity EntityKind = "activity"
	// KindNotification identifies a notification projection derived from an event.
	KindNotification EntityKind = "notification"
)

// TaskStatus enumerates task workflow states.
type TaskStatus string

// Canonical task statuses used by projections and rules.
const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// MemberRole enumerates workspace membership roles.
type MemberRole string

// Canonical member roles.
const (
	RoleOwner  MemberRole = "owner"
	RoleEditor MemberRole = "editor"
	RoleViewer MemberRole = "viewer"
)

// OwnerRef is a weak child-to-parent back-reference expressing hierarchical
// containment (an element belongs to a screen, a comment to an element).
// Multiple children may reference one parent; the parent holds no canonical
// child list — the hierarchy is reconstructed by scanning, see BuildTree.
type OwnerRef struct {
	Kind EntityKind `json:"kind"`
	ID   string     `json:"id"`
}

// Base contains common fields for all workspace records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entity is the minimal contract every workspace record satisfies. The
// registry and tree layers dispatch over it instead of concrete structs.
type Entity interface {
	EntityID() string
	EntityKind() EntityKind
	Owner() *OwnerRef
}

// Screen represents a top-level design surface.
type Screen struct {
	Base
	Name       string  `json:"name"`
	Route      string  `json:"route"`
	Background string  `json:"background"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	ProjectTag *string `json:"project_tag,omitempty"`
}

// Element represents a visual element owned by a screen or another element.
type Element struct {
	Base
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Ownership   *OwnerRef      `json:"ownership,omitempty"`
	ComponentID *string        `json:"component_id,omitempty"`
	Position    Position       `json:"position"`
	Styles      map[string]any `json:"styles,omitempty"`
	Locked      bool           `json:"locked"`
}

// Position captures element placement on its parent surface.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Component represents a reusable component definition.
type Component struct {
	Base
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Published   bool    `json:"published"`
	Version     int     `json:"version"`
}

// Variable represents a design variable bound to a component.
type Variable struct {
	Base
	Name      string    `json:"name"`
	ValueKind string    `json:"value_kind"`
	Value     string    `json:"value"`
	Ownership *OwnerRef `json:"ownership,omitempty"`
}

// Task represents a work item, optionally anchored to a screen.
type Task struct {
	Base
	Title      string     `json:"title"`
	Text       *string    `json:"text,omitempty"`
	Status     TaskStatus `json:"status"`
	AssigneeID *string    `json:"assignee_id,omitempty"`
	Ownership  *OwnerRef  `json:"ownership,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty"`
}

// Comment represents a discussion comment anchored to another entity.
type Comment struct {
	Base
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	Resolved  bool      `json:"resolved"`
	Ownership *OwnerRef `json:"ownership,omitempty"`
	Pin       *Position `json:"pin,omitempty"`
}

// Chat represents a chat thread between workspace members.
type Chat struct {
	Base
	Title     string   `json:"title"`
	MemberIDs []string `json:"member_ids"`
}

// Member represents a workspace member.
type Member struct {
	Base
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      MemberRole `json:"role"`
	AvatarURL *string    `json:"avatar_url,omitempty"`
}

// EntityID implements Entity.
func (b Base) EntityID() string { return b.ID }

// Owner implements Entity; kinds without hierarchical containment return nil.
func (b Base) Owner() *OwnerRef { return nil }

// EntityKind implements Entity.
func (Screen) EntityKind() EntityKind { return KindScreen }

// EntityKind implements Entity.
func (Element) EntityKind() EntityKind { return KindElement }

// Owner returns the element's ownership reference.
func (e Element) Owner() *OwnerRef { return e.Ownership }

// EntityKind implements Entity.
func (Component) EntityKind() EntityKind { return KindComponent }

// EntityKind implements Entity.
func (Variable) EntityKind() EntityKind { return KindVariable }

// Owner returns the variable's ownership reference.
func (v Variable) Owner() *OwnerRef { return v.Ownership }

// EntityKind implements Entity.
func (Task) EntityKind() EntityKind { return KindTask }

// Owner returns the task's ownership reference.
func (t Task) Owner() *OwnerRef { return t.Ownership }

// EntityKind implements Entity.
func (Comment) EntityKind() EntityKind { return KindComment }

// Owner returns the comment's ownership reference.
func (c Comment) Owner() *OwnerRef { return c.Ownership }

// EntityKind implements Entity.
func (Chat) EntityKind() EntityKind { return KindChat }

// EntityKind implements Entity.
func (Member) EntityKind() EntityKind { return KindMember }

// Kinds lists every concrete workspace entity kind the registry serves.
// Derived kinds (event, activity, notification) are append-only projections
// and are intentionally excluded.
func Kinds() []EntityKind {
	return []EntityKind{
		KindScreen,
		KindElement,
		KindComponent,
		KindVariable,
		KindTask,
		KindComment,
		KindChat,
		KindMember,
	}
}

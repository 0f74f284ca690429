package core

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"canvascore/pkg/domain"
)

// eventIDPrefix starts every envelope id. The remainder is a millisecond
// timestamp and a random hex suffix: best-effort uniqueness only. Two
// envelopes created in the same millisecond can collide with probability
// 2^-32; consumers requiring strict uniqueness must dedupe downstream.
const eventIDPrefix = "event-"

func newEventID(now time.Time) string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%s%d-%s", eventIDPrefix, now.UnixMilli(), hex.EncodeToString(b[:]))
}

// resolveSource picks the originating entity using first-match precedence
// over the payload reference fields. The order is a compatibility contract:
// entity, element, task, component, then the literal "unknown".
func resolveSource(payload EventPayload) EventSource {
	source := EventSource{EntityID: "unknown", EntityKind: payload.EntityKind}
	switch {
	case payload.EntityID != "":
		source.EntityID = payload.EntityID
	case payload.ElementID != "":
		source.EntityID = payload.ElementID
		source.EntityKind = KindElement
	case payload.TaskID != "":
		source.EntityID = payload.TaskID
		source.EntityKind = KindTask
	case payload.ComponentID != "":
		source.EntityID = payload.ComponentID
		source.EntityKind = KindComponent
	}
	return source
}

// NewEvent wraps a raw business payload into a normalized envelope. Pure
// construction: no I/O, no dispatch. Approved is unconditionally true;
// moderation does not happen at this layer.
func NewEvent(eventType EventType, memberID string, payload EventPayload) Event {
	return NewEventAt(eventType, memberID, payload, time.Now().UTC())
}

// NewEventAt is NewEvent with an explicit clock, used by the service so
// envelope timestamps line up with transaction time.
func NewEventAt(eventType EventType, memberID string, payload EventPayload, now time.Time) Event {
	return Event{
		ID:        newEventID(now),
		Kind:      domain.KindEvent,
		Type:      eventType,
		MemberID:  memberID,
		Source:    resolveSource(payload),
		Payload:   payload,
		Approved:  true,
		Timestamp: now,
	}
}

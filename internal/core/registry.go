package core

import (
	"fmt"

	"canvascore/pkg/domain"
)

// entityGetter resolves one kind's store lookup as the uniform Entity shape.
func entityGetter(store PersistentStore, kind EntityKind) func(id string) (Entity, bool) {
	switch kind {
	case KindScreen:
		return func(id string) (Entity, bool) { return store.GetScreen(id) }
	case KindElement:
		return func(id string) (Entity, bool) { return store.GetElement(id) }
	case KindComponent:
		return func(id string) (Entity, bool) { return store.GetComponent(id) }
	case KindVariable:
		return func(id string) (Entity, bool) { return store.GetVariable(id) }
	case KindTask:
		return func(id string) (Entity, bool) { return store.GetTask(id) }
	case KindComment:
		return func(id string) (Entity, bool) { return store.GetComment(id) }
	case KindChat:
		return func(id string) (Entity, bool) { return store.GetChat(id) }
	case KindMember:
		return func(id string) (Entity, bool) { return store.GetMember(id) }
	}
	return nil
}

// BuildRegistry assembles the capability table over the store and selection
// state for every kind in domain.Kinds. The registry is built once at
// startup and handed to consumers by reference; it is never mutated
// afterwards.
func BuildRegistry(store PersistentStore, selection *SelectionState, log Logger) *Registry {
	if log == nil {
		log = NopLogger()
	}
	bundles := make(map[EntityKind]Bundle, len(domain.Kinds()))
	for _, kind := range domain.Kinds() {
		getByID := entityGetter(store, kind)
		if getByID == nil {
			continue
		}
		kind := kind
		bundles[kind] = Bundle{
			GetByID: getByID,
			GetSelected: func() (Entity, bool) {
				id, ok := selection.Selected(kind)
				if !ok {
					return nil, false
				}
				return getByID(id)
			},
			Select: func(id string) error {
				if _, ok := getByID(id); !ok {
					return fmt.Errorf("select %s: %w", kind, NotFoundError{Entity: kind, ID: id})
				}
				selection.Select(kind, id)
				return nil
			},
			ResetSelected: func() {
				selection.Reset(kind)
			},
		}
	}
	return domain.NewRegistry(bundles, log.Warn)
}

// Accessor exposes selection state and mutators for one entity uniformly
// across kinds. Capabilities missing from the registry degrade to no-ops.
type Accessor struct {
	registry *Registry
	kind     EntityKind
	id       string
}

// NewAccessor binds an accessor to a kind and entity id.
func NewAccessor(registry *Registry, kind EntityKind, id string) Accessor {
	return Accessor{registry: registry, kind: kind, id: id}
}

// Get resolves the bound entity by id.
func (a Accessor) Get() (Entity, bool) {
	fn := a.registry.GetByID(a.kind)
	if fn == nil {
		return nil, false
	}
	return fn(a.id)
}

// Selected returns the current selection for the bound kind.
func (a Accessor) Selected() (Entity, bool) {
	fn := a.registry.GetSelected(a.kind)
	if fn == nil {
		return nil, false
	}
	return fn()
}

// Select marks the bound entity as selected. A missing capability is a
// no-op, not an error.
func (a Accessor) Select() error {
	fn := a.registry.Select(a.kind)
	if fn == nil {
		return nil
	}
	return fn(a.id)
}

// ResetSelection clears the selection for the bound kind.
func (a Accessor) ResetSelection() {
	fn := a.registry.ResetSelected(a.kind)
	if fn == nil {
		return
	}
	fn()
}

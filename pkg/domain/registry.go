package domain

// Capability names one of the uniform operations a registry bundle exposes
// for an entity kind.
type Capability string

// The fixed capability set. Callers must treat a nil lookup result as
// "feature unsupported for this kind", never as a crash.
const (
	CapabilityGetByID       Capability = "getById"
	CapabilityGetSelected   Capability = "getSelected"
	CapabilitySelect        Capability = "select"
	CapabilityResetSelected Capability = "resetSelected"
)

// Capabilities lists every capability a complete bundle provides.
func Capabilities() []Capability {
	return []Capability{
		CapabilityGetByID,
		CapabilityGetSelected,
		CapabilitySelect,
		CapabilityResetSelected,
	}
}

// Bundle groups the capability functions registered for one entity kind.
// Any function may be nil when the kind does not support the capability.
type Bundle struct {
	GetByID       func(id string) (Entity, bool)
	GetSelected   func() (Entity, bool)
	Select        func(id string) error
	ResetSelected func()
}

// Has reports whether the bundle carries a non-nil function for the
// capability.
func (b Bundle) Has(capability Capability) bool {
	switch capability {
	case CapabilityGetByID:
		return b.GetByID != nil
	case CapabilityGetSelected:
		return b.GetSelected != nil
	case CapabilitySelect:
		return b.Select != nil
	case CapabilityResetSelected:
		return b.ResetSelected != nil
	}
	return false
}

// Diagnostic receives non-fatal registry lookup misses. The registry never
// fails a lookup hard; it reports the miss and returns a zero value.
type Diagnostic func(msg string, keysAndValues ...any)

// Registry maps entity kinds to capability bundles. It is assembled once at
// startup and read-only afterwards; construct a new registry instead of
// mutating a shared one.
type Registry struct {
	bundles map[EntityKind]Bundle
	diag    Diagnostic
}

// NewRegistry builds a registry over the provided bundle table. A nil
// diagnostic is replaced with a no-op.
func NewRegistry(bundles map[EntityKind]Bundle, diag Diagnostic) *Registry {
	if diag == nil {
		diag = func(string, ...any) {}
	}
	copied := make(map[EntityKind]Bundle, len(bundles))
	for kind, bundle := range bundles {
		copied[kind] = bundle
	}
	return &Registry{bundles: copied, diag: diag}
}

// Bundle returns the capability bundle registered for kind. A miss is
// reported through the diagnostic and returns ok=false.
func (r *Registry) Bundle(kind EntityKind) (Bundle, bool) {
	if kind == "" {
		r.diag("registry lookup with empty entity kind")
		return Bundle{}, false
	}
	bundle, ok := r.bundles[kind]
	if !ok {
		r.diag("registry has no bundle for entity kind", "kind", string(kind))
		return Bundle{}, false
	}
	return bundle, true
}

// Kinds returns every kind the registry serves.
func (r *Registry) Kinds() []EntityKind {
	out := make([]EntityKind, 0, len(r.bundles))
	for kind := range r.bundles {
		out = append(out, kind)
	}
	return out
}

// GetByID resolves the getById capability for kind, or nil on a miss.
func (r *Registry) GetByID(kind EntityKind) func(id string) (Entity, bool) {
	bundle, ok := r.Bundle(kind)
	if !ok {
		return nil
	}
	if bundle.GetByID == nil {
		r.diag("bundle lacks capability", "kind", string(kind), "capability", string(CapabilityGetByID))
		return nil
	}
	return bundle.GetByID
}

// GetSelected resolves the getSelected capability for kind, or nil on a miss.
func (r *Registry) GetSelected(kind EntityKind) func() (Entity, bool) {
	bundle, ok := r.Bundle(kind)
	if !ok {
		return nil
	}
	if bundle.GetSelected == nil {
		r.diag("bundle lacks capability", "kind", string(kind), "capability", string(CapabilityGetSelected))
		return nil
	}
	return bundle.GetSelected
}

// Select resolves the select capability for kind, or nil on a miss.
func (r *Registry) Select(kind EntityKind) func(id string) error {
	bundle, ok := r.Bundle(kind)
	if !ok {
		return nil
	}
	if bundle.Select == nil {
		r.diag("bundle lacks capability", "kind", string(kind), "capability", string(CapabilitySelect))
		return nil
	}
	return bundle.Select
}

// ResetSelected resolves the resetSelected capability for kind, or nil on a
// miss.
func (r *Registry) ResetSelected(kind EntityKind) func() {
	bundle, ok := r.Bundle(kind)
	if !ok {
		return nil
	}
	if bundle.ResetSelected == nil {
		r.diag("bundle lacks capability", "kind", string(kind), "capability", string(CapabilityResetSelected))
		return nil
	}
	return bundle.ResetSelected
}

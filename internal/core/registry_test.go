package core

import (
	"context"
	"errors"
	"testing"

	"canvascore/internal/infra/persistence/memory"
	"canvascore/pkg/domain"
)

type recordingLogger struct {
	warns []string
}

func (*recordingLogger) Debug(string, ...any) {}
func (*recordingLogger) Info(string, ...any)  {}
func (*recordingLogger) Error(string, ...any) {}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.warns = append(l.warns, msg)
}

func registryFixture(t *testing.T) (*memory.Store, *Registry, *SelectionState, *recordingLogger) {
	t.Helper()
	store := memory.NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateScreen(domain.Screen{Name: "Home"})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	log := &recordingLogger{}
	sel := NewSelectionState()
	registry := BuildRegistry(store, sel, log)
	return store, registry, sel, log
}

func TestRegistryCoversAllKinds(t *testing.T) {
	_, registry, _, _ := registryFixture(t)
	for _, kind := range domain.Kinds() {
		bundle, ok := registry.Bundle(kind)
		if !ok {
			t.Fatalf("kind %s missing bundle", kind)
		}
		for _, cap := range domain.Capabilities() {
			if !bundle.Has(cap) {
				t.Fatalf("kind %s missing capability %s", kind, cap)
			}
		}
	}
}

func TestRegistryUnknownKindWarnsAndReturnsNil(t *testing.T) {
	_, registry, _, log := registryFixture(t)
	if fn := registry.GetByID(EntityKind("widget")); fn != nil {
		t.Fatalf("unknown kind should resolve to nil")
	}
	if len(log.warns) == 0 {
		t.Fatalf("expected a diagnostic for unknown kind")
	}
}

func TestRegistrySelectionRoundTrip(t *testing.T) {
	store, registry, sel, _ := registryFixture(t)
	screens := store.ListScreens()
	if len(screens) != 1 {
		t.Fatalf("fixture screens %d", len(screens))
	}
	id := screens[0].ID

	if err := registry.Select(domain.KindScreen)(id); err != nil {
		t.Fatalf("select: %v", err)
	}
	entity, ok := registry.GetSelected(domain.KindScreen)()
	if !ok {
		t.Fatalf("expected a selection")
	}
	if entity.EntityID() != id {
		t.Fatalf("selected %q, want %q", entity.EntityID(), id)
	}
	registry.ResetSelected(domain.KindScreen)()
	if _, ok := sel.Selected(domain.KindScreen); ok {
		t.Fatalf("selection not cleared")
	}
}

func TestRegistrySelectMissingEntity(t *testing.T) {
	_, registry, sel, _ := registryFixture(t)
	err := registry.Select(domain.KindScreen)("no-such-id")
	if err == nil {
		t.Fatalf("expected error")
	}
	var notFound NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if _, ok := sel.Selected(domain.KindScreen); ok {
		t.Fatalf("failed select must not set selection")
	}
}

func TestAccessorMissingCapabilityIsNoOp(t *testing.T) {
	registry := domain.NewRegistry(map[EntityKind]domain.Bundle{}, nil)
	acc := NewAccessor(registry, domain.KindScreen, "s1")
	if _, ok := acc.Get(); ok {
		t.Fatalf("empty registry should not resolve entities")
	}
	if _, ok := acc.Selected(); ok {
		t.Fatalf("empty registry should have no selection")
	}
	if err := acc.Select(); err != nil {
		t.Fatalf("missing select capability should no-op, got %v", err)
	}
	acc.ResetSelection()
}

func TestAccessorBoundEntity(t *testing.T) {
	store, registry, _, _ := registryFixture(t)
	id := store.ListScreens()[0].ID
	acc := NewAccessor(registry, domain.KindScreen, id)
	entity, ok := acc.Get()
	if !ok || entity.EntityID() != id {
		t.Fatalf("get %v %v", entity, ok)
	}
	if err := acc.Select(); err != nil {
		t.Fatalf("select: %v", err)
	}
	selected, ok := acc.Selected()
	if !ok || selected.EntityID() != id {
		t.Fatalf("selected %v %v", selected, ok)
	}
	acc.ResetSelection()
	if _, ok := acc.Selected(); ok {
		t.Fatalf("selection survived reset")
	}
}

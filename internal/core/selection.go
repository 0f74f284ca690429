package core

import "sync"

// SelectionState tracks the currently selected entity per kind. Selection is
// UI session state: in-process only, never persisted, safe for concurrent
// use.
type SelectionState struct {
	mu       sync.RWMutex
	selected map[EntityKind]string
}

// NewSelectionState constructs an empty selection map.
func NewSelectionState() *SelectionState {
	return &SelectionState{selected: make(map[EntityKind]string)}
}

// Selected returns the selected entity id for kind, if any.
func (s *SelectionState) Selected(kind EntityKind) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.selected[kind]
	return id, ok
}

// Select marks id as the selection for kind, replacing any previous one.
func (s *SelectionState) Select(kind EntityKind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected[kind] = id
}

// Reset clears the selection for kind.
func (s *SelectionState) Reset(kind EntityKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selected, kind)
}

// ResetAll clears every selection.
func (s *SelectionState) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[EntityKind]string)
}

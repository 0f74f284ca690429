package domain

import (
	"fmt"
	"strings"
)

// Node pairs an entity with the subtree of entities that reference it as
// their owner.
type Node[T Entity] struct {
	Entity   T         `json:"entity"`
	Children []Node[T] `json:"children,omitempty"`
}

// OwnershipCycleError reports a cycle detected while walking ownership
// references. The hierarchy is reconstructed from weak back-references, so a
// cycle is a data-integrity defect in the flat list, not a programming error.
type OwnershipCycleError struct {
	Path []string
}

func (e OwnershipCycleError) Error() string {
	return fmt.Sprintf("ownership cycle: %s", strings.Join(e.Path, " -> "))
}

// BuildTree converts a flat list of entities carrying ownership
// back-references into a nested tree rooted at rootID. An entity is attached
// under a parent when its ownership reference matches {ownerKind, parentID}.
// Children preserve the input order of the flat list. An empty input or a
// root nothing references yields a nil slice.
//
// The walk keeps a visited set along the current path; a repeated id means
// the ownership references form a cycle and the walk stops with
// OwnershipCycleError instead of recursing forever.
func BuildTree[T Entity](flat []T, rootID string, ownerKind EntityKind) ([]Node[T], error) {
	if len(flat) == 0 {
		return nil, nil
	}
	visited := map[string]bool{rootID: true}
	return buildSubtree(flat, rootID, ownerKind, visited, []string{rootID})
}

func buildSubtree[T Entity](flat []T, parentID string, ownerKind EntityKind, visited map[string]bool, path []string) ([]Node[T], error) {
	var nodes []Node[T]
	for _, entity := range flat {
		owner := entity.Owner()
		if owner == nil || owner.Kind != ownerKind || owner.ID != parentID {
			continue
		}
		id := entity.EntityID()
		if visited[id] {
			return nil, OwnershipCycleError{Path: append(append([]string(nil), path...), id)}
		}
		visited[id] = true
		children, err := buildSubtree(flat, id, ownerKind, visited, append(path, id))
		if err != nil {
			return nil, err
		}
		delete(visited, id)
		nodes = append(nodes, Node[T]{Entity: entity, Children: children})
	}
	return nodes, nil
}

// Flatten is the inverse of BuildTree: a depth-first pre-order traversal
// emitting each parent before its children.
func Flatten[T Entity](nodes []Node[T]) []T {
	var out []T
	for _, node := range nodes {
		out = append(out, node.Entity)
		out = append(out, Flatten(node.Children)...)
	}
	return out
}

// WalkTree visits every node depth-first, parent before children. The walk
// stops early when fn returns false.
func WalkTree[T Entity](nodes []Node[T], fn func(entity T, depth int) bool) {
	walkTree(nodes, 0, fn)
}

func walkTree[T Entity](nodes []Node[T], depth int, fn func(entity T, depth int) bool) bool {
	for _, node := range nodes {
		if !fn(node.Entity, depth) {
			return false
		}
		if !walkTree(node.Children, depth+1, fn) {
			return false
		}
	}
	return true
}

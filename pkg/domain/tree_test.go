package domain

import (
	"errors"
	"testing"
)

func element(id string, ownerKind EntityKind, ownerID string) Element {
	e := Element{}
	e.ID = id
	if ownerID != "" {
		e.Ownership = &OwnerRef{Kind: ownerKind, ID: ownerID}
	}
	return e
}

func TestBuildTreeNestsByOwnership(t *testing.T) {
	flat := []Element{
		element("a", "", ""),
		element("b", KindScreen, "a"),
		element("c", KindScreen, "b"),
		element("d", KindScreen, "a"),
	}
	tree, err := BuildTree(flat, "a", KindScreen)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	if len(tree) != 2 {
		t.Fatalf("expected two children of root, got %d", len(tree))
	}
	if tree[0].Entity.ID != "b" || tree[1].Entity.ID != "d" {
		t.Fatalf("unexpected child order: %s, %s", tree[0].Entity.ID, tree[1].Entity.ID)
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].Entity.ID != "c" {
		t.Fatalf("expected c nested under b")
	}
}

func TestFlattenReproducesReachableSet(t *testing.T) {
	flat := []Element{
		element("b", KindScreen, "a"),
		element("c", KindScreen, "b"),
		element("d", KindScreen, "c"),
		element("orphan", KindScreen, "elsewhere"),
	}
	tree, err := BuildTree(flat, "a", KindScreen)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	got := Flatten(tree)
	want := map[string]bool{"b": true, "c": true, "d": true}
	if len(got) != len(want) {
		t.Fatalf("expected %d entities, got %d", len(want), len(got))
	}
	for _, e := range got {
		if !want[e.ID] {
			t.Fatalf("unexpected entity %s in flattened output", e.ID)
		}
		delete(want, e.ID)
	}
	if len(want) != 0 {
		t.Fatalf("missing entities: %v", want)
	}
}

func TestFlattenIsPreOrder(t *testing.T) {
	flat := []Element{
		element("child", KindScreen, "root"),
		element("grandchild", KindScreen, "child"),
	}
	tree, err := BuildTree(flat, "root", KindScreen)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	got := Flatten(tree)
	if len(got) != 2 || got[0].ID != "child" || got[1].ID != "grandchild" {
		t.Fatalf("expected parent before child, got %v", got)
	}
}

func TestBuildTreeEmptyAndLeafRoot(t *testing.T) {
	if tree, err := BuildTree[Element](nil, "anything", KindScreen); err != nil || len(tree) != 0 {
		t.Fatalf("expected empty tree from empty input, got %v, %v", tree, err)
	}
	flat := []Element{element("b", KindScreen, "a")}
	tree, err := BuildTree(flat, "leaf", KindScreen)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	if len(tree) != 0 {
		t.Fatalf("expected empty tree for leaf root, got %d nodes", len(tree))
	}
}

func TestBuildTreeDetectsCycle(t *testing.T) {
	flat := []Element{
		element("b", KindScreen, "a"),
		element("c", KindScreen, "b"),
		element("a", KindScreen, "c"),
	}
	_, err := BuildTree(flat, "a", KindScreen)
	var cycleErr OwnershipCycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected OwnershipCycleError, got %v", err)
	}
	if len(cycleErr.Path) < 2 {
		t.Fatalf("expected cycle path, got %v", cycleErr.Path)
	}
}

func TestBuildTreeIgnoresOtherOwnerKinds(t *testing.T) {
	flat := []Element{
		element("b", KindScreen, "a"),
		element("c", KindComponent, "a"),
	}
	tree, err := BuildTree(flat, "a", KindScreen)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	if len(tree) != 1 || tree[0].Entity.ID != "b" {
		t.Fatalf("expected only screen-owned child, got %v", tree)
	}
}

func TestWalkTreeStopsEarly(t *testing.T) {
	flat := []Element{
		element("b", KindScreen, "a"),
		element("c", KindScreen, "b"),
	}
	tree, err := BuildTree(flat, "a", KindScreen)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	var seen []string
	WalkTree(tree, func(e Element, depth int) bool {
		seen = append(seen, e.ID)
		return false
	})
	if len(seen) != 1 || seen[0] != "b" {
		t.Fatalf("expected walk to stop after first node, saw %v", seen)
	}
}

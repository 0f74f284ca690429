package domain

import "testing"

func TestResultMergeAndBlocking(t *testing.T) {
	var res Result
	res.Merge(Result{})
	if len(res.Violations) != 0 {
		t.Fatalf("expected empty result after merging empty")
	}
	res.Merge(Result{Violations: []Violation{{Rule: "a", Severity: SeverityWarn}}})
	if res.HasBlocking() {
		t.Fatalf("warn severity must not block")
	}
	res.Merge(Result{Violations: []Violation{{Rule: "b", Severity: SeverityBlock, Entity: KindElement, EntityID: "e1"}}})
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result")
	}
	if len(res.Violations) != 2 {
		t.Fatalf("expected two violations, got %d", len(res.Violations))
	}
	err := RuleViolationError{Result: res}
	if err.Error() == "" {
		t.Fatalf("expected error message")
	}
}

func TestEntityInterfaceOwners(t *testing.T) {
	el := Element{Ownership: &OwnerRef{Kind: KindScreen, ID: "s1"}}
	el.ID = "e1"
	var entity Entity = el
	if entity.EntityID() != "e1" || entity.EntityKind() != KindElement {
		t.Fatalf("unexpected element identity")
	}
	if owner := entity.Owner(); owner == nil || owner.ID != "s1" {
		t.Fatalf("expected screen owner")
	}
	var screen Entity = Screen{}
	if screen.Owner() != nil {
		t.Fatalf("screens have no owner")
	}
	if screen.EntityKind() != KindScreen {
		t.Fatalf("unexpected screen kind")
	}
}

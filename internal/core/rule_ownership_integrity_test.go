package core

import (
	"context"
	"errors"
	"testing"

	"canvascore/internal/infra/persistence/memory"
	"canvascore/pkg/domain"
)

func TestOwnershipIntegrityAllowsValidReferences(t *testing.T) {
	store := memory.NewStore(DefaultRulesEngine())
	res, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		screen, err := tx.CreateScreen(domain.Screen{Name: "Home"})
		if err != nil {
			return err
		}
		_, err = tx.CreateElement(domain.Element{
			Name:      "Header",
			Ownership: &domain.OwnerRef{Kind: domain.KindScreen, ID: screen.ID},
		})
		return err
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("unexpected violations %+v", res.Violations)
	}
}

func TestOwnershipIntegrityBlocksMissingParent(t *testing.T) {
	store := memory.NewStore(DefaultRulesEngine())
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateElement(domain.Element{
			Name:      "Orphan",
			Ownership: &domain.OwnerRef{Kind: domain.KindScreen, ID: "missing"},
		})
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	if !violation.Result.HasBlocking() {
		t.Fatalf("missing parent must block: %+v", violation.Result)
	}
	if len(store.ListElements()) != 0 {
		t.Fatalf("blocked transaction must not commit")
	}
}

func TestOwnershipIntegrityBlocksCycle(t *testing.T) {
	store := memory.NewStore(DefaultRulesEngine())
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		a, err := tx.CreateElement(domain.Element{Name: "A"})
		if err != nil {
			return err
		}
		b, err := tx.CreateElement(domain.Element{
			Name:      "B",
			Ownership: &domain.OwnerRef{Kind: domain.KindElement, ID: a.ID},
		})
		if err != nil {
			return err
		}
		_, err = tx.UpdateElement(a.ID, func(e *domain.Element) error {
			e.Ownership = &domain.OwnerRef{Kind: domain.KindElement, ID: b.ID}
			return nil
		})
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	found := false
	for _, v := range violation.Result.Violations {
		if v.Rule == "ownership_integrity" && v.Severity == domain.SeverityBlock {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected blocking ownership violation, got %+v", violation.Result.Violations)
	}
}

func TestOwnershipIntegrityChecksDeclaredKind(t *testing.T) {
	store := memory.NewStore(DefaultRulesEngine())
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		screen, err := tx.CreateScreen(domain.Screen{Name: "Home"})
		if err != nil {
			return err
		}
		// declares element ownership but points at a screen id
		_, err = tx.CreateComment(domain.Comment{
			AuthorID:  "m1",
			Text:      "hm",
			Ownership: &domain.OwnerRef{Kind: domain.KindElement, ID: screen.ID},
		})
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
}

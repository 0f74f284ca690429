package core

import (
	"context"
	"testing"

	"canvascore/internal/infra/persistence/memory"
	"canvascore/pkg/domain"
)

func TestPublishWithoutNameWarnsButCommits(t *testing.T) {
	store := memory.NewStore(DefaultRulesEngine())
	ctx := context.Background()
	var id string
	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		component, err := tx.CreateComponent(domain.Component{Name: ""})
		id = component.ID
		return err
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.UpdateComponent(id, func(c *domain.Component) error {
			c.Published = true
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("publish should commit despite the warning: %v", err)
	}
	if res.HasBlocking() {
		t.Fatalf("warning must not block")
	}
	found := false
	for _, v := range res.Violations {
		if v.Rule == "component_publish_name" && v.Severity == domain.SeverityWarn {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a publish warning, got %+v", res.Violations)
	}
	component, ok := store.GetComponent(id)
	if !ok || !component.Published {
		t.Fatalf("component not published: %+v", component)
	}
}

func TestPublishWithNameIsClean(t *testing.T) {
	store := memory.NewStore(DefaultRulesEngine())
	ctx := context.Background()
	var id string
	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		component, err := tx.CreateComponent(domain.Component{Name: "Button"})
		id = component.ID
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	res, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.UpdateComponent(id, func(c *domain.Component) error {
			c.Published = true
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	for _, v := range res.Violations {
		if v.Rule == "component_publish_name" {
			t.Fatalf("unexpected warning %+v", v)
		}
	}
}

func TestAlreadyPublishedComponentDoesNotRewarn(t *testing.T) {
	store := memory.NewStore(DefaultRulesEngine())
	ctx := context.Background()
	var id string
	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		component, err := tx.CreateComponent(domain.Component{Published: true, Version: 1})
		id = component.ID
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	res, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.UpdateComponent(id, func(c *domain.Component) error {
			c.Version++
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	for _, v := range res.Violations {
		if v.Rule == "component_publish_name" {
			t.Fatalf("version bump of an already-published component warned: %+v", v)
		}
	}
}

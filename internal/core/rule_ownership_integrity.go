package core

import (
	"context"
	"errors"
	"fmt"

	"canvascore/pkg/domain"
)

// NewOwnershipIntegrityRule returns the default in-transaction rule guarding
// ownership references: every reference must resolve to an existing parent
// of the declared kind, and element ownership must stay acyclic. A detected
// cycle blocks the commit as a data-integrity violation instead of letting
// the tree walk recurse forever later.
func NewOwnershipIntegrityRule() domain.Rule {
	return ownershipIntegrityRule{}
}

type ownershipIntegrityRule struct{}

func (ownershipIntegrityRule) Name() string { return "ownership_integrity" }

func (ownershipIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}

	exists := func(ref domain.OwnerRef) bool {
		switch ref.Kind {
		case domain.KindScreen:
			_, ok := view.FindScreen(ref.ID)
			return ok
		case domain.KindElement:
			_, ok := view.FindElement(ref.ID)
			return ok
		case domain.KindComponent:
			_, ok := view.FindComponent(ref.ID)
			return ok
		case domain.KindTask:
			_, ok := view.FindTask(ref.ID)
			return ok
		}
		return false
	}

	check := func(entity domain.Entity) {
		owner := entity.Owner()
		if owner == nil {
			return
		}
		if owner.ID == "" || !exists(*owner) {
			res.Violations = append(res.Violations, ownershipViolation(entity.EntityKind(), entity.EntityID(),
				fmt.Sprintf("%s %s references missing %s %s", entity.EntityKind(), entity.EntityID(), owner.Kind, owner.ID)))
		}
	}

	elements := view.ListElements()
	for _, element := range elements {
		check(element)
	}
	for _, variable := range view.ListVariables() {
		check(variable)
	}
	for _, task := range view.ListTasks() {
		check(task)
	}
	for _, comment := range view.ListComments() {
		check(comment)
	}

	// Element-to-element ownership forms the nesting hierarchy; walk it from
	// every screen root so a cycle introduced in this transaction surfaces as
	// a violation rather than unbounded recursion at read time.
	for _, screen := range view.ListScreens() {
		if _, err := domain.BuildTree(elements, screen.ID, domain.KindScreen); err != nil {
			var cycleErr domain.OwnershipCycleError
			if errors.As(err, &cycleErr) {
				res.Violations = append(res.Violations, ownershipViolation(domain.KindScreen, screen.ID, cycleErr.Error()))
				continue
			}
			return domain.Result{}, err
		}
	}
	for _, element := range elements {
		if _, err := domain.BuildTree(elements, element.ID, domain.KindElement); err != nil {
			var cycleErr domain.OwnershipCycleError
			if errors.As(err, &cycleErr) {
				res.Violations = append(res.Violations, ownershipViolation(domain.KindElement, element.ID, cycleErr.Error()))
				break
			}
			return domain.Result{}, err
		}
	}

	return res, nil
}

func ownershipViolation(kind domain.EntityKind, entityID, message string) domain.Violation {
	return domain.Violation{
		Rule:     "ownership_integrity",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   kind,
		EntityID: entityID,
	}
}

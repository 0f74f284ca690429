package core

import (
	"context"
	"fmt"
	"strings"

	"canvascore/pkg/domain"
)

// NewComponentPublishRule returns the rule warning when a component is
// published without a usable name. Publishing stays allowed; the warning
// surfaces in the transaction result.
func NewComponentPublishRule() domain.Rule {
	return componentPublishRule{}
}

type componentPublishRule struct{}

func (componentPublishRule) Name() string { return "component_publish_name" }

func (componentPublishRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.KindComponent || change.After == nil {
			continue
		}
		component, ok := change.After.(domain.Component)
		if !ok {
			continue
		}
		if !component.Published {
			continue
		}
		if before, ok := change.Before.(domain.Component); ok && before.Published {
			continue
		}
		if strings.TrimSpace(component.Name) == "" {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "component_publish_name",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("component %s published without a name", component.ID),
				Entity:   domain.KindComponent,
				EntityID: component.ID,
			})
		}
	}
	return res, nil
}

// DefaultRulesEngine assembles the engine with the standard workspace rules.
func DefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewOwnershipIntegrityRule())
	engine.Register(NewComponentPublishRule())
	return engine
}

package domain

import "context"

// RuleView provides read-only access to workspace entities for rule
// evaluation.
type RuleView interface {
	ListScreens() []Screen
	ListElements() []Element
	ListComponents() []Component
	ListVariables() []Variable
	ListTasks() []Task
	ListComments() []Comment
	ListChats() []Chat
	ListMembers() []Member
	FindScreen(id string) (Screen, bool)
	FindElement(id string) (Element, bool)
	FindComponent(id string) (Component, bool)
	FindVariable(id string) (Variable, bool)
	FindTask(id string) (Task, bool)
	FindComment(id string) (Comment, bool)
	FindChat(id string) (Chat, bool)
	FindMember(id string) (Member, bool)
}

// Rule defines an evaluation executed within a transaction boundary.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error)
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Rules returns the registered rules in registration order.
func (e *RulesEngine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Evaluate executes all registered rules and aggregates their results.
func (e *RulesEngine) Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error) {
	var combined Result
	for _, rule := range e.rules {
		res, err := rule.Evaluate(ctx, view, changes)
		if err != nil {
			return Result{}, err
		}
		combined.Merge(res)
	}
	return combined, nil
}

// Package memory provides an in-memory implementation of the workspace
// persistence store used for tests and ephemeral environments.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"canvascore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the
// domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Screen aliases domain.Screen for in-memory persistence operations.
	Screen = domain.Screen
	// Element aliases domain.Element.
	Element = domain.Element
	// Component aliases domain.Component.
	Component = domain.Component
	// Variable aliases domain.Variable.
	Variable = domain.Variable
	// Task aliases domain.Task.
	Task = domain.Task
	// Comment aliases domain.Comment.
	Comment = domain.Comment
	// Chat aliases domain.Chat.
	Chat = domain.Chat
	// Member aliases domain.Member.
	Member = domain.Member
	// Event aliases domain.Event.
	Event = domain.Event
	// Activity aliases domain.Activity.
	Activity = domain.Activity
	// Notification aliases domain.Notification.
	Notification = domain.Notification
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

type memoryState struct {
	screens       map[string]Screen
	elements      map[string]Element
	components    map[string]Component
	variables     map[string]Variable
	tasks         map[string]Task
	comments      map[string]Comment
	chats         map[string]Chat
	members       map[string]Member
	events        map[string]Event
	activities    map[string]Activity
	notifications map[string]Notification
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Screens       map[string]Screen       `json:"screens"`
	Elements      map[string]Element      `json:"elements"`
	Components    map[string]Component    `json:"components"`
	Variables     map[string]Variable     `json:"variables"`
	Tasks         map[string]Task         `json:"tasks"`
	Comments      map[string]Comment      `json:"comments"`
	Chats         map[string]Chat         `json:"chats"`
	Members       map[string]Member       `json:"members"`
	Events        map[string]Event        `json:"events"`
	Activities    map[string]Activity     `json:"activities"`
	Notifications map[string]Notification `json:"notifications"`
}

func newMemoryState() memoryState {
	return memoryState{
		screens:       make(map[string]Screen),
		elements:      make(map[string]Element),
		components:    make(map[string]Component),
		variables:     make(map[string]Variable),
		tasks:         make(map[string]Task),
		comments:      make(map[string]Comment),
		chats:         make(map[string]Chat),
		members:       make(map[string]Member),
		events:        make(map[string]Event),
		activities:    make(map[string]Activity),
		notifications: make(map[string]Notification),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Screens:       make(map[string]Screen, len(state.screens)),
		Elements:      make(map[string]Element, len(state.elements)),
		Components:    make(map[string]Component, len(state.components)),
		Variables:     make(map[string]Variable, len(state.variables)),
		Tasks:         make(map[string]Task, len(state.tasks)),
		Comments:      make(map[string]Comment, len(state.comments)),
		Chats:         make(map[string]Chat, len(state.chats)),
		Members:       make(map[string]Member, len(state.members)),
		Events:        make(map[string]Event, len(state.events)),
		Activities:    make(map[string]Activity, len(state.activities)),
		Notifications: make(map[string]Notification, len(state.notifications)),
	}
	for k, v := range state.screens {
		s.Screens[k] = cloneScreen(v)
	}
	for k, v := range state.elements {
		s.Elements[k] = cloneElement(v)
	}
	for k, v := range state.components {
		s.Components[k] = cloneComponent(v)
	}
	for k, v := range state.variables {
		s.Variables[k] = cloneVariable(v)
	}
	for k, v := range state.tasks {
		s.Tasks[k] = cloneTask(v)
	}
	for k, v := range state.comments {
		s.Comments[k] = cloneComment(v)
	}
	for k, v := range state.chats {
		s.Chats[k] = cloneChat(v)
	}
	for k, v := range state.members {
		s.Members[k] = cloneMember(v)
	}
	for k, v := range state.events {
		s.Events[k] = cloneEvent(v)
	}
	for k, v := range state.activities {
		s.Activities[k] = v
	}
	for k, v := range state.notifications {
		s.Notifications[k] = v
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Screens {
		state.screens[k] = cloneScreen(v)
	}
	for k, v := range s.Elements {
		state.elements[k] = cloneElement(v)
	}
	for k, v := range s.Components {
		state.components[k] = cloneComponent(v)
	}
	for k, v := range s.Variables {
		state.variables[k] = cloneVariable(v)
	}
	for k, v := range s.Tasks {
		state.tasks[k] = cloneTask(v)
	}
	for k, v := range s.Comments {
		state.comments[k] = cloneComment(v)
	}
	for k, v := range s.Chats {
		state.chats[k] = cloneChat(v)
	}
	for k, v := range s.Members {
		state.members[k] = cloneMember(v)
	}
	for k, v := range s.Events {
		state.events[k] = cloneEvent(v)
	}
	for k, v := range s.Activities {
		state.activities[k] = v
	}
	for k, v := range s.Notifications {
		state.notifications[k] = v
	}
	return state
}

// migrateSnapshot normalizes a snapshot loaded from external persistence:
// nil buckets become empty maps, records missing ids are dropped, and
// derived projections whose source event is gone are pruned.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Screens == nil {
		snapshot.Screens = map[string]Screen{}
	}
	if snapshot.Elements == nil {
		snapshot.Elements = map[string]Element{}
	}
	if snapshot.Components == nil {
		snapshot.Components = map[string]Component{}
	}
	if snapshot.Variables == nil {
		snapshot.Variables = map[string]Variable{}
	}
	if snapshot.Tasks == nil {
		snapshot.Tasks = map[string]Task{}
	}
	if snapshot.Comments == nil {
		snapshot.Comments = map[string]Comment{}
	}
	if snapshot.Chats == nil {
		snapshot.Chats = map[string]Chat{}
	}
	if snapshot.Members == nil {
		snapshot.Members = map[string]Member{}
	}
	if snapshot.Events == nil {
		snapshot.Events = map[string]Event{}
	}
	if snapshot.Activities == nil {
		snapshot.Activities = map[string]Activity{}
	}
	if snapshot.Notifications == nil {
		snapshot.Notifications = map[string]Notification{}
	}

	for id, activity := range snapshot.Activities {
		if activity.EventID == "" {
			delete(snapshot.Activities, id)
			continue
		}
		if _, ok := snapshot.Events[activity.EventID]; !ok {
			delete(snapshot.Activities, id)
		}
	}
	for id, notification := range snapshot.Notifications {
		if notification.EventID == "" {
			delete(snapshot.Notifications, id)
			continue
		}
		if _, ok := snapshot.Events[notification.EventID]; !ok {
			delete(snapshot.Notifications, id)
		}
	}

	for id, chat := range snapshot.Chats {
		memberExists := func(memberID string) bool {
			_, ok := snapshot.Members[memberID]
			return ok
		}
		if filtered, changed := filterIDs(chat.MemberIDs, memberExists); changed {
			chat.MemberIDs = filtered
			snapshot.Chats[id] = chat
		}
	}

	return snapshot
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.screens {
		cloned.screens[k] = cloneScreen(v)
	}
	for k, v := range s.elements {
		cloned.elements[k] = cloneElement(v)
	}
	for k, v := range s.components {
		cloned.components[k] = cloneComponent(v)
	}
	for k, v := range s.variables {
		cloned.variables[k] = cloneVariable(v)
	}
	for k, v := range s.tasks {
		cloned.tasks[k] = cloneTask(v)
	}
	for k, v := range s.comments {
		cloned.comments[k] = cloneComment(v)
	}
	for k, v := range s.chats {
		cloned.chats[k] = cloneChat(v)
	}
	for k, v := range s.members {
		cloned.members[k] = cloneMember(v)
	}
	for k, v := range s.events {
		cloned.events[k] = cloneEvent(v)
	}
	for k, v := range s.activities {
		cloned.activities[k] = v
	}
	for k, v := range s.notifications {
		cloned.notifications[k] = v
	}
	return cloned
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneScreen(s Screen) Screen {
	cp := s
	cp.ProjectTag = clonePtr(s.ProjectTag)
	return cp
}

func cloneElement(e Element) Element {
	cp := e
	cp.Ownership = clonePtr(e.Ownership)
	cp.ComponentID = clonePtr(e.ComponentID)
	if e.Styles != nil {
		cp.Styles = make(map[string]any, len(e.Styles))
		for k, v := range e.Styles {
			cp.Styles[k] = v
		}
	}
	return cp
}

func cloneComponent(c Component) Component {
	cp := c
	cp.Description = clonePtr(c.Description)
	return cp
}

func cloneVariable(v Variable) Variable {
	cp := v
	cp.Ownership = clonePtr(v.Ownership)
	return cp
}

func cloneTask(t Task) Task {
	cp := t
	cp.Text = clonePtr(t.Text)
	cp.AssigneeID = clonePtr(t.AssigneeID)
	cp.Ownership = clonePtr(t.Ownership)
	cp.DueAt = clonePtr(t.DueAt)
	return cp
}

func cloneComment(c Comment) Comment {
	cp := c
	cp.Ownership = clonePtr(c.Ownership)
	cp.Pin = clonePtr(c.Pin)
	return cp
}

func cloneChat(c Chat) Chat {
	cp := c
	cp.MemberIDs = append([]string(nil), c.MemberIDs...)
	return cp
}

func cloneMember(m Member) Member {
	cp := m
	cp.AvatarURL = clonePtr(m.AvatarURL)
	return cp
}

func cloneEvent(e Event) Event {
	cp := e
	if e.Payload.Extra != nil {
		cp.Payload.Extra = make(map[string]any, len(e.Payload.Extra))
		for k, v := range e.Payload.Extra {
			cp.Payload.Extra[k] = v
		}
	}
	return cp
}

func filterIDs(values []string, exists func(string) bool) ([]string, bool) {
	if len(values) == 0 {
		return nil, false
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	changed := false
	for _, v := range values {
		if _, ok := seen[v]; ok {
			changed = true
			continue
		}
		seen[v] = struct{}{}
		if !exists(v) {
			changed = true
			continue
		}
		out = append(out, v)
	}
	if !changed && len(out) == len(values) {
		return values, false
	}
	return out, true
}

// Store provides an in-memory transactional store for the workspace domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules
// engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func newID() string {
	return uuid.NewString()
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the currently configured engine for integration points.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// RunInTransaction executes fn within a transactional copy of the store
// state. The rules engine evaluates accumulated changes before commit;
// blocking violations abort the commit with RuleViolationError.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

var errEmptyID = errors.New("empty id")

// transaction represents a mutation set applied to the store state.
type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindScreen exposes screen lookup within the transaction scope.
func (tx *transaction) FindScreen(id string) (Screen, bool) {
	sc, ok := tx.state.screens[id]
	if !ok {
		return Screen{}, false
	}
	return cloneScreen(sc), true
}

// FindMember exposes member lookup within the transaction scope.
func (tx *transaction) FindMember(id string) (Member, bool) {
	m, ok := tx.state.members[id]
	if !ok {
		return Member{}, false
	}
	return cloneMember(m), true
}

// CreateScreen inserts a screen, assigning id and timestamps.
func (tx *transaction) CreateScreen(screen Screen) (Screen, error) {
	if screen.ID == "" {
		screen.ID = newID()
	}
	if _, exists := tx.state.screens[screen.ID]; exists {
		return Screen{}, fmt.Errorf("screen %s already exists", screen.ID)
	}
	screen.CreatedAt = tx.now
	screen.UpdatedAt = tx.now
	tx.state.screens[screen.ID] = cloneScreen(screen)
	tx.recordChange(Change{Entity: domain.KindScreen, Action: domain.ActionCreate, After: cloneScreen(screen)})
	return cloneScreen(screen), nil
}

// UpdateScreen applies mutator to an existing screen.
func (tx *transaction) UpdateScreen(id string, mutator func(*Screen) error) (Screen, error) {
	existing, ok := tx.state.screens[id]
	if !ok {
		return Screen{}, fmt.Errorf("screen %s not found", id)
	}
	before := cloneScreen(existing)
	updated := cloneScreen(existing)
	if err := mutator(&updated); err != nil {
		return Screen{}, err
	}
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = tx.now
	tx.state.screens[id] = cloneScreen(updated)
	tx.recordChange(Change{Entity: domain.KindScreen, Action: domain.ActionUpdate, Before: before, After: cloneScreen(updated)})
	return cloneScreen(updated), nil
}

// DeleteScreen removes a screen.
func (tx *transaction) DeleteScreen(id string) error {
	existing, ok := tx.state.screens[id]
	if !ok {
		return fmt.Errorf("screen %s not found", id)
	}
	delete(tx.state.screens, id)
	tx.recordChange(Change{Entity: domain.KindScreen, Action: domain.ActionDelete, Before: cloneScreen(existing)})
	return nil
}

// CreateElement inserts an element, assigning id and timestamps.
func (tx *transaction) CreateElement(element Element) (Element, error) {
	if element.ID == "" {
		element.ID = newID()
	}
	if _, exists := tx.state.elements[element.ID]; exists {
		return Element{}, fmt.Errorf("element %s already exists", element.ID)
	}
	element.CreatedAt = tx.now
	element.UpdatedAt = tx.now
	tx.state.elements[element.ID] = cloneElement(element)
	tx.recordChange(Change{Entity: domain.KindElement, Action: domain.ActionCreate, After: cloneElement(element)})
	return cloneElement(element), nil
}

// UpdateElement applies mutator to an existing element.
func (tx *transaction) UpdateElement(id string, mutator func(*Element) error) (Element, error) {
	existing, ok := tx.state.elements[id]
	if !ok {
		return Element{}, fmt.Errorf("element %s not found", id)
	}
	before := cloneElement(existing)
	updated := cloneElement(existing)
	if err := mutator(&updated); err != nil {
		return Element{}, err
	}
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = tx.now
	tx.state.elements[id] = cloneElement(updated)
	tx.recordChange(Change{Entity: domain.KindElement, Action: domain.ActionUpdate, Before: before, After: cloneElement(updated)})
	return cloneElement(updated), nil
}

// DeleteElement removes an element.
func (tx *transaction) DeleteElement(id string) error {
	existing, ok := tx.state.elements[id]
	if !ok {
		return fmt.Errorf("element %s not found", id)
	}
	delete(tx.state.elements, id)
	tx.recordChange(Change{Entity: domain.KindElement, Action: domain.ActionDelete, Before: cloneElement(existing)})
	return nil
}

// CreateComponent inserts a component, assigning id and timestamps.
func (tx *transaction) CreateComponent(component Component) (Component, error) {
	if component.ID == "" {
		component.ID = newID()
	}
	if _, exists := tx.state.components[component.ID]; exists {
		return Component{}, fmt.Errorf("component %s already exists", component.ID)
	}
	component.CreatedAt = tx.now
	component.UpdatedAt = tx.now
	tx.state.components[component.ID] = cloneComponent(component)
	tx.recordChange(Change{Entity: domain.KindComponent, Action: domain.ActionCreate, After: cloneComponent(component)})
	return cloneComponent(component), nil
}

// UpdateComponent applies mutator to an existing component.
func (tx *transaction) UpdateComponent(id string, mutator func(*Component) error) (Component, error) {
	existing, ok := tx.state.components[id]
	if !ok {
		return Component{}, fmt.Errorf("component %s not found", id)
	}
	before := cloneComponent(existing)
	updated := cloneComponent(existing)
	if err := mutator(&updated); err != nil {
		return Component{}, err
	}
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = tx.now
	tx.state.components[id] = cloneComponent(updated)
	tx.recordChange(Change{Entity: domain.KindComponent, Action: domain.ActionUpdate, Before: before, After: cloneComponent(updated)})
	return cloneComponent(updated), nil
}

// DeleteComponent removes a component.
func (tx *transaction) DeleteComponent(id string) error {
	existing, ok := tx.state.components[id]
	if !ok {
		return fmt.Errorf("component %s not found", id)
	}
	delete(tx.state.components, id)
	tx.recordChange(Change{Entity: domain.KindComponent, Action: domain.ActionDelete, Before: cloneComponent(existing)})
	return nil
}

// CreateVariable inserts a variable, assigning id and timestamps.
func (tx *transaction) CreateVariable(variable Variable) (Variable, error) {
	if variable.ID == "" {
		variable.ID = newID()
	}
	if _, exists := tx.state.variables[variable.ID]; exists {
		return Variable{}, fmt.Errorf("variable %s already exists", variable.ID)
	}
	variable.CreatedAt = tx.now
	variable.UpdatedAt = tx.now
	tx.state.variables[variable.ID] = cloneVariable(variable)
	tx.recordChange(Change{Entity: domain.KindVariable, Action: domain.ActionCreate, After: cloneVariable(variable)})
	return cloneVariable(variable), nil
}

// UpdateVariable applies mutator to an existing variable.
func (tx *transaction) UpdateVariable(id string, mutator func(*Variable) error) (Variable, error) {
	existing, ok := tx.state.variables[id]
	if !ok {
		return Variable{}, fmt.Errorf("variable %s not found", id)
	}
	before := cloneVariable(existing)
	updated := cloneVariable(existing)
	if err := mutator(&updated); err != nil {
		return Variable{}, err
	}
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = tx.now
	tx.state.variables[id] = cloneVariable(updated)
	tx.recordChange(Change{Entity: domain.KindVariable, Action: domain.ActionUpdate, Before: before, After: cloneVariable(updated)})
	return cloneVariable(updated), nil
}

// DeleteVariable removes a variable.
func (tx *transaction) DeleteVariable(id string) error {
	existing, ok := tx.state.variables[id]
	if !ok {
		return fmt.Errorf("variable %s not found", id)
	}
	delete(tx.state.variables, id)
	tx.recordChange(Change{Entity: domain.KindVariable, Action: domain.ActionDelete, Before: cloneVariable(existing)})
	return nil
}

// CreateTask inserts a task, assigning id, default status, and timestamps.
func (tx *transaction) CreateTask(task Task) (Task, error) {
	if task.ID == "" {
		task.ID = newID()
	}
	if _, exists := tx.state.tasks[task.ID]; exists {
		return Task{}, fmt.Errorf("task %s already exists", task.ID)
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusOpen
	}
	task.CreatedAt = tx.now
	task.UpdatedAt = tx.now
	tx.state.tasks[task.ID] = cloneTask(task)
	tx.recordChange(Change{Entity: domain.KindTask, Action: domain.ActionCreate, After: cloneTask(task)})
	return cloneTask(task), nil
}

// UpdateTask applies mutator to an existing task.
func (tx *transaction) UpdateTask(id string, mutator func(*Task) error) (Task, error) {
	existing, ok := tx.state.tasks[id]
	if !ok {
		return Task{}, fmt.Errorf("task %s not found", id)
	}
	before := cloneTask(existing)
	updated := cloneTask(existing)
	if err := mutator(&updated); err != nil {
		return Task{}, err
	}
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = tx.now
	tx.state.tasks[id] = cloneTask(updated)
	tx.recordChange(Change{Entity: domain.KindTask, Action: domain.ActionUpdate, Before: before, After: cloneTask(updated)})
	return cloneTask(updated), nil
}

// DeleteTask removes a task.
func (tx *transaction) DeleteTask(id string) error {
	existing, ok := tx.state.tasks[id]
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}
	delete(tx.state.tasks, id)
	tx.recordChange(Change{Entity: domain.KindTask, Action: domain.ActionDelete, Before: cloneTask(existing)})
	return nil
}

// CreateComment inserts a comment, assigning id and timestamps.
func (tx *transaction) CreateComment(comment Comment) (Comment, error) {
	if comment.ID == "" {
		comment.ID = newID()
	}
	if _, exists := tx.state.comments[comment.ID]; exists {
		return Comment{}, fmt.Errorf("comment %s already exists", comment.ID)
	}
	comment.CreatedAt = tx.now
	comment.UpdatedAt = tx.now
	tx.state.comments[comment.ID] = cloneComment(comment)
	tx.recordChange(Change{Entity: domain.KindComment, Action: domain.ActionCreate, After: cloneComment(comment)})
	return cloneComment(comment), nil
}

// UpdateComment applies mutator to an existing comment.
func (tx *transaction) UpdateComment(id string, mutator func(*Comment) error) (Comment, error) {
	existing, ok := tx.state.comments[id]
	if !ok {
		return Comment{}, fmt.Errorf("comment %s not found", id)
	}
	before := cloneComment(existing)
	updated := cloneComment(existing)
	if err := mutator(&updated); err != nil {
		return Comment{}, err
	}
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = tx.now
	tx.state.comments[id] = cloneComment(updated)
	tx.recordChange(Change{Entity: domain.KindComment, Action: domain.ActionUpdate, Before: before, After: cloneComment(updated)})
	return cloneComment(updated), nil
}

// DeleteComment removes a comment.
func (tx *transaction) DeleteComment(id string) error {
	existing, ok := tx.state.comments[id]
	if !ok {
		return fmt.Errorf("comment %s not found", id)
	}
	delete(tx.state.comments, id)
	tx.recordChange(Change{Entity: domain.KindComment, Action: domain.ActionDelete, Before: cloneComment(existing)})
	return nil
}

// CreateChat inserts a chat, assigning id and timestamps.
func (tx *transaction) CreateChat(chat Chat) (Chat, error) {
	if chat.ID == "" {
		chat.ID = newID()
	}
	if _, exists := tx.state.chats[chat.ID]; exists {
		return Chat{}, fmt.Errorf("chat %s already exists", chat.ID)
	}
	chat.CreatedAt = tx.now
	chat.UpdatedAt = tx.now
	tx.state.chats[chat.ID] = cloneChat(chat)
	tx.recordChange(Change{Entity: domain.KindChat, Action: domain.ActionCreate, After: cloneChat(chat)})
	return cloneChat(chat), nil
}

// UpdateChat applies mutator to an existing chat.
func (tx *transaction) UpdateChat(id string, mutator func(*Chat) error) (Chat, error) {
	existing, ok := tx.state.chats[id]
	if !ok {
		return Chat{}, fmt.Errorf("chat %s not found", id)
	}
	before := cloneChat(existing)
	updated := cloneChat(existing)
	if err := mutator(&updated); err != nil {
		return Chat{}, err
	}
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = tx.now
	tx.state.chats[id] = cloneChat(updated)
	tx.recordChange(Change{Entity: domain.KindChat, Action: domain.ActionUpdate, Before: before, After: cloneChat(updated)})
	return cloneChat(updated), nil
}

// DeleteChat removes a chat.
func (tx *transaction) DeleteChat(id string) error {
	existing, ok := tx.state.chats[id]
	if !ok {
		return fmt.Errorf("chat %s not found", id)
	}
	delete(tx.state.chats, id)
	tx.recordChange(Change{Entity: domain.KindChat, Action: domain.ActionDelete, Before: cloneChat(existing)})
	return nil
}

// CreateMember inserts a member, assigning id and timestamps.
func (tx *transaction) CreateMember(member Member) (Member, error) {
	if member.ID == "" {
		member.ID = newID()
	}
	if _, exists := tx.state.members[member.ID]; exists {
		return Member{}, fmt.Errorf("member %s already exists", member.ID)
	}
	if member.Role == "" {
		member.Role = domain.RoleViewer
	}
	member.CreatedAt = tx.now
	member.UpdatedAt = tx.now
	tx.state.members[member.ID] = cloneMember(member)
	tx.recordChange(Change{Entity: domain.KindMember, Action: domain.ActionCreate, After: cloneMember(member)})
	return cloneMember(member), nil
}

// UpdateMember applies mutator to an existing member.
func (tx *transaction) UpdateMember(id string, mutator func(*Member) error) (Member, error) {
	existing, ok := tx.state.members[id]
	if !ok {
		return Member{}, fmt.Errorf("member %s not found", id)
	}
	before := cloneMember(existing)
	updated := cloneMember(existing)
	if err := mutator(&updated); err != nil {
		return Member{}, err
	}
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = tx.now
	tx.state.members[id] = cloneMember(updated)
	tx.recordChange(Change{Entity: domain.KindMember, Action: domain.ActionUpdate, Before: before, After: cloneMember(updated)})
	return cloneMember(updated), nil
}

// DeleteMember removes a member.
func (tx *transaction) DeleteMember(id string) error {
	existing, ok := tx.state.members[id]
	if !ok {
		return fmt.Errorf("member %s not found", id)
	}
	delete(tx.state.members, id)
	tx.recordChange(Change{Entity: domain.KindMember, Action: domain.ActionDelete, Before: cloneMember(existing)})
	return nil
}

// AppendEvent inserts an immutable event envelope. The id is assigned by the
// envelope factory, never here; an empty or duplicate id is an error.
func (tx *transaction) AppendEvent(event Event) (Event, error) {
	if event.ID == "" {
		return Event{}, fmt.Errorf("append event: %w", errEmptyID)
	}
	if _, exists := tx.state.events[event.ID]; exists {
		return Event{}, fmt.Errorf("event %s already exists", event.ID)
	}
	tx.state.events[event.ID] = cloneEvent(event)
	tx.recordChange(Change{Entity: domain.KindEvent, Action: domain.ActionCreate, After: cloneEvent(event)})
	return cloneEvent(event), nil
}

// AppendActivity inserts an activity projection. Re-deriving the same event
// overwrites the identical record, keeping the projection idempotent.
func (tx *transaction) AppendActivity(activity Activity) (Activity, error) {
	if activity.ID == "" {
		return Activity{}, fmt.Errorf("append activity: %w", errEmptyID)
	}
	tx.state.activities[activity.ID] = activity
	tx.recordChange(Change{Entity: domain.KindActivity, Action: domain.ActionCreate, After: activity})
	return activity, nil
}

// AppendNotification inserts a notification projection.
func (tx *transaction) AppendNotification(notification Notification) (Notification, error) {
	if notification.ID == "" {
		return Notification{}, fmt.Errorf("append notification: %w", errEmptyID)
	}
	tx.state.notifications[notification.ID] = notification
	tx.recordChange(Change{Entity: domain.KindNotification, Action: domain.ActionCreate, After: notification})
	return notification, nil
}

// transactionView exposes a read-only snapshot of the transactional state.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListScreens returns all screens within the snapshot.
func (v transactionView) ListScreens() []Screen {
	out := make([]Screen, 0, len(v.state.screens))
	for _, s := range v.state.screens {
		out = append(out, cloneScreen(s))
	}
	sortByID(out, func(s Screen) string { return s.ID })
	return out
}

// ListElements returns all elements within the snapshot.
func (v transactionView) ListElements() []Element {
	out := make([]Element, 0, len(v.state.elements))
	for _, e := range v.state.elements {
		out = append(out, cloneElement(e))
	}
	sortByID(out, func(e Element) string { return e.ID })
	return out
}

// ListComponents returns all components within the snapshot.
func (v transactionView) ListComponents() []Component {
	out := make([]Component, 0, len(v.state.components))
	for _, c := range v.state.components {
		out = append(out, cloneComponent(c))
	}
	sortByID(out, func(c Component) string { return c.ID })
	return out
}

// ListVariables returns all variables within the snapshot.
func (v transactionView) ListVariables() []Variable {
	out := make([]Variable, 0, len(v.state.variables))
	for _, vr := range v.state.variables {
		out = append(out, cloneVariable(vr))
	}
	sortByID(out, func(vr Variable) string { return vr.ID })
	return out
}

// ListTasks returns all tasks within the snapshot.
func (v transactionView) ListTasks() []Task {
	out := make([]Task, 0, len(v.state.tasks))
	for _, t := range v.state.tasks {
		out = append(out, cloneTask(t))
	}
	sortByID(out, func(t Task) string { return t.ID })
	return out
}

// ListComments returns all comments within the snapshot.
func (v transactionView) ListComments() []Comment {
	out := make([]Comment, 0, len(v.state.comments))
	for _, c := range v.state.comments {
		out = append(out, cloneComment(c))
	}
	sortByID(out, func(c Comment) string { return c.ID })
	return out
}

// ListChats returns all chats within the snapshot.
func (v transactionView) ListChats() []Chat {
	out := make([]Chat, 0, len(v.state.chats))
	for _, c := range v.state.chats {
		out = append(out, cloneChat(c))
	}
	sortByID(out, func(c Chat) string { return c.ID })
	return out
}

// ListMembers returns all members within the snapshot.
func (v transactionView) ListMembers() []Member {
	out := make([]Member, 0, len(v.state.members))
	for _, m := range v.state.members {
		out = append(out, cloneMember(m))
	}
	sortByID(out, func(m Member) string { return m.ID })
	return out
}

// ListEvents returns all events within the snapshot ordered by timestamp,
// then id for envelopes sharing a millisecond.
func (v transactionView) ListEvents() []Event {
	out := make([]Event, 0, len(v.state.events))
	for _, e := range v.state.events {
		out = append(out, cloneEvent(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ListActivities returns all activities within the snapshot.
func (v transactionView) ListActivities() []Activity {
	out := make([]Activity, 0, len(v.state.activities))
	for _, a := range v.state.activities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ListNotifications returns all notifications within the snapshot.
func (v transactionView) ListNotifications() []Notification {
	out := make([]Notification, 0, len(v.state.notifications))
	for _, n := range v.state.notifications {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FindScreen retrieves a screen by id from the snapshot.
func (v transactionView) FindScreen(id string) (Screen, bool) {
	s, ok := v.state.screens[id]
	if !ok {
		return Screen{}, false
	}
	return cloneScreen(s), true
}

// FindElement retrieves an element by id from the snapshot.
func (v transactionView) FindElement(id string) (Element, bool) {
	e, ok := v.state.elements[id]
	if !ok {
		return Element{}, false
	}
	return cloneElement(e), true
}

// FindComponent retrieves a component by id from the snapshot.
func (v transactionView) FindComponent(id string) (Component, bool) {
	c, ok := v.state.components[id]
	if !ok {
		return Component{}, false
	}
	return cloneComponent(c), true
}

// FindVariable retrieves a variable by id from the snapshot.
func (v transactionView) FindVariable(id string) (Variable, bool) {
	vr, ok := v.state.variables[id]
	if !ok {
		return Variable{}, false
	}
	return cloneVariable(vr), true
}

// FindTask retrieves a task by id from the snapshot.
func (v transactionView) FindTask(id string) (Task, bool) {
	t, ok := v.state.tasks[id]
	if !ok {
		return Task{}, false
	}
	return cloneTask(t), true
}

// FindComment retrieves a comment by id from the snapshot.
func (v transactionView) FindComment(id string) (Comment, bool) {
	c, ok := v.state.comments[id]
	if !ok {
		return Comment{}, false
	}
	return cloneComment(c), true
}

// FindChat retrieves a chat by id from the snapshot.
func (v transactionView) FindChat(id string) (Chat, bool) {
	c, ok := v.state.chats[id]
	if !ok {
		return Chat{}, false
	}
	return cloneChat(c), true
}

// FindMember retrieves a member by id from the snapshot.
func (v transactionView) FindMember(id string) (Member, bool) {
	m, ok := v.state.members[id]
	if !ok {
		return Member{}, false
	}
	return cloneMember(m), true
}

// FindEvent retrieves an event by id from the snapshot.
func (v transactionView) FindEvent(id string) (Event, bool) {
	e, ok := v.state.events[id]
	if !ok {
		return Event{}, false
	}
	return cloneEvent(e), true
}

func sortByID[T any](items []T, id func(T) string) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}

// GetScreen retrieves a screen by id from committed state.
func (s *Store) GetScreen(id string) (Screen, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.state.screens[id]
	if !ok {
		return Screen{}, false
	}
	return cloneScreen(sc), true
}

// GetElement retrieves an element by id from committed state.
func (s *Store) GetElement(id string) (Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.state.elements[id]
	if !ok {
		return Element{}, false
	}
	return cloneElement(e), true
}

// GetComponent retrieves a component by id from committed state.
func (s *Store) GetComponent(id string) (Component, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.components[id]
	if !ok {
		return Component{}, false
	}
	return cloneComponent(c), true
}

// GetVariable retrieves a variable by id from committed state.
func (s *Store) GetVariable(id string) (Variable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.variables[id]
	if !ok {
		return Variable{}, false
	}
	return cloneVariable(v), true
}

// GetTask retrieves a task by id from committed state.
func (s *Store) GetTask(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.state.tasks[id]
	if !ok {
		return Task{}, false
	}
	return cloneTask(t), true
}

// GetComment retrieves a comment by id from committed state.
func (s *Store) GetComment(id string) (Comment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.comments[id]
	if !ok {
		return Comment{}, false
	}
	return cloneComment(c), true
}

// GetChat retrieves a chat by id from committed state.
func (s *Store) GetChat(id string) (Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.chats[id]
	if !ok {
		return Chat{}, false
	}
	return cloneChat(c), true
}

// GetMember retrieves a member by id from committed state.
func (s *Store) GetMember(id string) (Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.state.members[id]
	if !ok {
		return Member{}, false
	}
	return cloneMember(m), true
}

// ListScreens returns all committed screens.
func (s *Store) ListScreens() []Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListScreens()
}

// ListElements returns all committed elements.
func (s *Store) ListElements() []Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListElements()
}

// ListComponents returns all committed components.
func (s *Store) ListComponents() []Component {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListComponents()
}

// ListVariables returns all committed variables.
func (s *Store) ListVariables() []Variable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListVariables()
}

// ListTasks returns all committed tasks.
func (s *Store) ListTasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListTasks()
}

// ListComments returns all committed comments.
func (s *Store) ListComments() []Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListComments()
}

// ListChats returns all committed chats.
func (s *Store) ListChats() []Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListChats()
}

// ListMembers returns all committed members.
func (s *Store) ListMembers() []Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListMembers()
}

// ListEvents returns all committed events in timestamp order.
func (s *Store) ListEvents() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListEvents()
}

// ListActivities returns all committed activities in creation order.
func (s *Store) ListActivities() []Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListActivities()
}

// ListNotifications returns all committed notifications in creation order.
func (s *Store) ListNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListNotifications()
}

package domain

import "context"

// Transaction exposes the workspace operations a persistence implementation
// must support within an atomic scope. Events and their projections are
// append-only; there are no update or delete operations for them.
type Transaction interface {
	Snapshot() TransactionView
	CreateScreen(Screen) (Screen, error)
	UpdateScreen(id string, mutator func(*Screen) error) (Screen, error)
	DeleteScreen(id string) error
	CreateElement(Element) (Element, error)
	UpdateElement(id string, mutator func(*Element) error) (Element, error)
	DeleteElement(id string) error
	CreateComponent(Component) (Component, error)
	UpdateComponent(id string, mutator func(*Component) error) (Component, error)
	DeleteComponent(id string) error
	CreateVariable(Variable) (Variable, error)
	UpdateVariable(id string, mutator func(*Variable) error) (Variable, error)
	DeleteVariable(id string) error
	CreateTask(Task) (Task, error)
	UpdateTask(id string, mutator func(*Task) error) (Task, error)
	DeleteTask(id string) error
	CreateComment(Comment) (Comment, error)
	UpdateComment(id string, mutator func(*Comment) error) (Comment, error)
	DeleteComment(id string) error
	CreateChat(Chat) (Chat, error)
	UpdateChat(id string, mutator func(*Chat) error) (Chat, error)
	DeleteChat(id string) error
	CreateMember(Member) (Member, error)
	UpdateMember(id string, mutator func(*Member) error) (Member, error)
	DeleteMember(id string) error
	AppendEvent(Event) (Event, error)
	AppendActivity(Activity) (Activity, error)
	AppendNotification(Notification) (Notification, error)
	FindScreen(id string) (Screen, bool)
	FindMember(id string) (Member, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView interface {
	RuleView
	ListEvents() []Event
	ListActivities() []Activity
	ListNotifications() []Notification
	FindEvent(id string) (Event, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetScreen(id string) (Screen, bool)
	GetElement(id string) (Element, bool)
	GetComponent(id string) (Component, bool)
	GetVariable(id string) (Variable, bool)
	GetTask(id string) (Task, bool)
	GetComment(id string) (Comment, bool)
	GetChat(id string) (Chat, bool)
	GetMember(id string) (Member, bool)
	ListScreens() []Screen
	ListElements() []Element
	ListComponents() []Component
	ListVariables() []Variable
	ListTasks() []Task
	ListComments() []Comment
	ListChats() []Chat
	ListMembers() []Member
	ListEvents() []Event
	ListActivities() []Activity
	ListNotifications() []Notification
}

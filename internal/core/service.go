package core

import (
	"context"
	"fmt"
	"time"

	"canvascore/internal/infra/persistence/memory"
	"canvascore/pkg/domain"
)

// NotFoundError is returned when reference validation fails within
// transactional helpers.
type NotFoundError struct {
	Entity EntityKind
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// EventPublisher forwards committed envelopes to an external stream. Publish
// failures never roll back the transaction that produced the event; they are
// reported through the service logger.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Service exposes higher-level transactional operations for the workspace:
// entity CRUD, selection, and the event pipeline that derives activity and
// notification projections.
type Service struct {
	store     PersistentStore
	projector *Projector
	selection *SelectionState
	registry  *Registry
	log       Logger
	clock     func() time.Time
	metrics   MetricsRecorder
	tracer    Tracer
	publisher EventPublisher
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger overrides the diagnostic logger.
func WithLogger(log Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source used for envelope timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMetrics attaches a metrics recorder to every service operation.
func WithMetrics(rec MetricsRecorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// WithTracer attaches a tracer to every service operation.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

// WithEventPublisher attaches a stream sink for committed envelopes.
func WithEventPublisher(pub EventPublisher) Option {
	return func(s *Service) { s.publisher = pub }
}

// WithProjector overrides the default projection tables.
func WithProjector(p *Projector) Option {
	return func(s *Service) {
		if p != nil {
			s.projector = p
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:     store,
		projector: NewProjector(),
		selection: NewSelectionState(),
		log:       NopLogger(),
		clock:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry = BuildRegistry(store, s.selection, s.log)
	return s
}

// NewInMemoryService creates a service and in-memory store with the given
// rules engine.
func NewInMemoryService(engine *RulesEngine, opts ...Option) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

// Registry returns the capability registry assembled over the store.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Accessor binds a generic accessor to kind and id.
func (s *Service) Accessor(kind EntityKind, id string) Accessor {
	return NewAccessor(s.registry, kind, id)
}

// run wraps an operation with tracing and metrics.
func (s *Service) run(ctx context.Context, operation string, fn func(context.Context) error) error {
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	started := s.clock()
	err := fn(ctx)
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil, s.clock().Sub(started))
	}
	if span != nil {
		span.End(err)
	}
	return err
}

// CreateScreen persists a new screen.
func (s *Service) CreateScreen(ctx context.Context, screen Screen) (Screen, Result, error) {
	var created Screen
	var res Result
	err := s.run(ctx, "create_screen", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = tx.CreateScreen(screen)
			return txErr
		})
		return err
	})
	return created, res, err
}

// UpdateScreen mutates a screen using the provided mutator.
func (s *Service) UpdateScreen(ctx context.Context, id string, mutator func(*Screen) error) (Screen, Result, error) {
	var updated Screen
	var res Result
	err := s.run(ctx, "update_screen", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateScreen(id, mutator)
			return txErr
		})
		return err
	})
	return updated, res, err
}

// DeleteScreen removes a screen record.
func (s *Service) DeleteScreen(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.run(ctx, "delete_screen", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteScreen(id)
		})
		return err
	})
	return res, err
}

// CreateElement persists a new element.
func (s *Service) CreateElement(ctx context.Context, element Element) (Element, Result, error) {
	var created Element
	var res Result
	err := s.run(ctx, "create_element", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = tx.CreateElement(element)
			return txErr
		})
		return err
	})
	return created, res, err
}

// UpdateElement mutates an element using the provided mutator.
func (s *Service) UpdateElement(ctx context.Context, id string, mutator func(*Element) error) (Element, Result, error) {
	var updated Element
	var res Result
	err := s.run(ctx, "update_element", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateElement(id, mutator)
			return txErr
		})
		return err
	})
	return updated, res, err
}

// DeleteElement removes an element record.
func (s *Service) DeleteElement(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.run(ctx, "delete_element", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteElement(id)
		})
		return err
	})
	return res, err
}

// MoveElement re-parents an element to a new owner within a transaction that
// validates the target exists.
func (s *Service) MoveElement(ctx context.Context, elementID string, owner OwnerRef) (Element, Result, error) {
	var updated Element
	var res Result
	err := s.run(ctx, "move_element", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			switch owner.Kind {
			case KindScreen:
				if _, ok := tx.FindScreen(owner.ID); !ok {
					return NotFoundError{Entity: KindScreen, ID: owner.ID}
				}
			case KindElement:
				if _, ok := tx.Snapshot().FindElement(owner.ID); !ok {
					return NotFoundError{Entity: KindElement, ID: owner.ID}
				}
			default:
				return fmt.Errorf("element cannot be owned by %s", owner.Kind)
			}
			var txErr error
			updated, txErr = tx.UpdateElement(elementID, func(e *Element) error {
				ref := owner
				e.Ownership = &ref
				return nil
			})
			return txErr
		})
		return err
	})
	return updated, res, err
}

// CreateComponent persists a new component.
func (s *Service) CreateComponent(ctx context.Context, component Component) (Component, Result, error) {
	var created Component
	var res Result
	err := s.run(ctx, "create_component", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = tx.CreateComponent(component)
			return txErr
		})
		return err
	})
	return created, res, err
}

// PublishComponent marks a component published and bumps its version.
func (s *Service) PublishComponent(ctx context.Context, id string) (Component, Result, error) {
	var updated Component
	var res Result
	err := s.run(ctx, "publish_component", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateComponent(id, func(c *Component) error {
				c.Published = true
				c.Version++
				return nil
			})
			return txErr
		})
		return err
	})
	return updated, res, err
}

// UpdateComponent mutates a component using the provided mutator.
func (s *Service) UpdateComponent(ctx context.Context, id string, mutator func(*Component) error) (Component, Result, error) {
	var updated Component
	var res Result
	err := s.run(ctx, "update_component", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateComponent(id, mutator)
			return txErr
		})
		return err
	})
	return updated, res, err
}

// DeleteComponent removes a component record.
func (s *Service) DeleteComponent(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.run(ctx, "delete_component", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteComponent(id)
		})
		return err
	})
	return res, err
}

// CreateVariable persists a new variable.
func (s *Service) CreateVariable(ctx context.Context, variable Variable) (Variable, Result, error) {
	var created Variable
	var res Result
	err := s.run(ctx, "create_variable", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = tx.CreateVariable(variable)
			return txErr
		})
		return err
	})
	return created, res, err
}

// UpdateVariable mutates a variable using the provided mutator.
func (s *Service) UpdateVariable(ctx context.Context, id string, mutator func(*Variable) error) (Variable, Result, error) {
	var updated Variable
	var res Result
	err := s.run(ctx, "update_variable", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateVariable(id, mutator)
			return txErr
		})
		return err
	})
	return updated, res, err
}

// DeleteVariable removes a variable record.
func (s *Service) DeleteVariable(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.run(ctx, "delete_variable", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteVariable(id)
		})
		return err
	})
	return res, err
}

// CreateTask persists a new task.
func (s *Service) CreateTask(ctx context.Context, task Task) (Task, Result, error) {
	var created Task
	var res Result
	err := s.run(ctx, "create_task", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = tx.CreateTask(task)
			return txErr
		})
		return err
	})
	return created, res, err
}

// UpdateTask mutates a task using the provided mutator.
func (s *Service) UpdateTask(ctx context.Context, id string, mutator func(*Task) error) (Task, Result, error) {
	var updated Task
	var res Result
	err := s.run(ctx, "update_task", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateTask(id, mutator)
			return txErr
		})
		return err
	})
	return updated, res, err
}

// DeleteTask removes a task record.
func (s *Service) DeleteTask(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.run(ctx, "delete_task", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteTask(id)
		})
		return err
	})
	return res, err
}

// AssignTask links a task to a member within a transaction that validates
// the member exists.
func (s *Service) AssignTask(ctx context.Context, taskID, memberID string) (Task, Result, error) {
	var updated Task
	var res Result
	err := s.run(ctx, "assign_task", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, ok := tx.FindMember(memberID); !ok {
				return NotFoundError{Entity: KindMember, ID: memberID}
			}
			var txErr error
			updated, txErr = tx.UpdateTask(taskID, func(t *Task) error {
				t.AssigneeID = &memberID
				return nil
			})
			return txErr
		})
		return err
	})
	return updated, res, err
}

// CreateComment persists a new comment.
func (s *Service) CreateComment(ctx context.Context, comment Comment) (Comment, Result, error) {
	var created Comment
	var res Result
	err := s.run(ctx, "create_comment", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = tx.CreateComment(comment)
			return txErr
		})
		return err
	})
	return created, res, err
}

// ResolveComment marks a comment resolved.
func (s *Service) ResolveComment(ctx context.Context, id string) (Comment, Result, error) {
	var updated Comment
	var res Result
	err := s.run(ctx, "resolve_comment", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateComment(id, func(c *Comment) error {
				c.Resolved = true
				return nil
			})
			return txErr
		})
		return err
	})
	return updated, res, err
}

// DeleteComment removes a comment record.
func (s *Service) DeleteComment(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.run(ctx, "delete_comment", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteComment(id)
		})
		return err
	})
	return res, err
}

// CreateChat persists a new chat thread.
func (s *Service) CreateChat(ctx context.Context, chat Chat) (Chat, Result, error) {
	var created Chat
	var res Result
	err := s.run(ctx, "create_chat", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = tx.CreateChat(chat)
			return txErr
		})
		return err
	})
	return created, res, err
}

// DeleteChat removes a chat record.
func (s *Service) DeleteChat(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.run(ctx, "delete_chat", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteChat(id)
		})
		return err
	})
	return res, err
}

// CreateMember persists a new workspace member.
func (s *Service) CreateMember(ctx context.Context, member Member) (Member, Result, error) {
	var created Member
	var res Result
	err := s.run(ctx, "create_member", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = tx.CreateMember(member)
			return txErr
		})
		return err
	})
	return created, res, err
}

// DeleteMember removes a member record.
func (s *Service) DeleteMember(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.run(ctx, "delete_member", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteMember(id)
		})
		return err
	})
	return res, err
}

// RecordEvent normalizes the payload into an envelope, persists it together
// with its activity projection (always) and notification projection (when
// the event type has a mapper), and forwards the envelope to the configured
// publisher after commit.
func (s *Service) RecordEvent(ctx context.Context, eventType EventType, memberID string, payload EventPayload) (Event, Result, error) {
	event := NewEventAt(eventType, memberID, payload, s.clock())
	var res Result
	err := s.run(ctx, "record_event", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, txErr := tx.AppendEvent(event); txErr != nil {
				return txErr
			}
			if _, txErr := tx.AppendActivity(s.projector.Activity(event)); txErr != nil {
				return txErr
			}
			if notification, ok := s.projector.Notification(event); ok {
				if _, txErr := tx.AppendNotification(notification); txErr != nil {
					return txErr
				}
			}
			return nil
		})
		return err
	})
	if err != nil {
		return Event{}, res, err
	}
	if s.publisher != nil {
		if pubErr := s.publisher.Publish(ctx, event); pubErr != nil {
			s.log.Warn("event publish failed", "event_id", event.ID, "type", string(eventType), "error", pubErr)
		}
	}
	return event, res, nil
}

// Tree reconstructs the element hierarchy under a root entity from the flat
// element list. Elements attach to the root through the given owner kind;
// nesting below the first level is always element-owned.
func (s *Service) Tree(rootID string, ownerKind EntityKind) ([]domain.Node[Element], error) {
	elements := s.store.ListElements()
	if ownerKind == domain.KindElement {
		return domain.BuildTree(elements, rootID, domain.KindElement)
	}
	var nodes []domain.Node[Element]
	for _, element := range elements {
		owner := element.Owner()
		if owner == nil || owner.Kind != ownerKind || owner.ID != rootID {
			continue
		}
		children, err := domain.BuildTree(elements, element.ID, domain.KindElement)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, domain.Node[Element]{Entity: element, Children: children})
	}
	return nodes, nil
}

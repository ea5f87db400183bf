// Package app provides application services that orchestrate use cases by
// coordinating between domain logic and infrastructure through port interfaces.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/telemetry"
	"github.com/jsamuelsen11/go-todo-service/internal/ports"
)

// Compile-time check that TodoService implements ports.TodoService.
var _ ports.TodoService = (*TodoService)(nil)

// timestampPrecision is the finest resolution every storage backend round-trips.
const timestampPrecision = time.Microsecond

// TodoService implements ports.TodoService on top of a TodoRepository. It
// assigns identifiers and timestamps, validates input and logs failures.
type TodoService struct {
	repo    ports.TodoRepository
	logger  *slog.Logger
	metrics *telemetry.Metrics // nil when telemetry is disabled
	now     func() time.Time
	newID   func() string
}

// Option configures a TodoService.
type Option func(*TodoService)

// WithClock overrides the time source used for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *TodoService) { s.now = now }
}

// WithIDGenerator overrides how new todo IDs are produced.
func WithIDGenerator(newID func() string) Option {
	return func(s *TodoService) { s.newID = newID }
}

// WithMetrics records successful mutations on the given instruments.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *TodoService) { s.metrics = m }
}

// NewTodoService creates a TodoService. A nil logger falls back to a
// discarding logger.
func NewTodoService(repo ports.TodoRepository, logger *slog.Logger, opts ...Option) *TodoService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &TodoService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTodo validates the draft and stores a new todo with CreatedAt equal to UpdatedAt.
func (s *TodoService) CreateTodo(ctx context.Context, ownerID string, draft todo.Draft) (*todo.Todo, error) {
	s.logger.InfoContext(ctx, "creating todo", slog.String("owner_id", ownerID))

	if err := draft.Validate(); err != nil {
		return nil, err
	}

	now := s.timestamp()
	td := &todo.Todo{
		ID:          s.newID(),
		Title:       draft.Title,
		Description: draft.Description,
		IsCompleted: draft.IsCompleted,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := td.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Insert(ctx, td)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create todo",
			slog.String("operation", "CreateTodo"),
			slog.String("owner_id", ownerID),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.recordMutation(ctx, "create")
	return created, nil
}

// GetTodo returns a single todo by ID.
func (s *TodoService) GetTodo(ctx context.Context, id, ownerID string) (*todo.Todo, error) {
	s.logger.InfoContext(ctx, "fetching todo", slog.String("id", id))

	td, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch todo",
			slog.String("operation", "GetTodo"),
			slog.String("id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	return td, nil
}

// ListTodos returns every todo of the owner, newest first.
func (s *TodoService) ListTodos(ctx context.Context, ownerID string) ([]todo.Todo, error) {
	s.logger.InfoContext(ctx, "listing todos", slog.String("owner_id", ownerID))

	todos, err := s.repo.ListAll(ctx, ownerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list todos",
			slog.String("operation", "ListTodos"),
			slog.String("owner_id", ownerID),
			slog.Any("error", err),
		)
		return nil, err
	}

	return todos, nil
}

// ListByStatus returns the owner's todos with the given completion flag.
func (s *TodoService) ListByStatus(ctx context.Context, ownerID string, isCompleted bool) ([]todo.Todo, error) {
	s.logger.InfoContext(ctx, "listing todos by status",
		slog.String("owner_id", ownerID),
		slog.Bool("is_completed", isCompleted),
	)

	todos, err := s.repo.ListByStatus(ctx, ownerID, isCompleted)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list todos by status",
			slog.String("operation", "ListByStatus"),
			slog.String("owner_id", ownerID),
			slog.Bool("is_completed", isCompleted),
			slog.Any("error", err),
		)
		return nil, err
	}

	return todos, nil
}

// UpdateTodo loads the todo, applies the present patch fields and stores it
// with a strictly later UpdatedAt.
func (s *TodoService) UpdateTodo(ctx context.Context, id, ownerID string, patch todo.Patch) (*todo.Todo, error) {
	s.logger.InfoContext(ctx, "updating todo", slog.String("id", id))

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load todo for update",
			slog.String("operation", "UpdateTodo"),
			slog.String("id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	current.Apply(patch)
	current.UpdatedAt = s.nextUpdatedAt(current.UpdatedAt)

	updated, err := s.repo.Replace(ctx, current)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update todo",
			slog.String("operation", "UpdateTodo"),
			slog.String("id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.recordMutation(ctx, "update")
	return updated, nil
}

// DeleteTodo removes a todo after confirming it exists for the owner.
func (s *TodoService) DeleteTodo(ctx context.Context, id, ownerID string) error {
	s.logger.InfoContext(ctx, "deleting todo", slog.String("id", id))

	if _, err := s.repo.GetByID(ctx, id, ownerID); err != nil {
		s.logger.ErrorContext(ctx, "failed to load todo for delete",
			slog.String("operation", "DeleteTodo"),
			slog.String("id", id),
			slog.Any("error", err),
		)
		return err
	}

	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete todo",
			slog.String("operation", "DeleteTodo"),
			slog.String("id", id),
			slog.Any("error", err),
		)
		return err
	}

	s.recordMutation(ctx, "delete")
	return nil
}

func (s *TodoService) recordMutation(ctx context.Context, op string) {
	if s.metrics == nil {
		return
	}
	s.metrics.TodoMutations.Add(ctx, 1, metric.WithAttributes(telemetry.AttrOperation.String(op)))
}

func (s *TodoService) timestamp() time.Time {
	return s.now().UTC().Truncate(timestampPrecision)
}

// nextUpdatedAt never returns a value at or before prev, even if the clock
// stalls or steps backwards.
func (s *TodoService) nextUpdatedAt(prev time.Time) time.Time {
	now := s.timestamp()
	if !now.After(prev) {
		return prev.Add(timestampPrecision)
	}
	return now
}

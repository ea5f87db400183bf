// Package store holds the terminal client's cached replica of the user's
// todos, the lifecycle of the last list request and the local view filter.
// Every mutation goes through a ports.TodoGateway; the store reconciles its
// cache only after the gateway succeeds.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/jsamuelsen11/go-todo-service/internal/app/fanout"
	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/go-todo-service/internal/ports"
)

// RequestStatus tracks the most recent list request.
type RequestStatus string

const (
	StatusIdle      RequestStatus = "idle"
	StatusLoading   RequestStatus = "loading"
	StatusSucceeded RequestStatus = "succeeded"
	StatusFailed    RequestStatus = "failed"
)

// defaultMaxWorkers bounds ClearCompleted's concurrent deletes.
const defaultMaxWorkers = 4

// State is a point-in-time copy of the store.
type State struct {
	Items     []todo.Todo
	Status    RequestStatus
	LastError string // empty when the last operation succeeded
	Filter    todo.ViewFilter
}

// Visible returns the items selected by the filter. It is derived on every
// call and never cached.
func (s State) Visible() []todo.Todo {
	return todo.Select(s.Items, s.Filter)
}

// Counts returns how many cached items are open and completed.
func (s State) Counts() (open, completed int) {
	for _, t := range s.Items {
		if t.IsCompleted {
			completed++
		} else {
			open++
		}
	}
	return open, completed
}

// Store is safe for concurrent use.
type Store struct {
	gateway    ports.TodoGateway
	logger     *slog.Logger
	message    func(error) string
	maxWorkers int

	mu    sync.Mutex
	state State
	subs  map[int]chan State
	next  int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for failed operations.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithErrorMessage sets how errors are rendered into LastError. The
// default is err.Error().
func WithErrorMessage(fn func(error) string) Option {
	return func(s *Store) { s.message = fn }
}

// WithMaxWorkers bounds the number of concurrent requests ClearCompleted
// issues.
func WithMaxWorkers(n int) Option {
	return func(s *Store) { s.maxWorkers = n }
}

// New creates an idle Store showing all items.
func New(gateway ports.TodoGateway, opts ...Option) *Store {
	s := &Store{
		gateway:    gateway,
		logger:     slog.New(slog.DiscardHandler),
		message:    func(err error) string { return err.Error() },
		maxWorkers: defaultMaxWorkers,
		state:      State{Items: []todo.Todo{}, Status: StatusIdle, Filter: todo.FilterAll},
		subs:       make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Visible returns the filtered view of the current items.
func (s *Store) Visible() []todo.Todo {
	return s.Snapshot().Visible()
}

// Subscribe returns a channel that receives the latest state after every
// change, and a function that cancels the subscription. Slow readers only
// see the most recent state.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	ch := make(chan State, 1)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// SetFilter changes the view filter. No request is made.
func (s *Store) SetFilter(f todo.ViewFilter) error {
	if !f.IsValid() {
		return fmt.Errorf("store: invalid filter %q", f)
	}
	s.update(func(st *State) { st.Filter = f })
	return nil
}

// FetchAll replaces the cached items with the server's full list.
func (s *Store) FetchAll(ctx context.Context) error {
	return s.load(ctx, "fetch all", s.gateway.ListTodos)
}

// FetchByStatus replaces the cached items with the server's completed or
// open todos.
func (s *Store) FetchByStatus(ctx context.Context, isCompleted bool) error {
	return s.load(ctx, "fetch by status", func(ctx context.Context) ([]todo.Todo, error) {
		return s.gateway.ListByStatus(ctx, isCompleted)
	})
}

// Create sends the draft and appends the stored todo to the end of the
// cached items.
func (s *Store) Create(ctx context.Context, d todo.Draft) (*todo.Todo, error) {
	created, err := s.gateway.CreateTodo(ctx, d)
	if err != nil {
		s.fail(ctx, "create", err)
		return nil, err
	}
	s.update(func(st *State) {
		st.Items = append(st.Items, *created)
		st.LastError = ""
	})
	return created, nil
}

// Update sends the patch and replaces the cached item with the same ID.
// An item missing from the cache is left missing.
func (s *Store) Update(ctx context.Context, id string, p todo.Patch) (*todo.Todo, error) {
	updated, err := s.gateway.UpdateTodo(ctx, id, p)
	if err != nil {
		s.fail(ctx, "update", err, slog.String("todo_id", id))
		return nil, err
	}
	s.update(func(st *State) {
		if i := indexOf(st.Items, updated.ID); i >= 0 {
			st.Items[i] = *updated
		}
		st.LastError = ""
	})
	return updated, nil
}

// Toggle flips the completion flag of a cached item.
func (s *Store) Toggle(ctx context.Context, id string) (*todo.Todo, error) {
	s.mu.Lock()
	i := indexOf(s.state.Items, id)
	var completed bool
	if i >= 0 {
		completed = s.state.Items[i].IsCompleted
	}
	s.mu.Unlock()

	if i < 0 {
		return nil, fmt.Errorf("store: todo %s is not cached", id)
	}
	return s.Update(ctx, id, todo.Patch{IsCompleted: domain.Some(!completed)})
}

// Delete removes the todo on the server and then from the cache.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.gateway.DeleteTodo(ctx, id); err != nil {
		s.fail(ctx, "delete", err, slog.String("todo_id", id))
		return err
	}
	s.update(func(st *State) {
		st.Items = removeIDs(st.Items, id)
		st.LastError = ""
	})
	return nil
}

// ClearCompleted deletes every cached completed todo. Each successful delete
// removes its item; failed ones stay cached and the first failure becomes
// LastError. It returns the number of deleted todos.
func (s *Store) ClearCompleted(ctx context.Context) (int, error) {
	var ids []string
	for _, t := range s.Snapshot().Items {
		if t.IsCompleted {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	results := fanout.Run(ctx, s.maxWorkers, ids, func(ctx context.Context, id string) (string, error) {
		return id, s.gateway.DeleteTodo(ctx, id)
	})

	deleted := make([]string, 0, len(ids))
	for i, r := range results {
		if r.Err == nil {
			deleted = append(deleted, ids[i])
		}
	}
	firstErr := fanout.FirstError(results)

	s.update(func(st *State) {
		st.Items = removeIDs(st.Items, deleted...)
		if firstErr != nil {
			st.LastError = s.message(firstErr)
		} else {
			st.LastError = ""
		}
	})
	if firstErr != nil {
		s.logger.ErrorContext(ctx, "clear completed failed",
			slog.Int("deleted", len(deleted)),
			slog.Int("failed", len(ids)-len(deleted)),
			slog.Any("error", firstErr),
		)
	}
	return len(deleted), firstErr
}

// load runs a list request through the idle/loading/succeeded/failed cycle.
func (s *Store) load(ctx context.Context, op string, list func(context.Context) ([]todo.Todo, error)) error {
	s.update(func(st *State) { st.Status = StatusLoading })

	items, err := list(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "list failed", slog.String("operation", op), slog.Any("error", err))
		s.update(func(st *State) {
			st.Status = StatusFailed
			st.LastError = s.message(err)
		})
		return err
	}

	s.update(func(st *State) {
		st.Items = slices.Clone(items)
		if st.Items == nil {
			st.Items = []todo.Todo{}
		}
		st.Status = StatusSucceeded
		st.LastError = ""
	})
	return nil
}

// fail records a mutation failure. Status and Items are left untouched.
func (s *Store) fail(ctx context.Context, op string, err error, attrs ...any) {
	s.logger.ErrorContext(ctx, "mutation failed",
		append([]any{slog.String("operation", op), slog.Any("error", err)}, attrs...)...)
	s.update(func(st *State) { st.LastError = s.message(err) })
}

// update applies fn under the lock and notifies subscribers.
func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		// Replace any unread state with the latest one.
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (s *Store) snapshotLocked() State {
	st := s.state
	st.Items = slices.Clone(s.state.Items)
	return st
}

func indexOf(items []todo.Todo, id string) int {
	return slices.IndexFunc(items, func(t todo.Todo) bool { return t.ID == id })
}

func removeIDs(items []todo.Todo, ids ...string) []todo.Todo {
	return slices.DeleteFunc(items, func(t todo.Todo) bool { return slices.Contains(ids, t.ID) })
}

package ports

import (
	"context"

	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
)

// TodoRepository is the persistence gateway for todos. Every method is scoped
// to a single owner; records belonging to other owners behave as absent.
// Lists are ordered by creation time, newest first, ties broken by ID.
type TodoRepository interface {
	// ListAll returns every todo of the owner.
	ListAll(ctx context.Context, ownerID string) ([]todo.Todo, error)

	// GetByID returns one todo.
	// Returns domain.ErrNotFound if no todo with that ID exists for the owner.
	GetByID(ctx context.Context, id, ownerID string) (*todo.Todo, error)

	// Insert persists a new todo exactly as given.
	// Returns domain.ErrConflict if the ID is already taken.
	Insert(ctx context.Context, t *todo.Todo) (*todo.Todo, error)

	// Replace overwrites every mutable field of an existing todo.
	// Returns domain.ErrNotFound if the todo disappeared concurrently.
	Replace(ctx context.Context, t *todo.Todo) (*todo.Todo, error)

	// Delete removes a todo. Deleting an absent todo is not an error.
	Delete(ctx context.Context, id, ownerID string) error

	// ListByStatus returns the owner's todos whose completion flag matches.
	ListByStatus(ctx context.Context, ownerID string, isCompleted bool) ([]todo.Todo, error)
}

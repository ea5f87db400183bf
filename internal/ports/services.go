package ports

import (
	"context"

	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
)

// TodoService defines the service port for todo use cases.
// Implemented by the application layer; called by inbound adapters (handlers).
// The owner identifier always comes from a verified credential and is passed
// explicitly on every call.
type TodoService interface {
	// CreateTodo validates the draft and stores a new todo with a fresh ID.
	// Returns domain.ErrValidation if the draft fails validation.
	CreateTodo(ctx context.Context, ownerID string, draft todo.Draft) (*todo.Todo, error)

	// GetTodo returns a single todo.
	// Returns domain.ErrNotFound if the todo does not exist for the owner.
	GetTodo(ctx context.Context, id, ownerID string) (*todo.Todo, error)

	// ListTodos returns the owner's todos, newest first.
	ListTodos(ctx context.Context, ownerID string) ([]todo.Todo, error)

	// ListByStatus returns the owner's completed or open todos, newest first.
	ListByStatus(ctx context.Context, ownerID string, isCompleted bool) ([]todo.Todo, error)

	// UpdateTodo applies the present fields of the patch and refreshes UpdatedAt.
	// Returns domain.ErrNotFound if the todo does not exist for the owner.
	// Returns domain.ErrValidation if the patch fails validation.
	UpdateTodo(ctx context.Context, id, ownerID string, patch todo.Patch) (*todo.Todo, error)

	// DeleteTodo removes a todo.
	// Returns domain.ErrNotFound if the todo does not exist for the owner.
	DeleteTodo(ctx context.Context, id, ownerID string) error
}

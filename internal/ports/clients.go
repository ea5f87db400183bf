package ports

import (
	"context"

	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
)

// TodoGateway defines the client port for the remote todo API.
// Implemented by the HTTP client adapter; called by the client state store.
// Each method performs exactly one request. The caller's identity travels as
// a bearer credential, so no owner parameter appears here.
type TodoGateway interface {
	// ListTodos returns all todos of the authenticated user, newest first.
	ListTodos(ctx context.Context) ([]todo.Todo, error)

	// GetTodo returns a single todo by ID.
	// Returns an error wrapping domain.ErrNotFound if the todo does not exist.
	GetTodo(ctx context.Context, id string) (*todo.Todo, error)

	// CreateTodo creates a todo and returns the stored entity.
	CreateTodo(ctx context.Context, draft todo.Draft) (*todo.Todo, error)

	// UpdateTodo sends a partial update and returns the stored entity.
	UpdateTodo(ctx context.Context, id string, patch todo.Patch) (*todo.Todo, error)

	// DeleteTodo deletes a todo by ID.
	DeleteTodo(ctx context.Context, id string) error

	// ListByStatus returns the completed or open todos, newest first.
	ListByStatus(ctx context.Context, isCompleted bool) ([]todo.Todo, error)
}

package todoapi

import (
	"fmt"
	"time"

	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
)

// todoDTO matches the server's Todo representation.
type todoDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsCompleted bool   `json:"isCompleted"`
	UserID      string `json:"userId"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// createRequestDTO is the POST /todos body.
type createRequestDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsCompleted bool   `json:"isCompleted"`
}

// updateRequestDTO is the PUT /todos/{id} body. Nil fields are omitted so
// the server leaves them unchanged.
type updateRequestDTO struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsCompleted *bool   `json:"isCompleted,omitempty"`
}

func toDomainTodo(d *todoDTO) (todo.Todo, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, d.CreatedAt)
	if err != nil {
		return todo.Todo{}, fmt.Errorf("parsing createdAt: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, d.UpdatedAt)
	if err != nil {
		return todo.Todo{}, fmt.Errorf("parsing updatedAt: %w", err)
	}

	return todo.Todo{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		IsCompleted: d.IsCompleted,
		OwnerID:     d.UserID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func toDomainTodoList(ds []todoDTO) ([]todo.Todo, error) {
	todos := make([]todo.Todo, len(ds))
	for i := range ds {
		t, err := toDomainTodo(&ds[i])
		if err != nil {
			return nil, err
		}
		todos[i] = t
	}
	return todos, nil
}

func toCreateRequest(d todo.Draft) createRequestDTO {
	return createRequestDTO{
		Title:       d.Title,
		Description: d.Description,
		IsCompleted: d.IsCompleted,
	}
}

func toUpdateRequest(p todo.Patch) updateRequestDTO {
	var req updateRequestDTO
	if v, ok := p.Title.Get(); ok {
		req.Title = &v
	}
	if v, ok := p.Description.Get(); ok {
		req.Description = &v
	}
	if v, ok := p.IsCompleted.Get(); ok {
		req.IsCompleted = &v
	}
	return req
}

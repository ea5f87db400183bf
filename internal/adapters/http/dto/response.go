// Package dto provides HTTP request/response data transfer objects and
// RFC 9457 Problem Details error responses for the inbound HTTP adapter layer.
package dto

import (
	"time"

	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
)

// TimeFormat is the wire format for timestamps: RFC 3339 with nanoseconds.
const TimeFormat = time.RFC3339Nano

// TodoResponse represents a single TODO item in HTTP responses.
type TodoResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsCompleted bool   `json:"isCompleted"`
	UserID      string `json:"userId"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// ToTodoResponse converts a domain Todo entity to an HTTP response DTO.
func ToTodoResponse(t *todo.Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		UserID:      t.OwnerID,
		CreatedAt:   t.CreatedAt.UTC().Format(TimeFormat),
		UpdatedAt:   t.UpdatedAt.UTC().Format(TimeFormat),
	}
}

// ToTodoListResponse converts a slice of domain Todos to the JSON array
// returned by list endpoints. The result is never nil so an empty list
// encodes as [].
func ToTodoListResponse(todos []todo.Todo) []TodoResponse {
	items := make([]TodoResponse, len(todos))
	for i := range todos {
		items[i] = ToTodoResponse(&todos[i])
	}
	return items
}

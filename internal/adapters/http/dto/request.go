package dto

import (
	"bytes"
	"encoding/json"

	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
)

// Field is a JSON value that remembers whether its key was present and
// whether it was explicitly null. An omitted key leaves Set false.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

// CreateTodoRequest represents the JSON body for creating a new TODO item.
type CreateTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsCompleted bool   `json:"isCompleted"`
}

// Validate applies the creation rules to the request.
// Returns a *domain.ValidationError if any checks fail.
func (r *CreateTodoRequest) Validate() error {
	return r.ToDraft().Validate()
}

// ToDraft converts the request to a domain creation payload.
func (r *CreateTodoRequest) ToDraft() todo.Draft {
	return todo.Draft{
		Title:       r.Title,
		Description: r.Description,
		IsCompleted: r.IsCompleted,
	}
}

// UpdateTodoRequest represents the JSON body for updating an existing TODO
// item. Omitted keys are left unchanged. A null description clears it;
// null is rejected for title and isCompleted.
type UpdateTodoRequest struct {
	Title       Field[string] `json:"title"`
	Description Field[string] `json:"description"`
	IsCompleted Field[bool]   `json:"isCompleted"`
}

// Validate checks null handling and the field rules of the resulting patch.
// Returns a *domain.ValidationError if any checks fail.
func (r *UpdateTodoRequest) Validate() error {
	fields := make(map[string]string)

	if r.Title.Null {
		fields["title"] = domain.MsgNotNull
	}
	if r.IsCompleted.Null {
		fields["isCompleted"] = domain.MsgNotNull
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}

	return r.ToPatch().Validate()
}

// ToPatch converts the request to a domain partial update.
func (r *UpdateTodoRequest) ToPatch() todo.Patch {
	var p todo.Patch
	if r.Title.Set && !r.Title.Null {
		p.Title = domain.Some(r.Title.Value)
	}
	if r.Description.Set {
		// Null clears the description.
		p.Description = domain.Some(r.Description.Value)
	}
	if r.IsCompleted.Set && !r.IsCompleted.Null {
		p.IsCompleted = domain.Some(r.IsCompleted.Value)
	}
	return p
}

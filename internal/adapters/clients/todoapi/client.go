// Package todoapi is the client-side gateway to the todo REST API. It turns
// each gateway operation into exactly one HTTP call through
// httpclient.Client and normalizes every failure into *ServerError,
// *NoResponseError, or *RequestSetupError.
package todoapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/httpclient"
	"github.com/jsamuelsen11/go-todo-service/internal/ports"
)

// Compile-time interface checks.
var (
	_ ports.TodoGateway   = (*Client)(nil)
	_ ports.HealthChecker = (*Client)(nil)
)

// Client implements ports.TodoGateway over HTTP. The httpclient.Client's
// base URL should point at the API root, e.g. "http://localhost:8080/api".
type Client struct {
	http *httpclient.Client
	req  *requester
}

// New creates a Client. tokens may be nil for unauthenticated servers.
func New(client *httpclient.Client, tokens TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		http: client,
		req:  &requester{client: client, tokens: tokens, logger: logger},
	}
}

// ListTodos fetches GET /todos.
func (c *Client) ListTodos(ctx context.Context) ([]todo.Todo, error) {
	return c.list(ctx, "/todos")
}

// ListByStatus fetches GET /todos/status/{isCompleted}.
func (c *Client) ListByStatus(ctx context.Context, isCompleted bool) ([]todo.Todo, error) {
	return c.list(ctx, "/todos/status/"+strconv.FormatBool(isCompleted))
}

// GetTodo fetches GET /todos/{id}.
func (c *Client) GetTodo(ctx context.Context, id string) (*todo.Todo, error) {
	var dto todoDTO
	if err := c.req.do(ctx, http.MethodGet, todoPath(id), http.StatusOK, nil, &dto); err != nil {
		return nil, err
	}
	return decodeOne(&dto, http.StatusOK)
}

// CreateTodo sends POST /todos and returns the stored todo.
func (c *Client) CreateTodo(ctx context.Context, d todo.Draft) (*todo.Todo, error) {
	var dto todoDTO
	if err := c.req.do(ctx, http.MethodPost, "/todos", http.StatusCreated, toCreateRequest(d), &dto); err != nil {
		return nil, err
	}
	return decodeOne(&dto, http.StatusCreated)
}

// UpdateTodo sends PUT /todos/{id} carrying only the fields present in p.
func (c *Client) UpdateTodo(ctx context.Context, id string, p todo.Patch) (*todo.Todo, error) {
	var dto todoDTO
	if err := c.req.do(ctx, http.MethodPut, todoPath(id), http.StatusOK, toUpdateRequest(p), &dto); err != nil {
		return nil, err
	}
	return decodeOne(&dto, http.StatusOK)
}

// DeleteTodo sends DELETE /todos/{id}.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.req.do(ctx, http.MethodDelete, todoPath(id), http.StatusNoContent, nil, nil)
}

// Logout asks the server to revoke the current credential with
// POST /auth/logout. The stored token itself is left for the caller to drop.
func (c *Client) Logout(ctx context.Context) error {
	return c.req.do(ctx, http.MethodPost, "/auth/logout", http.StatusNoContent, nil, nil)
}

// Name implements ports.HealthChecker.
func (c *Client) Name() string {
	return c.http.Name()
}

// HealthCheck reports the circuit breaker state of the underlying client.
// No network call is made.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.http.HealthCheck(ctx)
}

func (c *Client) list(ctx context.Context, path string) ([]todo.Todo, error) {
	var dtos []todoDTO
	if err := c.req.do(ctx, http.MethodGet, path, http.StatusOK, nil, &dtos); err != nil {
		return nil, err
	}
	todos, err := toDomainTodoList(dtos)
	if err != nil {
		return nil, &ServerError{Status: http.StatusOK, Message: FallbackServerMessage}
	}
	return todos, nil
}

// decodeOne converts a success body; a body the client cannot interpret is
// reported as a ServerError carrying the success status.
func decodeOne(dto *todoDTO, status int) (*todo.Todo, error) {
	t, err := toDomainTodo(dto)
	if err != nil {
		return nil, &ServerError{Status: status, Message: FallbackServerMessage}
	}
	return &t, nil
}

func todoPath(id string) string {
	return fmt.Sprintf("/todos/%s", url.PathEscape(id))
}

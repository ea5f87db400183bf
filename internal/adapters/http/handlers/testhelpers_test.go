package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/identity"
)

const (
	testOwner  = "user-1"
	testTodoID = "3f2b8c1e-6a4d-4e7f-9b10-2c3d4e5f6a7b"
)

var testTime = time.Date(2026, 2, 12, 15, 4, 5, 0, time.UTC)

// withRouteParam sets a chi URL parameter as if the router had matched it.
func withRouteParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// asOwner attaches the test owner the way the authentication middleware does.
func asOwner(r *http.Request) *http.Request {
	return r.WithContext(identity.WithOwner(r.Context(), testOwner))
}

func validTodo() todo.Todo {
	return todo.Todo{
		ID:          testTodoID,
		Title:       "Buy groceries",
		Description: "Milk, eggs, bread",
		OwnerID:     testOwner,
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("failed to encode JSON body: %v", err)
	}
	return buf
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var result T
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	return result
}

// requireProblem checks that rec holds a problem document with status and
// returns it decoded.
func requireProblem(t *testing.T, rec *httptest.ResponseRecorder, status int) dto.ErrorResponse {
	t.Helper()
	requireStatus(t, rec, status)
	if ct := rec.Header().Get("Content-Type"); ct != dto.ProblemContentType {
		t.Errorf("Content-Type = %q, want %q", ct, dto.ProblemContentType)
	}
	problem := decodeJSON[dto.ErrorResponse](t, rec)
	if problem.Status != status {
		t.Errorf("problem status = %d, want %d", problem.Status, status)
	}
	return problem
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}

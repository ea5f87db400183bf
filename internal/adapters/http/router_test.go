package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"

	adapthttp "github.com/jsamuelsen11/go-todo-service/internal/adapters/http"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen11/go-todo-service/internal/app"
	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/identity"
	"github.com/jsamuelsen11/go-todo-service/mocks"
)

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockTodoService) {
	t.Helper()
	svc := mocks.NewMockTodoService(t)
	registry := mocks.NewMockHealthRegistry(t)

	th := handlers.NewTodoHandler(svc)
	hh := handlers.NewHealthHandler(registry)

	auth := middleware.Authenticate(nil, config.AuthConfig{DefaultOwner: "local-dev"})
	router := adapthttp.NewRouter(th, hh, nil, auth)
	return router, svc
}

func TestRouter_AllRoutesRegistered(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	expectedRoutes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/health/live"},
		{http.MethodGet, "/health/ready"},
		{http.MethodGet, "/api/todos"},
		{http.MethodPost, "/api/todos"},
		{http.MethodGet, "/api/todos/status/{isCompleted}"},
		{http.MethodGet, "/api/todos/{id}"},
		{http.MethodPut, "/api/todos/{id}"},
		{http.MethodDelete, "/api/todos/{id}"},
	}

	chiRouter, ok := router.(*chi.Mux)
	if !ok {
		t.Fatal("router is not *chi.Mux")
	}

	registered := make(map[string]bool)
	err := chi.Walk(chiRouter, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[method+" "+route] = true
		return nil
	})
	if err != nil {
		t.Fatalf("chi.Walk error: %v", err)
	}

	for _, expected := range expectedRoutes {
		key := expected.method + " " + expected.path
		if !registered[key] {
			t.Errorf("route %s not registered", key)
		}
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	t.Parallel()

	svc := mocks.NewMockTodoService(t)
	registry := mocks.NewMockHealthRegistry(t)

	th := handlers.NewTodoHandler(svc)
	hh := handlers.NewHealthHandler(registry)

	called := false
	testMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	}

	router := adapthttp.NewRouter(th, hh, nil, nil, testMW)

	registry.EXPECT().CheckAll(mock.Anything).Return(map[string]error{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	router.ServeHTTP(rec, req)

	if !called {
		t.Error("middleware was not called")
	}
}

func TestRouter_HealthSkipsAuthentication(t *testing.T) {
	t.Parallel()

	svc := mocks.NewMockTodoService(t)
	registry := mocks.NewMockHealthRegistry(t)
	auth := middleware.Authenticate(nil, config.AuthConfig{Enabled: true})

	router := adapthttp.NewRouter(handlers.NewTodoHandler(svc), handlers.NewHealthHandler(registry), nil, auth)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health/live status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/todos", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/todos status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRouter_StatusRouteTakesPrecedence(t *testing.T) {
	t.Parallel()

	router, svc := newTestRouter(t)

	svc.EXPECT().ListByStatus(mock.Anything, "local-dev", true).Return([]todo.Todo{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/todos/status/true", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRouter_UnroutedRequestsGetProblems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
	}{
		{name: "unknown path", method: http.MethodGet, target: "/nonexistent", wantStatus: http.StatusNotFound},
		{name: "unknown api path", method: http.MethodGet, target: "/api/projects", wantStatus: http.StatusNotFound},
		{name: "patch collection", method: http.MethodPatch, target: "/api/todos", wantStatus: http.StatusMethodNotAllowed},
		{name: "post health", method: http.MethodPost, target: "/health/live", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router, _ := newTestRouter(t)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != dto.ProblemContentType {
				t.Errorf("Content-Type = %q, want %q", ct, dto.ProblemContentType)
			}
		})
	}
}

// TestRouter_EndToEnd drives the full stack against a SQLite database.
func TestRouter_EndToEnd(t *testing.T) {
	ctx := context.Background()

	store, err := sqlite.Open(ctx, config.StorageConfig{
		DSN:      filepath.Join(t.TempDir(), "e2e.db"),
		MaxConns: 1,
		Migrate:  true,
	})
	if err != nil {
		t.Fatalf("sqlite.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	registry := mocks.NewMockHealthRegistry(t)
	router := adapthttp.NewRouter(
		handlers.NewTodoHandler(app.NewTodoService(store, nil)),
		handlers.NewHealthHandler(registry),
		nil,
		middleware.Authenticate(nil, config.AuthConfig{DefaultOwner: "local-dev"}),
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		t.Helper()
		var rdr *bytes.Buffer
		if body != "" {
			rdr = bytes.NewBufferString(body)
		} else {
			rdr = &bytes.Buffer{}
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, rdr))
		return rec
	}

	rec := do(http.MethodPost, "/api/todos", `{"title":"Buy milk","description":"2L"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d; body = %s", rec.Code, http.StatusCreated, rec.Body)
	}
	var created dto.TodoResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decoding created: %v", err)
	}
	if created.UserID != "local-dev" || created.IsCompleted || created.CreatedAt != created.UpdatedAt {
		t.Errorf("created = %+v, want owner local-dev, not completed, createdAt == updatedAt", created)
	}

	rec = do(http.MethodPut, "/api/todos/"+created.ID, `{"isCompleted":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, want %d; body = %s", rec.Code, http.StatusOK, rec.Body)
	}
	var updated dto.TodoResponse
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decoding updated: %v", err)
	}
	if !updated.IsCompleted || updated.Title != "Buy milk" || updated.Description != "2L" {
		t.Errorf("updated = %+v, want completed with title and description unchanged", updated)
	}
	if updated.UpdatedAt <= created.UpdatedAt {
		t.Errorf("updatedAt %q did not advance past %q", updated.UpdatedAt, created.UpdatedAt)
	}

	rec = do(http.MethodGet, "/api/todos/status/true", "")
	var completed []dto.TodoResponse
	if err := json.NewDecoder(rec.Body).Decode(&completed); err != nil {
		t.Fatalf("decoding status list: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != created.ID {
		t.Errorf("GET status/true = %+v, want only %s", completed, created.ID)
	}

	if rec = do(http.MethodDelete, "/api/todos/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if rec = do(http.MethodGet, "/api/todos/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec = do(http.MethodDelete, "/api/todos/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second DELETE status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// memoryRevocations is an in-process deny-list.
type memoryRevocations struct {
	mu  sync.Mutex
	ids map[string]time.Duration
}

func (m *memoryRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[id]
	return ok, nil
}

func (m *memoryRevocations) Revoke(_ context.Context, id string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[id] = ttl
	return nil
}

func TestRouter_LogoutRevokesToken(t *testing.T) {
	t.Parallel()

	const secret = "router-test-secret"
	cfg := config.AuthConfig{Enabled: true, Secret: secret}
	revocations := &memoryRevocations{ids: map[string]time.Duration{}}
	verifier := identity.NewVerifier(cfg, revocations)

	svc := mocks.NewMockTodoService(t)
	svc.EXPECT().ListTodos(mock.Anything, "user-9").Return([]todo.Todo{}, nil).Once()

	router := adapthttp.NewRouter(
		handlers.NewTodoHandler(svc),
		handlers.NewHealthHandler(mocks.NewMockHealthRegistry(t)),
		handlers.NewAuthHandler(verifier),
		middleware.Authenticate(verifier, cfg),
	)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-9",
		ID:        "jti-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	send := func(method, path string) int {
		req := httptest.NewRequest(method, path, http.NoBody)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := send(http.MethodGet, "/api/todos"); got != http.StatusOK {
		t.Fatalf("GET /api/todos before logout = %d, want %d", got, http.StatusOK)
	}
	if got := send(http.MethodPost, "/api/auth/logout"); got != http.StatusNoContent {
		t.Fatalf("POST /api/auth/logout = %d, want %d", got, http.StatusNoContent)
	}
	if ttl := revocations.ids["jti-1"]; ttl <= 0 || ttl > time.Hour {
		t.Errorf("revocation ttl = %v, want within the token lifetime", ttl)
	}
	if got := send(http.MethodGet, "/api/todos"); got != http.StatusUnauthorized {
		t.Errorf("GET /api/todos after logout = %d, want %d", got, http.StatusUnauthorized)
	}
}

func TestRouter_LogoutUnmountedWithoutAuthHandler(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", http.NoBody))
	if rec.Code != http.StatusNotFound {
		t.Errorf("POST /api/auth/logout status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

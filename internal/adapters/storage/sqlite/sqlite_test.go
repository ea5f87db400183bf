package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jsamuelsen11/go-todo-service/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/storage/storagetest"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
	"github.com/jsamuelsen11/go-todo-service/internal/ports"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()

	cfg := config.StorageConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "todos.db"),
		MaxConns: 1,
		Migrate:  true,
	}
	s, err := sqlite.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) ports.TodoRepository {
		return openStore(t)
	})
}

func TestStore_EnsureSchemaIsIdempotent(t *testing.T) {
	s := openStore(t)

	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Errorf("EnsureSchema() second call error = %v", err)
	}
}

func TestStore_HealthCheck(t *testing.T) {
	s := openStore(t)

	if s.Name() != "sqlite" {
		t.Errorf("Name() = %q, want %q", s.Name(), "sqlite")
	}
	if err := s.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	_ = s.Close()
	if err := s.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() after Close error = nil, want error")
	}
}

// Package storagetest holds a behavioral test suite that every
// ports.TodoRepository implementation must pass.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/go-todo-service/internal/ports"
)

// base is a fixed instant with microsecond precision.
var base = time.Date(2026, 1, 2, 3, 4, 5, 678901000, time.UTC)

// NewTodo returns a valid todo owned by ownerID, created offset after base.
func NewTodo(ownerID, title string, offset time.Duration) *todo.Todo {
	ts := base.Add(offset)
	return &todo.Todo{
		ID:        uuid.NewString(),
		Title:     title,
		OwnerID:   ownerID,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// Run exercises repo against the repository contract. newRepo is called
// once per subtest and must return an empty repository.
func Run(t *testing.T, newRepo func(t *testing.T) ports.TodoRepository) {
	t.Helper()

	t.Run("insert then get round-trips every field", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		want := NewTodo("alice", "Buy milk", 0)
		want.Description = "two litres, ünïcödé"
		want.IsCompleted = true
		want.UpdatedAt = want.CreatedAt.Add(time.Microsecond)

		mustInsert(t, repo, want)

		got, err := repo.GetByID(ctx, want.ID, "alice")
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		assertEqualTodo(t, got, want)
	})

	t.Run("get of another owner's todo is not found", func(t *testing.T) {
		repo := newRepo(t)
		td := NewTodo("alice", "secret", 0)
		mustInsert(t, repo, td)

		_, err := repo.GetByID(context.Background(), td.ID, "bob")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("GetByID() error = %v, want %v", err, domain.ErrNotFound)
		}
	})

	t.Run("get missing is not found", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.GetByID(context.Background(), uuid.NewString(), "alice")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("GetByID() error = %v, want %v", err, domain.ErrNotFound)
		}
	})

	t.Run("duplicate id is a conflict", func(t *testing.T) {
		repo := newRepo(t)
		td := NewTodo("alice", "once", 0)
		mustInsert(t, repo, td)

		_, err := repo.Insert(context.Background(), td)
		if !errors.Is(err, domain.ErrConflict) {
			t.Errorf("Insert() duplicate error = %v, want %v", err, domain.ErrConflict)
		}
	})

	t.Run("list is newest first and scoped to owner", func(t *testing.T) {
		repo := newRepo(t)
		oldest := NewTodo("alice", "oldest", 0)
		middle := NewTodo("alice", "middle", time.Second)
		newest := NewTodo("alice", "newest", 2*time.Second)
		other := NewTodo("bob", "not mine", 3*time.Second)
		for _, td := range []*todo.Todo{middle, oldest, other, newest} {
			mustInsert(t, repo, td)
		}

		got, err := repo.ListAll(context.Background(), "alice")
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		assertIDs(t, got, newest.ID, middle.ID, oldest.ID)
	})

	t.Run("list ties are broken by id descending", func(t *testing.T) {
		repo := newRepo(t)
		a := NewTodo("alice", "a", 0)
		b := NewTodo("alice", "b", 0)
		a.ID = "00000000-0000-4000-8000-00000000000a"
		b.ID = "00000000-0000-4000-8000-00000000000b"
		mustInsert(t, repo, a)
		mustInsert(t, repo, b)

		got, err := repo.ListAll(context.Background(), "alice")
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		assertIDs(t, got, b.ID, a.ID)
	})

	t.Run("empty list is non-nil", func(t *testing.T) {
		repo := newRepo(t)

		got, err := repo.ListAll(context.Background(), "nobody")
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("ListAll() = %v, want empty non-nil slice", got)
		}
	})

	t.Run("list by status filters on completion", func(t *testing.T) {
		repo := newRepo(t)
		open := NewTodo("alice", "open", 0)
		done := NewTodo("alice", "done", time.Second)
		done.IsCompleted = true
		bobDone := NewTodo("bob", "bob done", 2*time.Second)
		bobDone.IsCompleted = true
		for _, td := range []*todo.Todo{open, done, bobDone} {
			mustInsert(t, repo, td)
		}

		completed, err := repo.ListByStatus(context.Background(), "alice", true)
		if err != nil {
			t.Fatalf("ListByStatus(true) error = %v", err)
		}
		assertIDs(t, completed, done.ID)

		active, err := repo.ListByStatus(context.Background(), "alice", false)
		if err != nil {
			t.Fatalf("ListByStatus(false) error = %v", err)
		}
		assertIDs(t, active, open.ID)
	})

	t.Run("replace overwrites mutable fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		td := NewTodo("alice", "draft", 0)
		td.Description = "to be cleared"
		mustInsert(t, repo, td)

		changed := *td
		changed.Title = "final"
		changed.Description = ""
		changed.IsCompleted = true
		changed.UpdatedAt = td.UpdatedAt.Add(time.Hour)

		if _, err := repo.Replace(ctx, &changed); err != nil {
			t.Fatalf("Replace() error = %v", err)
		}

		got, err := repo.GetByID(ctx, td.ID, "alice")
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		assertEqualTodo(t, got, &changed)
	})

	t.Run("replace of another owner's todo is not found", func(t *testing.T) {
		repo := newRepo(t)
		td := NewTodo("alice", "mine", 0)
		mustInsert(t, repo, td)

		stolen := *td
		stolen.OwnerID = "bob"
		stolen.Title = "hijacked"

		if _, err := repo.Replace(context.Background(), &stolen); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Replace() error = %v, want %v", err, domain.ErrNotFound)
		}
	})

	t.Run("delete is idempotent and scoped", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		td := NewTodo("alice", "gone soon", 0)
		mustInsert(t, repo, td)

		if err := repo.Delete(ctx, td.ID, "bob"); err != nil {
			t.Fatalf("Delete() by other owner error = %v", err)
		}
		if _, err := repo.GetByID(ctx, td.ID, "alice"); err != nil {
			t.Fatalf("GetByID() after foreign delete error = %v", err)
		}

		if err := repo.Delete(ctx, td.ID, "alice"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := repo.Delete(ctx, td.ID, "alice"); err != nil {
			t.Fatalf("Delete() second time error = %v", err)
		}
		if _, err := repo.GetByID(ctx, td.ID, "alice"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("GetByID() after delete error = %v, want %v", err, domain.ErrNotFound)
		}
	})
}

func mustInsert(t *testing.T, repo ports.TodoRepository, td *todo.Todo) {
	t.Helper()

	if _, err := repo.Insert(context.Background(), td); err != nil {
		t.Fatalf("Insert(%q) error = %v", td.Title, err)
	}
}

func assertIDs(t *testing.T, got []todo.Todo, want ...string) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("[%d].ID = %q, want %q", i, got[i].ID, want[i])
		}
	}
}

func assertEqualTodo(t *testing.T, got, want *todo.Todo) {
	t.Helper()

	if got.ID != want.ID || got.OwnerID != want.OwnerID || got.Title != want.Title ||
		got.Description != want.Description || got.IsCompleted != want.IsCompleted {
		t.Errorf("todo = %+v, want %+v", got, want)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	if !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, want.UpdatedAt)
	}
}

// Package sqlite implements ports.TodoRepository on SQLite through
// database/sql and the mattn/go-sqlite3 driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
	"github.com/jsamuelsen11/go-todo-service/internal/ports"
)

const driverName = "sqlite3"

// timeLayout is RFC 3339 with a fixed-width fraction so that stored values
// sort lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS todos (
	id           TEXT    NOT NULL PRIMARY KEY,
	owner_id     TEXT    NOT NULL,
	title        TEXT    NOT NULL,
	description  TEXT    NOT NULL DEFAULT '',
	is_completed BOOLEAN NOT NULL DEFAULT 0,
	created_at   TEXT    NOT NULL,
	updated_at   TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_todos_owner_completed ON todos (owner_id, is_completed);
`

const selectColumns = `SELECT id, owner_id, title, description, is_completed, created_at, updated_at FROM todos`

// Compile-time interface checks.
var (
	_ ports.TodoRepository = (*Store)(nil)
	_ ports.HealthChecker  = (*Store)(nil)
)

// Store is a SQLite-backed todo repository.
type Store struct {
	db *sql.DB
}

// Open opens the database named by cfg.DSN, verifies the connection, and
// creates the schema when cfg.Migrate is set.
func Open(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to sqlite: %w", err)
	}

	s := New(db)
	if cfg.Migrate {
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

// New wraps an already opened database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the todos table and its index if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "sqlite"
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return nil
}

// ListAll returns every todo of the owner, newest first.
func (s *Store) ListAll(ctx context.Context, ownerID string) ([]todo.Todo, error) {
	return s.list(ctx, selectColumns+` WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, ownerID)
}

// ListByStatus returns the owner's todos with the given completion state,
// newest first.
func (s *Store) ListByStatus(ctx context.Context, ownerID string, isCompleted bool) ([]todo.Todo, error) {
	return s.list(ctx,
		selectColumns+` WHERE owner_id = ? AND is_completed = ? ORDER BY created_at DESC, id DESC`,
		ownerID, isCompleted,
	)
}

// GetByID returns the owner's todo with the given id or domain.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id, ownerID string) (*todo.Todo, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ? AND owner_id = ?`, id, ownerID)

	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Insert stores a new todo. A duplicate id yields domain.ErrConflict.
func (s *Store) Insert(ctx context.Context, t *todo.Todo) (*todo.Todo, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (id, owner_id, title, description, is_completed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Title, t.Description, t.IsCompleted,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, fmt.Errorf("todo %s: %w", t.ID, domain.ErrConflict)
		}
		return nil, fmt.Errorf("inserting todo: %w", err)
	}

	stored := *t
	return &stored, nil
}

// Replace overwrites the mutable columns of an existing todo.
func (s *Store) Replace(ctx context.Context, t *todo.Todo) (*todo.Todo, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE todos SET title = ?, description = ?, is_completed = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		t.Title, t.Description, t.IsCompleted, formatTime(t.UpdatedAt), t.ID, t.OwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating todo: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating todo: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("todo %s: %w", t.ID, domain.ErrNotFound)
	}

	stored := *t
	return &stored, nil
}

// Delete removes the owner's todo. Deleting a missing row is not an error.
func (s *Store) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	return nil
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]todo.Todo, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}
	defer func() { _ = rows.Close() }()

	todos := make([]todo.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating todos: %w", err)
	}
	return todos, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(sc scanner) (todo.Todo, error) {
	var (
		t                todo.Todo
		created, updated string
	)
	if err := sc.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.IsCompleted, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return todo.Todo{}, err
		}
		return todo.Todo{}, fmt.Errorf("scanning todo: %w", err)
	}

	var err error
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return todo.Todo{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return todo.Todo{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return t, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// Package postgres implements ports.TodoRepository on PostgreSQL using a
// pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
	"github.com/jsamuelsen11/go-todo-service/internal/ports"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS todos (
	id           TEXT        NOT NULL PRIMARY KEY,
	owner_id     TEXT        NOT NULL,
	title        TEXT        NOT NULL,
	description  TEXT        NOT NULL DEFAULT '',
	is_completed BOOLEAN     NOT NULL DEFAULT FALSE,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_todos_owner_completed ON todos (owner_id, is_completed);
`

const selectColumns = `SELECT id, owner_id, title, description, is_completed, created_at, updated_at FROM todos`

// Compile-time interface checks.
var (
	_ ports.TodoRepository = (*Store)(nil)
	_ ports.HealthChecker  = (*Store)(nil)
)

// Store is a PostgreSQL-backed todo repository.
type Store struct {
	pool *pgxpool.Pool
}

// Open creates a connection pool for cfg.DSN, verifies it, and creates the
// schema when cfg.Migrate is set.
func Open(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns) //nolint:gosec // bounded by config validation
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	s := New(pool)
	if cfg.Migrate {
		if err := s.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return s, nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the todos table and its index if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensuring postgres schema: %w", err)
	}
	return nil
}

// Close closes every connection in the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "postgres"
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	return nil
}

// ListAll returns every todo of the owner, newest first.
func (s *Store) ListAll(ctx context.Context, ownerID string) ([]todo.Todo, error) {
	return s.list(ctx, selectColumns+` WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`, ownerID)
}

// ListByStatus returns the owner's todos with the given completion state,
// newest first.
func (s *Store) ListByStatus(ctx context.Context, ownerID string, isCompleted bool) ([]todo.Todo, error) {
	return s.list(ctx,
		selectColumns+` WHERE owner_id = $1 AND is_completed = $2 ORDER BY created_at DESC, id DESC`,
		ownerID, isCompleted,
	)
}

// GetByID returns the owner's todo with the given id or domain.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id, ownerID string) (*todo.Todo, error) {
	rows, err := s.pool.Query(ctx, selectColumns+` WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying todo: %w", err)
	}

	t, err := pgx.CollectExactlyOneRow(rows, scanTodo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading todo: %w", err)
	}
	return &t, nil
}

// Insert stores a new todo. A duplicate id yields domain.ErrConflict.
func (s *Store) Insert(ctx context.Context, t *todo.Todo) (*todo.Todo, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO todos (id, owner_id, title, description, is_completed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.OwnerID, t.Title, t.Description, t.IsCompleted, t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("todo %s: %w", t.ID, domain.ErrConflict)
		}
		return nil, fmt.Errorf("inserting todo: %w", err)
	}

	stored := *t
	return &stored, nil
}

// Replace overwrites the mutable columns of an existing todo.
func (s *Store) Replace(ctx context.Context, t *todo.Todo) (*todo.Todo, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE todos SET title = $1, description = $2, is_completed = $3, updated_at = $4
		 WHERE id = $5 AND owner_id = $6`,
		t.Title, t.Description, t.IsCompleted, t.UpdatedAt.UTC(), t.ID, t.OwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("todo %s: %w", t.ID, domain.ErrNotFound)
	}

	stored := *t
	return &stored, nil
}

// Delete removes the owner's todo. Deleting a missing row is not an error.
func (s *Store) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND owner_id = $2`, id, ownerID); err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	return nil
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]todo.Todo, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}

	todos, err := pgx.CollectRows(rows, scanTodo)
	if err != nil {
		return nil, fmt.Errorf("reading todos: %w", err)
	}
	if todos == nil {
		todos = make([]todo.Todo, 0)
	}
	return todos, nil
}

func scanTodo(row pgx.CollectableRow) (todo.Todo, error) {
	var t todo.Todo
	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.IsCompleted, &t.CreatedAt, &t.UpdatedAt)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, err
}

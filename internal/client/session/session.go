// Package session keeps the terminal client's bearer credential between runs.
// The token lives in a small JSON file readable only by the current user; the
// TODO_TOKEN environment variable takes precedence over the file.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EnvToken names the environment variable that overrides the stored token.
const EnvToken = "TODO_TOKEN"

// ErrEmptyToken is returned by Save for a blank token.
var ErrEmptyToken = errors.New("session: empty token")

// Source reports where a token came from.
type Source string

const (
	SourceNone Source = ""
	SourceEnv  Source = "env"
	SourceFile Source = "file"
)

// record is the on-disk layout.
type record struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// Store reads and writes the session file.
type Store struct {
	path string
}

// New returns a Store backed by path. An empty path selects
// <user config dir>/todo/session.json ($XDG_CONFIG_HOME on Linux).
func New(path string) (*Store, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolving config dir: %w", err)
		}
		path = filepath.Join(dir, "todo", "session.json")
	}
	return &Store{path: path}, nil
}

// Path returns the session file location.
func (s *Store) Path() string {
	return s.path
}

// Token implements todoapi.TokenSource. It returns "" without error when
// no credential is stored.
func (s *Store) Token(_ context.Context) (string, error) {
	token, _, err := s.Lookup()
	return token, err
}

// Lookup returns the current token and where it came from.
func (s *Store) Lookup() (string, Source, error) {
	if env := strings.TrimSpace(os.Getenv(EnvToken)); env != "" {
		return stripBearer(env), SourceEnv, nil
	}

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", SourceNone, nil
		}
		return "", SourceNone, fmt.Errorf("reading session: %w", err)
	}

	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return "", SourceNone, fmt.Errorf("parsing session %s: %w", s.path, err)
	}
	token := stripBearer(strings.TrimSpace(rec.Token))
	if token == "" {
		return "", SourceNone, nil
	}
	return token, SourceFile, nil
}

// Save writes token to the session file, creating its directory with
// owner-only permissions. A leading "Bearer " is dropped.
func (s *Store) Save(token string) error {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return ErrEmptyToken
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}

	b, err := json.MarshalIndent(record{Token: token, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// Clear removes the session file. Clearing an absent session is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

func stripBearer(s string) string {
	if len(s) > len("bearer ") && strings.EqualFold(s[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(s[len("bearer "):])
	}
	return s
}

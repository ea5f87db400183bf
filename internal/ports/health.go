package ports

import "context"

// HealthChecker is a dependency the readiness probe can ask about: the todo
// store, the Redis revocation list, or the todo API as seen by a client.
type HealthChecker interface {
	// Name identifies the dependency in readiness output, e.g. "sqlite",
	// "postgres", "redis" or "todo-api". Names are unique per registry.
	Name() string

	// HealthCheck returns nil when the dependency is usable. It must return
	// promptly once ctx is done.
	HealthCheck(ctx context.Context) error
}

// HealthRegistry collects HealthCheckers and runs them for readiness.
type HealthRegistry interface {
	// Register adds checker. A checker with the same name is replaced.
	Register(checker HealthChecker)

	// CheckAll runs every check and returns the results by name. A nil
	// value means healthy.
	CheckAll(ctx context.Context) map[string]error
}

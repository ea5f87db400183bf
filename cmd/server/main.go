// Package main is the entry point for the todo API. It wires all dependencies
// using samber/do v2, starts the HTTP server, and handles graceful shutdown
// on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	adapthttp "github.com/jsamuelsen11/go-todo-service/internal/adapters/http"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/storage/postgres"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen11/go-todo-service/internal/app"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/health"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/identity"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/logging"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/telemetry"
	"github.com/jsamuelsen11/go-todo-service/internal/ports"
)

const (
	otelShutdownTimeout = 5 * time.Second
	storageOpenTimeout  = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		return errors.New("APP_PROFILE environment variable is required (e.g. local, dev, prod)")
	}

	// Bootstrap: config, logger, telemetry.
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx := context.Background()
	otel, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	// DI container.
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.Metrics)

	registerDependencies(injector, cfg, logger)

	// Resolve the server (eagerly wires the full graph).
	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("resolving server: %w", err)
	}

	// Register health checkers after the graph is wired.
	store := do.MustInvoke[todoStore](injector)
	revocations := do.MustInvoke[*identity.RedisRevocationList](injector)
	defer closeDependencies(logger, store, revocations)

	registry := do.MustInvoke[ports.HealthRegistry](injector)
	registry.Register(store)
	if revocations != nil {
		registry.Register(revocations)
	}

	logger.Info("starting todo service",
		slog.String("profile", cfg.Profile),
		slog.String("storage", cfg.Storage.Driver),
		slog.Bool("auth_enabled", cfg.Auth.Enabled),
	)

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := server.Run(sigCtx)
	stop()

	// Flush telemetry.
	otelCtx, otelCancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer otelCancel()

	if err := otel.Shutdown(otelCtx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}

	if runErr != nil {
		return fmt.Errorf("serving: %w", runErr)
	}
	logger.Info("shutdown complete")
	return nil
}

// closeDependencies releases the storage and Redis connections.
func closeDependencies(logger *slog.Logger, store todoStore, revocations *identity.RedisRevocationList) {
	if err := store.Close(); err != nil {
		logger.Error("storage close error", slog.Any("error", err))
	}
	if revocations != nil {
		if err := revocations.Close(); err != nil {
			logger.Error("redis close error", slog.Any("error", err))
		}
	}
}

// todoStore is a persistence backend that also reports its health and owns
// a connection to release on shutdown.
type todoStore interface {
	ports.TodoRepository
	ports.HealthChecker
	Close() error
}

// postgresStore gives postgres.Store the error-returning Close of todoStore.
type postgresStore struct{ *postgres.Store }

func (s postgresStore) Close() error {
	s.Store.Close()
	return nil
}

// openStore connects the configured storage backend.
func openStore(cfg config.StorageConfig) (todoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storageOpenTimeout)
	defer cancel()

	switch cfg.Driver {
	case "postgres":
		s, err := postgres.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return postgresStore{s}, nil
	default:
		s, err := sqlite.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger) {
	do.Provide(injector, func(_ do.Injector) (todoStore, error) {
		return openStore(cfg.Storage)
	})

	do.Provide(injector, func(_ do.Injector) (*identity.RedisRevocationList, error) {
		if !cfg.Auth.Enabled || cfg.Auth.Revocation.RedisAddr == "" {
			return nil, nil
		}
		return identity.NewRedisRevocationList(cfg.Auth.Revocation), nil
	})

	do.Provide(injector, func(i do.Injector) (*identity.Verifier, error) {
		var revocations identity.RevocationList
		if rl := do.MustInvoke[*identity.RedisRevocationList](i); rl != nil {
			revocations = rl
		}
		return identity.NewVerifier(cfg.Auth, revocations), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.TodoService, error) {
		store := do.MustInvoke[todoStore](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return app.NewTodoService(store, logger, app.WithMetrics(metrics)), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(health.WithCheckTimeout(cfg.Server.HealthCheckTimeout)), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.TodoHandler, error) {
		svc := do.MustInvoke[ports.TodoService](i)
		return handlers.NewTodoHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		registry := do.MustInvoke[ports.HealthRegistry](i)
		return handlers.NewHealthHandler(registry), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		todoH := do.MustInvoke[*handlers.TodoHandler](i)
		healthH := do.MustInvoke[*handlers.HealthHandler](i)
		verifier := do.MustInvoke[*identity.Verifier](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		var authH *handlers.AuthHandler
		if cfg.Auth.Enabled {
			authH = handlers.NewAuthHandler(verifier)
		}

		return adapthttp.NewRouter(todoH, healthH, authH,
			middleware.Authenticate(verifier, cfg.Auth),
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
			middleware.OpenTelemetry(metrics),
			middleware.Logging(logger),
			middleware.CORS(cfg.CORS),
			middleware.Timeout(cfg.Server.HandlerTimeout),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler := do.MustInvoke[nethttp.Handler](i)
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})
}

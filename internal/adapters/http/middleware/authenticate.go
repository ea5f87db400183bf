package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/identity"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/logging"
)

// TokenVerifier validates a raw bearer token and returns the owner it names.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (string, error)
}

var (
	errMissingToken   = errors.New("missing bearer token")
	errMalformedToken = errors.New("malformed Authorization header")
)

// Authenticate returns middleware that attaches the request owner to the
// context. When cfg.Enabled is true a valid bearer token is required and
// failures produce a 401 problem response. When authentication is disabled
// every request is attributed to cfg.DefaultOwner.
func Authenticate(verifier TokenVerifier, cfg config.AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := identity.WithOwner(r.Context(), cfg.DefaultOwner)
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				dto.WriteErrorResponse(w, r, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err))
				return
			}

			owner, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				logging.FromContext(r.Context()).WarnContext(r.Context(), "request rejected",
					slog.String("operation", "middleware.Authenticate"),
					slog.Any("error", err),
				)
				dto.WriteErrorResponse(w, r, err)
				return
			}

			ctx := identity.WithOwner(r.Context(), owner)
			ctx = identity.WithToken(ctx, raw)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With(slog.String("owner_id", owner)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingToken
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errMalformedToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", errMissingToken
	}
	return token, nil
}

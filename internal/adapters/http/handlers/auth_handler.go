package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/identity"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/logging"
)

// TokenRevoker deny-lists a verified bearer token.
type TokenRevoker interface {
	Revoke(ctx context.Context, raw string) error
}

// AuthHandler serves the session endpoints of the todo API.
type AuthHandler struct {
	revoker TokenRevoker
}

// NewAuthHandler creates an AuthHandler backed by revoker.
func NewAuthHandler(revoker TokenRevoker) *AuthHandler {
	return &AuthHandler{revoker: revoker}
}

// Logout handles POST /api/auth/logout by revoking the caller's token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	raw, ok := identity.TokenFromContext(r.Context())
	if !ok {
		dto.WriteErrorResponse(w, r, fmt.Errorf("%w: no bearer token on request", domain.ErrUnauthenticated))
		return
	}

	if err := h.revoker.Revoke(r.Context(), raw); err != nil {
		logging.FromContext(r.Context()).WarnContext(r.Context(), "logout failed",
			slog.String("operation", "handlers.Logout"),
			slog.Any("error", err),
		)
		dto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

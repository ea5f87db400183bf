package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/identity"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/logging"
)

// parseID extracts a UUID path parameter from the chi URL params and
// returns it in canonical form.
func parseID(r *http.Request, param string) (string, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", domain.NewValidationError("path."+param, "must be a valid UUID")
	}
	return id.String(), nil
}

// parseBool extracts a "true" or "false" path parameter, ignoring case.
func parseBool(r *http.Request, param string) (bool, error) {
	raw := chi.URLParam(r, param)
	switch {
	case strings.EqualFold(raw, "true"):
		return true, nil
	case strings.EqualFold(raw, "false"):
		return false, nil
	default:
		return false, domain.NewValidationError("path."+param, "must be true or false")
	}
}

// ownerID returns the request owner placed in the context by the
// authentication middleware.
func ownerID(r *http.Request) (string, error) {
	id, ok := identity.OwnerFromContext(r.Context())
	if !ok {
		return "", fmt.Errorf("%w: no owner on request", domain.ErrUnauthenticated)
	}
	return id, nil
}

// writeJSON writes v as the JSON body with status. Encoding failures can only
// be logged; the status line is already out.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "failed to encode response",
			slog.Int("status", status),
			slog.Any("error", err),
		)
	}
}

// maxJSONBodyBytes caps request bodies. The largest valid todo is a few KiB.
const maxJSONBodyBytes = 64 << 10

// unknownFieldPrefix starts the error encoding/json returns when
// DisallowUnknownFields rejects a key. The package has no typed error for it.
const unknownFieldPrefix = "json: unknown field "

// decodeJSONBody reads exactly one JSON object from the body into dst.
// Unknown keys and anything after the value are rejected. On failure it
// writes a 400 located at "body" and returns false.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil {
		// Anything but a clean EOF is trailing data, including a stray
		// closing delimiter that dec.More would not report.
		if _, tokErr := dec.Token(); !errors.Is(tokErr, io.EOF) {
			err = errTrailingData
			var tooLarge *http.MaxBytesError
			if errors.As(tokErr, &tooLarge) {
				err = tokErr
			}
		}
	}
	if err == nil {
		return true
	}

	dto.WriteErrorResponse(w, r, domain.NewValidationError("body", bodyErrorMessage(err)))
	return false
}

var errTrailingData = errors.New("trailing data after JSON value")

func bodyErrorMessage(err error) string {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return "must not be empty"
	case errors.As(err, &tooLarge):
		return fmt.Sprintf("must be at most %d bytes", maxJSONBodyBytes)
	case errors.Is(err, errTrailingData):
		return "must contain a single JSON value"
	case strings.HasPrefix(err.Error(), unknownFieldPrefix):
		return "unknown field " + strings.TrimPrefix(err.Error(), unknownFieldPrefix)
	default:
		return "invalid JSON"
	}
}

// validatable is implemented by request DTOs.
type validatable interface {
	Validate() error
}

// decodeAndValidate decodes the body into dst and runs dst.Validate. On
// either failure it writes the 400 and returns false.
func decodeAndValidate[T validatable](w http.ResponseWriter, r *http.Request, dst T) bool {
	if !decodeJSONBody(w, r, dst) {
		return false
	}
	if err := dst.Validate(); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return false
	}
	return true
}

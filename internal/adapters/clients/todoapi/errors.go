package todoapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jsamuelsen11/go-todo-service/internal/domain"
)

// User-facing messages for each failure class.
const (
	FallbackServerMessage = "An error occurred while processing your request"
	NoResponseMessage     = "No response received from server"
	RequestSetupMessage   = "Error setting up the request"
)

// maxErrorBodySize limits how much of an error response body we read.
const maxErrorBodySize = 1 << 20 // 1 MB

// ServerError means the server answered with a non-success status.
type ServerError struct {
	Status  int
	Message string
	// Fields holds field-level validation messages keyed by field name,
	// when the server supplied them.
	Fields map[string]string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server responded %d: %s", e.Status, e.Message)
}

// Unwrap maps the status onto the matching domain sentinel so callers can
// use errors.Is(err, domain.ErrNotFound) and friends.
func (e *ServerError) Unwrap() error {
	switch {
	case e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity:
		if len(e.Fields) > 0 {
			return &domain.ValidationError{Fields: e.Fields}
		}
		return domain.ErrValidation
	case e.Status == http.StatusUnauthorized:
		return domain.ErrUnauthenticated
	case e.Status == http.StatusForbidden:
		return domain.ErrForbidden
	case e.Status == http.StatusNotFound:
		return domain.ErrNotFound
	case e.Status == http.StatusConflict:
		return domain.ErrConflict
	case e.Status >= http.StatusInternalServerError:
		return domain.ErrUnavailable
	default:
		return nil
	}
}

// NoResponseError means the request was sent but no response arrived:
// a network failure, a timeout, or a rejection by the open circuit breaker.
type NoResponseError struct {
	Err error
}

func (e *NoResponseError) Error() string {
	return fmt.Sprintf("no response from server: %v", e.Err)
}

// Unwrap exposes both the cause and domain.ErrUnavailable.
func (e *NoResponseError) Unwrap() []error {
	return []error{domain.ErrUnavailable, e.Err}
}

// RequestSetupError means the request could not be built.
type RequestSetupError struct {
	Err error
}

func (e *RequestSetupError) Error() string {
	return fmt.Sprintf("request setup failed: %v", e.Err)
}

func (e *RequestSetupError) Unwrap() error {
	return e.Err
}

// Message renders err as the single user-facing string shown by clients.
// It returns "" for a nil error.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Message
	}
	var noResp *NoResponseError
	if errors.As(err, &noResp) {
		return NoResponseMessage
	}
	var setupErr *RequestSetupError
	if errors.As(err, &setupErr) {
		return RequestSetupMessage
	}
	return err.Error()
}

// errorBody covers both RFC 9457 problem details and plain {"message": ...}
// bodies.
type errorBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Errors  []struct {
		Location string `json:"location"`
		Message  string `json:"message"`
	} `json:"errors"`
}

// newServerError builds a ServerError from a non-success response. The
// message comes from the body's "message" or "detail" field, falling back
// to FallbackServerMessage.
func newServerError(resp *http.Response) *ServerError {
	e := &ServerError{Status: resp.StatusCode, Message: FallbackServerMessage}

	if resp.Body == nil {
		return e
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, "json") {
		return e
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		return e
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return e
	}

	switch {
	case eb.Message != "":
		e.Message = eb.Message
	case eb.Detail != "":
		e.Message = eb.Detail
	}

	if len(eb.Errors) > 0 {
		e.Fields = make(map[string]string, len(eb.Errors))
		for _, d := range eb.Errors {
			e.Fields[strings.TrimPrefix(d.Location, "body.")] = d.Message
		}
	}
	return e
}

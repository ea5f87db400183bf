package dto_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-todo-service/internal/domain"
)

func TestNewErrorResponse_Status(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{name: "not found", err: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantDetail: "not found"},
		{
			name:       "wrapped not found keeps message",
			err:        fmt.Errorf("todo 42: %w", domain.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantDetail: "todo 42: not found",
		},
		{name: "validation", err: domain.NewValidationError("title", "is required"), wantStatus: http.StatusBadRequest},
		{name: "conflict", err: domain.ErrConflict, wantStatus: http.StatusConflict, wantDetail: "conflict"},
		{name: "forbidden", err: domain.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "unauthenticated", err: fmt.Errorf("%w: token expired", domain.ErrUnauthenticated), wantStatus: http.StatusUnauthorized},
		{name: "unavailable hides detail", err: fmt.Errorf("%w: redis at 10.0.0.9", domain.ErrUnavailable), wantStatus: http.StatusServiceUnavailable, wantDetail: "Service Unavailable"},
		{name: "timeout hides detail", err: fmt.Errorf("store: %w", domain.ErrTimeout), wantStatus: http.StatusGatewayTimeout, wantDetail: "Gateway Timeout"},
		{name: "unknown hides detail", err: errors.New("pq: connection refused to 10.0.0.7"), wantStatus: http.StatusInternalServerError, wantDetail: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/api/todos/42", nil)
			got := dto.NewErrorResponse(r, tt.err)

			if got.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", got.Status, tt.wantStatus)
			}
			if got.Title != http.StatusText(tt.wantStatus) {
				t.Errorf("Title = %q, want %q", got.Title, http.StatusText(tt.wantStatus))
			}
			if tt.wantDetail != "" && got.Detail != tt.wantDetail {
				t.Errorf("Detail = %q, want %q", got.Detail, tt.wantDetail)
			}
			if got.Type != "about:blank" || got.Instance != "/api/todos/42" {
				t.Errorf("Type, Instance = %q, %q, want about:blank, /api/todos/42", got.Type, got.Instance)
			}
		})
	}
}

func TestNewErrorResponse_Locations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want []string
	}{
		{name: "not a validation error", err: domain.ErrNotFound},
		{name: "bare names are body fields", err: &domain.ValidationError{Fields: map[string]string{
			"title":       "is required",
			"description": "must be at most 1000 characters",
		}}, want: []string{"body.description", "body.title"}},
		{name: "whole body", err: domain.NewValidationError("body", "invalid JSON"), want: []string{"body"}},
		{name: "path parameter", err: domain.NewValidationError("path.id", "must be a valid UUID"), want: []string{"path.id"}},
		{name: "mixed sources sorted", err: &domain.ValidationError{Fields: map[string]string{
			"path.isCompleted": "must be true or false",
			"title":            "is required",
		}}, want: []string{"body.title", "path.isCompleted"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, "/api/todos", nil)
			got := dto.NewErrorResponse(r, tt.err)

			locs := make([]string, 0, len(got.Errors))
			for _, d := range got.Errors {
				locs = append(locs, d.Location)
			}
			if len(tt.want) == 0 {
				if got.Errors != nil {
					t.Errorf("Errors = %v, want nil", got.Errors)
				}
				return
			}
			if !slices.Equal(locs, tt.want) {
				t.Errorf("locations = %v, want %v", locs, tt.want)
			}
		})
	}
}

func TestWriteErrorResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		err           error
		wantStatus    int
		wantChallenge bool
	}{
		{name: "not found", err: domain.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "validation", err: domain.NewValidationError("title", "is required"), wantStatus: http.StatusBadRequest},
		{name: "unauthenticated", err: domain.ErrUnauthenticated, wantStatus: http.StatusUnauthorized, wantChallenge: true},
		{name: "forbidden", err: domain.ErrForbidden, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/todos", nil)
			dto.WriteErrorResponse(w, r, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != dto.ProblemContentType {
				t.Errorf("Content-Type = %q, want %q", ct, dto.ProblemContentType)
			}
			if got := w.Header().Get("WWW-Authenticate"); (got != "") != tt.wantChallenge {
				t.Errorf("WWW-Authenticate = %q, want present %v", got, tt.wantChallenge)
			}

			var body dto.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("body status = %d, want %d", body.Status, tt.wantStatus)
			}
		})
	}
}

func TestWriteErrorResponse_ValidationBody(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/todos", nil)
	dto.WriteErrorResponse(w, r, domain.NewValidationError("title", "is required"))

	var body struct {
		Errors []map[string]any `json:"errors"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body.Errors) != 1 {
		t.Fatalf("len(errors) = %d, want 1", len(body.Errors))
	}
	if got := body.Errors[0]; got["location"] != "body.title" || got["message"] != "is required" {
		t.Errorf("errors[0] = %v, want body.title / is required", got)
	}
	if _, ok := body.Errors[0]["value"]; ok {
		t.Error("errors[0] has a value key, want it omitted when empty")
	}
}

func TestWriteStatus(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPatch, "/api/todos", nil)
	dto.WriteStatus(w, r, http.StatusMethodNotAllowed, "PATCH is not supported on /api/todos")

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}

	var body dto.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Title != "Method Not Allowed" || body.Detail != "PATCH is not supported on /api/todos" {
		t.Errorf("Title, Detail = %q, %q, want the 405 text and the given detail", body.Title, body.Detail)
	}
	if body.Errors != nil {
		t.Errorf("Errors = %v, want nil", body.Errors)
	}
}

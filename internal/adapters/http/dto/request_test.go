package dto_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-todo-service/internal/domain"
)

// requireValidationField asserts err wraps ErrValidation and the resulting
// ValidationError contains the expected field key.
func requireValidationField(t *testing.T, err error, field string) {
	t.Helper()

	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("errors.Is(err, ErrValidation) = false, got %v", err)
	}

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("errors.As(err, *ValidationError) = false, got %T", err)
	}
	if _, ok := verr.Fields[field]; !ok {
		t.Errorf("ValidationError.Fields missing key %q, got %v", field, verr.Fields)
	}
}

func TestCreateTodoRequest_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		req       dto.CreateTodoRequest
		wantField string
	}{
		{name: "valid", req: dto.CreateTodoRequest{Title: "Buy milk"}},
		{name: "valid completed with description", req: dto.CreateTodoRequest{Title: "a", Description: "b", IsCompleted: true}},
		{name: "empty title", req: dto.CreateTodoRequest{Title: ""}, wantField: "title"},
		{name: "blank title", req: dto.CreateTodoRequest{Title: "   "}, wantField: "title"},
		{name: "title too long", req: dto.CreateTodoRequest{Title: strings.Repeat("x", 201)}, wantField: "title"},
		{name: "description too long", req: dto.CreateTodoRequest{Title: "a", Description: strings.Repeat("x", 1001)}, wantField: "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.req.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			requireValidationField(t, err, tt.wantField)
		})
	}
}

func TestUpdateTodoRequest_Decode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		body            string
		wantTitle       *string
		wantDescription *string
		wantCompleted   *bool
		wantField       string
	}{
		{
			name: "empty object changes nothing",
			body: `{}`,
		},
		{
			name:      "title only",
			body:      `{"title":"new"}`,
			wantTitle: ptr("new"),
		},
		{
			name:            "null description clears",
			body:            `{"description":null}`,
			wantDescription: ptr(""),
		},
		{
			name:          "isCompleted false is present",
			body:          `{"isCompleted":false}`,
			wantCompleted: ptr(false),
		},
		{
			name:      "null title rejected",
			body:      `{"title":null}`,
			wantField: "title",
		},
		{
			name:      "null isCompleted rejected",
			body:      `{"isCompleted":null}`,
			wantField: "isCompleted",
		},
		{
			name:      "blank title rejected",
			body:      `{"title":"  "}`,
			wantField: "title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var req dto.UpdateTodoRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}

			err := req.Validate()
			if tt.wantField != "" {
				requireValidationField(t, err, tt.wantField)
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}

			p := req.ToPatch()
			checkOptional(t, "Title", p.Title, tt.wantTitle)
			checkOptional(t, "Description", p.Description, tt.wantDescription)
			checkOptional(t, "IsCompleted", p.IsCompleted, tt.wantCompleted)
		})
	}
}

func TestField_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var f dto.Field[int]
	if err := json.Unmarshal([]byte(`"x"`), &f); err == nil {
		t.Error("Unmarshal(string into Field[int]) error = nil, want error")
	}

	var g dto.Field[int]
	if err := json.Unmarshal([]byte(`7`), &g); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !g.Set || g.Null || g.Value != 7 {
		t.Errorf("Field = %+v, want {Set:true Null:false Value:7}", g)
	}
}

func ptr[T any](v T) *T { return &v }

func checkOptional[T comparable](t *testing.T, name string, got domain.Optional[T], want *T) {
	t.Helper()

	v, ok := got.Get()
	switch {
	case want == nil && ok:
		t.Errorf("%s = %v, want absent", name, v)
	case want != nil && !ok:
		t.Errorf("%s absent, want %v", name, *want)
	case want != nil && v != *want:
		t.Errorf("%s = %v, want %v", name, v, *want)
	}
}

// Package todo defines the Todo entity, its creation and patch payloads and
// the rules every persisted todo satisfies.
package todo

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jsamuelsen11/go-todo-service/internal/domain"
)

// Field limits, counted in characters.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// Todo is a single task owned by one user.
type Todo struct {
	ID          string
	Title       string
	Description string
	IsCompleted bool
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks business rules for a stored Todo.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with per-field details,
// or nil if all rules pass.
func (t *Todo) Validate() error {
	fields := make(map[string]string)

	if t.ID == "" {
		fields["id"] = domain.MsgRequired
	}
	if strings.TrimSpace(t.OwnerID) == "" {
		fields["userId"] = domain.MsgRequired
	}
	checkTitle(fields, t.Title)
	checkDescription(fields, t.Description)
	if t.UpdatedAt.Before(t.CreatedAt) {
		fields["updatedAt"] = "must not be before createdAt"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Apply copies every field present in p onto t. Timestamps are left to the caller.
func (t *Todo) Apply(p Patch) {
	t.Title = p.Title.OrElse(t.Title)
	t.Description = p.Description.OrElse(t.Description)
	t.IsCompleted = p.IsCompleted.OrElse(t.IsCompleted)
}

// Draft is the payload for creating a todo.
type Draft struct {
	Title       string
	Description string
	IsCompleted bool
}

// Validate checks the creation rules for a draft.
func (d Draft) Validate() error {
	fields := make(map[string]string)

	checkTitle(fields, d.Title)
	checkDescription(fields, d.Description)

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Patch is a partial update. Absent fields leave the stored value unchanged.
type Patch struct {
	Title       domain.Optional[string]
	Description domain.Optional[string]
	IsCompleted domain.Optional[bool]
}

// Validate checks the rules for every field present in the patch.
func (p Patch) Validate() error {
	fields := make(map[string]string)

	if v, ok := p.Title.Get(); ok {
		checkTitle(fields, v)
	}
	if v, ok := p.Description.Get(); ok {
		checkDescription(fields, v)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func checkTitle(fields map[string]string, title string) {
	switch {
	case strings.TrimSpace(title) == "":
		fields["title"] = domain.MsgRequired
	case utf8.RuneCountInString(title) > MaxTitleLength:
		fields["title"] = fmt.Sprintf("must be at most %d characters", MaxTitleLength)
	}
}

func checkDescription(fields map[string]string, description string) {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		fields["description"] = fmt.Sprintf("must be at most %d characters", MaxDescriptionLength)
	}
}

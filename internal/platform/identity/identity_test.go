package identity_test

import (
	"context"
	"testing"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/identity"
)

func TestOwnerFromContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ctx    context.Context
		wantID string
		wantOK bool
	}{
		{name: "absent", ctx: context.Background(), wantID: "", wantOK: false},
		{name: "present", ctx: identity.WithOwner(context.Background(), "user-1"), wantID: "user-1", wantOK: true},
		{name: "empty", ctx: identity.WithOwner(context.Background(), ""), wantID: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := identity.OwnerFromContext(tt.ctx)
			if got != tt.wantID || ok != tt.wantOK {
				t.Errorf("OwnerFromContext() = (%q, %v), want (%q, %v)", got, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

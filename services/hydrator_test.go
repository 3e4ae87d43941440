package services

import (
	"testing"

	"github.com/lborres/veil/core"
)

// Requirement: hydration copies identity and authorization claims into the
// session verbatim; id and role are populated together or not at all.
func TestHydrate(t *testing.T) {
	tests := []struct {
		name   string
		claims core.Claims
		want   core.SessionUser
	}{
		{
			name:   "full claims populate the session user",
			claims: core.Claims{ID: "u1", Email: "a@x.com", Role: "USER", Name: "Alice", Picture: "p.png"},
			want:   core.SessionUser{ID: "u1", Email: "a@x.com", Role: "USER", Name: "Alice", Picture: "p.png"},
		},
		{
			name:   "zero claims leave the session untouched",
			claims: core.Claims{},
			want:   core.SessionUser{},
		},
		{
			name:   "unenriched claims yield an unauthenticated session",
			claims: core.Claims{Email: "a@x.com", Name: "Alice"},
			want:   core.SessionUser{Email: "a@x.com", Name: "Alice"},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			session := Hydrate(core.Session{}, test.claims)

			if session.User != test.want {
				t.Errorf("Hydrate() user = %+v, want %+v", session.User, test.want)
			}

			// id and role must travel together for well-formed tokens.
			if (session.User.ID == "") != (session.User.Role == "") {
				t.Errorf("Hydrate() produced mismatched id/role: %+v", session.User)
			}
		})
	}
}

// Requirement: hydration is pure; the input session value is not mutated.
func TestHydrate_DoesNotMutateInput(t *testing.T) {
	original := core.Session{User: core.SessionUser{ID: "keep"}}

	_ = Hydrate(original, core.Claims{ID: "u2", Role: "USER"})

	if original.User.ID != "keep" {
		t.Errorf("Hydrate() mutated its input: %+v", original.User)
	}
}

// Requirement: an authenticated session requires a user id; role checks
// require both id and matching role.
func TestSessionChecks(t *testing.T) {
	anon := core.Session{}
	if anon.Authenticated() {
		t.Error("zero session should not be authenticated")
	}

	user := Hydrate(core.Session{}, core.Claims{ID: "u1", Role: "USER"})
	if !user.Authenticated() {
		t.Error("hydrated session with id should be authenticated")
	}
	if user.HasRole("ADMIN") {
		t.Error("USER session should not satisfy ADMIN role")
	}
	if !user.HasRole("USER") {
		t.Error("USER session should satisfy USER role")
	}
}

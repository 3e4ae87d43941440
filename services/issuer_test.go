package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lborres/veil/core"
)

// Requirement: enrichment with an identity whose email resolves to a record
// always overwrites id/role with the directory's current values, so a role
// change propagates without re-login.
func TestTokenIssuer_Enrich_OverwritesFromDirectory(t *testing.T) {
	dir := NewFakeDirectory()
	dir.Seed(&core.User{ID: "u1", Email: "a@x.com", Role: "ADMIN"})

	issuer := NewTokenIssuer(boundBinding(dir), nil)

	stale := core.Claims{ID: "u1", Email: "a@x.com", Role: "USER"}
	enriched, err := issuer.Enrich(context.Background(), stale, core.Principal{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}

	if enriched.ID != "u1" {
		t.Errorf("Enrich() id = %q, want %q", enriched.ID, "u1")
	}
	if enriched.Role != "ADMIN" {
		t.Errorf("Enrich() role = %q, want %q (directory value)", enriched.Role, "ADMIN")
	}
}

// Requirement: enriching an already-enriched token with no identity leaves
// id/role unchanged and performs no directory lookup.
func TestTokenIssuer_Enrich_NoIdentityIsIdempotent(t *testing.T) {
	dir := NewFakeDirectory()
	issuer := NewTokenIssuer(boundBinding(dir), nil)

	claims := core.Claims{ID: "u1", Email: "a@x.com", Role: "USER"}
	enriched, err := issuer.Enrich(context.Background(), claims, nil)
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}

	if enriched != claims {
		t.Errorf("Enrich() = %+v, want unchanged %+v", enriched, claims)
	}
	if dir.Lookups != 0 {
		t.Errorf("Enrich() performed %d lookups, want 0", dir.Lookups)
	}
}

// Requirement: an email with no matching record leaves the token's existing
// claims alone; the token is not invalidated mid-chain.
func TestTokenIssuer_Enrich_NotFoundLeavesClaims(t *testing.T) {
	dir := NewFakeDirectory()
	issuer := NewTokenIssuer(boundBinding(dir), nil)

	claims := core.Claims{ID: "u1", Email: "gone@x.com", Role: "USER"}
	enriched, err := issuer.Enrich(context.Background(), claims, core.Principal{Email: "gone@x.com"})
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}

	if enriched != claims {
		t.Errorf("Enrich() = %+v, want unchanged %+v", enriched, claims)
	}
}

// Requirement: a directory failure degrades to "no enrichment" and never
// leaves a partially-applied token.
func TestTokenIssuer_Enrich_DirectoryErrorDegrades(t *testing.T) {
	dir := NewFakeDirectory()
	dir.FailGets(errors.New("timeout"))

	issuer := NewTokenIssuer(boundBinding(dir), nil)

	claims := core.Claims{ID: "u1", Email: "a@x.com", Role: "USER"}
	enriched, err := issuer.Enrich(context.Background(), claims, core.Principal{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Enrich() error = %v, want degraded nil", err)
	}

	if enriched != claims {
		t.Errorf("Enrich() = %+v, want unchanged %+v", enriched, claims)
	}
}

// Requirement: with persistence unbound the enrichment pass is skipped
// entirely; token-only operation continues on the edge runtime.
func TestTokenIssuer_Enrich_UnboundSkipsLookup(t *testing.T) {
	issuer := NewTokenIssuer(unboundBinding(), nil)

	claims := core.Claims{ID: "u1", Email: "a@x.com", Role: "USER"}
	enriched, err := issuer.Enrich(context.Background(), claims, core.Principal{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}

	if enriched != claims {
		t.Errorf("Enrich() = %+v, want unchanged %+v", enriched, claims)
	}
}

// Requirement: a canceled request discards the lookup result; no claim
// mutation is applied on a canceled refresh cycle.
func TestTokenIssuer_Enrich_CanceledContext(t *testing.T) {
	dir := NewFakeDirectory()
	dir.Seed(&core.User{ID: "u1", Email: "a@x.com", Role: "ADMIN"})

	issuer := NewTokenIssuer(boundBinding(dir), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	claims := core.Claims{Email: "a@x.com"}
	enriched, err := issuer.Enrich(ctx, claims, core.Principal{Email: "a@x.com"})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Enrich() error = %v, want context.Canceled", err)
	}
	if enriched != claims {
		t.Errorf("Enrich() = %+v, want unchanged %+v", enriched, claims)
	}
}

// Requirement: a federated assertion flows through the same enrichment path
// as a credential principal.
func TestTokenIssuer_Enrich_FederatedAssertion(t *testing.T) {
	dir := NewFakeDirectory()
	dir.Seed(&core.User{ID: "u7", Email: "fed@x.com", Role: "USER"})

	issuer := NewTokenIssuer(boundBinding(dir), nil)

	assertion := core.FederatedAssertion{Email: "fed@x.com", Name: "Fed", Picture: "https://img.example/p.png"}
	enriched, err := issuer.Enrich(context.Background(), core.Claims{Email: assertion.Email}, assertion)
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}

	if enriched.ID != "u7" || enriched.Role != "USER" {
		t.Errorf("Enrich() = %+v, want id u7 role USER", enriched)
	}
}

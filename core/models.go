package core

import "time"

// User represents a record in the user directory
//
// This is the "identity" - who someone is. PasswordHash is nil for
// accounts provisioned solely through a federated identity provider;
// such accounts cannot authenticate with local credentials.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Image        *string   `json:"image,omitempty"`
	PasswordHash *string   `json:"-"` // Never expose in JSON
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Principal is the minimal verified identity produced by a successful
// credential check. It is created per authentication attempt and never
// persisted.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// FederatedAssertion carries the identity fields delivered by an external
// identity-provider callback. The token issuer treats it exactly like a
// credential-authenticated principal.
type FederatedAssertion struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Credentials is the local email/password login input.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identity is the union of inputs that can seed token enrichment:
// a Principal from a credential sign-in, or a FederatedAssertion from a
// provider callback. A nil Identity means a plain refresh of an
// already-enriched token.
type Identity interface {
	IdentityEmail() string
	IdentityName() string
	IdentityPicture() string
}

func (p Principal) IdentityEmail() string   { return p.Email }
func (p Principal) IdentityName() string    { return p.Name }
func (p Principal) IdentityPicture() string { return "" }

func (a FederatedAssertion) IdentityEmail() string   { return a.Email }
func (a FederatedAssertion) IdentityName() string    { return a.Name }
func (a FederatedAssertion) IdentityPicture() string { return a.Picture }

// Claims is the durable payload carried by the signed session token
// between requests. ID and Role are authorization claims sourced from the
// directory; the rest are display fields copied from the identity.
type Claims struct {
	ID      string `json:"sub,omitempty"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Enriched reports whether the authorization claims have been populated
// from a directory lookup.
func (c Claims) Enriched() bool {
	return c.ID != "" && c.Role != ""
}

// Zero reports whether the claims carry nothing at all.
func (c Claims) Zero() bool {
	return c == Claims{}
}

// SessionUser is the user view inside a hydrated session.
type SessionUser struct {
	ID      string `json:"id,omitempty"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Session is the per-request view reconstructed from token claims.
// It is derived on every request and discarded afterwards; it is never
// stored.
type Session struct {
	User SessionUser `json:"user"`
}

// Authenticated reports whether the session belongs to a signed-in user.
// A session without a user ID must be treated as anonymous downstream.
func (s Session) Authenticated() bool {
	return s.User.ID != ""
}

// HasRole reports whether the session is authenticated with the given role.
func (s Session) HasRole(role string) bool {
	return s.Authenticated() && s.User.Role == role
}

// Package veil is an embeddable authentication and session-enrichment
// library. It verifies local credentials or federated-provider assertions,
// issues a signed session token carrying identity and authorization
// claims, and hydrates that token back into a request-scoped session for
// downstream authorization checks.
//
// The pipeline is explicit: Authenticate -> Enrich -> Hydrate. Each stage
// takes the previous stage's output; no shared mutable token is threaded
// through callbacks. Persistence is bound once per process: in the edge
// runtime the user directory is never attached and only token/crypto
// operations run.
package veil

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lborres/veil/core"
	"github.com/lborres/veil/pkg/crypto"
	"github.com/lborres/veil/pkg/token"
	"github.com/lborres/veil/services"
)

// interfaces
type (
	Directory       = core.Directory
	DirectoryLoader = core.DirectoryLoader
	Identity        = core.Identity

	PasswordHandler = crypto.PasswordHandler
)

// structs
type (
	Config        = core.Config
	SessionConfig = core.SessionConfig
	GateRule      = core.GateRule
	RouteGate     = core.RouteGate
	Binding       = core.Binding
	Runtime       = core.Runtime
)

type (
	User               = core.User
	Principal          = core.Principal
	Claims             = core.Claims
	Session            = core.Session
	Credentials        = core.Credentials
	FederatedAssertion = core.FederatedAssertion

	SignUpInput = services.SignUpInput
	UpdateInput = services.UpdateInput
)

const (
	RuntimeNode = core.RuntimeNode
	RuntimeEdge = core.RuntimeEdge
)

const (
	defaultBasePath  = "/api/auth"
	defaultSecretLen = 32
)

// Constructors & helpers (convenience re-exports)
var (
	NewBcrypt            = crypto.NewBcrypt
	NewArgon2            = crypto.NewArgon2
	DefaultSessionConfig = core.DefaultSessionConfig
	Hydrate              = services.Hydrate
)

var (
	ErrMissingCredentials = core.ErrMissingCredentials
	ErrInvalidCredentials = core.ErrInvalidCredentials
	ErrUserExists         = core.ErrUserExists
	ErrUserNotFound       = core.ErrUserNotFound
)

var (
	ErrMissingAuthHeader = core.ErrMissingAuthHeader
	ErrInvalidToken      = core.ErrInvalidToken
	ErrTokenExpired      = core.ErrTokenExpired
)

var (
	ErrPersistenceUnavailable = core.ErrPersistenceUnavailable
	ErrDirectory              = core.ErrDirectory
)

var (
	ErrSecretRequired  = core.ErrSecretRequired
	ErrSecretTooShort  = core.ErrSecretTooShort
	ErrInvalidGateRule = core.ErrInvalidGateRule
)

// Veil wires the authentication pipeline together.
type Veil struct {
	Auth    *services.AuthService
	Issuer  *services.TokenIssuer
	Tokens  *token.Codec
	Gate    *core.RouteGate
	Binding *core.Binding

	BasePath string
	logger   *slog.Logger
}

// New assembles a Veil instance from config. The persistence binding is
// resolved here, once, before any authentication attempt can run; it is
// read-only afterwards.
func New(config Config) (*Veil, error) {
	if config.Secret == "" {
		return nil, ErrSecretRequired
	}
	if len(config.Secret) < defaultSecretLen {
		return nil, fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, defaultSecretLen)
	}

	// Set Defaults

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sessionConfig := config.SessionConfig
	if sessionConfig == nil {
		defaults := DefaultSessionConfig()
		sessionConfig = &defaults
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = crypto.NewBcrypt()
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	binding := core.ResolveBinding(context.Background(), config.Runtime, config.Database, config.OpenDatabase, logger)

	codec, err := token.NewCodec(config.Secret, config.Issuer, sessionConfig.MaxAge)
	if err != nil {
		return nil, err
	}

	gate, err := core.NewRouteGate(config.GateRules)
	if err != nil {
		return nil, err
	}

	return &Veil{
		Auth:     services.NewAuthService(binding, passwordHasher, logger),
		Issuer:   services.NewTokenIssuer(binding, logger),
		Tokens:   codec,
		Gate:     gate,
		Binding:  binding,
		BasePath: basePath,
		logger:   logger,
	}, nil
}

// SignInResult contains the authenticated principal and the signed token.
type SignInResult struct {
	User  *Principal `json:"user"`
	Token string     `json:"token"`
}

// SignIn authenticates local credentials and issues an enriched token.
func (v *Veil) SignIn(ctx context.Context, creds Credentials) (*SignInResult, error) {
	principal, err := v.Auth.Authenticate(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}

	signed, err := v.issueFor(ctx, *principal)
	if err != nil {
		return nil, err
	}

	return &SignInResult{User: principal, Token: signed}, nil
}

// SignUp provisions a new credential user and issues their first token.
func (v *Veil) SignUp(ctx context.Context, input SignUpInput) (*SignInResult, error) {
	principal, err := v.Auth.SignUp(ctx, input)
	if err != nil {
		return nil, err
	}

	signed, err := v.issueFor(ctx, *principal)
	if err != nil {
		return nil, err
	}

	return &SignInResult{User: principal, Token: signed}, nil
}

// Callback accepts an identity-provider assertion from the external OAuth
// collaborator and runs it through the same enrichment path as a
// credential sign-in.
func (v *Veil) Callback(ctx context.Context, assertion FederatedAssertion) (string, error) {
	return v.issueFor(ctx, assertion)
}

// Refresh re-signs a valid token with a fresh expiry, running the
// enrichment pass with no identity so already-enriched claims survive
// directory outages untouched.
func (v *Veil) Refresh(ctx context.Context, raw string) (string, error) {
	claims, err := v.Tokens.Parse(raw)
	if err != nil {
		return "", err
	}

	enriched, err := v.Issuer.Enrich(ctx, claims, nil)
	if err != nil {
		return "", err
	}

	return v.Tokens.Sign(enriched)
}

// Session parses a presented token and hydrates the request-scoped
// session view from its claims.
func (v *Veil) Session(raw string) (Session, error) {
	claims, err := v.Tokens.Parse(raw)
	if err != nil {
		return Session{}, err
	}
	return services.Hydrate(Session{}, claims), nil
}

// issueFor seeds base claims from the identity's display fields, enriches
// the authorization claims from the directory, and signs the result.
func (v *Veil) issueFor(ctx context.Context, identity Identity) (string, error) {
	base := Claims{
		Email:   identity.IdentityEmail(),
		Name:    identity.IdentityName(),
		Picture: identity.IdentityPicture(),
	}

	enriched, err := v.Issuer.Enrich(ctx, base, identity)
	if err != nil {
		return "", err
	}

	return v.Tokens.Sign(enriched)
}

package core

import "errors"

// Authentication errors
var (
	ErrMissingCredentials = errors.New("email and password are required")  // 400
	ErrInvalidCredentials = errors.New("invalid email or password")        // 401 Unauthorized
	ErrUserExists         = errors.New("user already exists")              // 409 Conflict
	ErrUserNotFound       = errors.New("user not found")                   // 404 Not Found
)

// Token errors
var (
	ErrMissingAuthHeader = errors.New("missing authorization header") // 401
	ErrInvalidToken      = errors.New("invalid session token")        // 401
	ErrTokenExpired      = errors.New("session token expired")        // 401
)

// Persistence errors
var (
	// ErrPersistenceUnavailable is returned when a directory-dependent
	// operation runs while the binder is unbound. In the edge runtime this
	// is expected steady-state, not an anomaly.
	ErrPersistenceUnavailable = errors.New("user directory is not available") // 503

	// ErrDirectory marks lookup/write failures distinct from "not found".
	ErrDirectory = errors.New("user directory operation failed") // 500
)

// Config errors (server-side configuration)
var (
	ErrSecretRequired  = errors.New("secret is required")   // 500
	ErrSecretTooShort  = errors.New("secret too short")     // 500
	ErrInvalidGateRule = errors.New("invalid gate pattern") // 500
)

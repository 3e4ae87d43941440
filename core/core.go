package core

import (
	"log/slog"
	"time"

	"github.com/lborres/veil/pkg/crypto"
)

// SessionConfig controls the validity window of issued tokens.
type SessionConfig struct {
	MaxAge time.Duration
}

// DefaultSessionConfig returns the default token validity window.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxAge: 24 * time.Hour,
	}
}

// Config assembles a veil instance.
type Config struct {
	// Secret signs session tokens. Required, minimum 32 characters.
	Secret string

	// Runtime selects the execution environment. Defaults to RuntimeNode;
	// RuntimeEdge skips directory binding entirely.
	Runtime Runtime

	// Database is a pre-built directory adapter. Ignored in the edge
	// runtime.
	Database Directory

	// OpenDatabase lazily loads the directory adapter at bind time.
	// Takes precedence over Database when both are set; ignored in the
	// edge runtime.
	OpenDatabase DirectoryLoader

	// Optional config
	Issuer         string
	SessionConfig  *SessionConfig
	PasswordHasher crypto.PasswordHandler
	GateRules      []GateRule
	BasePath       string
	Logger         *slog.Logger
}

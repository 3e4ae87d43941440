package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lborres/veil/core"
	"github.com/lborres/veil/pkg/crypto"
)

// AuthService verifies local credentials against the user directory and
// handles user provisioning. It never mutates the directory during
// authentication.
type AuthService struct {
	binding   *core.Binding
	passwords crypto.PasswordHandler
	logger    *slog.Logger
}

func NewAuthService(binding *core.Binding, passwords crypto.PasswordHandler, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		binding:   binding,
		passwords: passwords,
		logger:    logger,
	}
}

// Authenticate verifies an email/password pair and returns the resulting
// principal.
//
// Unknown email, provider-only account, and wrong password all fail with
// core.ErrInvalidCredentials so the caller cannot enumerate accounts.
// Empty inputs fail before any directory lookup happens.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*core.Principal, error) {
	// Step 1: Reject incomplete input without touching the directory, so
	// response timing does not reveal which inputs trigger a lookup.
	if email == "" || password == "" {
		return nil, core.ErrMissingCredentials
	}

	// Step 2: Resolve the directory. Unbound persistence fails fast here.
	dir, err := s.binding.Directory()
	if err != nil {
		return nil, err
	}

	// Step 3: Find the user by email.
	user, err := dir.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, core.ErrPersistenceUnavailable
		}
		// Directory failure is never an authentication success.
		s.logger.Warn("directory lookup failed during authentication", "error", err)
		return nil, core.ErrInvalidCredentials
	}

	// Step 4: Accounts provisioned through a federated provider carry no
	// local hash and must fail exactly like an unknown email.
	if user.PasswordHash == nil {
		return nil, core.ErrInvalidCredentials
	}

	// Step 5: Verify the password (constant-time under the hood).
	valid, err := s.passwords.Verify(password, *user.PasswordHash)
	if err != nil {
		s.logger.Warn("password verification failed", "error", err)
		return nil, core.ErrInvalidCredentials
	}
	if !valid {
		return nil, core.ErrInvalidCredentials
	}

	return &core.Principal{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}, nil
}

// SignUpInput contains the data needed to register a new user
type SignUpInput struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     string  `json:"name"`
	Image    *string `json:"image,omitempty"`
}

// SignUp registers a new user with email and password and returns the
// resulting principal. The plaintext password is hashed before the record
// is written; it never reaches the directory.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*core.Principal, error) {
	if input.Email == "" || input.Password == "" {
		return nil, core.ErrMissingCredentials
	}

	dir, err := s.binding.Directory()
	if err != nil {
		return nil, err
	}

	// Step 1: Check if user already exists
	existing, err := dir.GetUserByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, core.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, core.ErrUserExists
	}

	// Step 2: Hash the password
	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 3: Create the user
	user := &core.User{
		Email:        input.Email,
		Name:         input.Name,
		Image:        input.Image,
		PasswordHash: &hash,
		Role:         "USER",
	}
	if err := dir.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &core.Principal{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}, nil
}

// UpdateInput is a partial user update. A non-nil Password is hashed
// before the write so a plaintext password is never persisted.
type UpdateInput struct {
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
	Image    *string `json:"image,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// UpdateUser applies a partial update to a directory record, hashing any
// password field first (hash-then-write, single atomically-applied update).
func (s *AuthService) UpdateUser(ctx context.Context, id string, input UpdateInput) (*core.User, error) {
	dir, err := s.binding.Directory()
	if err != nil {
		return nil, err
	}

	patch := core.UserPatch{
		Email: input.Email,
		Name:  input.Name,
		Image: input.Image,
		Role:  input.Role,
	}

	if input.Password != nil {
		hash, err := s.passwords.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		patch.PasswordHash = &hash
	}

	return dir.UpdateUser(ctx, id, patch)
}

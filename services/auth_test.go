package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lborres/veil/core"
	"github.com/lborres/veil/pkg/crypto"
)

func seedCredentialUser(t *testing.T, dir *FakeDirectory, email, password, role string) *core.User {
	t.Helper()

	hash, err := crypto.NewBcrypt().Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	user := &core.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: &hash,
		Role:         role,
	}
	dir.Seed(user)
	return user
}

// Requirement: Authenticate returns a principal carrying the stored record's
// role for a valid email/password pair, and fails with the same error variant
// for wrong passwords, unknown emails, and provider-only accounts.
func TestAuthService_Authenticate(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		setup    func(*FakeDirectory)
		wantErr  error
		wantRole string
	}{
		{
			name:     "valid credentials return principal with stored role",
			email:    "a@x.com",
			password: "secret1",
			setup: func(dir *FakeDirectory) {
				seedCredentialUser(t, dir, "a@x.com", "secret1", "USER")
			},
			wantRole: "USER",
		},
		{
			name:     "wrong password fails with invalid credentials",
			email:    "a@x.com",
			password: "wrong",
			setup: func(dir *FakeDirectory) {
				seedCredentialUser(t, dir, "a@x.com", "secret1", "USER")
			},
			wantErr: core.ErrInvalidCredentials,
		},
		{
			name:     "unknown email fails with the same variant as wrong password",
			email:    "missing@x.com",
			password: "secret1",
			setup: func(dir *FakeDirectory) {
				seedCredentialUser(t, dir, "a@x.com", "secret1", "USER")
			},
			wantErr: core.ErrInvalidCredentials,
		},
		{
			name:     "provider-only account fails with invalid credentials",
			email:    "oauth@x.com",
			password: "secret1",
			setup: func(dir *FakeDirectory) {
				dir.Seed(&core.User{Email: "oauth@x.com", Role: "USER"})
			},
			wantErr: core.ErrInvalidCredentials,
		},
		{
			name:     "directory failure fails closed",
			email:    "a@x.com",
			password: "secret1",
			setup: func(dir *FakeDirectory) {
				dir.FailGets(errors.New("connection refused"))
			},
			wantErr: core.ErrInvalidCredentials,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			dir := NewFakeDirectory()
			if test.setup != nil {
				test.setup(dir)
			}
			service := NewAuthService(boundBinding(dir), crypto.NewBcrypt(), nil)

			principal, err := service.Authenticate(context.Background(), test.email, test.password)

			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("Authenticate() error = %v, want %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if principal.Role != test.wantRole {
				t.Errorf("Authenticate() role = %q, want %q", principal.Role, test.wantRole)
			}
			if principal.Email != test.email {
				t.Errorf("Authenticate() email = %q, want %q", principal.Email, test.email)
			}
			if principal.ID == "" {
				t.Error("Authenticate() should populate principal ID")
			}
		})
	}
}

// Requirement: empty email or password fails immediately without a directory
// lookup, so timing does not reveal which inputs trigger one.
func TestAuthService_Authenticate_MissingCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "secret1"},
		{name: "empty password", email: "a@x.com", password: ""},
		{name: "both empty", email: "", password: ""},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			dir := NewFakeDirectory()
			service := NewAuthService(boundBinding(dir), crypto.NewBcrypt(), nil)

			_, err := service.Authenticate(context.Background(), test.email, test.password)

			if !errors.Is(err, core.ErrMissingCredentials) {
				t.Fatalf("Authenticate() error = %v, want ErrMissingCredentials", err)
			}
			if dir.Lookups != 0 {
				t.Errorf("Authenticate() performed %d lookups, want 0", dir.Lookups)
			}
		})
	}
}

// Requirement: with persistence unbound (edge runtime) authentication fails
// fast with ErrPersistenceUnavailable and no directory call is attempted.
func TestAuthService_Authenticate_Unbound(t *testing.T) {
	dir := NewFakeDirectory()
	seedCredentialUser(t, dir, "a@x.com", "secret1", "USER")

	service := NewAuthService(unboundBinding(), crypto.NewBcrypt(), nil)

	_, err := service.Authenticate(context.Background(), "a@x.com", "secret1")

	if !errors.Is(err, core.ErrPersistenceUnavailable) {
		t.Fatalf("Authenticate() error = %v, want ErrPersistenceUnavailable", err)
	}
	if dir.Lookups != 0 {
		t.Errorf("Authenticate() performed %d lookups, want 0", dir.Lookups)
	}
}

// Requirement: SignUp hashes the password before the record is written and
// rejects duplicate emails.
func TestAuthService_SignUp(t *testing.T) {
	tests := []struct {
		name    string
		input   SignUpInput
		setup   func(*FakeDirectory)
		wantErr error
	}{
		{
			name:  "creates user with hashed password",
			input: SignUpInput{Email: "alice@example.com", Password: "SecurePass123!", Name: "Alice"},
		},
		{
			name:    "rejects duplicate email",
			input:   SignUpInput{Email: "alice@example.com", Password: "SecurePass123!"},
			setup:   func(dir *FakeDirectory) { dir.Seed(&core.User{Email: "alice@example.com"}) },
			wantErr: core.ErrUserExists,
		},
		{
			name:    "rejects empty password",
			input:   SignUpInput{Email: "alice@example.com"},
			wantErr: core.ErrMissingCredentials,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			dir := NewFakeDirectory()
			if test.setup != nil {
				test.setup(dir)
			}
			hasher := crypto.NewBcrypt()
			service := NewAuthService(boundBinding(dir), hasher, nil)

			principal, err := service.SignUp(context.Background(), test.input)

			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("SignUp() error = %v, want %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SignUp() error = %v", err)
			}
			if principal.ID == "" {
				t.Error("SignUp() should assign an ID")
			}

			stored, err := dir.GetUserByEmail(context.Background(), test.input.Email)
			if err != nil {
				t.Fatalf("GetUserByEmail() error = %v", err)
			}
			if stored.PasswordHash == nil {
				t.Fatal("SignUp() should store a password hash")
			}
			if *stored.PasswordHash == test.input.Password {
				t.Error("SignUp() stored the plaintext password")
			}
			if ok, _ := hasher.Verify(test.input.Password, *stored.PasswordHash); !ok {
				t.Error("stored hash does not verify against the original password")
			}
		})
	}
}

// Requirement: UpdateUser re-hashes a plaintext password in the patch before
// writing; the directory never sees the plaintext.
func TestAuthService_UpdateUser_RehashesPassword(t *testing.T) {
	dir := NewFakeDirectory()
	user := seedCredentialUser(t, dir, "a@x.com", "oldpass", "USER")

	hasher := crypto.NewBcrypt()
	service := NewAuthService(boundBinding(dir), hasher, nil)

	newPassword := "newpass42"
	updated, err := service.UpdateUser(context.Background(), user.ID, UpdateInput{Password: &newPassword})
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	if updated.PasswordHash == nil || *updated.PasswordHash == newPassword {
		t.Fatal("UpdateUser() must store a hash, not the plaintext password")
	}
	if ok, _ := hasher.Verify(newPassword, *updated.PasswordHash); !ok {
		t.Error("updated hash does not verify against the new password")
	}
	if ok, _ := hasher.Verify("oldpass", *updated.PasswordHash); ok {
		t.Error("old password still verifies after update")
	}
}

package core

import "context"

// UserPatch is a partial update applied to a directory record. Nil fields
// are left untouched. PasswordHash must already be hashed by the caller;
// a plaintext password never reaches the directory (hash-then-write).
type UserPatch struct {
	Email        *string
	Name         *string
	Image        *string
	PasswordHash *string
	Role         *string
}

// Directory is the external store of user/credential records consumed by
// the authenticator and the token issuer. Implementations live in
// adapters; the core only depends on this contract.
//
// Failures other than "not found" should wrap ErrDirectory. Callers treat
// any failure as "not found" for authentication purposes (fail closed).
type Directory interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)

	CreateUser(ctx context.Context, u *User) error
	UpdateUser(ctx context.Context, id string, patch UserPatch) (*User, error)
}

package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type PasswordHandler interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// Ensure Bcrypt implements PasswordHandler
var _ PasswordHandler = (*Bcrypt)(nil)

// BcryptCost is the fixed work factor used for new hashes. Raising it
// slows brute-force attacks at the price of login latency.
const BcryptCost = 10

// Bcrypt hashes passwords with the salted, cost-parameterized bcrypt
// scheme. Verification runs in time independent of where the first
// mismatching byte occurs.
type Bcrypt struct {
	Cost int
}

func NewBcrypt() *Bcrypt {
	return &Bcrypt{Cost: BcryptCost}
}

func (b *Bcrypt) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}

	cost := b.Cost
	if cost == 0 {
		cost = BcryptCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (b *Bcrypt) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}

// Package token signs and parses the session token: the tamper-evident,
// client-held carrier of identity and authorization claims.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/lborres/veil/core"
)

const minSecretLen = 32

// Codec signs claims into compact JWTs and parses them back. Tokens are
// HMAC-signed with the configured secret and expire after maxAge.
type Codec struct {
	secret []byte
	issuer string
	maxAge time.Duration
}

func NewCodec(secret, issuer string, maxAge time.Duration) (*Codec, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("%w: minimum of %d characters", core.ErrSecretTooShort, minSecretLen)
	}
	if issuer == "" {
		issuer = "veil"
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}

	return &Codec{
		secret: []byte(secret),
		issuer: issuer,
		maxAge: maxAge,
	}, nil
}

// Sign serializes the claims into a signed compact token with a fresh
// expiry window.
func (c *Codec) Sign(claims core.Claims) (string, error) {
	now := time.Now()

	builder := jwt.NewBuilder().
		Issuer(c.issuer).
		IssuedAt(now).
		Expiration(now.Add(c.maxAge))

	if claims.ID != "" {
		builder = builder.Subject(claims.ID)
	}
	if claims.Email != "" {
		builder = builder.Claim("email", claims.Email)
	}
	if claims.Role != "" {
		builder = builder.Claim("role", claims.Role)
	}
	if claims.Name != "" {
		builder = builder.Claim("name", claims.Name)
	}
	if claims.Picture != "" {
		builder = builder.Claim("picture", claims.Picture)
	}

	tok, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, c.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}

// Parse verifies the signature and registered claims of a compact token
// and returns the carried session claims. Signature or structure failures
// map to ErrInvalidToken, expiry to ErrTokenExpired.
func (c *Codec) Parse(raw string) (core.Claims, error) {
	if raw == "" {
		return core.Claims{}, core.ErrInvalidToken
	}

	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, c.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(c.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return core.Claims{}, core.ErrTokenExpired
		}
		return core.Claims{}, core.ErrInvalidToken
	}

	claims := core.Claims{
		ID:      tok.Subject(),
		Email:   stringClaim(tok, "email"),
		Role:    stringClaim(tok, "role"),
		Name:    stringClaim(tok, "name"),
		Picture: stringClaim(tok, "picture"),
	}

	return claims, nil
}

// MaxAge returns the validity window tokens are signed with.
func (c *Codec) MaxAge() time.Duration { return c.maxAge }

func stringClaim(tok jwt.Token, name string) string {
	v, ok := tok.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

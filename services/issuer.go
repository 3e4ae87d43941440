package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lborres/veil/core"
)

// TokenIssuer merges directory-sourced authorization claims into the
// session token. It runs on every refresh cycle, not only at login, so a
// role change in the directory reaches the token on its next refresh
// without a re-login.
type TokenIssuer struct {
	binding *core.Binding
	logger  *slog.Logger
}

func NewTokenIssuer(binding *core.Binding, logger *slog.Logger) *TokenIssuer {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenIssuer{
		binding: binding,
		logger:  logger,
	}
}

// Enrich re-derives the token's id and role claims from the directory.
//
// With a nil identity the claims pass through untouched and no directory
// call is made: that is the steady-state refresh of an already-enriched
// token. With an identity present, its email is looked up; a matching
// record overwrites id and role with the directory's current values, and
// "not found" leaves the existing claims alone rather than invalidating
// the token mid-chain.
//
// Enrichment is all-or-nothing per cycle: a canceled context or a
// directory failure returns the claims exactly as they came in.
func (i *TokenIssuer) Enrich(ctx context.Context, claims core.Claims, identity core.Identity) (core.Claims, error) {
	if identity == nil {
		return claims, nil
	}

	email := identity.IdentityEmail()
	if email == "" {
		return claims, nil
	}

	dir, err := i.binding.Directory()
	if err != nil {
		// Expected steady-state in the edge runtime: the token keeps its
		// existing claims and only crypto operations run.
		i.logger.Info("token enrichment skipped: persistence unbound")
		return claims, nil
	}

	existing, err := dir.GetUserByEmail(ctx, email)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// Discard the lookup result; no claim mutation on a canceled
			// refresh cycle.
			return claims, ctxErr
		}
		if errors.Is(err, core.ErrUserNotFound) {
			return claims, nil
		}
		i.logger.Warn("token enrichment degraded: directory lookup failed", "error", err)
		return claims, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return claims, ctxErr
	}

	claims.ID = existing.ID
	claims.Role = existing.Role
	return claims, nil
}

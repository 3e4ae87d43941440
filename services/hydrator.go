package services

import "github.com/lborres/veil/core"

// Hydrate reconstructs the request-scoped session view from token claims.
// Pure and synchronous: no I/O, no clock, no mutation of its inputs.
//
// Absent or empty claims return the session unmodified; downstream
// authorization must treat a session without user.id as unauthenticated.
func Hydrate(session core.Session, claims core.Claims) core.Session {
	if claims.Zero() {
		return session
	}

	session.User.ID = claims.ID
	session.User.Role = claims.Role
	session.User.Email = claims.Email
	session.User.Name = claims.Name
	session.User.Picture = claims.Picture

	return session
}

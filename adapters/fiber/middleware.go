package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lborres/veil"
)

// Gate returns a middleware that hydrates the session from the request
// token and asks the route gate whether the request may proceed. The
// hydrated session is stored in the context for downstream handlers
// whether or not it is authenticated.
func (a *Adapter) Gate() fiber.Handler {
	return func(c fiber.Ctx) error {
		session := a.currentSession(c)

		if !a.veil.Gate.Allow(c.Path(), session) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": veil.ErrInvalidToken.Error(),
			})
		}

		c.Locals("session", session)
		return c.Next()
	}
}

// requireAuth guards the protected auth endpoints themselves. Unlike Gate
// it ignores the rule set: an authenticated session is always required.
func (a *Adapter) requireAuth(c fiber.Ctx) error {
	if extractToken(c) == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": veil.ErrMissingAuthHeader.Error(),
		})
	}

	session := a.currentSession(c)
	if !session.Authenticated() {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": veil.ErrInvalidToken.Error(),
		})
	}

	c.Locals("session", session)
	return c.Next()
}

// RequireRole returns a middleware that rejects requests whose session
// does not carry the given role, independent of the gate rule set.
func (a *Adapter) RequireRole(role string) fiber.Handler {
	return func(c fiber.Ctx) error {
		session := SessionFromCtx(c)
		if !session.Authenticated() {
			session = a.currentSession(c)
		}

		if !session.HasRole(role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "insufficient role",
			})
		}

		c.Locals("session", session)
		return c.Next()
	}
}

// currentSession hydrates the session carried by the request token. A
// missing or malformed token yields the zero session, which downstream
// checks treat as unauthenticated.
func (a *Adapter) currentSession(c fiber.Ctx) veil.Session {
	token := extractToken(c)
	if token == "" {
		return veil.Session{}
	}

	session, err := a.veil.Session(token)
	if err != nil {
		return veil.Session{}
	}
	return session
}

// SessionFromCtx returns the session stored by Gate or requireAuth.
func SessionFromCtx(c fiber.Ctx) veil.Session {
	session, ok := c.Locals("session").(veil.Session)
	if !ok {
		return veil.Session{}
	}
	return session
}

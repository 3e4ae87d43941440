package fiber

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/veil"
)

// CookieName is the fallback token transport when no Authorization header
// is present.
const CookieName = "veil_token"

func (a *Adapter) signup(c fiber.Ctx) error {
	var input veil.SignUpInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(map[string]string{
			"error": "invalid request body",
		})
	}

	result, err := a.veil.SignUp(c.Context(), input)
	if err != nil {
		return handleAuthError(c, err)
	}

	a.setTokenCookie(c, result.Token)
	return c.Status(http.StatusCreated).JSON(result)
}

func (a *Adapter) signin(c fiber.Ctx) error {
	var creds veil.Credentials
	if err := c.Bind().Body(&creds); err != nil {
		return c.Status(http.StatusBadRequest).JSON(map[string]string{
			"error": "invalid request body",
		})
	}

	result, err := a.veil.SignIn(c.Context(), creds)
	if err != nil {
		return handleAuthError(c, err)
	}

	a.setTokenCookie(c, result.Token)
	return c.Status(http.StatusOK).JSON(result)
}

// signout clears the token cookie. Tokens are stateless and tamper-evident;
// discarding the client copy ends the session.
func (a *Adapter) signout(c fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return c.Status(http.StatusOK).JSON(map[string]string{
		"message": "signed out successfully",
	})
}

func (a *Adapter) session(c fiber.Ctx) error {
	session, err := a.veil.Session(extractToken(c))
	if err != nil {
		return handleAuthError(c, err)
	}
	return c.Status(http.StatusOK).JSON(session)
}

func (a *Adapter) refresh(c fiber.Ctx) error {
	token, err := a.veil.Refresh(c.Context(), extractToken(c))
	if err != nil {
		return handleAuthError(c, err)
	}

	a.setTokenCookie(c, token)
	return c.Status(http.StatusOK).JSON(map[string]string{
		"token": token,
	})
}

func (a *Adapter) setTokenCookie(c fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(a.veil.Tokens.MaxAge()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// extractToken extracts the authentication token from the request.
// Checks Authorization header (Bearer token) first, then falls back to cookie.
func extractToken(c fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}

	return c.Cookies(CookieName)
}

// handleAuthError maps authentication errors to appropriate HTTP responses
func handleAuthError(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)
	return c.Status(status).JSON(map[string]string{
		"error": err.Error(),
	})
}

// mapErrorToStatus maps veil error types to HTTP status codes
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, veil.ErrInvalidCredentials),
		errors.Is(err, veil.ErrInvalidToken),
		errors.Is(err, veil.ErrTokenExpired),
		errors.Is(err, veil.ErrMissingAuthHeader):
		return http.StatusUnauthorized

	case errors.Is(err, veil.ErrMissingCredentials):
		return http.StatusBadRequest

	case errors.Is(err, veil.ErrUserExists):
		return http.StatusConflict

	case errors.Is(err, veil.ErrPersistenceUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

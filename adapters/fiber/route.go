// Package fiber mounts the veil auth endpoints and route-gate middleware
// on a Fiber app.
package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lborres/veil"
)

type Adapter struct {
	app  *fiber.App
	veil *veil.Veil
}

func New(app *fiber.App, v *veil.Veil) *Adapter {
	return &Adapter{app: app, veil: v}
}

// RegisterRoutes mounts the auth endpoints under the configured base path.
func (a *Adapter) RegisterRoutes() {
	api := a.app.Group(a.veil.BasePath)

	// Public routes
	api.Post("/sign-up", a.signup)
	api.Post("/sign-in", a.signin)

	// Protected routes
	api.Post("/sign-out", a.requireAuth, a.signout)
	api.Get("/session", a.requireAuth, a.session)
	api.Post("/refresh", a.requireAuth, a.refresh)
}

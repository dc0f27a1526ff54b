package router

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/contactdeck/contactdeck/app/repository"
	"github.com/contactdeck/contactdeck/internal/pkg/billing"
)

// Router installs a group of routes on the fiber app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// Deps carries everything the route handlers need. Built once in main
// and threaded through, no package globals.
type Deps struct {
	DB      *gorm.DB
	Repos   *repository.Factory
	Billing *billing.Service
}

// InstallRouter registers all routes. The HTTP router goes first so the
// webhook and health endpoints are matched before the API group.
func InstallRouter(app *fiber.App, deps Deps) {
	setup(app, NewHttpRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}

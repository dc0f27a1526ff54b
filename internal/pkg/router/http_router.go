package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/contactdeck/contactdeck/app/controllers"
	"github.com/contactdeck/contactdeck/internal/pkg/constants"
)

// HttpRouter hosts the unauthenticated surface: health checks and the
// provider webhook. The webhook authenticates through its signature, not
// an API key, so it stays outside the API group.
type HttpRouter struct {
	deps Deps
}

func NewHttpRouter(deps Deps) *HttpRouter {
	return &HttpRouter{deps: deps}
}

func (h *HttpRouter) InstallRouter(app *fiber.App) {
	app.Get(constants.HealthRoute, func(c *fiber.Ctx) error {
		sqlDB, err := h.deps.DB.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "database": "down"})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	billingController := controllers.NewBillingController(h.deps.Billing)
	app.Post(constants.BillingWebhookRoute, billingController.HandleBillingWebhook)
}

package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/contactdeck/contactdeck/app/controllers"
	"github.com/contactdeck/contactdeck/internal/pkg/constants"
	"github.com/contactdeck/contactdeck/internal/pkg/middleware"
)

type ApiRouter struct {
	deps Deps
}

func NewApiRouter(deps Deps) *ApiRouter {
	return &ApiRouter{deps: deps}
}

func (a *ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIPrefix, limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
	}))
	api.Get("/", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "contactdeck api"})
	})

	v1 := api.Group(constants.APIV1Prefix, middleware.APIKeyAuth(a.deps.Repos.Users(), a.deps.Repos.Organizations()))

	billingController := controllers.NewBillingController(a.deps.Billing)
	v1.Get(constants.PlansRoute, billingController.HandleListPlans)
	v1.Post(constants.CheckoutSessionRoute, billingController.HandleCreateCheckoutSession)
	v1.Post(constants.SubscriptionsRoute, billingController.HandleCreateSubscription)
	v1.Post(constants.SubscriptionVerifyRoute, billingController.HandleVerifySubscription)
	v1.Post(constants.SubscriptionLinkRoute, billingController.HandleLinkSubscription)
	v1.Post(constants.SubscriptionCancelRoute, billingController.HandleCancelSubscription)
	v1.Get(constants.BillingStatusRoute, billingController.HandleBillingStatus)

	contactController := controllers.NewContactController(a.deps.Repos, a.deps.Billing.Catalog())
	v1.Post(constants.ContactsRoute, contactController.HandleCreateContact)
	v1.Get(constants.ContactsRoute, contactController.HandleListContacts)
	v1.Post(constants.ContactGroupsRoute, contactController.HandleCreateGroup)
	v1.Get(constants.ContactGroupsRoute, contactController.HandleListGroups)

	accountController := controllers.NewAccountController(a.deps.Repos, a.deps.Billing.Catalog())
	v1.Get(constants.AccountRoute, accountController.HandleGetAccount)
}

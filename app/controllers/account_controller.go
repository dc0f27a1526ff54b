package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/contactdeck/contactdeck/app/repository"
	"github.com/contactdeck/contactdeck/internal/pkg/billing"
	"github.com/contactdeck/contactdeck/internal/pkg/entitlements"
	"github.com/contactdeck/contactdeck/internal/pkg/usercontext"
)

// AccountController serves the authenticated user's account overview.
type AccountController struct {
	repos   *repository.Factory
	catalog *billing.Catalog
}

// NewAccountController creates the account controller.
func NewAccountController(repos *repository.Factory, catalog *billing.Catalog) *AccountController {
	return &AccountController{repos: repos, catalog: catalog}
}

// HandleGetAccount returns the user's profile, organization and the
// effective plan limits.
func (ac *AccountController) HandleGetAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	user, err := ac.repos.Users().GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "user not found"})
		}
		return internalError(c, err)
	}

	org, err := ac.repos.Organizations().GetByID(user.OrganizationID)
	if err != nil {
		return internalError(c, err)
	}

	limits := entitlements.ForPlan(ac.catalog, org.Plan)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
		"organization": fiber.Map{
			"id":        org.ID,
			"name":      org.Name,
			"plan":      org.Plan,
			"seatCount": org.SeatCount,
		},
		"limits": limits,
	})
}

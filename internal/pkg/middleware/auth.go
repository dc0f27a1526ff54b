package middleware

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/contactdeck/contactdeck/app/models"
	"github.com/contactdeck/contactdeck/app/repository"
	"github.com/contactdeck/contactdeck/internal/pkg/usercontext"
)

// APIKeyAuth authenticates requests carrying a user API key header and
// attaches the resolved user context. Lookups go through the repositories so
// tests can swap them out.
func APIKeyAuth(users repository.UserRepository, orgs repository.OrganizationRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := extractAPIKey(c)
		if apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing API key"})
		}

		user, err := users.GetByAPIKeyHash(models.HashAPIKey(apiKey))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid API key"})
			}
			log.Printf("api key lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "API key verification failed"})
		}

		if user.Status != models.STATUS_ACTIVE {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "User inactive"})
		}

		plan := ""
		if org, err := orgs.GetByID(user.OrganizationID); err == nil {
			plan = org.Plan
		} else {
			log.Printf("organization lookup failed for user %d: %v", user.ID, err)
		}

		// Refresh last-login best-effort.
		if err := users.UpdateLastLogin(user.ID, time.Now()); err != nil {
			log.Printf("failed to update login timestamp for user %d: %v", user.ID, err)
		}

		usercontext.Set(c, usercontext.UserContext{
			UserID:         user.ID,
			OrganizationID: user.OrganizationID,
			Email:          user.Email,
			IsLoggedIn:     true,
			IsAdmin:        user.Role == models.ROLE_ADMIN,
			Plan:           plan,
		})
		return c.Next()
	}
}

func extractAPIKey(c *fiber.Ctx) string {
	if v := strings.TrimSpace(c.Get("X-API-Key")); v != "" {
		return v
	}
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

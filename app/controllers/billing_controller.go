package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/contactdeck/contactdeck/internal/pkg/billing"
	"github.com/contactdeck/contactdeck/internal/pkg/usercontext"
)

// BillingController exposes the billing flow over HTTP. All dependencies
// are injected; handlers never reach into globals.
type BillingController struct {
	svc      *billing.Service
	validate *validator.Validate
}

// NewBillingController creates the billing controller.
func NewBillingController(svc *billing.Service) *BillingController {
	return &BillingController{svc: svc, validate: validator.New()}
}

type checkoutSessionRequest struct {
	PlanID     string `json:"planId" validate:"required"`
	Seats      int    `json:"seats" validate:"required,min=1"`
	CustomerID string `json:"customerId"`
}

// HandleCreateCheckoutSession opens a hosted checkout session for a plan
// and seat count.
func (bc *BillingController) HandleCreateCheckoutSession(c *fiber.Ctx) error {
	var req checkoutSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := bc.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	userCtx := usercontext.GetUserContext(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := bc.svc.StartCheckout(ctx, billing.CheckoutInput{
		UserID:         userCtx.UserID,
		OrganizationID: userCtx.OrganizationID,
		PlanID:         req.PlanID,
		Seats:          req.Seats,
		CustomerID:     req.CustomerID,
		Email:          userCtx.Email,
	})
	if err != nil {
		return billingError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

type createSubscriptionRequest struct {
	PriceID       string `json:"priceId" validate:"required"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
}

// HandleCreateSubscription is the direct-charge path returning a client
// secret for the embedded payment UI.
func (bc *BillingController) HandleCreateSubscription(c *fiber.Ctx) error {
	var req createSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := bc.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := bc.svc.CreateSubscription(ctx, billing.CreateSubscriptionInput{
		PriceRef:      req.PriceID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		return billingError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

type verifySubscriptionRequest struct {
	SubscriptionID string `json:"subscriptionId"`
	CustomerID     string `json:"customerId"`
}

// HandleVerifySubscription checks current provider-side status.
func (bc *BillingController) HandleVerifySubscription(c *fiber.Ctx) error {
	var req verifySubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := bc.svc.VerifySubscription(ctx, billing.VerifyInput{
		SubscriptionID: req.SubscriptionID,
		CustomerID:     req.CustomerID,
	})
	if err != nil {
		return billingError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

type linkSubscriptionRequest struct {
	UserID         uint   `json:"userId"`
	SubscriptionID string `json:"subscriptionId"`
	CustomerID     string `json:"customerId"`
	Email          string `json:"email" validate:"omitempty,email"`
}

// HandleLinkSubscription persists the user/billing linkage. A repeated link
// for the same user reports already_linked so callers can treat it as
// idempotent success.
func (bc *BillingController) HandleLinkSubscription(c *fiber.Ctx) error {
	var req linkSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := bc.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	userID := req.UserID
	if userID == 0 {
		userID = usercontext.GetUserID(c)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	err := bc.svc.LinkAccount(ctx, billing.LinkInput{
		UserID:         userID,
		SubscriptionID: req.SubscriptionID,
		CustomerID:     req.CustomerID,
		Email:          req.Email,
	})
	if err != nil {
		return billingError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// HandleCancelSubscription requests cancellation at period end for the
// authenticated user's subscription.
func (bc *BillingController) HandleCancelSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	status, err := bc.svc.CancelSubscription(ctx, userCtx.UserID)
	if err != nil {
		return billingError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": status})
}

// HandleBillingStatus returns the authenticated user's local record.
func (bc *BillingController) HandleBillingStatus(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	rec, err := bc.svc.Status(ctx, userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"linked": false})
		}
		return billingError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"linked": true, "subscription": rec})
}

// HandleListPlans returns the static plan catalog. Prices are served in both
// decimal units and minor units so clients never convert themselves.
func (bc *BillingController) HandleListPlans(c *fiber.Ctx) error {
	plans := bc.svc.Catalog().All()
	out := make([]fiber.Map, 0, len(plans))
	for _, p := range plans {
		out = append(out, fiber.Map{
			"id":          p.ID,
			"name":        p.Name,
			"price":       p.Price,
			"priceCents":  p.PriceCents(),
			"priceRef":    p.PriceRef,
			"maxContacts": p.MaxContacts,
			"maxGroups":   p.MaxGroups,
			"maxStaff":    p.MaxStaff,
			"features":    p.Features,
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"plans": out})
}

// HandleBillingWebhook receives signed provider events. Signature failures
// are rejected with 400 and change no state. Verified events are always
// acknowledged; transient local failures are stored on the event row
// instead of triggering provider retries.
func (bc *BillingController) HandleBillingWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("Stripe-Signature")

	ctx, cancel := requestContext(c)
	defer cancel()

	outcome, err := bc.svc.ProcessWebhook(ctx, rawBody, signature)
	if err != nil {
		if errors.Is(err, billing.ErrSignatureVerification) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
		}
		log.Printf("webhook processing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if outcome.Duplicate {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if outcome.Ignored {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), 20*time.Second)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": msg})
}

// billingError maps the billing error taxonomy onto HTTP statuses.
func billingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, billing.ErrInvalidPlan):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_plan", "message": err.Error()})
	case errors.Is(err, billing.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": err.Error()})
	case errors.Is(err, billing.ErrAlreadyLinked):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "already_linked", "message": err.Error()})
	case errors.Is(err, billing.ErrProviderUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "provider_unavailable", "message": err.Error()})
	case errors.Is(err, billing.ErrIncompletePaymentSetup):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "incomplete_payment_setup", "message": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": err.Error()})
	}

	var provErr *billing.ProviderError
	if errors.As(err, &provErr) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "provider_error", "message": provErr.Error()})
	}

	log.Printf("billing handler error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "unexpected error"})
}

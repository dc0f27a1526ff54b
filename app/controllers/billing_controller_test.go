package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactdeck/contactdeck/internal/pkg/billing"
	"github.com/contactdeck/contactdeck/internal/pkg/usercontext"
)

type billingTestEnv struct {
	app      *fiber.App
	provider *billing.MockProvider
	repo     *billing.MemoryRepository
}

// newBillingTestApp wires the billing controller against the in-memory
// repository and the mock provider, with a stub auth middleware standing in
// for API-key auth.
func newBillingTestApp(t *testing.T) *billingTestEnv {
	t.Helper()

	provider := billing.NewMockProvider()
	repo := billing.NewMemoryRepository()
	svc := billing.NewService(billing.NewCatalog(billing.CatalogOverrides{}), provider, repo, billing.ServiceOptions{
		BaseURL: "https://app.example.test",
	})
	controller := NewBillingController(svc)

	app := fiber.New()
	app.Post("/webhooks/billing", controller.HandleBillingWebhook)

	v1 := app.Group("/api/v1", func(c *fiber.Ctx) error {
		usercontext.Set(c, usercontext.UserContext{
			UserID:         7,
			OrganizationID: 3,
			Email:          "owner@example.test",
			IsLoggedIn:     true,
			Plan:           "free",
		})
		return c.Next()
	})
	v1.Get("/billing/plans", controller.HandleListPlans)
	v1.Post("/billing/checkout/session", controller.HandleCreateCheckoutSession)
	v1.Post("/billing/subscriptions", controller.HandleCreateSubscription)
	v1.Post("/billing/subscriptions/verify", controller.HandleVerifySubscription)
	v1.Post("/billing/subscriptions/link", controller.HandleLinkSubscription)
	v1.Post("/billing/subscriptions/cancel", controller.HandleCancelSubscription)
	v1.Get("/billing/status", controller.HandleBillingStatus)

	return &billingTestEnv{app: app, provider: provider, repo: repo}
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestListPlans(t *testing.T) {
	env := newBillingTestApp(t)

	resp, err := env.app.Test(jsonRequest(t, http.MethodGet, "/api/v1/billing/plans", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	plans := body["plans"].([]any)
	require.Len(t, plans, 3)

	byID := make(map[string]map[string]any, len(plans))
	for _, raw := range plans {
		p := raw.(map[string]any)
		byID[p["id"].(string)] = p
	}
	require.Contains(t, byID, "pro")
	assert.EqualValues(t, 7999, byID["pro"]["priceCents"])
	assert.EqualValues(t, 2999, byID["standard"]["priceCents"])
	assert.EqualValues(t, 0, byID["free"]["priceCents"])
}

func TestCheckoutSessionEndpoint(t *testing.T) {
	env := newBillingTestApp(t)

	resp, err := env.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/billing/checkout/session", fiber.Map{
		"planId": "pro",
		"seats":  2,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["sessionId"])
	assert.NotEmpty(t, body["url"])

	require.Len(t, env.provider.CheckoutSessions, 1)
	assert.EqualValues(t, 2, env.provider.CheckoutSessions[0].Quantity)
}

func TestCheckoutSessionRejectsInvalidInput(t *testing.T) {
	env := newBillingTestApp(t)

	resp, err := env.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/billing/checkout/session", fiber.Map{
		"planId": "pro",
		"seats":  0,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = env.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/billing/checkout/session", fiber.Map{
		"planId": "enterprise",
		"seats":  1,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_plan", decodeBody(t, resp)["error"])
}

func TestCreateSubscriptionEndpoint(t *testing.T) {
	env := newBillingTestApp(t)

	resp, err := env.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/billing/subscriptions", fiber.Map{
		"priceId":       "price_standard",
		"customerEmail": "buyer@example.test",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "pi_mock_secret", body["clientSecret"])
}

func TestCreateSubscriptionIncompleteSetupEndpoint(t *testing.T) {
	env := newBillingTestApp(t)
	env.provider.ClientSecret = ""

	resp, err := env.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/billing/subscriptions", fiber.Map{
		"priceId":       "price_standard",
		"customerEmail": "buyer@example.test",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "incomplete_payment_setup", decodeBody(t, resp)["error"])
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	env := newBillingTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/billing", bytes.NewBufferString(`{}`))
	req.Header.Set("Stripe-Signature", "t=0,v1=bogus")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_signature", decodeBody(t, resp)["error"])
}

// TestSubscriptionLifecycle walks the full flow: checkout for the pro plan
// with two seats, the completed-checkout webhook, then local status and
// provider-side verification both report active.
func TestSubscriptionLifecycle(t *testing.T) {
	env := newBillingTestApp(t)

	resp, err := env.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/billing/checkout/session", fiber.Map{
		"planId": "pro",
		"seats":  2,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cust, err := env.repo.GetBillingCustomerByUser(7)
	require.NoError(t, err)

	env.provider.SetSubscription(billing.Subscription{
		ID:         "sub_flow",
		CustomerID: cust.ProviderCustomerID,
		Status:     "active",
		PriceRef:   "price_pro",
		Quantity:   2,
	})
	env.provider.WebhookEvents["sig-flow"] = billing.WebhookEvent{
		ID:             "evt_flow",
		Type:           billing.EventCheckoutSessionCompleted,
		SubscriptionID: "sub_flow",
		CustomerID:     cust.ProviderCustomerID,
		CustomerEmail:  "owner@example.test",
	}

	hook := httptest.NewRequest(http.MethodPost, "/webhooks/billing", bytes.NewBufferString(`{"id":"evt_flow"}`))
	hook.Header.Set("Stripe-Signature", "sig-flow")
	resp, err = env.app.Test(hook)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Replayed delivery is acknowledged but flagged as duplicate.
	hook = httptest.NewRequest(http.MethodPost, "/webhooks/billing", bytes.NewBufferString(`{"id":"evt_flow"}`))
	hook.Header.Set("Stripe-Signature", "sig-flow")
	resp, err = env.app.Test(hook)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp)["duplicate"])

	resp, err = env.app.Test(jsonRequest(t, http.MethodGet, "/api/v1/billing/status", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["linked"])
	sub := body["subscription"].(map[string]any)
	assert.Equal(t, "active", sub["status"])
	assert.Equal(t, "pro", sub["plan_id"])
	assert.EqualValues(t, 2, sub["seat_count"])

	resp, err = env.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/billing/subscriptions/verify", fiber.Map{
		"subscriptionId": "sub_flow",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp)["active"])

	// Cancel flips the local record to canceled at the provider's status.
	resp, err = env.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/billing/subscriptions/cancel", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancel_at_period_end", decodeBody(t, resp)["status"])
}

func TestLinkEndpointConflict(t *testing.T) {
	env := newBillingTestApp(t)

	env.provider.SetSubscription(billing.Subscription{
		ID: "sub_l", CustomerID: "cus_l", Status: "active", PriceRef: "price_standard",
	})

	resp, err := env.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/billing/subscriptions/link", fiber.Map{
		"subscriptionId": "sub_l",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = env.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/billing/subscriptions/link", fiber.Map{
		"subscriptionId": "sub_l",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "already_linked", decodeBody(t, resp)["error"])
	assert.Equal(t, 1, env.repo.SubscriptionCount())
}

func TestStatusUnlinked(t *testing.T) {
	env := newBillingTestApp(t)

	resp, err := env.app.Test(jsonRequest(t, http.MethodGet, "/api/v1/billing/status", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decodeBody(t, resp)["linked"])
}

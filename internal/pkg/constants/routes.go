package constants

// Static route constants
const (
	HealthRoute         = "/health"
	BillingWebhookRoute = "/webhooks/billing"

	APIPrefix   = "/api"
	APIV1Prefix = "/v1"

	CheckoutSessionRoute    = "/billing/checkout/session"
	SubscriptionsRoute      = "/billing/subscriptions"
	SubscriptionVerifyRoute = "/billing/subscriptions/verify"
	SubscriptionLinkRoute   = "/billing/subscriptions/link"
	SubscriptionCancelRoute = "/billing/subscriptions/cancel"
	BillingStatusRoute      = "/billing/status"
	PlansRoute              = "/billing/plans"

	ContactsRoute      = "/contacts"
	ContactGroupsRoute = "/contacts/groups"
	AccountRoute       = "/account"
)

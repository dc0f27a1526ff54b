package billing

import "context"

// Provider abstracts the billing provider API surface this service uses.
// Implementations translate domain inputs into provider calls and provider
// failures into the billing error taxonomy.
type Provider interface {
	// CreateCustomer registers a new billing customer.
	CreateCustomer(ctx context.Context, in CustomerInput) (Customer, error)
	// GetCustomer fetches an existing customer, mainly to resolve its email.
	GetCustomer(ctx context.Context, customerID string) (Customer, error)
	// CreateCheckoutSession opens a hosted checkout session in
	// subscription mode.
	CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (CheckoutSession, error)
	// CreateSubscription creates a subscription with incomplete payment
	// behavior and returns the payment intent client secret.
	CreateSubscription(ctx context.Context, in SubscriptionInput) (Subscription, error)
	// GetSubscription fetches a subscription by id.
	GetSubscription(ctx context.Context, subscriptionID string) (Subscription, error)
	// ListActiveSubscriptions lists a customer's active subscriptions,
	// newest first, up to limit.
	ListActiveSubscriptions(ctx context.Context, customerID string, limit int) ([]Subscription, error)
	// CancelSubscription cancels a subscription, optionally at period end.
	CancelSubscription(ctx context.Context, subscriptionID string, atPeriodEnd bool) (Subscription, error)
	// VerifyWebhook checks the payload signature and parses the event.
	// A failed signature returns ErrSignatureVerification.
	VerifyWebhook(payload []byte, signature string) (WebhookEvent, error)
}

// CustomerInput describes a customer to create.
type CustomerInput struct {
	Email    string
	Name     string
	Metadata map[string]string
}

// Customer is a provider customer record.
type Customer struct {
	ID    string
	Email string
	Name  string
}

// CheckoutSessionInput describes a hosted checkout session.
type CheckoutSessionInput struct {
	CustomerID      string
	PriceRef        string
	Quantity        int64
	SuccessURL      string
	CancelURL       string
	AllowPromoCodes bool
	Metadata        map[string]string
	IdempotencyKey  string
}

// CheckoutSession is the created hosted session.
type CheckoutSession struct {
	ID  string
	URL string
}

// SubscriptionInput describes a direct subscription creation.
type SubscriptionInput struct {
	CustomerID     string
	PriceRef       string
	Quantity       int64
	IdempotencyKey string
}

// Subscription mirrors the provider subscription fields this service reads.
type Subscription struct {
	ID               string
	CustomerID       string
	Status           string
	PriceRef         string
	Quantity         int64
	ClientSecret     string
	CurrentPeriodEnd int64 // unix seconds, 0 when unknown
}

// Webhook event types the receiver dispatches on. Any other type is
// acknowledged without action.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventSubscriptionUpdated      = "customer.subscription.updated"
	EventSubscriptionDeleted      = "customer.subscription.deleted"
)

// WebhookEvent is a verified, parsed provider event. SubscriptionID,
// CustomerID and Status are filled for the event types listed above and
// empty otherwise.
type WebhookEvent struct {
	ID             string
	Type           string
	SubscriptionID string
	CustomerID     string
	CustomerEmail  string
	Status         string
	Raw            []byte
}

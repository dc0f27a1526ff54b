package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/subscription"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeConfig carries the provider credentials and optional connected
// account.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	AccountID     string
}

// StripeProvider implements Provider against the Stripe API.
type StripeProvider struct {
	cfg StripeConfig
}

// NewStripeProvider configures the Stripe client. Fails with
// ErrProviderUnavailable when the secret key is missing so misconfiguration
// is caught at startup, not on the first request.
func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: missing secret key", ErrProviderUnavailable)
	}
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("%w: missing webhook secret", ErrProviderUnavailable)
	}
	stripe.Key = cfg.SecretKey
	return &StripeProvider{cfg: cfg}, nil
}

func (p *StripeProvider) applyCommon(params *stripe.Params, idempotencyKey string) {
	if p.cfg.AccountID != "" {
		params.SetStripeAccount(p.cfg.AccountID)
	}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}
}

// CreateCustomer creates a Stripe customer.
func (p *StripeProvider) CreateCustomer(ctx context.Context, in CustomerInput) (Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	if in.Email != "" {
		params.Email = stripe.String(in.Email)
	}
	if in.Name != "" {
		params.Name = stripe.String(in.Name)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	p.applyCommon(&params.Params, "")

	c, err := customer.New(params)
	if err != nil {
		return Customer{}, newProviderError("create customer", err)
	}
	return Customer{ID: c.ID, Email: c.Email, Name: c.Name}, nil
}

// GetCustomer fetches a Stripe customer.
func (p *StripeProvider) GetCustomer(ctx context.Context, customerID string) (Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	p.applyCommon(&params.Params, "")

	c, err := customer.Get(customerID, params)
	if err != nil {
		return Customer{}, newProviderError("get customer", err)
	}
	return Customer{ID: c.ID, Email: c.Email, Name: c.Name}, nil
}

// CreateCheckoutSession opens a subscription-mode hosted checkout session.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(in.PriceRef),
				Quantity: stripe.Int64(in.Quantity),
			},
		},
	}
	params.Context = ctx
	if in.CustomerID != "" {
		params.Customer = stripe.String(in.CustomerID)
	}
	if in.AllowPromoCodes {
		params.AllowPromotionCodes = stripe.Bool(true)
	}
	if len(in.Metadata) > 0 {
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: in.Metadata,
		}
		for k, v := range in.Metadata {
			params.AddMetadata(k, v)
		}
	}
	p.applyCommon(&params.Params, in.IdempotencyKey)

	s, err := checkoutsession.New(params)
	if err != nil {
		return CheckoutSession{}, newProviderError("create checkout session", err)
	}
	return CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// CreateSubscription creates a subscription with default_incomplete payment
// behavior, expanding the latest invoice's payment intent so the client
// secret can be handed to the embedded payment UI.
func (p *StripeProvider) CreateSubscription(ctx context.Context, in SubscriptionInput) (Subscription, error) {
	item := &stripe.SubscriptionItemsParams{Price: stripe.String(in.PriceRef)}
	if in.Quantity > 1 {
		item.Quantity = stripe.Int64(in.Quantity)
	}
	params := &stripe.SubscriptionParams{
		Customer:        stripe.String(in.CustomerID),
		Items:           []*stripe.SubscriptionItemsParams{item},
		PaymentBehavior: stripe.String("default_incomplete"),
	}
	params.Context = ctx
	params.AddExpand("latest_invoice.payment_intent")
	p.applyCommon(&params.Params, in.IdempotencyKey)

	sub, err := subscription.New(params)
	if err != nil {
		return Subscription{}, newProviderError("create subscription", err)
	}
	return stripeSubscription(sub), nil
}

// GetSubscription fetches a subscription by id.
func (p *StripeProvider) GetSubscription(ctx context.Context, subscriptionID string) (Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	p.applyCommon(&params.Params, "")

	sub, err := subscription.Get(subscriptionID, params)
	if err != nil {
		return Subscription{}, newProviderError("get subscription", err)
	}
	return stripeSubscription(sub), nil
}

// ListActiveSubscriptions lists a customer's active subscriptions.
func (p *StripeProvider) ListActiveSubscriptions(ctx context.Context, customerID string, limit int) ([]Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx
	if limit > 0 {
		params.Limit = stripe.Int64(int64(limit))
	}
	if p.cfg.AccountID != "" {
		params.SetStripeAccount(p.cfg.AccountID)
	}

	var out []Subscription
	iter := subscription.List(params)
	for iter.Next() {
		out = append(out, stripeSubscription(iter.Subscription()))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, newProviderError("list subscriptions", err)
	}
	return out, nil
}

// CancelSubscription cancels a subscription, at period end when requested.
func (p *StripeProvider) CancelSubscription(ctx context.Context, subscriptionID string, atPeriodEnd bool) (Subscription, error) {
	if atPeriodEnd {
		params := &stripe.SubscriptionParams{CancelAtPeriodEnd: stripe.Bool(true)}
		params.Context = ctx
		p.applyCommon(&params.Params, "")
		sub, err := subscription.Update(subscriptionID, params)
		if err != nil {
			return Subscription{}, newProviderError("cancel subscription", err)
		}
		return stripeSubscription(sub), nil
	}

	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	p.applyCommon(&params.Params, "")
	sub, err := subscription.Cancel(subscriptionID, params)
	if err != nil {
		return Subscription{}, newProviderError("cancel subscription", err)
	}
	return stripeSubscription(sub), nil
}

// VerifyWebhook checks the Stripe-Signature header against the signing
// secret and parses the event into the provider-neutral shape.
func (p *StripeProvider) VerifyWebhook(payload []byte, signature string) (WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.cfg.WebhookSecret)
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: %v", ErrSignatureVerification, err)
	}

	out := WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
		Raw:  append([]byte(nil), payload...),
	}

	switch out.Type {
	case EventCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return out, fmt.Errorf("billing: parse checkout session event: %w", err)
		}
		if sess.Subscription != nil {
			out.SubscriptionID = sess.Subscription.ID
		}
		if sess.Customer != nil {
			out.CustomerID = sess.Customer.ID
		}
		out.CustomerEmail = sess.CustomerEmail
		if out.CustomerEmail == "" && sess.CustomerDetails != nil {
			out.CustomerEmail = sess.CustomerDetails.Email
		}
	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return out, fmt.Errorf("billing: parse subscription event: %w", err)
		}
		out.SubscriptionID = sub.ID
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
		out.Status = string(sub.Status)
	}

	return out, nil
}

func stripeSubscription(sub *stripe.Subscription) Subscription {
	out := Subscription{
		ID:               sub.ID,
		Status:           string(sub.Status),
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.Price != nil {
			out.PriceRef = item.Price.ID
		}
		out.Quantity = item.Quantity
	}
	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		out.ClientSecret = sub.LatestInvoice.PaymentIntent.ClientSecret
	}
	return out
}

func providerMessage(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.Msg
	}
	return ""
}

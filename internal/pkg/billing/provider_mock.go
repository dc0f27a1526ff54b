package billing

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a test double that records calls and returns configurable
// results. It stands in for the Stripe API in unit and handler tests.
type MockProvider struct {
	mu sync.Mutex

	// Customers maps customerID -> Customer.
	Customers map[string]Customer
	// Subscriptions maps subscriptionID -> Subscription.
	Subscriptions map[string]Subscription
	// CheckoutSessions collects the inputs of every created session so
	// tests can assert on the request payload.
	CheckoutSessions []CheckoutSessionInput
	// CanceledSubscriptions collects ids passed to CancelSubscription.
	CanceledSubscriptions []string

	// WebhookEvents maps signature -> event, letting tests drive
	// VerifyWebhook without real signing. Unknown signatures fail
	// verification.
	WebhookEvents map[string]WebhookEvent

	// ClientSecret is attached to created subscriptions. Leave empty to
	// simulate the incomplete-payment-setup failure.
	ClientSecret string

	// Error fields let tests inject failures per operation.
	CreateCustomerErr error
	CreateSessionErr  error
	CreateSubErr      error
	GetSubErr         error
	ListSubsErr       error
	CancelSubErr      error

	nextCustomerSeq int
	nextSessionSeq  int
	nextSubSeq      int
}

// NewMockProvider creates a MockProvider ready for use.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Customers:     make(map[string]Customer),
		Subscriptions: make(map[string]Subscription),
		WebhookEvents: make(map[string]WebhookEvent),
		ClientSecret:  "pi_mock_secret",
	}
}

// CreateCustomer creates a mock customer.
func (m *MockProvider) CreateCustomer(_ context.Context, in CustomerInput) (Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateCustomerErr != nil {
		return Customer{}, m.CreateCustomerErr
	}
	m.nextCustomerSeq++
	c := Customer{
		ID:    fmt.Sprintf("cus_mock_%d", m.nextCustomerSeq),
		Email: in.Email,
		Name:  in.Name,
	}
	m.Customers[c.ID] = c
	return c, nil
}

// GetCustomer returns a previously created mock customer.
func (m *MockProvider) GetCustomer(_ context.Context, customerID string) (Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.Customers[customerID]
	if !ok {
		return Customer{}, &ProviderError{Op: "get customer", Message: "no such customer: " + customerID}
	}
	return c, nil
}

// CreateCheckoutSession records the input and returns a mock session.
func (m *MockProvider) CreateCheckoutSession(_ context.Context, in CheckoutSessionInput) (CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateSessionErr != nil {
		return CheckoutSession{}, m.CreateSessionErr
	}
	m.nextSessionSeq++
	m.CheckoutSessions = append(m.CheckoutSessions, in)
	id := fmt.Sprintf("cs_mock_%d", m.nextSessionSeq)
	return CheckoutSession{
		ID:  id,
		URL: "https://checkout.example.test/pay/" + id,
	}, nil
}

// CreateSubscription creates a mock subscription carrying ClientSecret.
func (m *MockProvider) CreateSubscription(_ context.Context, in SubscriptionInput) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateSubErr != nil {
		return Subscription{}, m.CreateSubErr
	}
	if _, ok := m.Customers[in.CustomerID]; !ok {
		return Subscription{}, &ProviderError{Op: "create subscription", Message: "no such customer: " + in.CustomerID}
	}
	m.nextSubSeq++
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	sub := Subscription{
		ID:           fmt.Sprintf("sub_mock_%d", m.nextSubSeq),
		CustomerID:   in.CustomerID,
		Status:       "incomplete",
		PriceRef:     in.PriceRef,
		Quantity:     qty,
		ClientSecret: m.ClientSecret,
	}
	m.Subscriptions[sub.ID] = sub
	return sub, nil
}

// GetSubscription returns a registered mock subscription.
func (m *MockProvider) GetSubscription(_ context.Context, subscriptionID string) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetSubErr != nil {
		return Subscription{}, m.GetSubErr
	}
	sub, ok := m.Subscriptions[subscriptionID]
	if !ok {
		return Subscription{}, &ProviderError{Op: "get subscription", Message: "no such subscription: " + subscriptionID}
	}
	return sub, nil
}

// ListActiveSubscriptions lists mock subscriptions with active status.
func (m *MockProvider) ListActiveSubscriptions(_ context.Context, customerID string, limit int) ([]Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListSubsErr != nil {
		return nil, m.ListSubsErr
	}
	var out []Subscription
	for _, sub := range m.Subscriptions {
		if sub.CustomerID == customerID && sub.Status == "active" {
			out = append(out, sub)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// CancelSubscription marks a mock subscription canceled.
func (m *MockProvider) CancelSubscription(_ context.Context, subscriptionID string, _ bool) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CancelSubErr != nil {
		return Subscription{}, m.CancelSubErr
	}
	sub, ok := m.Subscriptions[subscriptionID]
	if !ok {
		return Subscription{}, &ProviderError{Op: "cancel subscription", Message: "no such subscription: " + subscriptionID}
	}
	sub.Status = "canceled"
	m.Subscriptions[subscriptionID] = sub
	m.CanceledSubscriptions = append(m.CanceledSubscriptions, subscriptionID)
	return sub, nil
}

// VerifyWebhook resolves the signature against the registered events.
func (m *MockProvider) VerifyWebhook(payload []byte, signature string) (WebhookEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev, ok := m.WebhookEvents[signature]
	if !ok {
		return WebhookEvent{}, fmt.Errorf("%w: unknown test signature", ErrSignatureVerification)
	}
	ev.Raw = append([]byte(nil), payload...)
	return ev, nil
}

// SetSubscription registers a subscription for Get/List lookups.
func (m *MockProvider) SetSubscription(sub Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Subscriptions[sub.ID] = sub
}

// SetCustomer registers a customer for Get lookups.
func (m *MockProvider) SetCustomer(c Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Customers[c.ID] = c
}

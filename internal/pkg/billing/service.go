package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/contactdeck/contactdeck/app/models"
	"github.com/google/uuid"
)

// Notifier delivers billing notification mails. Optional.
type Notifier interface {
	Send(to, subject, body string) error
}

// EventCounter tracks processed webhook events by type. Optional.
type EventCounter interface {
	Add(eventType string)
}

// PlanUpdater mirrors plan changes onto the owning organization so
// entitlement checks see the purchased tier.
type PlanUpdater interface {
	UpdatePlan(orgID uint, plan string, seatCount int) error
}

// ServiceOptions carries the optional collaborators of the billing service.
type ServiceOptions struct {
	// BaseURL is the public app URL used for checkout redirect URLs.
	BaseURL string
	// Guard deduplicates webhook deliveries ahead of the DB event table.
	Guard EventGuard
	// Notifier, when set, receives a mail after completed checkouts.
	Notifier Notifier
	// Counter, when set, counts processed webhook events.
	Counter EventCounter
	// Plans, when set, receives organization plan changes driven by
	// checkout completions and subscription deletions.
	Plans PlanUpdater
}

// Service orchestrates checkout, subscription creation, webhook-driven
// state sync, verification and account linking against the billing provider
// and the local records.
type Service struct {
	catalog  *Catalog
	provider Provider
	repo     Repository
	opts     ServiceOptions
}

// NewService creates a billing service from its injected dependencies.
func NewService(catalog *Catalog, provider Provider, repo Repository, opts ServiceOptions) *Service {
	return &Service{catalog: catalog, provider: provider, repo: repo, opts: opts}
}

// Catalog exposes the plan catalog for read-only consumers.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// CheckoutInput describes a checkout session request.
type CheckoutInput struct {
	UserID         uint
	OrganizationID uint
	PlanID         string
	Seats          int
	CustomerID     string
	Email          string
}

// CheckoutResult is the created hosted session.
type CheckoutResult struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// StartCheckout resolves the plan, ensures a billing customer exists and
// opens a subscription-mode checkout session for plan price x seats.
func (s *Service) StartCheckout(ctx context.Context, in CheckoutInput) (CheckoutResult, error) {
	if in.Seats < 1 {
		return CheckoutResult{}, fmt.Errorf("%w: seats must be a positive integer", ErrInvalidRequest)
	}

	plan, err := s.catalog.Get(in.PlanID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if plan.PriceRef == "" {
		return CheckoutResult{}, fmt.Errorf("%w: plan %q has no price reference", ErrInvalidPlan, plan.ID)
	}

	customerID := strings.TrimSpace(in.CustomerID)
	if customerID == "" {
		cust, err := s.provider.CreateCustomer(ctx, CustomerInput{
			Email: in.Email,
			Metadata: map[string]string{
				"seats":   strconv.Itoa(in.Seats),
				"user_id": strconv.FormatUint(uint64(in.UserID), 10),
			},
		})
		if err != nil {
			return CheckoutResult{}, err
		}
		customerID = cust.ID

		// Local linkage is written before the session is created so a
		// completed-checkout webhook can always resolve the user.
		if in.UserID != 0 {
			if err := s.repo.UpsertBillingCustomer(&models.BillingCustomer{
				UserID:             in.UserID,
				OrganizationID:     in.OrganizationID,
				Provider:           models.BillingProviderStripe,
				ProviderCustomerID: customerID,
				Email:              in.Email,
				SeatCount:          in.Seats,
			}); err != nil {
				return CheckoutResult{}, err
			}
		}
	}

	sess, err := s.provider.CreateCheckoutSession(ctx, CheckoutSessionInput{
		CustomerID:      customerID,
		PriceRef:        plan.PriceRef,
		Quantity:        int64(in.Seats),
		SuccessURL:      s.opts.BaseURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:       s.opts.BaseURL + "/billing/cancel?session_id={CHECKOUT_SESSION_ID}",
		AllowPromoCodes: true,
		Metadata: map[string]string{
			"plan_id": plan.ID,
			"seats":   strconv.Itoa(in.Seats),
			"user_id": strconv.FormatUint(uint64(in.UserID), 10),
		},
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return CheckoutResult{}, err
	}

	return CheckoutResult{SessionID: sess.ID, URL: sess.URL}, nil
}

// CreateSubscriptionInput describes the direct-charge path.
type CreateSubscriptionInput struct {
	PriceRef      string
	CustomerName  string
	CustomerEmail string
}

// CreateSubscriptionResult carries the client secret for the embedded
// payment UI.
type CreateSubscriptionResult struct {
	SubscriptionID string `json:"subscriptionId"`
	CustomerID     string `json:"customerId"`
	ClientSecret   string `json:"clientSecret"`
}

// CreateSubscription creates a customer plus an incomplete subscription and
// returns the payment intent client secret. A subscription that comes back
// without a client secret cannot be completed client-side; the orphaned
// provider subscription is canceled best-effort and the call fails with
// ErrIncompletePaymentSetup.
func (s *Service) CreateSubscription(ctx context.Context, in CreateSubscriptionInput) (CreateSubscriptionResult, error) {
	if strings.TrimSpace(in.PriceRef) == "" || strings.TrimSpace(in.CustomerEmail) == "" {
		return CreateSubscriptionResult{}, fmt.Errorf("%w: priceId and customerEmail are required", ErrInvalidRequest)
	}

	cust, err := s.provider.CreateCustomer(ctx, CustomerInput{
		Email: in.CustomerEmail,
		Name:  in.CustomerName,
	})
	if err != nil {
		return CreateSubscriptionResult{}, err
	}

	sub, err := s.provider.CreateSubscription(ctx, SubscriptionInput{
		CustomerID:     cust.ID,
		PriceRef:       in.PriceRef,
		Quantity:       1,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return CreateSubscriptionResult{}, err
	}

	if sub.ClientSecret == "" {
		if _, cancelErr := s.provider.CancelSubscription(ctx, sub.ID, false); cancelErr != nil {
			log.Printf("billing: failed to cancel orphaned subscription %s: %v", sub.ID, cancelErr)
			return CreateSubscriptionResult{}, fmt.Errorf("%w: subscription %s left orphaned", ErrIncompletePaymentSetup, sub.ID)
		}
		return CreateSubscriptionResult{}, fmt.Errorf("%w: subscription %s canceled", ErrIncompletePaymentSetup, sub.ID)
	}

	return CreateSubscriptionResult{
		SubscriptionID: sub.ID,
		CustomerID:     cust.ID,
		ClientSecret:   sub.ClientSecret,
	}, nil
}

// VerifyInput identifies the subscription to verify. At least one id is
// required.
type VerifyInput struct {
	SubscriptionID string
	CustomerID     string
}

// VerifyResult reports the current provider-side subscription state.
type VerifyResult struct {
	Active         bool   `json:"active"`
	Status         string `json:"status,omitempty"`
	Message        string `json:"message,omitempty"`
	Email          string `json:"email,omitempty"`
	SubscriptionID string `json:"subscriptionId,omitempty"`
	CustomerID     string `json:"customerId,omitempty"`
}

// VerifySubscription queries the provider for current status. Active and
// trialing both count as verified-active.
func (s *Service) VerifySubscription(ctx context.Context, in VerifyInput) (VerifyResult, error) {
	subID := strings.TrimSpace(in.SubscriptionID)
	custID := strings.TrimSpace(in.CustomerID)
	if subID == "" && custID == "" {
		return VerifyResult{}, fmt.Errorf("%w: subscriptionId or customerId is required", ErrInvalidRequest)
	}

	var result VerifyResult
	if subID != "" {
		sub, err := s.provider.GetSubscription(ctx, subID)
		if err != nil {
			return VerifyResult{}, err
		}
		result = VerifyResult{
			Status:         sub.Status,
			SubscriptionID: sub.ID,
			CustomerID:     sub.CustomerID,
			Active:         isVerifiedActive(sub.Status),
		}
		if !result.Active {
			result.Message = fmt.Sprintf("subscription status is %q, not active or trialing", sub.Status)
		}
	} else {
		subs, err := s.provider.ListActiveSubscriptions(ctx, custID, 1)
		if err != nil {
			return VerifyResult{}, err
		}
		if len(subs) == 0 {
			result = VerifyResult{
				Active:     false,
				CustomerID: custID,
				Message:    "customer has no active subscription",
			}
		} else {
			result = VerifyResult{
				Active:         true,
				Status:         subs[0].Status,
				SubscriptionID: subs[0].ID,
				CustomerID:     custID,
			}
		}
	}

	// Resolve the email for downstream linking; verification stands even
	// when the lookup fails.
	if result.CustomerID != "" {
		if cust, err := s.provider.GetCustomer(ctx, result.CustomerID); err == nil {
			result.Email = cust.Email
		} else {
			log.Printf("billing: could not resolve email for customer %s: %v", result.CustomerID, err)
		}
	}

	return result, nil
}

// LinkInput associates an authenticated user with billing identifiers.
type LinkInput struct {
	UserID         uint
	SubscriptionID string
	CustomerID     string
	Email          string
}

// LinkAccount persists the local subscription record for a user. Duplicate
// links fail with ErrAlreadyLinked so callers can treat the retry as an
// idempotent success.
func (s *Service) LinkAccount(ctx context.Context, in LinkInput) error {
	subID := strings.TrimSpace(in.SubscriptionID)
	custID := strings.TrimSpace(in.CustomerID)
	if in.UserID == 0 || (subID == "" && custID == "") {
		return fmt.Errorf("%w: userId and one of subscriptionId or customerId are required", ErrInvalidRequest)
	}

	rec := &models.SubscriptionRecord{
		UserID:             in.UserID,
		Provider:           models.BillingProviderStripe,
		ProviderCustomerID: custID,
		Email:              strings.TrimSpace(in.Email),
		Status:             models.SubscriptionStatusActive,
		SeatCount:          1,
	}
	if subID != "" {
		rec.ProviderSubscriptionID = subID
		// Plan and seats are cosmetic on the record; fill them when the
		// provider lookup succeeds.
		if sub, err := s.provider.GetSubscription(ctx, subID); err == nil {
			if plan, ok := s.catalog.ByPriceRef(sub.PriceRef); ok {
				rec.PlanID = plan.ID
			}
			if sub.Quantity > 0 {
				rec.SeatCount = int(sub.Quantity)
			}
			if rec.ProviderCustomerID == "" {
				rec.ProviderCustomerID = sub.CustomerID
			}
		}
	} else {
		rec.ProviderSubscriptionID = "customer:" + custID
	}

	return s.repo.CreateSubscriptionRecord(rec)
}

// CancelSubscription requests cancellation at period end for the user's
// linked subscription and mirrors the provider status locally.
func (s *Service) CancelSubscription(ctx context.Context, userID uint) (string, error) {
	rec, err := s.repo.GetSubscriptionRecordByUser(userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("%w: no linked subscription for user", ErrInvalidRequest)
		}
		return "", err
	}

	sub, err := s.provider.CancelSubscription(ctx, rec.ProviderSubscriptionID, true)
	if err != nil {
		return "", err
	}

	if _, err := s.repo.SetSubscriptionStatus(rec.Provider, rec.ProviderSubscriptionID, sub.Status); err != nil {
		return "", err
	}
	return "cancel_at_period_end", nil
}

// Status returns the user's local subscription record.
func (s *Service) Status(ctx context.Context, userID uint) (*models.SubscriptionRecord, error) {
	_ = ctx
	return s.repo.GetSubscriptionRecordByUser(userID)
}

// WebhookOutcome describes how an inbound event was handled.
type WebhookOutcome struct {
	EventType string
	Duplicate bool
	Ignored   bool
}

// ProcessWebhook verifies, deduplicates and dispatches an inbound provider
// event. Signature failures return ErrSignatureVerification before any
// state-changing logic runs. Once the event is verified and recorded the
// call succeeds even if the local state update fails; the failure is stored
// on the event row for operator replay instead of relying on provider
// retries.
func (s *Service) ProcessWebhook(ctx context.Context, payload []byte, signature string) (WebhookOutcome, error) {
	ev, err := s.provider.VerifyWebhook(payload, signature)
	if err != nil {
		return WebhookOutcome{}, err
	}
	outcome := WebhookOutcome{EventType: ev.Type}

	eventID := ev.ID
	if eventID == "" {
		sum := sha256.Sum256(ev.Raw)
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	guardHeld := false
	if s.opts.Guard != nil {
		first, gerr := s.opts.Guard.FirstDelivery(ctx, models.BillingProviderStripe, eventID)
		if gerr != nil {
			// Cache outage must not drop events; the event table below
			// still deduplicates.
			log.Printf("billing: webhook guard unavailable: %v", gerr)
		} else if !first {
			outcome.Duplicate = true
			return outcome, nil
		} else {
			guardHeld = true
		}
	}

	created, stored, err := s.repo.CreateWebhookEventIfNotExists(&models.BillingWebhookEvent{
		Provider:        models.BillingProviderStripe,
		ProviderEventID: eventID,
		EventType:       ev.Type,
		PayloadJSON:     string(ev.Raw),
		SignatureValid:  true,
	})
	if err != nil {
		// The event was never recorded; release the guard claim so the
		// provider's retry is not misread as a duplicate. The event table's
		// unique index stays the dedup source of truth.
		if guardHeld {
			if ferr := s.opts.Guard.Forget(ctx, models.BillingProviderStripe, eventID); ferr != nil {
				log.Printf("billing: failed to release webhook guard for %s: %v", eventID, ferr)
			}
		}
		return outcome, err
	}
	if !created {
		outcome.Duplicate = true
		return outcome, nil
	}

	var syncErr error
	switch ev.Type {
	case EventCheckoutSessionCompleted:
		outcome.Ignored, syncErr = s.handleCheckoutCompleted(ctx, ev)
	case EventSubscriptionUpdated:
		outcome.Ignored, syncErr = s.applyStatus(ev, ev.Status)
	case EventSubscriptionDeleted:
		outcome.Ignored, syncErr = s.applyStatus(ev, models.SubscriptionStatusCanceled)
	default:
		// Unknown event types are expected and forward-compatible.
		outcome.Ignored = true
	}

	errMsg := ""
	if syncErr != nil {
		errMsg = syncErr.Error()
		log.Printf("billing: webhook %s (%s) state update failed: %v", eventID, ev.Type, syncErr)
	}
	if markErr := s.repo.MarkWebhookProcessed(stored.ID, errMsg); markErr != nil {
		log.Printf("billing: failed to mark webhook %s processed: %v", eventID, markErr)
	}
	if s.opts.Counter != nil {
		s.opts.Counter.Add(ev.Type)
	}

	return outcome, nil
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, ev WebhookEvent) (ignored bool, err error) {
	if ev.SubscriptionID == "" || ev.CustomerID == "" {
		return true, nil
	}

	cust, err := s.repo.GetBillingCustomerByProviderID(models.BillingProviderStripe, ev.CustomerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Checkout for a customer this deployment never created.
			return true, nil
		}
		return false, err
	}

	rec := &models.SubscriptionRecord{
		UserID:                 cust.UserID,
		Provider:               models.BillingProviderStripe,
		ProviderSubscriptionID: ev.SubscriptionID,
		ProviderCustomerID:     ev.CustomerID,
		Email:                  firstNonEmpty(ev.CustomerEmail, cust.Email),
		Status:                 models.SubscriptionStatusActive,
		SeatCount:              cust.SeatCount,
	}
	if sub, lookupErr := s.provider.GetSubscription(ctx, ev.SubscriptionID); lookupErr == nil {
		if plan, ok := s.catalog.ByPriceRef(sub.PriceRef); ok {
			rec.PlanID = plan.ID
		}
		if sub.Quantity > 0 {
			rec.SeatCount = int(sub.Quantity)
		}
		if sub.CurrentPeriodEnd > 0 {
			end := time.Unix(sub.CurrentPeriodEnd, 0)
			rec.CurrentPeriodEnd = &end
		}
	}

	if err := s.repo.UpsertSubscriptionRecord(rec); err != nil {
		return false, err
	}

	// Entitlements gate on Organization.Plan, so the purchase must land
	// there too.
	if s.opts.Plans != nil && cust.OrganizationID != 0 && rec.PlanID != "" {
		if err := s.opts.Plans.UpdatePlan(cust.OrganizationID, rec.PlanID, rec.SeatCount); err != nil {
			return false, err
		}
	}

	if s.opts.Notifier != nil && rec.Email != "" {
		subject := "Your ContactDeck subscription is active"
		body := fmt.Sprintf("<p>Thanks for subscribing! Your %s plan with %d seat(s) is now active.</p>", rec.PlanID, rec.SeatCount)
		if mailErr := s.opts.Notifier.Send(rec.Email, subject, body); mailErr != nil {
			log.Printf("billing: checkout notification to %s failed: %v", rec.Email, mailErr)
		}
	}
	return false, nil
}

// applyStatus overwrites the local status with the event's status
// (last-write-wins). Events for unknown subscriptions are acknowledged and
// ignored.
func (s *Service) applyStatus(ev WebhookEvent, status string) (ignored bool, err error) {
	if ev.SubscriptionID == "" || status == "" {
		return true, nil
	}
	rows, err := s.repo.SetSubscriptionStatus(models.BillingProviderStripe, ev.SubscriptionID, status)
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return true, nil
	}
	if status == models.SubscriptionStatusCanceled {
		if err := s.downgradeOrganization(ev.SubscriptionID); err != nil {
			return false, err
		}
	}
	return false, nil
}

// downgradeOrganization drops the owning organization back to the free tier
// when its subscription is gone.
func (s *Service) downgradeOrganization(providerSubscriptionID string) error {
	if s.opts.Plans == nil {
		return nil
	}
	rec, err := s.repo.GetSubscriptionRecordByProviderID(models.BillingProviderStripe, providerSubscriptionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	cust, err := s.repo.GetBillingCustomerByUser(rec.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if cust.OrganizationID == 0 {
		return nil
	}
	return s.opts.Plans.UpdatePlan(cust.OrganizationID, "free", 1)
}

func isVerifiedActive(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case models.SubscriptionStatusActive, models.SubscriptionStatusTrialing:
		return true
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

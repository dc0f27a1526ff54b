package billing

import (
	"sync"
	"time"

	"github.com/contactdeck/contactdeck/app/models"
)

// MemoryRepository is an in-memory Repository used by tests. It applies the
// same uniqueness rules as the SQL schema.
type MemoryRepository struct {
	mu sync.Mutex

	customers     map[string]*models.BillingCustomer    // provider:customerID
	subscriptions map[string]*models.SubscriptionRecord // provider:subID
	webhookEvents map[string]*models.BillingWebhookEvent
	nextID        uint
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		customers:     make(map[string]*models.BillingCustomer),
		subscriptions: make(map[string]*models.SubscriptionRecord),
		webhookEvents: make(map[string]*models.BillingWebhookEvent),
	}
}

func (r *MemoryRepository) nextSeq() uint {
	r.nextID++
	return r.nextID
}

func (r *MemoryRepository) UpsertBillingCustomer(c *models.BillingCustomer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := c.Provider + ":" + c.ProviderCustomerID
	if existing, ok := r.customers[key]; ok {
		existing.UserID = c.UserID
		existing.OrganizationID = c.OrganizationID
		existing.Email = c.Email
		existing.SeatCount = c.SeatCount
		existing.UpdatedAt = time.Now()
		*c = *existing
		return nil
	}
	c.ID = r.nextSeq()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	r.customers[key] = &cp
	return nil
}

func (r *MemoryRepository) GetBillingCustomerByUser(userID uint) (*models.BillingCustomer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.customers {
		if c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) GetBillingCustomerByProviderID(provider, providerCustomerID string) (*models.BillingCustomer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.customers[provider+":"+providerCustomerID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) CreateSubscriptionRecord(rec *models.SubscriptionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.subscriptions {
		if s.UserID == rec.UserID {
			return ErrAlreadyLinked
		}
		if s.Provider == rec.Provider && s.ProviderSubscriptionID == rec.ProviderSubscriptionID {
			return ErrAlreadyLinked
		}
	}
	rec.ID = r.nextSeq()
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	cp := *rec
	r.subscriptions[rec.Provider+":"+rec.ProviderSubscriptionID] = &cp
	return nil
}

func (r *MemoryRepository) UpsertSubscriptionRecord(rec *models.SubscriptionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := rec.Provider + ":" + rec.ProviderSubscriptionID
	if existing, ok := r.subscriptions[key]; ok {
		existing.UserID = rec.UserID
		existing.ProviderCustomerID = rec.ProviderCustomerID
		existing.PlanID = rec.PlanID
		existing.Email = rec.Email
		existing.Status = rec.Status
		existing.SeatCount = rec.SeatCount
		existing.CurrentPeriodEnd = rec.CurrentPeriodEnd
		existing.UpdatedAt = time.Now()
		*rec = *existing
		return nil
	}
	rec.ID = r.nextSeq()
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	cp := *rec
	r.subscriptions[key] = &cp
	return nil
}

func (r *MemoryRepository) SetSubscriptionStatus(provider, providerSubscriptionID, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.subscriptions[provider+":"+providerSubscriptionID]; ok {
		s.Status = status
		s.UpdatedAt = time.Now()
		return 1, nil
	}
	return 0, nil
}

func (r *MemoryRepository) GetSubscriptionRecordByUser(userID uint) (*models.SubscriptionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.subscriptions {
		if s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) GetSubscriptionRecordByProviderID(provider, providerSubscriptionID string) (*models.SubscriptionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.subscriptions[provider+":"+providerSubscriptionID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := event.Provider + ":" + event.ProviderEventID
	if stored, ok := r.webhookEvents[key]; ok {
		cp := *stored
		return false, &cp, nil
	}
	event.ID = r.nextSeq()
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	cp := *event
	r.webhookEvents[key] = &cp
	out := cp
	return true, &out, nil
}

func (r *MemoryRepository) MarkWebhookProcessed(id uint, processingError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.webhookEvents {
		if e.ID == id {
			now := time.Now()
			e.ProcessedAt = &now
			e.ProcessingError = processingError
			e.UpdatedAt = now
			return nil
		}
	}
	return ErrNotFound
}

// SubscriptionCount reports the number of stored subscription records.
func (r *MemoryRepository) SubscriptionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subscriptions)
}

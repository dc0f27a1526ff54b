package billing

import (
	"errors"
	"time"

	"github.com/contactdeck/contactdeck/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations used by the billing service.
type Repository interface {
	UpsertBillingCustomer(c *models.BillingCustomer) error
	GetBillingCustomerByUser(userID uint) (*models.BillingCustomer, error)
	GetBillingCustomerByProviderID(provider, providerCustomerID string) (*models.BillingCustomer, error)

	// CreateSubscriptionRecord inserts a fresh record and fails with
	// ErrAlreadyLinked when the user already has one.
	CreateSubscriptionRecord(rec *models.SubscriptionRecord) error
	UpsertSubscriptionRecord(rec *models.SubscriptionRecord) error
	SetSubscriptionStatus(provider, providerSubscriptionID, status string) (int64, error)
	GetSubscriptionRecordByUser(userID uint) (*models.SubscriptionRecord, error)
	GetSubscriptionRecordByProviderID(provider, providerSubscriptionID string) (*models.SubscriptionRecord, error)

	CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

// ErrNotFound is returned by lookups with no matching row.
var ErrNotFound = gorm.ErrRecordNotFound

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) UpsertBillingCustomer(c *models.BillingCustomer) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_customer_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id",
			"organization_id",
			"email",
			"seat_count",
			"updated_at",
		}),
	}).Create(c).Error; err != nil {
		return err
	}

	return r.db.Where("provider = ? AND provider_customer_id = ?", c.Provider, c.ProviderCustomerID).
		First(c).Error
}

func (r *gormRepository) GetBillingCustomerByUser(userID uint) (*models.BillingCustomer, error) {
	var c models.BillingCustomer
	if err := r.db.Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *gormRepository) GetBillingCustomerByProviderID(provider, providerCustomerID string) (*models.BillingCustomer, error) {
	var c models.BillingCustomer
	if err := r.db.Where("provider = ? AND provider_customer_id = ?", provider, providerCustomerID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *gormRepository) CreateSubscriptionRecord(rec *models.SubscriptionRecord) error {
	if err := r.db.Create(rec).Error; err != nil {
		// Requires gorm.Config{TranslateError: true} so the MySQL 1062
		// duplicate entry comes back as ErrDuplicatedKey.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyLinked
		}
		return err
	}
	return nil
}

func (r *gormRepository) UpsertSubscriptionRecord(rec *models.SubscriptionRecord) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_subscription_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id",
			"provider_customer_id",
			"plan_id",
			"email",
			"status",
			"seat_count",
			"current_period_end",
			"updated_at",
		}),
	}).Create(rec).Error; err != nil {
		return err
	}

	return r.db.Where("provider = ? AND provider_subscription_id = ?", rec.Provider, rec.ProviderSubscriptionID).
		First(rec).Error
}

func (r *gormRepository) SetSubscriptionStatus(provider, providerSubscriptionID, status string) (int64, error) {
	tx := r.db.Model(&models.SubscriptionRecord{}).
		Where("provider = ? AND provider_subscription_id = ?", provider, providerSubscriptionID).
		Updates(map[string]interface{}{"status": status})
	return tx.RowsAffected, tx.Error
}

func (r *gormRepository) GetSubscriptionRecordByUser(userID uint) (*models.SubscriptionRecord, error) {
	var rec models.SubscriptionRecord
	if err := r.db.Where("user_id = ?", userID).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *gormRepository) GetSubscriptionRecordByProviderID(provider, providerSubscriptionID string) (*models.SubscriptionRecord, error) {
	var rec models.SubscriptionRecord
	if err := r.db.Where("provider = ? AND provider_subscription_id = ?", provider, providerSubscriptionID).
		First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

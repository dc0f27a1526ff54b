package models

import "time"

// Subscription status values mirrored from the billing provider.
const (
	SubscriptionStatusIncomplete = "incomplete"
	SubscriptionStatusTrialing   = "trialing"
	SubscriptionStatusActive     = "active"
	SubscriptionStatusPastDue    = "past_due"
	SubscriptionStatusCanceled   = "canceled"
	SubscriptionStatusUnpaid     = "unpaid"
)

// SubscriptionRecord is the local persistence of a user's billing
// subscription. Records are status-transitioned by webhook events and by
// verification; they are never deleted by the billing flow. The unique index
// on user_id enforces at most one record per user.
type SubscriptionRecord struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	UserID                 uint       `gorm:"not null;uniqueIndex:ux_subscription_records_user" json:"user_id"`
	Provider               string     `gorm:"type:varchar(20);not null;index:ux_subscription_records_provider_sub,unique,priority:1" json:"provider"`
	ProviderSubscriptionID string     `gorm:"type:varchar(191);not null;index:ux_subscription_records_provider_sub,unique,priority:2" json:"provider_subscription_id"`
	ProviderCustomerID     string     `gorm:"type:varchar(191);not null;index" json:"provider_customer_id"`
	PlanID                 string     `gorm:"type:varchar(50);not null;default:'free';index" json:"plan_id"`
	Email                  string     `gorm:"type:varchar(200);default:''" json:"email"`
	Status                 string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	SeatCount              int        `gorm:"not null;default:1" json:"seat_count"`
	CurrentPeriodEnd       *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CreatedAt              time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActive reports whether the record grants access. Trialing counts as
// active for entitlement purposes.
func (s *SubscriptionRecord) IsActive() bool {
	return s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusTrialing
}

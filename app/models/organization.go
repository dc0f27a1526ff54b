package models

import (
	"time"

	"gorm.io/gorm"
)

// Organization is the tenant unit. Billing is intended to be one paying
// organization per billing customer; the linkage lives in BillingCustomer.
type Organization struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(200);not null" json:"name" validate:"required,min=2,max=200"`
	Slug      string         `gorm:"type:varchar(100);uniqueIndex" json:"slug"`
	Plan      string         `gorm:"type:varchar(50);not null;default:'free';index" json:"plan"`
	SeatCount int            `gorm:"not null;default:1" json:"seat_count"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

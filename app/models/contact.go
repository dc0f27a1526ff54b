package models

import (
	"time"

	"gorm.io/gorm"
)

// Contact is a single address-book entry owned by an organization.
type Contact struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	OrganizationID uint           `gorm:"not null;index:idx_contacts_org" json:"organization_id"`
	GroupID        *uint          `gorm:"index" json:"group_id,omitempty"`
	Name           string         `gorm:"type:varchar(200);not null" json:"name" validate:"required,max=200"`
	Email          string         `gorm:"type:varchar(200);index" json:"email" validate:"omitempty,email,max=200"`
	Phone          string         `gorm:"type:varchar(50)" json:"phone" validate:"max=50"`
	Company        string         `gorm:"type:varchar(200)" json:"company" validate:"max=200"`
	Notes          string         `gorm:"type:text" json:"notes"`
	CreatedByID    uint           `gorm:"index" json:"created_by_id"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

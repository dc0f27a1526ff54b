package models

import (
	"time"

	"gorm.io/gorm"
)

// ContactGroup is a named grouping of contacts within an organization.
type ContactGroup struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	OrganizationID uint           `gorm:"not null;index:ux_contact_groups_org_name,unique,priority:1" json:"organization_id"`
	Name           string         `gorm:"type:varchar(100);not null;index:ux_contact_groups_org_name,unique,priority:2" json:"name" validate:"required,max=100"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

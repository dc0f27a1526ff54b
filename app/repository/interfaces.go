package repository

import (
	"time"

	"github.com/contactdeck/contactdeck/app/models"
)

// UserRepository provides user lookups for auth and account handlers.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, error)
	UpdateLastLogin(id uint, at time.Time) error
}

// OrganizationRepository provides tenant lookups and plan updates.
type OrganizationRepository interface {
	GetByID(id uint) (*models.Organization, error)
	UpdatePlan(id uint, plan string, seatCount int) error
}

// ContactRepository provides contact and group operations scoped to an
// organization.
type ContactRepository interface {
	Create(contact *models.Contact) error
	ListByOrganization(orgID uint, limit, offset int) ([]models.Contact, error)
	CountByOrganization(orgID uint) (int64, error)
	CreateGroup(group *models.ContactGroup) error
	ListGroups(orgID uint) ([]models.ContactGroup, error)
	CountGroupsByOrganization(orgID uint) (int64, error)
}

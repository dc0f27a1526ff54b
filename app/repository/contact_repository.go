package repository

import (
	"github.com/contactdeck/contactdeck/app/models"
	"gorm.io/gorm"
)

type gormContactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a contact repository backed by GORM.
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &gormContactRepository{db: db}
}

func (r *gormContactRepository) Create(contact *models.Contact) error {
	return r.db.Create(contact).Error
}

func (r *gormContactRepository) ListByOrganization(orgID uint, limit, offset int) ([]models.Contact, error) {
	var contacts []models.Contact
	q := r.db.Where("organization_id = ?", orgID).Order("name ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Find(&contacts).Error
	return contacts, err
}

func (r *gormContactRepository) CountByOrganization(orgID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Contact{}).Where("organization_id = ?", orgID).Count(&count).Error
	return count, err
}

func (r *gormContactRepository) CreateGroup(group *models.ContactGroup) error {
	return r.db.Create(group).Error
}

func (r *gormContactRepository) ListGroups(orgID uint) ([]models.ContactGroup, error) {
	var groups []models.ContactGroup
	err := r.db.Where("organization_id = ?", orgID).Order("name ASC").Find(&groups).Error
	return groups, err
}

func (r *gormContactRepository) CountGroupsByOrganization(orgID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ContactGroup{}).Where("organization_id = ?", orgID).Count(&count).Error
	return count, err
}

package repository

import (
	"github.com/contactdeck/contactdeck/app/models"
	"gorm.io/gorm"
)

type gormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates an organization repository backed by GORM.
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &gormOrganizationRepository{db: db}
}

func (r *gormOrganizationRepository) GetByID(id uint) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *gormOrganizationRepository) UpdatePlan(id uint, plan string, seatCount int) error {
	return r.db.Model(&models.Organization{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"plan": plan, "seat_count": seatCount}).Error
}

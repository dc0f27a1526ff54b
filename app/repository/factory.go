package repository

import "gorm.io/gorm"

// Factory bundles the repositories so controllers receive one dependency.
type Factory struct {
	db *gorm.DB

	users         UserRepository
	organizations OrganizationRepository
	contacts      ContactRepository
}

// NewFactory creates a repository factory for the given DB handle.
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db:            db,
		users:         NewUserRepository(db),
		organizations: NewOrganizationRepository(db),
		contacts:      NewContactRepository(db),
	}
}

func (f *Factory) Users() UserRepository                 { return f.users }
func (f *Factory) Organizations() OrganizationRepository { return f.organizations }
func (f *Factory) Contacts() ContactRepository           { return f.contacts }

package entitlements

import (
	"github.com/contactdeck/contactdeck/internal/pkg/billing"
)

// Limits is the resolved set of usage caps for an organization. Zero means
// unlimited.
type Limits struct {
	MaxContacts int
	MaxGroups   int
	MaxStaff    int
	Features    []string
}

// ForPlan resolves the usage limits for a plan id. Unknown plans fall back
// to the free tier so a bad plan value never grants unlimited usage.
func ForPlan(catalog *billing.Catalog, planID string) Limits {
	plan, err := catalog.Get(planID)
	if err != nil {
		plan, _ = catalog.Get("free")
	}
	return Limits{
		MaxContacts: plan.MaxContacts,
		MaxGroups:   plan.MaxGroups,
		MaxStaff:    plan.MaxStaff,
		Features:    plan.Features,
	}
}

// CanAddContact reports whether an organization with the given contact
// count may add another one.
func (l Limits) CanAddContact(current int64) bool {
	return l.MaxContacts == 0 || current < int64(l.MaxContacts)
}

// CanAddGroup reports whether another contact group fits the plan.
func (l Limits) CanAddGroup(current int64) bool {
	return l.MaxGroups == 0 || current < int64(l.MaxGroups)
}

// CanAddStaff reports whether another staff member fits the plan.
func (l Limits) CanAddStaff(current int64) bool {
	return l.MaxStaff == 0 || current < int64(l.MaxStaff)
}

// HasFeature reports whether the plan includes a feature flag.
func (l Limits) HasFeature(name string) bool {
	for _, f := range l.Features {
		if f == name {
			return true
		}
	}
	return false
}

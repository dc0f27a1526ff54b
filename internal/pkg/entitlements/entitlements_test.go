package entitlements

import (
	"testing"

	"github.com/contactdeck/contactdeck/internal/pkg/billing"
)

func testCatalog() *billing.Catalog {
	return billing.NewCatalog(billing.CatalogOverrides{})
}

func TestForPlan(t *testing.T) {
	catalog := testCatalog()

	free := ForPlan(catalog, "free")
	if free.MaxContacts != 100 || free.MaxGroups != 5 || free.MaxStaff != 1 {
		t.Fatalf("unexpected free limits: %+v", free)
	}

	pro := ForPlan(catalog, "pro")
	if pro.MaxContacts != 50000 || pro.MaxStaff != 25 {
		t.Fatalf("unexpected pro limits: %+v", pro)
	}
}

func TestForPlanUnknownFallsBackToFree(t *testing.T) {
	catalog := testCatalog()

	got := ForPlan(catalog, "enterprise")
	want := ForPlan(catalog, "free")
	if got.MaxContacts != want.MaxContacts || got.MaxGroups != want.MaxGroups {
		t.Fatalf("unknown plan limits = %+v, want free limits %+v", got, want)
	}
}

func TestCanAdd(t *testing.T) {
	limits := Limits{MaxContacts: 2, MaxGroups: 1}

	if !limits.CanAddContact(0) || !limits.CanAddContact(1) {
		t.Fatalf("expected contacts below the cap to be allowed")
	}
	if limits.CanAddContact(2) {
		t.Fatalf("expected contact at the cap to be rejected")
	}
	if limits.CanAddGroup(1) {
		t.Fatalf("expected group at the cap to be rejected")
	}
}

func TestZeroMeansUnlimited(t *testing.T) {
	limits := Limits{}

	if !limits.CanAddContact(1 << 30) {
		t.Fatalf("expected zero cap to mean unlimited contacts")
	}
	if !limits.CanAddStaff(1 << 30) {
		t.Fatalf("expected zero cap to mean unlimited staff")
	}
}

func TestHasFeature(t *testing.T) {
	limits := ForPlan(testCatalog(), "pro")

	if !limits.HasFeature("api-access") {
		t.Fatalf("expected pro to include api-access")
	}
	if limits.HasFeature("white-label") {
		t.Fatalf("did not expect white-label on pro")
	}
}

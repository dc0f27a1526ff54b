package billing

import (
	"errors"
	"testing"
)

func TestCatalogGet(t *testing.T) {
	c := NewCatalog(CatalogOverrides{})

	tests := []struct {
		in   string
		want string
	}{
		{in: "free", want: "free"},
		{in: "standard", want: "standard"},
		{in: "pro", want: "pro"},
		{in: "PRO", want: "pro"},
		{in: "  standard  ", want: "standard"},
	}

	for _, tt := range tests {
		p, err := c.Get(tt.in)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", tt.in, err)
		}
		if p.ID != tt.want {
			t.Fatalf("Get(%q) = %q, want %q", tt.in, p.ID, tt.want)
		}
	}
}

func TestCatalogGetUnknownPlan(t *testing.T) {
	c := NewCatalog(CatalogOverrides{})

	for _, in := range []string{"", "enterprise", "premium"} {
		if _, err := c.Get(in); !errors.Is(err, ErrInvalidPlan) {
			t.Fatalf("Get(%q) = %v, want ErrInvalidPlan", in, err)
		}
	}
}

func TestPlanPriceCents(t *testing.T) {
	c := NewCatalog(CatalogOverrides{})

	tests := []struct {
		plan string
		want int64
	}{
		{plan: "free", want: 0},
		{plan: "standard", want: 2999},
		{plan: "pro", want: 7999},
	}

	for _, tt := range tests {
		p, err := c.Get(tt.plan)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", tt.plan, err)
		}
		if got := p.PriceCents(); got != tt.want {
			t.Fatalf("PriceCents(%q) = %d, want %d", tt.plan, got, tt.want)
		}
	}
}

func TestCentsToDecimal(t *testing.T) {
	if got := CentsToDecimal(7999); got != 79.99 {
		t.Fatalf("CentsToDecimal(7999) = %v, want 79.99", got)
	}
	if got := CentsToDecimal(0); got != 0 {
		t.Fatalf("CentsToDecimal(0) = %v, want 0", got)
	}
}

func TestCatalogByPriceRef(t *testing.T) {
	c := NewCatalog(CatalogOverrides{StandardPriceRef: "price_live_std"})

	p, ok := c.ByPriceRef("price_live_std")
	if !ok || p.ID != "standard" {
		t.Fatalf("ByPriceRef override lookup = (%q, %v), want (standard, true)", p.ID, ok)
	}
	if _, ok := c.ByPriceRef("price_standard"); ok {
		t.Fatalf("expected overridden default ref to no longer resolve")
	}
	if _, ok := c.ByPriceRef(""); ok {
		t.Fatalf("expected empty price ref to not resolve")
	}
}

func TestCatalogAllKeepsOrder(t *testing.T) {
	c := NewCatalog(CatalogOverrides{})
	all := c.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(all))
	}
	wantOrder := []string{"free", "standard", "pro"}
	for i, want := range wantOrder {
		if all[i].ID != want {
			t.Fatalf("All()[%d] = %q, want %q", i, all[i].ID, want)
		}
	}
}

package billing

import (
	"fmt"
	"math"
	"strings"
)

// Plan is a named tier of service. Prices are plan-level base prices in
// decimal currency units; the provider boundary converts to minor units via
// PriceCents, which is the only place the x100 conversion happens.
type Plan struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"` // decimal currency units per seat per month
	PriceRef    string   `json:"price_ref,omitempty"`
	MaxContacts int      `json:"max_contacts"` // 0 = unlimited
	MaxGroups   int      `json:"max_groups"`   // 0 = unlimited
	MaxStaff    int      `json:"max_staff"`    // 0 = unlimited
	Features    []string `json:"features,omitempty"`
}

// PriceCents converts the decimal base price to integer minor units.
func (p Plan) PriceCents() int64 {
	return int64(math.Round(p.Price * 100))
}

// CentsToDecimal converts provider minor units back to decimal currency
// units. The inverse of Plan.PriceCents; no other code divides by 100.
func CentsToDecimal(cents int64) float64 {
	return float64(cents) / 100
}

// CatalogOverrides carries deploy-time price-reference overrides from config.
type CatalogOverrides struct {
	StandardPriceRef string
	ProPriceRef      string
}

// Catalog is the immutable plan table, built once at startup.
type Catalog struct {
	plans map[string]Plan
	order []string
}

// NewCatalog builds the plan catalog with optional price-ref overrides.
func NewCatalog(ov CatalogOverrides) *Catalog {
	standardRef := "price_standard"
	if ov.StandardPriceRef != "" {
		standardRef = ov.StandardPriceRef
	}
	proRef := "price_pro"
	if ov.ProPriceRef != "" {
		proRef = ov.ProPriceRef
	}

	plans := []Plan{
		{
			ID:          "free",
			Name:        "Free",
			Price:       0,
			MaxContacts: 100,
			MaxGroups:   5,
			MaxStaff:    1,
		},
		{
			ID:          "standard",
			Name:        "Standard",
			Price:       29.99,
			PriceRef:    standardRef,
			MaxContacts: 2500,
			MaxGroups:   50,
			MaxStaff:    5,
			Features:    []string{"email-support", "csv-import"},
		},
		{
			ID:          "pro",
			Name:        "Pro",
			Price:       79.99,
			PriceRef:    proRef,
			MaxContacts: 50000,
			MaxGroups:   500,
			MaxStaff:    25,
			Features:    []string{"email-support", "csv-import", "api-access", "audit-log"},
		},
	}

	c := &Catalog{plans: make(map[string]Plan, len(plans))}
	for _, p := range plans {
		c.plans[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c
}

// Get resolves a plan id. Unknown ids fail with ErrInvalidPlan.
func (c *Catalog) Get(planID string) (Plan, error) {
	id := strings.ToLower(strings.TrimSpace(planID))
	p, ok := c.plans[id]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", ErrInvalidPlan, planID)
	}
	return p, nil
}

// ByPriceRef resolves a plan by its external price reference.
func (c *Catalog) ByPriceRef(priceRef string) (Plan, bool) {
	for _, id := range c.order {
		p := c.plans[id]
		if p.PriceRef != "" && p.PriceRef == priceRef {
			return p, true
		}
	}
	return Plan{}, false
}

// All returns the plans in catalog order.
func (c *Catalog) All() []Plan {
	out := make([]Plan, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.plans[id])
	}
	return out
}

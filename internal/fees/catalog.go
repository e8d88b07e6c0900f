package fees

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier-backend/pkg/config"
)

// FreePlanID is the fallback plan for unknown, empty, or garbage plan ids.
const FreePlanID = "free"

// Process-wide split rates. These are not per-plan: every sale pays the
// venue commission and charges the buyer fee at these rates.
var (
	VenueCommissionPct = decimal.RequireFromString("0.15")
	BuyerFeePct        = decimal.RequireFromString("0.045")
)

// Plan is a static catalog entry. Plans are loaded from configuration and
// never mutated at runtime.
type Plan struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	MonthlyPriceCents int64           `json:"monthly_price_cents"`
	ArtistTakeHomePct decimal.Decimal `json:"artist_take_home_pct"`
	Blurb             string          `json:"blurb,omitempty"`
}

// Catalog is the immutable set of known plans keyed by lowercase id.
type Catalog struct {
	plans map[string]Plan
}

func defaultPlans() []Plan {
	return []Plan{
		{
			ID:                FreePlanID,
			Name:              "Free",
			MonthlyPriceCents: 0,
			ArtistTakeHomePct: decimal.RequireFromString("0.60"),
			Blurb:             "List and sell with no monthly commitment.",
		},
		{
			ID:                "plus",
			Name:              "Plus",
			MonthlyPriceCents: 1900,
			ArtistTakeHomePct: decimal.RequireFromString("0.75"),
			Blurb:             "Keep more of every sale.",
		},
		{
			ID:                "pro",
			Name:              "Pro",
			MonthlyPriceCents: 3900,
			ArtistTakeHomePct: decimal.RequireFromString("0.85"),
			Blurb:             "For working artists selling regularly.",
		},
	}
}

// LoadCatalog builds the plan catalog from configuration. An empty override
// ships the built-in plans; a JSON override replaces the catalog wholesale.
// Validation failures abort startup: a misconfigured plan must never price
// an order.
func LoadCatalog(cfg config.PlansConfig) (*Catalog, error) {
	plans := defaultPlans()
	if raw := strings.TrimSpace(cfg.CatalogJSON); raw != "" {
		plans = nil
		if err := json.Unmarshal([]byte(raw), &plans); err != nil {
			return nil, fmt.Errorf("parsing plan catalog: %w", err)
		}
	}
	return NewCatalog(plans)
}

// NewCatalog validates the plans and indexes them by lowercase id.
func NewCatalog(plans []Plan) (*Catalog, error) {
	indexed := make(map[string]Plan, len(plans))
	for _, plan := range plans {
		id := strings.ToLower(strings.TrimSpace(plan.ID))
		if id == "" {
			return nil, fmt.Errorf("plan with empty id")
		}
		if _, exists := indexed[id]; exists {
			return nil, fmt.Errorf("duplicate plan id %q", id)
		}
		if err := validatePlan(plan); err != nil {
			return nil, fmt.Errorf("plan %q: %w", id, err)
		}
		plan.ID = id
		indexed[id] = plan
	}
	if _, ok := indexed[FreePlanID]; !ok {
		return nil, fmt.Errorf("catalog must define the %q fallback plan", FreePlanID)
	}
	return &Catalog{plans: indexed}, nil
}

func validatePlan(plan Plan) error {
	takeHome := plan.ArtistTakeHomePct
	if takeHome.IsNegative() || takeHome.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("artist take-home %s outside [0, 1]", takeHome)
	}
	// A take-home that leaves less than the venue commission would drive
	// the platform net negative on every sale.
	if takeHome.Add(VenueCommissionPct).GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("artist take-home %s plus venue commission %s exceeds 1", takeHome, VenueCommissionPct)
	}
	if plan.MonthlyPriceCents < 0 {
		return fmt.Errorf("negative monthly price %d", plan.MonthlyPriceCents)
	}
	return nil
}

// Plan returns the catalog entry for the id, falling back to the free plan
// for anything unrecognized. Lookup is case-insensitive and never errors.
func (c *Catalog) Plan(planID string) Plan {
	id := strings.ToLower(strings.TrimSpace(planID))
	if plan, ok := c.plans[id]; ok {
		return plan
	}
	return c.plans[FreePlanID]
}

// Plans lists the catalog sorted by monthly price then id.
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, 0, len(c.plans))
	for _, plan := range c.plans {
		out = append(out, plan)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MonthlyPriceCents != out[j].MonthlyPriceCents {
			return out[i].MonthlyPriceCents < out[j].MonthlyPriceCents
		}
		return out[i].ID < out[j].ID
	})
	return out
}

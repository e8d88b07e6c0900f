package fees

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
)

// Resolver answers fee questions for a plan id. It is a thin read-only view
// over the catalog, safe for concurrent use.
type Resolver struct {
	catalog *Catalog
}

func NewResolver(catalog *Catalog) (*Resolver, error) {
	if catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "fees: catalog is required")
	}
	return &Resolver{catalog: catalog}, nil
}

// Plan resolves a plan id to its catalog entry, defaulting to free.
func (r *Resolver) Plan(planID string) Plan {
	return r.catalog.Plan(planID)
}

// TakeHomePct returns the artist's share of the list price for the plan.
func (r *Resolver) TakeHomePct(planID string) decimal.Decimal {
	return r.catalog.Plan(planID).ArtistTakeHomePct
}

// PlatformFeeBps expresses the platform's cut of the list price in basis
// points: what remains after the artist take-home and venue commission.
func (r *Resolver) PlatformFeeBps(planID string) int {
	takeHome := r.catalog.Plan(planID).ArtistTakeHomePct
	bps := decimal.NewFromInt(1).
		Sub(takeHome).
		Sub(VenueCommissionPct).
		Mul(decimal.NewFromInt(10000)).
		Round(0)
	return int(bps.IntPart())
}

// Plans lists every plan in the catalog.
func (r *Resolver) Plans() []Plan {
	return r.catalog.Plans()
}

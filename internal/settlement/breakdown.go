package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier-backend/internal/fees"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
)

// Breakdown is the full money split for one order, in integer minor units.
// buyerTotal is what the card is charged; listPrice is what gets divided
// between the artist, the venue, and the platform.
type Breakdown struct {
	ListPriceCents    int64 `json:"list_price_cents"`
	BuyerFeeCents     int64 `json:"buyer_fee_cents"`
	BuyerTotalCents   int64 `json:"buyer_total_cents"`
	ArtistAmountCents int64 `json:"artist_amount_cents"`
	VenueAmountCents  int64 `json:"venue_amount_cents"`
	PlatformNetCents  int64 `json:"platform_net_cents"`
}

// Calculator computes order breakdowns. It holds no mutable state and is
// safe for concurrent use.
type Calculator struct {
	resolver *fees.Resolver
}

func NewCalculator(resolver *fees.Resolver) (*Calculator, error) {
	if resolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "settlement: fee resolver is required")
	}
	return &Calculator{resolver: resolver}, nil
}

// Compute derives the breakdown for a list price under a plan. Each derived
// amount is rounded independently, half away from zero. When both tie-round
// upward the venue amount is capped so the split never exceeds the list
// price and the platform net stays non-negative.
func (c *Calculator) Compute(listPriceCents int64, planID string) (Breakdown, error) {
	if listPriceCents < 0 {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "settlement: list price must not be negative").
			WithDetails(map[string]any{"list_price_cents": listPriceCents})
	}

	listPrice := decimal.NewFromInt(listPriceCents)
	takeHome := c.resolver.TakeHomePct(planID)

	buyerFee := listPrice.Mul(fees.BuyerFeePct).Round(0).IntPart()
	artistAmount := listPrice.Mul(takeHome).Round(0).IntPart()
	venueAmount := listPrice.Mul(fees.VenueCommissionPct).Round(0).IntPart()
	if remainder := listPriceCents - artistAmount; venueAmount > remainder {
		venueAmount = remainder
	}

	return Breakdown{
		ListPriceCents:    listPriceCents,
		BuyerFeeCents:     buyerFee,
		BuyerTotalCents:   listPriceCents + buyerFee,
		ArtistAmountCents: artistAmount,
		VenueAmountCents:  venueAmount,
		PlatformNetCents:  listPriceCents - artistAmount - venueAmount,
	}, nil
}

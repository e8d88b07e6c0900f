package orders

import (
	"time"

	"github.com/atelierhq/atelier-backend/pkg/enums"
)

// Patch is a partial update to a settlement record. Nil fields keep their
// stored values, which is what lets the payout flow persist each transfer
// id the moment it is known without touching the rest of the row.
type Patch struct {
	Status           *enums.OrderStatus
	BuyerEmail       *string
	ChargeID         *string
	ArtistTransferID *string
	VenueTransferID  *string
	PaidAt           *time.Time
	SettledAt        *time.Time
}

func (p Patch) assignments() map[string]any {
	out := map[string]any{}
	if p.Status != nil {
		out["status"] = *p.Status
	}
	if p.BuyerEmail != nil {
		out["buyer_email"] = *p.BuyerEmail
	}
	if p.ChargeID != nil {
		out["charge_id"] = *p.ChargeID
	}
	if p.ArtistTransferID != nil {
		out["artist_transfer_id"] = *p.ArtistTransferID
	}
	if p.VenueTransferID != nil {
		out["venue_transfer_id"] = *p.VenueTransferID
	}
	if p.PaidAt != nil {
		out["paid_at"] = *p.PaidAt
	}
	if p.SettledAt != nil {
		out["settled_at"] = *p.SettledAt
	}
	return out
}

// IsZero reports whether the patch would change nothing.
func (p Patch) IsZero() bool {
	return len(p.assignments()) == 0
}

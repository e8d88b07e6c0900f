package artists

import (
	"github.com/atelierhq/atelier-backend/pkg/enums"
)

// Patch is a partial update to an artist record. Nil fields are left
// untouched.
type Patch struct {
	Email              *string
	Name               *string
	PayoutAccountID    *string
	CustomerID         *string
	SubscriptionTier   *string
	SubscriptionStatus *enums.SubscriptionStatus
	PlatformFeeBps     *int
	ConnectStatus      *enums.ConnectStatus
}

// assignments flattens the set fields into column assignments. This is the
// only place patch fields map to columns, so a patch can never clobber a
// column it did not set.
func (p Patch) assignments() map[string]any {
	out := map[string]any{}
	if p.Email != nil {
		out["email"] = *p.Email
	}
	if p.Name != nil {
		out["name"] = *p.Name
	}
	if p.PayoutAccountID != nil {
		out["payout_account_id"] = *p.PayoutAccountID
	}
	if p.CustomerID != nil {
		out["customer_id"] = *p.CustomerID
	}
	if p.SubscriptionTier != nil {
		out["subscription_tier"] = *p.SubscriptionTier
	}
	if p.SubscriptionStatus != nil {
		out["subscription_status"] = *p.SubscriptionStatus
	}
	if p.PlatformFeeBps != nil {
		out["platform_fee_bps"] = *p.PlatformFeeBps
	}
	if p.ConnectStatus != nil {
		out["connect_status"] = *p.ConnectStatus
	}
	return out
}

// IsZero reports whether the patch would change nothing.
func (p Patch) IsZero() bool {
	return len(p.assignments()) == 0
}

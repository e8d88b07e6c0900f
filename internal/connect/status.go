package connect

import (
	"github.com/stripe/stripe-go/v84"

	"github.com/atelierhq/atelier-backend/pkg/enums"
)

// AccountSnapshot is the subset of a Connect account that status derivation
// reads. It is decoupled from the SDK type so rules can be tested directly.
type AccountSnapshot struct {
	AccountID        string
	DetailsSubmitted bool
	ChargesEnabled   bool
	PayoutsEnabled   bool
	CurrentlyDue     []string
}

type statusRule struct {
	status enums.ConnectStatus
	match  func(AccountSnapshot) bool
}

// statusRules is evaluated top to bottom; the first match wins. Order
// matters: an account with submitted details but a capability still
// disabled must read as restricted, not pending, even when nothing is
// currently due.
var statusRules = []statusRule{
	{
		status: enums.ConnectStatusComplete,
		match: func(s AccountSnapshot) bool {
			return s.DetailsSubmitted && s.ChargesEnabled && s.PayoutsEnabled
		},
	},
	{
		status: enums.ConnectStatusRestricted,
		match: func(s AccountSnapshot) bool {
			return s.DetailsSubmitted
		},
	},
	{
		status: enums.ConnectStatusPending,
		match: func(s AccountSnapshot) bool {
			return len(s.CurrentlyDue) > 0
		},
	},
}

// DeriveStatus maps an account snapshot onto the onboarding ladder.
func DeriveStatus(snapshot AccountSnapshot) enums.ConnectStatus {
	for _, rule := range statusRules {
		if rule.match(snapshot) {
			return rule.status
		}
	}
	return enums.ConnectStatusNotStarted
}

// IsPayoutReady reports whether transfers may be sent to the account. It
// follows the live capabilities only; requirements with future deadlines
// do not block an otherwise enabled account.
func IsPayoutReady(snapshot AccountSnapshot) bool {
	return snapshot.PayoutsEnabled && snapshot.ChargesEnabled
}

// SnapshotFromAccount flattens an SDK account into the fields the rules use.
func SnapshotFromAccount(account *stripe.Account) AccountSnapshot {
	if account == nil {
		return AccountSnapshot{}
	}
	snapshot := AccountSnapshot{
		AccountID:        account.ID,
		DetailsSubmitted: account.DetailsSubmitted,
		ChargesEnabled:   account.ChargesEnabled,
		PayoutsEnabled:   account.PayoutsEnabled,
	}
	if account.Requirements != nil {
		snapshot.CurrentlyDue = account.Requirements.CurrentlyDue
	}
	return snapshot
}

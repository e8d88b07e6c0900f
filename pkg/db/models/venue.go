package models

import (
	"time"

	"github.com/atelierhq/atelier-backend/pkg/enums"
)

// DefaultVenueFeeBps is the venue commission applied when a venue never
// configured its own rate (1000 = 10%).
const DefaultVenueFeeBps = 1000

// Venue hosts artworks and optionally receives a commission transfer on
// settlement. Patched with the same preserve-prior-value semantics as Artist.
type Venue struct {
	ID              string              `gorm:"column:id;primaryKey"`
	Name            string              `gorm:"column:name;not null;default:''"`
	PayoutAccountID *string             `gorm:"column:payout_account_id;uniqueIndex"`
	FeeBps          int                 `gorm:"column:fee_bps;not null;default:1000"`
	ConnectStatus   enums.ConnectStatus `gorm:"column:connect_status;type:text;not null;default:'not_started'"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/atelierhq/atelier-backend/pkg/enums"
)

// Artist is the seller profile the settlement engine pays out to. The ID is
// the marketplace's stable external identity; rows are created on first
// profile write and patched field-by-field afterwards.
type Artist struct {
	ID                 string                   `gorm:"column:id;primaryKey"`
	Email              string                   `gorm:"column:email;not null;default:''"`
	Name               string                   `gorm:"column:name;not null;default:''"`
	PayoutAccountID    *string                  `gorm:"column:payout_account_id;uniqueIndex"`
	CustomerID         *string                  `gorm:"column:customer_id"`
	SubscriptionTier   string                   `gorm:"column:subscription_tier;not null;default:'free'"`
	SubscriptionStatus enums.SubscriptionStatus `gorm:"column:subscription_status;type:text;not null;default:'none'"`
	// PlatformFeeBps is captured when a subscription starts so later fee
	// schedule changes never reprice an active subscriber. Legacy storage
	// field only; never shown to end users.
	PlatformFeeBps *int                `gorm:"column:platform_fee_bps"`
	ConnectStatus  enums.ConnectStatus `gorm:"column:connect_status;type:text;not null;default:'not_started'"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier-backend/pkg/enums"
)

// Order is the settlement record for a single sale. All monetary fields are
// integer minor units. Rows are created when a checkout session is opened
// and then patched as the payment lifecycle advances; they are never deleted.
type Order struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CheckoutSessionID string            `gorm:"column:checkout_session_id;not null;uniqueIndex"`
	ArtworkID         uuid.UUID         `gorm:"column:artwork_id;type:uuid;not null;index"`
	ArtistID          string            `gorm:"column:artist_id;not null;index"`
	VenueID           *string           `gorm:"column:venue_id;index"`
	BuyerEmail        string            `gorm:"column:buyer_email;not null;default:''"`
	Status            enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	PlanID            string            `gorm:"column:plan_id;not null;default:'free'"`

	ListPriceCents    int64 `gorm:"column:list_price_cents;not null"`
	BuyerFeeCents     int64 `gorm:"column:buyer_fee_cents;not null"`
	BuyerTotalCents   int64 `gorm:"column:buyer_total_cents;not null"`
	VenueAmountCents  int64 `gorm:"column:venue_amount_cents;not null"`
	ArtistAmountCents int64 `gorm:"column:artist_amount_cents;not null"`
	PlatformNetCents  int64 `gorm:"column:platform_net_cents;not null"`

	// External processor correlation. Transfer ids are persisted the moment
	// each transfer succeeds so a retried orchestration never re-pays a
	// recipient that already has one.
	ChargeID         *string `gorm:"column:charge_id"`
	ArtistTransferID *string `gorm:"column:artist_transfer_id"`
	VenueTransferID  *string `gorm:"column:venue_transfer_id"`

	PaidAt    *time.Time `gorm:"column:paid_at"`
	SettledAt *time.Time `gorm:"column:settled_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

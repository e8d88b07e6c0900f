package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/atelierhq/atelier-backend/pkg/enums"
)

// Artwork is a sellable piece. Status only ever moves active -> sold.
type Artwork struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ArtistID   string              `gorm:"column:artist_id;not null;index"`
	VenueID    *string             `gorm:"column:venue_id;index"`
	Title      string              `gorm:"column:title;not null"`
	Medium     *string             `gorm:"column:medium"`
	Tags       pq.StringArray      `gorm:"column:tags;type:text[];default:ARRAY[]::text[]"`
	PriceCents int64               `gorm:"column:price_cents;not null"`
	Status     enums.ArtworkStatus `gorm:"column:status;type:text;not null;default:'active'"`
	SoldAt     *time.Time          `gorm:"column:sold_at"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

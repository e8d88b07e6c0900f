package stripewebhook

import (
	"context"
	"errors"

	"gorm.io/gorm"

	pkgdb "github.com/atelierhq/atelier-backend/pkg/db"
	"github.com/atelierhq/atelier-backend/pkg/db/models"
)

// IdempotencyGuard records processed webhook event ids in the database.
// The mark is a plain insert against the primary key, so exactly one of
// any number of concurrent deliveries observes first-writer status, and
// the mark survives restarts.
type IdempotencyGuard struct {
	db *gorm.DB
}

func NewIdempotencyGuard(db *gorm.DB) (*IdempotencyGuard, error) {
	if db == nil {
		return nil, errors.New("db handle is required")
	}
	return &IdempotencyGuard{db: db}, nil
}

// CheckAndMark atomically claims the event. It returns true when another
// delivery already holds the claim.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string, note string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}

	record := models.WebhookEvent{EventID: eventID}
	if note != "" {
		record.Note = &note
	}
	err := g.db.WithContext(ctx).Create(&record).Error
	if err == nil {
		return false, nil
	}
	if pkgdb.IsUniqueViolation(err, "") {
		return true, nil
	}
	return false, err
}

// Release removes the claim so the processor's redelivery can retry a
// failed event.
func (g *IdempotencyGuard) Release(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	return g.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Delete(&models.WebhookEvent{}).Error
}

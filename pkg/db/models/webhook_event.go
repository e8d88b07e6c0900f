package models

import "time"

// WebhookEvent is the write-once idempotency marker for a processor event.
// The primary key doubles as the unique constraint backing the atomic
// insert-if-absent check; once a row exists the event is never reapplied.
type WebhookEvent struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	Note        *string   `gorm:"column:note"`
	ProcessedAt time.Time `gorm:"column:processed_at;autoCreateTime"`
}

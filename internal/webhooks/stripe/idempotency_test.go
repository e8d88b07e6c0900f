package stripewebhook

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
)

func setupGuardTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS webhook_events (
  event_id TEXT PRIMARY KEY,
  note TEXT,
  processed_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestCheckAndMarkFirstDeliveryWins(t *testing.T) {
	db := setupGuardTestDB(t)
	guard, err := NewIdempotencyGuard(db)
	require.NoError(t, err)
	ctx := context.Background()

	already, err := guard.CheckAndMark(ctx, "evt_1", "checkout.session.completed")
	require.NoError(t, err)
	assert.False(t, already)

	// every redelivery observes the existing claim
	for i := 0; i < 3; i++ {
		already, err = guard.CheckAndMark(ctx, "evt_1", "checkout.session.completed")
		require.NoError(t, err)
		assert.True(t, already)
	}

	var count int64
	require.NoError(t, db.Model(&models.WebhookEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCheckAndMarkConcurrentDeliveries(t *testing.T) {
	// A dedicated shared-cache database pinned to one connection, so the
	// goroutines contend on the claim rather than on sqlite's file lock.
	db, err := gorm.Open(sqlite.Open("file:guard_race?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	schema := `
CREATE TABLE IF NOT EXISTS webhook_events (
  event_id TEXT PRIMARY KEY,
  note TEXT,
  processed_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)

	guard, err := NewIdempotencyGuard(db)
	require.NoError(t, err)

	const deliveries = 8
	results := make(chan bool, deliveries)
	errs := make(chan error, deliveries)

	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			already, err := guard.CheckAndMark(context.Background(), "evt_race", "checkout.session.completed")
			if err != nil {
				errs <- err
				return
			}
			results <- already
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent CheckAndMark failed: %v", err)
	}

	firsts := 0
	for already := range results {
		if !already {
			firsts++
		}
	}
	assert.Equal(t, 1, firsts)

	var count int64
	require.NoError(t, db.Model(&models.WebhookEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReleaseAllowsRetry(t *testing.T) {
	db := setupGuardTestDB(t)
	guard, err := NewIdempotencyGuard(db)
	require.NoError(t, err)
	ctx := context.Background()

	already, err := guard.CheckAndMark(ctx, "evt_1", "")
	require.NoError(t, err)
	require.False(t, already)

	require.NoError(t, guard.Release(ctx, "evt_1"))

	already, err = guard.CheckAndMark(ctx, "evt_1", "")
	require.NoError(t, err)
	assert.False(t, already)
}

func TestCheckAndMarkDistinctEvents(t *testing.T) {
	db := setupGuardTestDB(t)
	guard, err := NewIdempotencyGuard(db)
	require.NoError(t, err)
	ctx := context.Background()

	for _, eventID := range []string{"evt_a", "evt_b", "evt_c"} {
		already, err := guard.CheckAndMark(ctx, eventID, "")
		require.NoError(t, err)
		assert.False(t, already, "event %s", eventID)
	}
}

func TestCheckAndMarkRequiresEventID(t *testing.T) {
	guard, err := NewIdempotencyGuard(setupGuardTestDB(t))
	require.NoError(t, err)

	_, err = guard.CheckAndMark(context.Background(), "", "")
	assert.Error(t, err)
	assert.Error(t, guard.Release(context.Background(), ""))
}

package artworks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
)

func setupArtworksTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS artworks (
  id TEXT PRIMARY KEY,
  artist_id TEXT NOT NULL,
  venue_id TEXT,
  title TEXT NOT NULL,
  medium TEXT,
  tags TEXT,
  price_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  sold_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedArtwork(t *testing.T, db *gorm.DB, status enums.ArtworkStatus) *models.Artwork {
	t.Helper()
	artwork := &models.Artwork{
		ID:         uuid.New(),
		ArtistID:   uuid.NewString(),
		Title:      "Low Tide II",
		PriceCents: 14000,
		Status:     status,
	}
	require.NoError(t, db.Create(artwork).Error)
	return artwork
}

func TestMarkSoldTransitionsOnce(t *testing.T) {
	db := setupArtworksTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	artwork := seedArtwork(t, db, enums.ArtworkStatusActive)
	soldAt := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.MarkSold(ctx, artwork.ID, soldAt))

	got, err := repo.FindByID(ctx, artwork.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ArtworkStatusSold, got.Status)
	require.NotNil(t, got.SoldAt)

	// second attempt hits the status guard
	err = repo.MarkSold(ctx, artwork.ID, time.Now().UTC())
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
}

func TestMarkSoldUnknownArtwork(t *testing.T) {
	db := setupArtworksTestDB(t)
	repo := NewRepository(db)

	err := repo.MarkSold(context.Background(), uuid.New(), time.Now().UTC())
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestListFiltersByArtistAndStatus(t *testing.T) {
	db := setupArtworksTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := seedArtwork(t, db, enums.ArtworkStatusActive)
	seedArtwork(t, db, enums.ArtworkStatusSold)

	active, err := repo.List(ctx, ListQuery{Status: enums.ArtworkStatusActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)

	byArtist, err := repo.List(ctx, ListQuery{ArtistID: first.ArtistID})
	require.NoError(t, err)
	require.Len(t, byArtist, 1)

	none, err := repo.List(ctx, ListQuery{ArtistID: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

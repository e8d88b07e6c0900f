package artworks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
)

// ListQuery narrows artwork listings.
type ListQuery struct {
	ArtistID string
	VenueID  string
	Status   enums.ArtworkStatus
}

// Repository persists artwork records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, artwork *models.Artwork) (*models.Artwork, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Artwork, error)
	List(ctx context.Context, query ListQuery) ([]models.Artwork, error)
	MarkSold(ctx context.Context, id uuid.UUID, soldAt time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an artworks repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, artwork *models.Artwork) (*models.Artwork, error) {
	if err := r.db.WithContext(ctx).Create(artwork).Error; err != nil {
		return nil, err
	}
	return artwork, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Artwork, error) {
	var artwork models.Artwork
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&artwork).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artwork not found").
				WithDetails(map[string]any{"artwork_id": id.String()})
		}
		return nil, err
	}
	return &artwork, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Artwork, error) {
	q := r.db.WithContext(ctx).Model(&models.Artwork{})
	if query.ArtistID != "" {
		q = q.Where("artist_id = ?", query.ArtistID)
	}
	if query.VenueID != "" {
		q = q.Where("venue_id = ?", query.VenueID)
	}
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}

	var out []models.Artwork
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MarkSold flips an active artwork to sold. The transition is one-way and
// guarded in the WHERE clause, so two concurrent sales of the same piece
// resolve to exactly one winner.
func (r *repository) MarkSold(ctx context.Context, id uuid.UUID, soldAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Artwork{}).
		Where("id = ? AND status = ?", id, enums.ArtworkStatusActive).
		Updates(map[string]any{
			"status":     enums.ArtworkStatusSold,
			"sold_at":    soldAt,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict, "artwork is not active").
			WithDetails(map[string]any{"artwork_id": id.String()})
	}
	return nil
}

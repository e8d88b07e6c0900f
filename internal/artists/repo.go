package artists

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
)

// Repository persists artist records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, artist *models.Artist) (*models.Artist, error)
	FindByID(ctx context.Context, id string) (*models.Artist, error)
	FindByPayoutAccountID(ctx context.Context, accountID string) (*models.Artist, error)
	List(ctx context.Context) ([]models.Artist, error)
	ApplyPatch(ctx context.Context, id string, patch Patch) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an artists repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, artist *models.Artist) (*models.Artist, error) {
	if err := r.db.WithContext(ctx).Create(artist).Error; err != nil {
		return nil, err
	}
	return artist, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.Artist, error) {
	var artist models.Artist
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&artist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artist not found").
				WithDetails(map[string]any{"artist_id": id})
		}
		return nil, err
	}
	return &artist, nil
}

func (r *repository) FindByPayoutAccountID(ctx context.Context, accountID string) (*models.Artist, error) {
	var artist models.Artist
	err := r.db.WithContext(ctx).
		Where("payout_account_id = ?", accountID).
		First(&artist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no artist for payout account").
				WithDetails(map[string]any{"payout_account_id": accountID})
		}
		return nil, err
	}
	return &artist, nil
}

func (r *repository) List(ctx context.Context) ([]models.Artist, error) {
	var out []models.Artist
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyPatch writes only the fields the patch sets, as a single UPDATE.
// Columns the patch leaves nil keep their stored values.
func (r *repository) ApplyPatch(ctx context.Context, id string, patch Patch) error {
	assignments := patch.assignments()
	if len(assignments) == 0 {
		return nil
	}
	assignments["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&models.Artist{}).
		Where("id = ?", id).
		Updates(assignments)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "artist not found").
			WithDetails(map[string]any{"artist_id": id})
	}
	return nil
}

package venues

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
)

// Patch is a partial update to a venue record. Nil fields are left alone.
type Patch struct {
	Name            *string
	PayoutAccountID *string
	FeeBps          *int
	ConnectStatus   *enums.ConnectStatus
}

func (p Patch) assignments() map[string]any {
	out := map[string]any{}
	if p.Name != nil {
		out["name"] = *p.Name
	}
	if p.PayoutAccountID != nil {
		out["payout_account_id"] = *p.PayoutAccountID
	}
	if p.FeeBps != nil {
		out["fee_bps"] = *p.FeeBps
	}
	if p.ConnectStatus != nil {
		out["connect_status"] = *p.ConnectStatus
	}
	return out
}

// IsZero reports whether the patch would change nothing.
func (p Patch) IsZero() bool {
	return len(p.assignments()) == 0
}

// Repository persists venue records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, venue *models.Venue) (*models.Venue, error)
	FindByID(ctx context.Context, id string) (*models.Venue, error)
	FindByPayoutAccountID(ctx context.Context, accountID string) (*models.Venue, error)
	List(ctx context.Context) ([]models.Venue, error)
	ApplyPatch(ctx context.Context, id string, patch Patch) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a venues repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, venue *models.Venue) (*models.Venue, error) {
	if err := r.db.WithContext(ctx).Create(venue).Error; err != nil {
		return nil, err
	}
	return venue, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.Venue, error) {
	var venue models.Venue
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&venue).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "venue not found").
				WithDetails(map[string]any{"venue_id": id})
		}
		return nil, err
	}
	return &venue, nil
}

func (r *repository) FindByPayoutAccountID(ctx context.Context, accountID string) (*models.Venue, error) {
	var venue models.Venue
	err := r.db.WithContext(ctx).
		Where("payout_account_id = ?", accountID).
		First(&venue).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no venue for payout account").
				WithDetails(map[string]any{"payout_account_id": accountID})
		}
		return nil, err
	}
	return &venue, nil
}

func (r *repository) List(ctx context.Context) ([]models.Venue, error) {
	var out []models.Venue
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyPatch writes only the fields the patch sets, as a single UPDATE.
func (r *repository) ApplyPatch(ctx context.Context, id string, patch Patch) error {
	assignments := patch.assignments()
	if len(assignments) == 0 {
		return nil
	}
	assignments["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&models.Venue{}).
		Where("id = ?", id).
		Updates(assignments)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "venue not found").
			WithDetails(map[string]any{"venue_id": id})
	}
	return nil
}

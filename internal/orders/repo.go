package orders

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

// Repository persists order settlement records. Writes go through ApplyPatch
// so that each caller only ever touches the columns it owns.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByCheckoutSessionID(ctx context.Context, sessionID string) (*models.Order, error)
	List(ctx context.Context, statuses ...enums.OrderStatus) ([]models.Order, error)
	ListUnsettled(ctx context.Context) ([]models.Order, error)
	ApplyPatch(ctx context.Context, id uuid.UUID, patch Patch) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
				WithDetails(map[string]any{"order_id": id.String()})
		}
		return nil, err
	}
	return &order, nil
}

// FindByCheckoutSessionID looks an order up by its processor session id,
// the key webhook events carry.
func (r *repository) FindByCheckoutSessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("checkout_session_id = ?", sessionID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no order for checkout session").
				WithDetails(map[string]any{"checkout_session_id": sessionID})
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, statuses ...enums.OrderStatus) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var out []models.Order
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListUnsettled returns orders that have been paid but not fully settled,
// the working set for payout reconciliation.
func (r *repository) ListUnsettled(ctx context.Context) ([]models.Order, error) {
	return r.List(ctx, enums.OrderStatusPaid, enums.OrderStatusTransfersIssued)
}

// ApplyPatch writes only the fields the patch sets, as a single UPDATE.
// Concurrent patches to different columns of the same order both land.
func (r *repository) ApplyPatch(ctx context.Context, id uuid.UUID, patch Patch) error {
	assignments := patch.assignments()
	if len(assignments) == 0 {
		return nil
	}
	assignments["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(assignments)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
			WithDetails(map[string]any{"order_id": id.String()})
	}
	return nil
}

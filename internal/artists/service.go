package artists

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
)

// Service exposes artist registration and profile maintenance.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Artist, error)
	Upsert(ctx context.Context, id string, input UpsertInput) (*models.Artist, error)
	Get(ctx context.Context, id string) (*models.Artist, error)
	List(ctx context.Context) ([]models.Artist, error)
	Update(ctx context.Context, id string, patch Patch) (*models.Artist, error)
}

// FeeSchedule resolves the platform's cut for a subscription tier. The
// resolved basis points are captured on the artist row when the tier is
// written, so later catalog changes never reprice an active subscriber.
type FeeSchedule interface {
	PlatformFeeBps(planID string) int
}

type service struct {
	repo Repository
	fees FeeSchedule
}

// RegisterInput holds the fields required to create an artist.
type RegisterInput struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=1,max=120"`
	Plan  string `json:"plan" validate:"omitempty,max=32"`
}

// UpsertInput carries the writable profile fields for a PUT with a
// caller-supplied id. Absent fields are preserved on existing rows.
type UpsertInput struct {
	Email *string `json:"email" validate:"omitempty,email"`
	Name  *string `json:"name" validate:"omitempty,min=1,max=120"`
	Plan  *string `json:"plan" validate:"omitempty,max=32"`
}

// NewService builds an artist service backed by the provided repository.
func NewService(repo Repository, fees FeeSchedule) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("artist repository required")
	}
	if fees == nil {
		return nil, fmt.Errorf("fee schedule required")
	}
	return &service{repo: repo, fees: fees}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Artist, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	artist := &models.Artist{
		ID:                 uuid.NewString(),
		Email:              email,
		Name:               name,
		SubscriptionTier:   strings.ToLower(strings.TrimSpace(input.Plan)),
		SubscriptionStatus: enums.SubscriptionStatusNone,
		ConnectStatus:      enums.ConnectStatusNotStarted,
	}
	if artist.SubscriptionTier == "" {
		artist.SubscriptionTier = "free"
	}
	feeBps := s.fees.PlatformFeeBps(artist.SubscriptionTier)
	artist.PlatformFeeBps = &feeBps

	created, err := s.repo.Create(ctx, artist)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create artist")
	}
	return created, nil
}

// Upsert creates the artist on first write and patches it afterwards. The
// id is the marketplace's stable identity, so the caller chooses it.
func (s *service) Upsert(ctx context.Context, id string, input UpsertInput) (*models.Artist, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artist id is required")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
			return nil, err
		}
		if input.Email == nil || input.Name == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and name are required for a new artist")
		}
		artist := &models.Artist{
			ID:                 id,
			Email:              strings.ToLower(strings.TrimSpace(*input.Email)),
			Name:               strings.TrimSpace(*input.Name),
			SubscriptionTier:   "free",
			SubscriptionStatus: enums.SubscriptionStatusNone,
			ConnectStatus:      enums.ConnectStatusNotStarted,
		}
		if input.Plan != nil && strings.TrimSpace(*input.Plan) != "" {
			artist.SubscriptionTier = strings.ToLower(strings.TrimSpace(*input.Plan))
		}
		feeBps := s.fees.PlatformFeeBps(artist.SubscriptionTier)
		artist.PlatformFeeBps = &feeBps
		created, err := s.repo.Create(ctx, artist)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create artist")
		}
		return created, nil
	}

	patch := Patch{}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		patch.Email = &email
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		patch.Name = &name
	}
	if input.Plan != nil {
		tier := strings.ToLower(strings.TrimSpace(*input.Plan))
		patch.SubscriptionTier = &tier
	}
	if patch.IsZero() {
		return existing, nil
	}
	return s.Update(ctx, id, patch)
}

func (s *service) Get(ctx context.Context, id string) (*models.Artist, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artist id is required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]models.Artist, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list artists")
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id string, patch Patch) (*models.Artist, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artist id is required")
	}
	if patch.IsZero() {
		return s.repo.FindByID(ctx, id)
	}
	if patch.SubscriptionTier != nil && patch.PlatformFeeBps == nil {
		feeBps := s.fees.PlatformFeeBps(*patch.SubscriptionTier)
		patch.PlatformFeeBps = &feeBps
	}
	if err := s.repo.ApplyPatch(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

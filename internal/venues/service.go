package venues

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
)

// Service exposes venue onboarding and maintenance.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Venue, error)
	Upsert(ctx context.Context, id string, input UpsertInput) (*models.Venue, error)
	Get(ctx context.Context, id string) (*models.Venue, error)
	List(ctx context.Context) ([]models.Venue, error)
	Update(ctx context.Context, id string, patch Patch) (*models.Venue, error)
}

// RegisterInput holds the fields required to create a venue.
type RegisterInput struct {
	Name   string `json:"name" validate:"required,min=1,max=160"`
	FeeBps *int   `json:"fee_bps" validate:"omitempty,gte=0,lte=10000"`
}

// UpsertInput carries the writable venue fields for a PUT with a
// caller-supplied id. Absent fields are preserved on existing rows.
type UpsertInput struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=160"`
	FeeBps *int    `json:"fee_bps" validate:"omitempty,gte=0,lte=10000"`
}

type service struct {
	repo Repository
}

// NewService builds a venue service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("venue repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Venue, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	venue := &models.Venue{
		ID:            uuid.NewString(),
		Name:          name,
		FeeBps:        models.DefaultVenueFeeBps,
		ConnectStatus: enums.ConnectStatusNotStarted,
	}
	if input.FeeBps != nil {
		if *input.FeeBps < 0 || *input.FeeBps > 10000 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "fee_bps must be between 0 and 10000")
		}
		venue.FeeBps = *input.FeeBps
	}

	created, err := s.repo.Create(ctx, venue)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create venue")
	}
	return created, nil
}

// Upsert creates the venue on first write and patches it afterwards.
func (s *service) Upsert(ctx context.Context, id string, input UpsertInput) (*models.Venue, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "venue id is required")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
			return nil, err
		}
		if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required for a new venue")
		}
		venue := &models.Venue{
			ID:            id,
			Name:          strings.TrimSpace(*input.Name),
			FeeBps:        models.DefaultVenueFeeBps,
			ConnectStatus: enums.ConnectStatusNotStarted,
		}
		if input.FeeBps != nil {
			if *input.FeeBps < 0 || *input.FeeBps > 10000 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "fee_bps must be between 0 and 10000")
			}
			venue.FeeBps = *input.FeeBps
		}
		created, err := s.repo.Create(ctx, venue)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create venue")
		}
		return created, nil
	}

	patch := Patch{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		patch.Name = &name
	}
	if input.FeeBps != nil {
		if *input.FeeBps < 0 || *input.FeeBps > 10000 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "fee_bps must be between 0 and 10000")
		}
		patch.FeeBps = input.FeeBps
	}
	if patch.IsZero() {
		return existing, nil
	}
	return s.Update(ctx, id, patch)
}

func (s *service) Get(ctx context.Context, id string) (*models.Venue, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "venue id is required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]models.Venue, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list venues")
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id string, patch Patch) (*models.Venue, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "venue id is required")
	}
	if patch.IsZero() {
		return s.repo.FindByID(ctx, id)
	}
	if err := s.repo.ApplyPatch(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

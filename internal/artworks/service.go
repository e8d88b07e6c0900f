package artworks

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
)

type artistsRepository interface {
	FindByID(ctx context.Context, id string) (*models.Artist, error)
}

type venuesRepository interface {
	FindByID(ctx context.Context, id string) (*models.Venue, error)
}

// Service exposes artwork listing management.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Artwork, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Artwork, error)
	List(ctx context.Context, query ListQuery) ([]models.Artwork, error)
}

// CreateInput holds the fields required to list an artwork.
type CreateInput struct {
	ArtistID   string   `json:"artist_id" validate:"required"`
	VenueID    *string  `json:"venue_id" validate:"omitempty"`
	Title      string   `json:"title" validate:"required,min=1,max=200"`
	Medium     *string  `json:"medium" validate:"omitempty,max=120"`
	Tags       []string `json:"tags" validate:"omitempty,dive,max=40"`
	PriceCents int64    `json:"price_cents" validate:"required,gt=0"`
}

type service struct {
	repo    Repository
	artists artistsRepository
	venues  venuesRepository
}

// NewService builds an artwork service backed by the provided repositories.
func NewService(repo Repository, artistsRepo artistsRepository, venuesRepo venuesRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("artwork repository required")
	}
	if artistsRepo == nil {
		return nil, fmt.Errorf("artist repository required")
	}
	if venuesRepo == nil {
		return nil, fmt.Errorf("venue repository required")
	}
	return &service{repo: repo, artists: artistsRepo, venues: venuesRepo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Artwork, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.PriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_cents must be positive")
	}

	if _, err := s.artists.FindByID(ctx, input.ArtistID); err != nil {
		return nil, err
	}
	if input.VenueID != nil {
		if _, err := s.venues.FindByID(ctx, *input.VenueID); err != nil {
			return nil, err
		}
	}

	artwork := &models.Artwork{
		ID:         uuid.New(),
		ArtistID:   input.ArtistID,
		VenueID:    input.VenueID,
		Title:      strings.TrimSpace(input.Title),
		Medium:     input.Medium,
		Tags:       pq.StringArray(input.Tags),
		PriceCents: input.PriceCents,
		Status:     enums.ArtworkStatusActive,
	}
	created, err := s.repo.Create(ctx, artwork)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create artwork")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Artwork, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artwork id is required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, query ListQuery) ([]models.Artwork, error) {
	out, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list artworks")
	}
	return out, nil
}

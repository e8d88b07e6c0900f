package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atelierhq/atelier-backend/api/responses"
	"github.com/atelierhq/atelier-backend/api/validators"
	"github.com/atelierhq/atelier-backend/internal/artworks"
	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
	"github.com/atelierhq/atelier-backend/pkg/logger"
)

// ArtworkCreate lists a new piece for sale.
func ArtworkCreate(svc artworks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "artwork service unavailable"))
			return
		}

		var payload artworks.CreateInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		artwork, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, artworkResponseFromModel(artwork))
	}
}

func ArtworkDetail(svc artworks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "artwork service unavailable"))
			return
		}

		artworkID, err := uuid.Parse(chi.URLParam(r, "artworkId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid artwork id"))
			return
		}

		artwork, err := svc.Get(r.Context(), artworkID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, artworkResponseFromModel(artwork))
	}
}

func ArtworkList(svc artworks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "artwork service unavailable"))
			return
		}

		query := artworks.ListQuery{
			ArtistID: strings.TrimSpace(r.URL.Query().Get("artist_id")),
			VenueID:  strings.TrimSpace(r.URL.Query().Get("venue_id")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status := enums.ArtworkStatus(raw)
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid artwork status").WithDetails(map[string]any{"status": raw}))
				return
			}
			query.Status = status
		}

		list, err := svc.List(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]artworkResponse, 0, len(list))
		for i := range list {
			out = append(out, artworkResponseFromModel(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type artworkResponse struct {
	ID         uuid.UUID           `json:"id"`
	ArtistID   string              `json:"artist_id"`
	VenueID    *string             `json:"venue_id,omitempty"`
	Title      string              `json:"title"`
	Medium     *string             `json:"medium,omitempty"`
	Tags       []string            `json:"tags"`
	PriceCents int64               `json:"price_cents"`
	Status     enums.ArtworkStatus `json:"status"`
	SoldAt     *time.Time          `json:"sold_at,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

func artworkResponseFromModel(m *models.Artwork) artworkResponse {
	return artworkResponse{
		ID:         m.ID,
		ArtistID:   m.ArtistID,
		VenueID:    m.VenueID,
		Title:      m.Title,
		Medium:     m.Medium,
		Tags:       []string(m.Tags),
		PriceCents: m.PriceCents,
		Status:     m.Status,
		SoldAt:     m.SoldAt,
		CreatedAt:  m.CreatedAt,
	}
}

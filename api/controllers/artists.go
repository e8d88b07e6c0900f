package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atelierhq/atelier-backend/api/responses"
	"github.com/atelierhq/atelier-backend/api/validators"
	"github.com/atelierhq/atelier-backend/internal/artists"
	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
	"github.com/atelierhq/atelier-backend/pkg/logger"
)

// ArtistUpsert creates the artist profile on first write and patches it on
// every later PUT; fields absent from the body keep their stored values.
func ArtistUpsert(svc artists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "artist service unavailable"))
			return
		}

		artistID := strings.TrimSpace(chi.URLParam(r, "artistId"))
		if artistID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "artist id is required"))
			return
		}

		var payload artists.UpsertInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		artist, err := svc.Upsert(r.Context(), artistID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, artistResponseFromModel(artist))
	}
}

func ArtistDetail(svc artists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "artist service unavailable"))
			return
		}

		artist, err := svc.Get(r.Context(), chi.URLParam(r, "artistId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, artistResponseFromModel(artist))
	}
}

func ArtistList(svc artists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "artist service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]artistResponse, 0, len(list))
		for i := range list {
			out = append(out, artistResponseFromModel(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type artistResponse struct {
	ID                 string                   `json:"id"`
	Email              string                   `json:"email"`
	Name               string                   `json:"name"`
	SubscriptionTier   string                   `json:"subscription_tier"`
	SubscriptionStatus enums.SubscriptionStatus `json:"subscription_status"`
	ConnectStatus      enums.ConnectStatus      `json:"connect_status"`
	PayoutReady        bool                     `json:"payout_ready"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

func artistResponseFromModel(m *models.Artist) artistResponse {
	return artistResponse{
		ID:                 m.ID,
		Email:              m.Email,
		Name:               m.Name,
		SubscriptionTier:   m.SubscriptionTier,
		SubscriptionStatus: m.SubscriptionStatus,
		ConnectStatus:      m.ConnectStatus,
		PayoutReady:        m.ConnectStatus == enums.ConnectStatusComplete,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atelierhq/atelier-backend/api/responses"
	"github.com/atelierhq/atelier-backend/api/validators"
	"github.com/atelierhq/atelier-backend/internal/venues"
	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
	"github.com/atelierhq/atelier-backend/pkg/logger"
)

// VenueUpsert creates the venue on first write and patches it afterwards.
func VenueUpsert(svc venues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "venue service unavailable"))
			return
		}

		venueID := strings.TrimSpace(chi.URLParam(r, "venueId"))
		if venueID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "venue id is required"))
			return
		}

		var payload venues.UpsertInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		venue, err := svc.Upsert(r.Context(), venueID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, venueResponseFromModel(venue))
	}
}

func VenueDetail(svc venues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "venue service unavailable"))
			return
		}

		venue, err := svc.Get(r.Context(), chi.URLParam(r, "venueId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, venueResponseFromModel(venue))
	}
}

func VenueList(svc venues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "venue service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]venueResponse, 0, len(list))
		for i := range list {
			out = append(out, venueResponseFromModel(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type venueResponse struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	FeeBps        int                 `json:"fee_bps"`
	ConnectStatus enums.ConnectStatus `json:"connect_status"`
	PayoutReady   bool                `json:"payout_ready"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func venueResponseFromModel(m *models.Venue) venueResponse {
	return venueResponse{
		ID:            m.ID,
		Name:          m.Name,
		FeeBps:        m.FeeBps,
		ConnectStatus: m.ConnectStatus,
		PayoutReady:   m.ConnectStatus == enums.ConnectStatusComplete,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

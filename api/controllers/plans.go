package controllers

import (
	"net/http"

	"github.com/atelierhq/atelier-backend/api/responses"
	"github.com/atelierhq/atelier-backend/internal/fees"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
	"github.com/atelierhq/atelier-backend/pkg/logger"
)

type planResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	MonthlyPriceCents int64  `json:"monthly_price_cents"`
	ArtistTakeHomePct string `json:"artist_take_home_pct"`
	Blurb             string `json:"blurb,omitempty"`
}

// PlanList exposes the subscription catalog for storefront display.
func PlanList(resolver *fees.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fee resolver unavailable"))
			return
		}

		plans := resolver.Plans()
		out := make([]planResponse, 0, len(plans))
		for _, plan := range plans {
			out = append(out, planResponse{
				ID:                plan.ID,
				Name:              plan.Name,
				MonthlyPriceCents: plan.MonthlyPriceCents,
				ArtistTakeHomePct: plan.ArtistTakeHomePct.String(),
				Blurb:             plan.Blurb,
			})
		}
		responses.WriteSuccess(w, out)
	}
}

package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atelierhq/atelier-backend/api/responses"
	internalorders "github.com/atelierhq/atelier-backend/internal/orders"
	"github.com/atelierhq/atelier-backend/internal/payouts"
	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
	"github.com/atelierhq/atelier-backend/pkg/logger"
)

func OrderDetail(repo internalorders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders repository unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := repo.FindByID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orderResponseFromModel(order))
	}
}

func OrderList(repo internalorders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders repository unavailable"))
			return
		}

		var statuses []enums.OrderStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			for _, part := range strings.Split(raw, ",") {
				status := enums.OrderStatus(strings.TrimSpace(part))
				if !status.IsValid() {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").WithDetails(map[string]any{"status": part}))
					return
				}
				statuses = append(statuses, status)
			}
		}

		list, err := repo.List(r.Context(), statuses...)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(list))
		for i := range list {
			out = append(out, orderResponseFromModel(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminReconcileOrderPayouts re-runs the settle flow for one order. Safe to
// call repeatedly; recorded transfer ids keep recipients from being paid twice.
func AdminReconcileOrderPayouts(svc *payouts.Service, repo internalorders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payout service unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		if err := svc.SettleOrder(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := repo.FindByID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orderResponseFromModel(order))
	}
}

// AdminReconcileAll sweeps every unsettled paid order.
func AdminReconcileAll(svc *payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payout service unavailable"))
			return
		}

		settled, err := svc.Reconcile(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int{"settled": settled})
	}
}

type orderResponse struct {
	ID                uuid.UUID         `json:"id"`
	ArtworkID         uuid.UUID         `json:"artwork_id"`
	ArtistID          string            `json:"artist_id"`
	VenueID           *string           `json:"venue_id,omitempty"`
	BuyerEmail        string            `json:"buyer_email"`
	Status            enums.OrderStatus `json:"status"`
	PlanID            string            `json:"plan_id"`
	ListPriceCents    int64             `json:"list_price_cents"`
	BuyerFeeCents     int64             `json:"buyer_fee_cents"`
	BuyerTotalCents   int64             `json:"buyer_total_cents"`
	ArtistAmountCents int64             `json:"artist_amount_cents"`
	VenueAmountCents  int64             `json:"venue_amount_cents"`
	PlatformNetCents  int64             `json:"platform_net_cents"`
	ArtistTransferID  *string           `json:"artist_transfer_id,omitempty"`
	VenueTransferID   *string           `json:"venue_transfer_id,omitempty"`
	PaidAt            *time.Time        `json:"paid_at,omitempty"`
	SettledAt         *time.Time        `json:"settled_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

func orderResponseFromModel(m *models.Order) orderResponse {
	return orderResponse{
		ID:                m.ID,
		ArtworkID:         m.ArtworkID,
		ArtistID:          m.ArtistID,
		VenueID:           m.VenueID,
		BuyerEmail:        m.BuyerEmail,
		Status:            m.Status,
		PlanID:            m.PlanID,
		ListPriceCents:    m.ListPriceCents,
		BuyerFeeCents:     m.BuyerFeeCents,
		BuyerTotalCents:   m.BuyerTotalCents,
		ArtistAmountCents: m.ArtistAmountCents,
		VenueAmountCents:  m.VenueAmountCents,
		PlatformNetCents:  m.PlatformNetCents,
		ArtistTransferID:  m.ArtistTransferID,
		VenueTransferID:   m.VenueTransferID,
		PaidAt:            m.PaidAt,
		SettledAt:         m.SettledAt,
		CreatedAt:         m.CreatedAt,
	}
}

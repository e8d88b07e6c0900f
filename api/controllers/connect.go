package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atelierhq/atelier-backend/api/responses"
	"github.com/atelierhq/atelier-backend/internal/connect"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
	"github.com/atelierhq/atelier-backend/pkg/logger"
)

// ConnectCreateAccount provisions the recipient's payout account without
// issuing an onboarding link.
func ConnectCreateAccount(svc *connect.Service, recipientType enums.RecipientType, param string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "connect service unavailable"))
			return
		}

		accountID, err := svc.EnsureAccount(r.Context(), recipientType, chi.URLParam(r, param))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"account_id": accountID})
	}
}

// ConnectCreateLink returns a fresh hosted onboarding link, creating the
// payout account first when the recipient has none.
func ConnectCreateLink(svc *connect.Service, recipientType enums.RecipientType, param string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "connect service unavailable"))
			return
		}

		link, err := svc.StartOnboarding(r.Context(), recipientType, chi.URLParam(r, param))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, link)
	}
}

// ConnectStatus fetches the live account state and reports payout readiness.
func ConnectStatus(svc *connect.Service, recipientType enums.RecipientType, param string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "connect service unavailable"))
			return
		}

		report, err := svc.Status(r.Context(), recipientType, chi.URLParam(r, param))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
	"github.com/atelierhq/atelier-backend/pkg/logger"
	"github.com/atelierhq/atelier-backend/pkg/metrics"
)

type checkoutCompleter interface {
	CompleteSession(ctx context.Context, session *stripe.CheckoutSession) (uuid.UUID, error)
}

type payoutOrchestrator interface {
	SettleOrder(ctx context.Context, orderID uuid.UUID) error
}

type connectSynchronizer interface {
	SyncAccount(ctx context.Context, account *stripe.Account) error
}

// ServiceParams wires the webhook service dependencies.
type ServiceParams struct {
	Checkout checkoutCompleter
	Payouts  payoutOrchestrator
	Connect  connectSynchronizer
	Logger   *logger.Logger
	Metrics  *metrics.SettlementMetrics
}

// Service routes verified Stripe events to the domain flows that own them.
type Service struct {
	checkout checkoutCompleter
	payouts  payoutOrchestrator
	connect  connectSynchronizer
	logg     *logger.Logger
	metrics  *metrics.SettlementMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Checkout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service required")
	}
	if params.Payouts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payout service required")
	}
	if params.Connect == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "connect service required")
	}
	return &Service{
		checkout: params.Checkout,
		payouts:  params.Payouts,
		connect:  params.Connect,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// HandleEvent dispatches one event. Unknown event types are acknowledged
// without side effects so Stripe stops redelivering them.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			s.metrics.ObserveWebhook(string(event.Type), "decode_error")
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session event")
		}
		if err := s.handleSessionCompleted(ctx, &session); err != nil {
			s.metrics.ObserveWebhook(string(event.Type), "error")
			return err
		}
		s.metrics.ObserveWebhook(string(event.Type), "processed")
		return nil
	case stripe.EventTypeAccountUpdated:
		var account stripe.Account
		if err := json.Unmarshal(event.Data.Raw, &account); err != nil {
			s.metrics.ObserveWebhook(string(event.Type), "decode_error")
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode account event")
		}
		if err := s.connect.SyncAccount(ctx, &account); err != nil {
			s.metrics.ObserveWebhook(string(event.Type), "error")
			return err
		}
		s.metrics.ObserveWebhook(string(event.Type), "processed")
		return nil
	default:
		s.metrics.ObserveWebhook(string(event.Type), "ignored")
		return nil
	}
}

// handleSessionCompleted advances the order to paid and immediately runs
// the payout flow. A payout failure surfaces to the caller so the event is
// released for redelivery; recorded transfer ids make the retry safe.
func (s *Service) handleSessionCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	orderID, err := s.checkout.CompleteSession(ctx, session)
	if err != nil {
		return err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()),
			fmt.Sprintf("checkout session %s completed", session.ID))
	}
	return s.payouts.SettleOrder(ctx, orderID)
}

package payouts

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"go.uber.org/multierr"

	"github.com/atelierhq/atelier-backend/internal/orders"
	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
	"github.com/atelierhq/atelier-backend/pkg/logger"
	"github.com/atelierhq/atelier-backend/pkg/metrics"
)

const (
	metadataOrderID       = "order_id"
	metadataRecipientType = "recipient_type"
)

type ordersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ApplyPatch(ctx context.Context, id uuid.UUID, patch orders.Patch) error
	ListUnsettled(ctx context.Context) ([]models.Order, error)
}

type artistsRepository interface {
	FindByID(ctx context.Context, id string) (*models.Artist, error)
}

type venuesRepository interface {
	FindByID(ctx context.Context, id string) (*models.Venue, error)
}

// ServiceParams wires the payout service dependencies.
type ServiceParams struct {
	OrdersRepo   ordersRepository
	ArtistsRepo  artistsRepository
	VenuesRepo   venuesRepository
	StripeClient StripeTransferClient
	Logger       *logger.Logger
	Metrics      *metrics.SettlementMetrics
}

// Service issues payout transfers for paid orders. Every transfer id is
// persisted the moment Stripe acknowledges it, so a crash between the two
// legs can never double-pay on retry.
type Service struct {
	orders  ordersRepository
	artists artistsRepository
	venues  venuesRepository
	stripe  StripeTransferClient
	logg    *logger.Logger
	metrics *metrics.SettlementMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.OrdersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.ArtistsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "artists repo required")
	}
	if params.VenuesRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "venues repo required")
	}
	if params.StripeClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	return &Service{
		orders:  params.OrdersRepo,
		artists: params.ArtistsRepo,
		venues:  params.VenuesRepo,
		stripe:  params.StripeClient,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

type transferLeg struct {
	recipient   enums.RecipientType
	amountCents int64
	destination string
	recordedID  *string
}

// SettleOrder issues the outstanding transfers for an order, artist first.
// The call is safe to retry: recorded legs are never re-sent, and an
// ambiguous outcome is resolved against Stripe before giving up.
func (s *Service) SettleOrder(ctx context.Context, orderID uuid.UUID) error {
	started := time.Now()

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	switch order.Status {
	case enums.OrderStatusSettled:
		return nil
	case enums.OrderStatusPaid, enums.OrderStatusTransfersIssued:
	default:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not ready for payout").
			WithDetails(map[string]any{"order_id": order.ID.String(), "status": order.Status})
	}

	legs, err := s.buildLegs(ctx, order)
	if err != nil {
		return err
	}

	var errs error
	anyIssued := false
	allDone := true
	for _, leg := range legs {
		transferID, issued, legErr := s.ensureTransfer(ctx, order, leg)
		if legErr != nil {
			allDone = false
			errs = multierr.Append(errs, legErr)
			continue
		}
		if issued {
			anyIssued = true
			if err := s.recordTransferID(ctx, order, leg.recipient, transferID); err != nil {
				return multierr.Append(errs, err)
			}
		}
	}

	if allDone {
		settledAt := time.Now().UTC()
		status := enums.OrderStatusSettled
		if err := s.orders.ApplyPatch(ctx, order.ID, orders.Patch{
			Status:    &status,
			SettledAt: &settledAt,
		}); err != nil {
			return multierr.Append(errs, err)
		}
		s.metrics.ObserveSettlementDuration(string(stripe.EventTypeCheckoutSessionCompleted), time.Since(started))
		if s.logg != nil {
			s.logg.Info(ctx, fmt.Sprintf("order %s settled", order.ID))
		}
		return errs
	}

	if anyIssued && order.Status == enums.OrderStatusPaid {
		status := enums.OrderStatusTransfersIssued
		if err := s.orders.ApplyPatch(ctx, order.ID, orders.Patch{Status: &status}); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Reconcile retries payouts for every order stuck short of settled. Failures
// are collected per order so one bad order cannot shadow the rest.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	stuck, err := s.orders.ListUnsettled(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list unsettled orders")
	}

	settled := 0
	var errs error
	for _, order := range stuck {
		if err := s.SettleOrder(ctx, order.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", order.ID, err))
			continue
		}
		settled++
	}
	return settled, errs
}

// buildLegs resolves the two payout legs in issue order: artist, then venue.
func (s *Service) buildLegs(ctx context.Context, order *models.Order) ([]transferLeg, error) {
	artist, err := s.artists.FindByID(ctx, order.ArtistID)
	if err != nil {
		return nil, err
	}

	artistLeg := transferLeg{
		recipient:   enums.RecipientTypeArtist,
		amountCents: order.ArtistAmountCents,
		recordedID:  order.ArtistTransferID,
	}
	if artist.PayoutAccountID != nil {
		artistLeg.destination = *artist.PayoutAccountID
	}
	legs := []transferLeg{artistLeg}

	if order.VenueID != nil {
		venue, err := s.venues.FindByID(ctx, *order.VenueID)
		if err != nil {
			return nil, err
		}
		venueLeg := transferLeg{
			recipient:   enums.RecipientTypeVenue,
			amountCents: order.VenueAmountCents,
			recordedID:  order.VenueTransferID,
		}
		if venue.PayoutAccountID != nil {
			venueLeg.destination = *venue.PayoutAccountID
		}
		legs = append(legs, venueLeg)
	}
	return legs, nil
}

// ensureTransfer resolves one leg. It returns the transfer id and whether it
// was newly issued (and so still needs persisting).
func (s *Service) ensureTransfer(ctx context.Context, order *models.Order, leg transferLeg) (string, bool, error) {
	if leg.recordedID != nil && *leg.recordedID != "" {
		s.metrics.ObserveTransfer(leg.recipient.String(), "recorded")
		return *leg.recordedID, false, nil
	}
	if leg.amountCents == 0 {
		s.metrics.ObserveTransfer(leg.recipient.String(), "skipped")
		return "", false, nil
	}
	if leg.destination == "" {
		s.metrics.ObserveTransfer(leg.recipient.String(), "skipped")
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("order %s: %s has no payout account, leg skipped", order.ID, leg.recipient))
		}
		return "", false, nil
	}

	params := &stripe.TransferCreateParams{
		Amount:        stripe.Int64(leg.amountCents),
		Currency:      stripe.String(string(stripe.CurrencyUSD)),
		Destination:   stripe.String(leg.destination),
		TransferGroup: stripe.String(order.ID.String()),
	}
	if order.ChargeID != nil && *order.ChargeID != "" {
		params.SourceTransaction = stripe.String(*order.ChargeID)
	} else if s.logg != nil {
		// Completion normally records the charge; without it the transfer
		// can only draw on the platform balance.
		s.logg.Warn(ctx, fmt.Sprintf("order %s: no charge recorded, %s transfer drawn from platform balance", order.ID, leg.recipient))
	}
	params.AddMetadata(metadataOrderID, order.ID.String())
	params.AddMetadata(metadataRecipientType, leg.recipient.String())
	params.SetIdempotencyKey(fmt.Sprintf("transfer:%s:%s", order.ID, leg.recipient))

	created, err := s.stripe.CreateTransfer(ctx, params)
	if err == nil {
		s.metrics.ObserveTransfer(leg.recipient.String(), "issued")
		return created.ID, true, nil
	}

	if isAmbiguousOutcome(err) {
		adopted, adoptErr := s.adoptTransfer(ctx, order, leg.recipient)
		if adoptErr == nil && adopted != "" {
			s.metrics.ObserveTransfer(leg.recipient.String(), "adopted")
			if s.logg != nil {
				s.logg.Warn(ctx, fmt.Sprintf("order %s: adopted %s transfer %s after ambiguous outcome", order.ID, leg.recipient, adopted))
			}
			return adopted, true, nil
		}
	}

	s.metrics.ObserveTransfer(leg.recipient.String(), "failed")
	return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
		fmt.Sprintf("create %s transfer", leg.recipient)).
		WithDetails(map[string]any{"order_id": order.ID.String()})
}

// adoptTransfer looks for a transfer that may have landed despite the error
// by listing the order's transfer group and matching the recipient tag.
func (s *Service) adoptTransfer(ctx context.Context, order *models.Order, recipient enums.RecipientType) (string, error) {
	transfers, err := s.stripe.ListTransfersByGroup(ctx, order.ID.String())
	if err != nil {
		return "", err
	}
	for _, tr := range transfers {
		if tr != nil && tr.Metadata[metadataRecipientType] == recipient.String() {
			return tr.ID, nil
		}
	}
	return "", nil
}

func (s *Service) recordTransferID(ctx context.Context, order *models.Order, recipient enums.RecipientType, transferID string) error {
	patch := orders.Patch{}
	switch recipient {
	case enums.RecipientTypeArtist:
		patch.ArtistTransferID = &transferID
	case enums.RecipientTypeVenue:
		patch.VenueTransferID = &transferID
	default:
		return pkgerrors.New(pkgerrors.CodeInternal, "unknown transfer recipient")
	}
	if err := s.orders.ApplyPatch(ctx, order.ID, patch); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err,
			fmt.Sprintf("record %s transfer id", recipient)).
			WithDetails(map[string]any{"order_id": order.ID.String(), "transfer_id": transferID})
	}
	return nil
}

// isAmbiguousOutcome reports whether the transfer may have been created even
// though the call failed, which warrants a re-check against Stripe.
func isAmbiguousOutcome(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.HTTPStatusCode >= 500
	}
	return false
}

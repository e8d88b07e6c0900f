package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/internal/artworks"
	"github.com/atelierhq/atelier-backend/internal/orders"
	"github.com/atelierhq/atelier-backend/internal/settlement"
	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
)

const metadataOrderID = "order_id"

type artistsRepository interface {
	FindByID(ctx context.Context, id string) (*models.Artist, error)
}

type artworksRepository interface {
	WithTx(tx *gorm.DB) artworks.Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Artwork, error)
}

type ordersRepository interface {
	WithTx(tx *gorm.DB) orders.Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByCheckoutSessionID(ctx context.Context, sessionID string) (*models.Order, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateSessionInput identifies what is being bought and by whom.
type CreateSessionInput struct {
	ArtworkID  uuid.UUID `json:"artwork_id" validate:"required"`
	BuyerEmail string    `json:"buyer_email" validate:"required,email"`
}

// SessionResult is returned to the storefront so it can redirect the buyer.
type SessionResult struct {
	OrderID    uuid.UUID `json:"order_id"`
	SessionID  string    `json:"session_id"`
	SessionURL string    `json:"session_url"`
}

// ServiceParams wires the checkout service dependencies.
type ServiceParams struct {
	ArtistsRepo       artistsRepository
	ArtworksRepo      artworksRepository
	OrdersRepo        ordersRepository
	Calculator        *settlement.Calculator
	StripeClient      StripeCheckoutClient
	TransactionRunner txRunner
	SuccessURL        string
	CancelURL         string
}

// Service creates hosted checkout sessions and finalizes the order state
// when a session completes.
type Service struct {
	artists    artistsRepository
	artworks   artworksRepository
	orders     ordersRepository
	calc       *settlement.Calculator
	stripe     StripeCheckoutClient
	txRunner   txRunner
	successURL string
	cancelURL  string
}

func NewService(params ServiceParams) (*Service, error) {
	if params.ArtistsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "artists repo required")
	}
	if params.ArtworksRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "artworks repo required")
	}
	if params.OrdersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.Calculator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "settlement calculator required")
	}
	if params.StripeClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.SuccessURL == "" || params.CancelURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout redirect urls required")
	}
	return &Service{
		artists:    params.ArtistsRepo,
		artworks:   params.ArtworksRepo,
		orders:     params.OrdersRepo,
		calc:       params.Calculator,
		stripe:     params.StripeClient,
		txRunner:   params.TransactionRunner,
		successURL: params.SuccessURL,
		cancelURL:  params.CancelURL,
	}, nil
}

// CreateSession prices the artwork under the artist's current plan, opens a
// hosted checkout session for the buyer total, and records a pending order
// carrying the full breakdown.
func (s *Service) CreateSession(ctx context.Context, input CreateSessionInput) (*SessionResult, error) {
	if input.ArtworkID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artwork_id is required")
	}
	buyerEmail := strings.ToLower(strings.TrimSpace(input.BuyerEmail))
	if buyerEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer_email is required")
	}

	artwork, err := s.artworks.FindByID(ctx, input.ArtworkID)
	if err != nil {
		return nil, err
	}
	if artwork.Status != enums.ArtworkStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "artwork is not for sale").
			WithDetails(map[string]any{"artwork_id": artwork.ID.String(), "status": artwork.Status})
	}

	artist, err := s.artists.FindByID(ctx, artwork.ArtistID)
	if err != nil {
		return nil, err
	}
	planID := effectivePlan(artist)

	breakdown, err := s.calc.Compute(artwork.PriceCents, planID)
	if err != nil {
		return nil, err
	}

	orderID := uuid.New()
	params := &stripe.CheckoutSessionCreateParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(s.successURL),
		CancelURL:     stripe.String(s.cancelURL),
		CustomerEmail: stripe.String(buyerEmail),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(breakdown.BuyerTotalCents),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(artwork.Title),
					},
				},
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionCreatePaymentIntentDataParams{
			TransferGroup: stripe.String(orderID.String()),
		},
	}
	params.AddMetadata(metadataOrderID, orderID.String())

	session, err := s.stripe.CreateSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	order := &models.Order{
		ID:                orderID,
		CheckoutSessionID: session.ID,
		ArtworkID:         artwork.ID,
		ArtistID:          artwork.ArtistID,
		VenueID:           artwork.VenueID,
		BuyerEmail:        buyerEmail,
		Status:            enums.OrderStatusPending,
		PlanID:            planID,
		ListPriceCents:    breakdown.ListPriceCents,
		BuyerFeeCents:     breakdown.BuyerFeeCents,
		BuyerTotalCents:   breakdown.BuyerTotalCents,
		VenueAmountCents:  breakdown.VenueAmountCents,
		ArtistAmountCents: breakdown.ArtistAmountCents,
		PlatformNetCents:  breakdown.PlatformNetCents,
	}
	if _, err := s.orders.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order").
			WithDetails(map[string]any{"checkout_session_id": session.ID})
	}

	return &SessionResult{
		OrderID:    orderID,
		SessionID:  session.ID,
		SessionURL: session.URL,
	}, nil
}

// CompleteSession marks the order paid and the artwork sold in one
// transaction. Completing an already paid session is a no-op, so webhook
// redelivery after the idempotency window cannot corrupt state.
func (s *Service) CompleteSession(ctx context.Context, session *stripe.CheckoutSession) (uuid.UUID, error) {
	if session == nil || session.ID == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session payload required")
	}

	order, err := s.orders.FindByCheckoutSessionID(ctx, session.ID)
	if err != nil {
		return uuid.Nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return order.ID, nil
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		// Tolerate an artwork already marked sold: the session completed
		// and the payment exists, so the order must still advance.
		if err := s.artworks.WithTx(tx).MarkSold(ctx, order.ArtworkID, time.Now().UTC()); err != nil && !isStateConflict(err) {
			return err
		}

		paid := enums.OrderStatusPaid
		paidAt := time.Now().UTC()
		patch := orders.Patch{
			Status: &paid,
			PaidAt: &paidAt,
		}
		if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
			patch.ChargeID = &session.PaymentIntent.ID
		}
		return s.orders.WithTx(tx).ApplyPatch(ctx, order.ID, patch)
	})
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err,
			fmt.Sprintf("complete checkout session %s", session.ID))
	}
	return order.ID, nil
}

// effectivePlan is the plan the order is priced under: the artist's tier
// only counts while the subscription is in good standing.
func effectivePlan(artist *models.Artist) string {
	switch artist.SubscriptionStatus {
	case enums.SubscriptionStatusActive, enums.SubscriptionStatusTrialing:
		return artist.SubscriptionTier
	default:
		return "free"
	}
}

func isStateConflict(err error) bool {
	appErr := pkgerrors.As(err)
	return appErr != nil && appErr.Code() == pkgerrors.CodeStateConflict
}

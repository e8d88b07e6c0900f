package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/internal/artworks"
	"github.com/atelierhq/atelier-backend/internal/fees"
	"github.com/atelierhq/atelier-backend/internal/orders"
	"github.com/atelierhq/atelier-backend/internal/settlement"
	"github.com/atelierhq/atelier-backend/pkg/config"
	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
)

type stubArtists struct {
	byID map[string]*models.Artist
}

func (s *stubArtists) FindByID(_ context.Context, id string) (*models.Artist, error) {
	if artist, ok := s.byID[id]; ok {
		return artist, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artist not found")
}

type stubArtworks struct {
	byID map[uuid.UUID]*models.Artwork
}

func (s *stubArtworks) WithTx(*gorm.DB) artworks.Repository { return s }

func (s *stubArtworks) Create(_ context.Context, artwork *models.Artwork) (*models.Artwork, error) {
	s.byID[artwork.ID] = artwork
	return artwork, nil
}

func (s *stubArtworks) FindByID(_ context.Context, id uuid.UUID) (*models.Artwork, error) {
	if artwork, ok := s.byID[id]; ok {
		return artwork, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artwork not found")
}

func (s *stubArtworks) List(context.Context, artworks.ListQuery) ([]models.Artwork, error) {
	return nil, nil
}

func (s *stubArtworks) MarkSold(_ context.Context, id uuid.UUID, soldAt time.Time) error {
	artwork, ok := s.byID[id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "artwork not found")
	}
	if artwork.Status != enums.ArtworkStatusActive {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "artwork is not active")
	}
	artwork.Status = enums.ArtworkStatusSold
	artwork.SoldAt = &soldAt
	return nil
}

type stubOrders struct {
	byID      map[uuid.UUID]*models.Order
	bySession map[string]*models.Order
}

func newStubOrders() *stubOrders {
	return &stubOrders{
		byID:      map[uuid.UUID]*models.Order{},
		bySession: map[string]*models.Order{},
	}
}

func (s *stubOrders) WithTx(*gorm.DB) orders.Repository { return s }

func (s *stubOrders) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	s.byID[order.ID] = order
	s.bySession[order.CheckoutSessionID] = order
	return order, nil
}

func (s *stubOrders) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := s.byID[id]; ok {
		return order, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (s *stubOrders) FindByCheckoutSessionID(_ context.Context, sessionID string) (*models.Order, error) {
	if order, ok := s.bySession[sessionID]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no order for checkout session")
}

func (s *stubOrders) List(context.Context, ...enums.OrderStatus) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrders) ListUnsettled(context.Context) ([]models.Order, error) { return nil, nil }

func (s *stubOrders) ApplyPatch(_ context.Context, id uuid.UUID, patch orders.Patch) error {
	order, ok := s.byID[id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if patch.Status != nil {
		order.Status = *patch.Status
	}
	if patch.ChargeID != nil {
		order.ChargeID = patch.ChargeID
	}
	if patch.PaidAt != nil {
		order.PaidAt = patch.PaidAt
	}
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubSessionClient struct {
	params []*stripe.CheckoutSessionCreateParams
}

func (s *stubSessionClient) CreateSession(_ context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
	s.params = append(s.params, params)
	return &stripe.CheckoutSession{
		ID:  "cs_test_created",
		URL: "https://checkout.stripe.com/pay/cs_test_created",
	}, nil
}

func newCheckoutService(t *testing.T, artistsRepo *stubArtists, artworksRepo *stubArtworks, ordersRepo *stubOrders, client *stubSessionClient) *Service {
	t.Helper()

	catalog, err := fees.LoadCatalog(config.PlansConfig{})
	require.NoError(t, err)
	resolver, err := fees.NewResolver(catalog)
	require.NoError(t, err)
	calc, err := settlement.NewCalculator(resolver)
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		ArtistsRepo:       artistsRepo,
		ArtworksRepo:      artworksRepo,
		OrdersRepo:        ordersRepo,
		Calculator:        calc,
		StripeClient:      client,
		TransactionRunner: stubTxRunner{},
		SuccessURL:        "https://atelier.example/purchase/success",
		CancelURL:         "https://atelier.example/purchase/cancel",
	})
	require.NoError(t, err)
	return svc
}

func activeArtwork(artistID string) *models.Artwork {
	return &models.Artwork{
		ID:         uuid.New(),
		ArtistID:   artistID,
		Title:      "Low Tide II",
		PriceCents: 14000,
		Status:     enums.ArtworkStatusActive,
	}
}

func TestCreateSessionChargesBuyerTotal(t *testing.T) {
	artist := &models.Artist{
		ID:                 "artist-1",
		SubscriptionTier:   "pro",
		SubscriptionStatus: enums.SubscriptionStatusActive,
	}
	artwork := activeArtwork(artist.ID)
	artworksRepo := &stubArtworks{byID: map[uuid.UUID]*models.Artwork{artwork.ID: artwork}}
	ordersRepo := newStubOrders()
	client := &stubSessionClient{}
	svc := newCheckoutService(t, &stubArtists{byID: map[string]*models.Artist{artist.ID: artist}}, artworksRepo, ordersRepo, client)

	result, err := svc.CreateSession(context.Background(), CreateSessionInput{
		ArtworkID:  artwork.ID,
		BuyerEmail: "Buyer@Example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_created", result.SessionID)
	assert.NotEmpty(t, result.SessionURL)

	require.Len(t, client.params, 1)
	params := client.params[0]
	require.Len(t, params.LineItems, 1)
	assert.Equal(t, int64(14630), stripe.Int64Value(params.LineItems[0].PriceData.UnitAmount))
	assert.Equal(t, result.OrderID.String(), params.Metadata[metadataOrderID])
	assert.Equal(t, result.OrderID.String(), stripe.StringValue(params.PaymentIntentData.TransferGroup))

	order := ordersRepo.byID[result.OrderID]
	require.NotNil(t, order)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, "pro", order.PlanID)
	assert.Equal(t, int64(11900), order.ArtistAmountCents)
	assert.Equal(t, int64(2100), order.VenueAmountCents)
	assert.Equal(t, "buyer@example.com", order.BuyerEmail)
}

func TestCreateSessionLapsedSubscriptionPricedAsFree(t *testing.T) {
	artist := &models.Artist{
		ID:                 "artist-1",
		SubscriptionTier:   "pro",
		SubscriptionStatus: enums.SubscriptionStatusCanceled,
	}
	artwork := activeArtwork(artist.ID)
	artworksRepo := &stubArtworks{byID: map[uuid.UUID]*models.Artwork{artwork.ID: artwork}}
	ordersRepo := newStubOrders()
	svc := newCheckoutService(t, &stubArtists{byID: map[string]*models.Artist{artist.ID: artist}}, artworksRepo, ordersRepo, &stubSessionClient{})

	result, err := svc.CreateSession(context.Background(), CreateSessionInput{
		ArtworkID:  artwork.ID,
		BuyerEmail: "buyer@example.com",
	})
	require.NoError(t, err)

	order := ordersRepo.byID[result.OrderID]
	assert.Equal(t, "free", order.PlanID)
	assert.Equal(t, int64(8400), order.ArtistAmountCents)
}

func TestCreateSessionRejectsSoldArtwork(t *testing.T) {
	artist := &models.Artist{ID: "artist-1"}
	artwork := activeArtwork(artist.ID)
	artwork.Status = enums.ArtworkStatusSold
	artworksRepo := &stubArtworks{byID: map[uuid.UUID]*models.Artwork{artwork.ID: artwork}}
	svc := newCheckoutService(t, &stubArtists{byID: map[string]*models.Artist{artist.ID: artist}}, artworksRepo, newStubOrders(), &stubSessionClient{})

	_, err := svc.CreateSession(context.Background(), CreateSessionInput{
		ArtworkID:  artwork.ID,
		BuyerEmail: "buyer@example.com",
	})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
}

func TestCompleteSessionMarksOrderPaid(t *testing.T) {
	artist := &models.Artist{ID: "artist-1"}
	artwork := activeArtwork(artist.ID)
	artworksRepo := &stubArtworks{byID: map[uuid.UUID]*models.Artwork{artwork.ID: artwork}}
	ordersRepo := newStubOrders()
	svc := newCheckoutService(t, &stubArtists{byID: map[string]*models.Artist{artist.ID: artist}}, artworksRepo, ordersRepo, &stubSessionClient{})

	order := &models.Order{
		ID:                uuid.New(),
		CheckoutSessionID: "cs_test_done",
		ArtworkID:         artwork.ID,
		ArtistID:          artist.ID,
		Status:            enums.OrderStatusPending,
	}
	_, err := ordersRepo.Create(context.Background(), order)
	require.NoError(t, err)

	orderID, err := svc.CompleteSession(context.Background(), &stripe.CheckoutSession{
		ID:            "cs_test_done",
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_123"},
	})
	require.NoError(t, err)
	assert.Equal(t, order.ID, orderID)

	stored := ordersRepo.byID[order.ID]
	assert.Equal(t, enums.OrderStatusPaid, stored.Status)
	require.NotNil(t, stored.ChargeID)
	assert.Equal(t, "pi_123", *stored.ChargeID)
	require.NotNil(t, stored.PaidAt)
	assert.Equal(t, enums.ArtworkStatusSold, artwork.Status)

	// redelivery after the order is paid is a no-op
	orderID, err = svc.CompleteSession(context.Background(), &stripe.CheckoutSession{ID: "cs_test_done"})
	require.NoError(t, err)
	assert.Equal(t, order.ID, orderID)
	assert.Equal(t, "pi_123", *ordersRepo.byID[order.ID].ChargeID)
}

func TestCompleteSessionUnknownSession(t *testing.T) {
	artist := &models.Artist{ID: "artist-1"}
	svc := newCheckoutService(t, &stubArtists{byID: map[string]*models.Artist{artist.ID: artist}}, &stubArtworks{byID: map[uuid.UUID]*models.Artwork{}}, newStubOrders(), &stubSessionClient{})

	_, err := svc.CompleteSession(context.Background(), &stripe.CheckoutSession{ID: "cs_test_unknown"})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

package connect

import (
	"context"
	"testing"

	"github.com/stripe/stripe-go/v84"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier-backend/internal/artists"
	"github.com/atelierhq/atelier-backend/internal/venues"
	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
)

type stubArtistsRepo struct {
	byID        map[string]*models.Artist
	byAccountID map[string]*models.Artist
	patches     []artists.Patch
	patchedIDs  []string
}

func (s *stubArtistsRepo) FindByID(_ context.Context, id string) (*models.Artist, error) {
	if artist, ok := s.byID[id]; ok {
		return artist, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artist not found")
}

func (s *stubArtistsRepo) FindByPayoutAccountID(_ context.Context, accountID string) (*models.Artist, error) {
	if artist, ok := s.byAccountID[accountID]; ok {
		return artist, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no artist for payout account")
}

func (s *stubArtistsRepo) ApplyPatch(_ context.Context, id string, patch artists.Patch) error {
	s.patchedIDs = append(s.patchedIDs, id)
	s.patches = append(s.patches, patch)
	return nil
}

type stubVenuesRepo struct {
	byID        map[string]*models.Venue
	byAccountID map[string]*models.Venue
	patches     []venues.Patch
	patchedIDs  []string
}

func (s *stubVenuesRepo) FindByID(_ context.Context, id string) (*models.Venue, error) {
	if venue, ok := s.byID[id]; ok {
		return venue, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "venue not found")
}

func (s *stubVenuesRepo) FindByPayoutAccountID(_ context.Context, accountID string) (*models.Venue, error) {
	if venue, ok := s.byAccountID[accountID]; ok {
		return venue, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no venue for payout account")
}

func (s *stubVenuesRepo) ApplyPatch(_ context.Context, id string, patch venues.Patch) error {
	s.patchedIDs = append(s.patchedIDs, id)
	s.patches = append(s.patches, patch)
	return nil
}

type stubConnectClient struct {
	account     *stripe.Account
	created     []*stripe.AccountCreateParams
	linkVisits  []*stripe.AccountLinkCreateParams
	fetchedIDs  []string
	fetchResult *stripe.Account
}

func (s *stubConnectClient) CreateAccount(_ context.Context, params *stripe.AccountCreateParams) (*stripe.Account, error) {
	s.created = append(s.created, params)
	return s.account, nil
}

func (s *stubConnectClient) GetAccount(_ context.Context, id string, _ *stripe.AccountRetrieveParams) (*stripe.Account, error) {
	s.fetchedIDs = append(s.fetchedIDs, id)
	return s.fetchResult, nil
}

func (s *stubConnectClient) CreateAccountLink(_ context.Context, params *stripe.AccountLinkCreateParams) (*stripe.AccountLink, error) {
	s.linkVisits = append(s.linkVisits, params)
	return &stripe.AccountLink{URL: "https://connect.stripe.com/setup/x"}, nil
}

func newConnectService(t *testing.T, artistsRepo *stubArtistsRepo, venuesRepo *stubVenuesRepo, client *stubConnectClient) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		ArtistsRepo:  artistsRepo,
		VenuesRepo:   venuesRepo,
		StripeClient: client,
		ReturnURL:    "https://atelier.example/connect/return",
		RefreshURL:   "https://atelier.example/connect/refresh",
	})
	require.NoError(t, err)
	return svc
}

func TestStartOnboardingCreatesAccountOnce(t *testing.T) {
	artistsRepo := &stubArtistsRepo{
		byID: map[string]*models.Artist{
			"artist-1": {ID: "artist-1", Email: "nina@example.com"},
		},
	}
	client := &stubConnectClient{account: &stripe.Account{ID: "acct_new"}}
	svc := newConnectService(t, artistsRepo, &stubVenuesRepo{}, client)

	link, err := svc.StartOnboarding(context.Background(), enums.RecipientTypeArtist, "artist-1")
	require.NoError(t, err)
	assert.Equal(t, "acct_new", link.AccountID)
	assert.NotEmpty(t, link.URL)

	// account id and pending status persisted before the link is issued
	require.Len(t, artistsRepo.patches, 1)
	require.NotNil(t, artistsRepo.patches[0].PayoutAccountID)
	assert.Equal(t, "acct_new", *artistsRepo.patches[0].PayoutAccountID)
	require.NotNil(t, artistsRepo.patches[0].ConnectStatus)
	assert.Equal(t, enums.ConnectStatusPending, *artistsRepo.patches[0].ConnectStatus)
	require.Len(t, client.created, 1)
}

func TestStartOnboardingReusesExistingAccount(t *testing.T) {
	accountID := "acct_existing"
	artistsRepo := &stubArtistsRepo{
		byID: map[string]*models.Artist{
			"artist-1": {ID: "artist-1", PayoutAccountID: &accountID},
		},
	}
	client := &stubConnectClient{}
	svc := newConnectService(t, artistsRepo, &stubVenuesRepo{}, client)

	link, err := svc.StartOnboarding(context.Background(), enums.RecipientTypeArtist, "artist-1")
	require.NoError(t, err)
	assert.Equal(t, accountID, link.AccountID)
	assert.Empty(t, client.created)
	assert.Empty(t, artistsRepo.patches)
}

func TestSyncAccountRoutesToOwner(t *testing.T) {
	artistsRepo := &stubArtistsRepo{
		byAccountID: map[string]*models.Artist{
			"acct_artist": {ID: "artist-1"},
		},
	}
	venuesRepo := &stubVenuesRepo{
		byAccountID: map[string]*models.Venue{
			"acct_venue": {ID: "venue-1"},
		},
	}
	svc := newConnectService(t, artistsRepo, venuesRepo, &stubConnectClient{})

	err := svc.SyncAccount(context.Background(), &stripe.Account{
		ID:               "acct_artist",
		DetailsSubmitted: true,
		ChargesEnabled:   true,
		PayoutsEnabled:   true,
	})
	require.NoError(t, err)
	require.Len(t, artistsRepo.patches, 1)
	assert.Equal(t, enums.ConnectStatusComplete, *artistsRepo.patches[0].ConnectStatus)

	err = svc.SyncAccount(context.Background(), &stripe.Account{
		ID:               "acct_venue",
		DetailsSubmitted: true,
	})
	require.NoError(t, err)
	require.Len(t, venuesRepo.patches, 1)
	assert.Equal(t, enums.ConnectStatusRestricted, *venuesRepo.patches[0].ConnectStatus)

	// events for untracked accounts are ignored
	require.NoError(t, svc.SyncAccount(context.Background(), &stripe.Account{ID: "acct_unknown"}))
}

func TestStatusFetchesAndPersists(t *testing.T) {
	accountID := "acct_artist"
	artistsRepo := &stubArtistsRepo{
		byID: map[string]*models.Artist{
			"artist-1": {ID: "artist-1", PayoutAccountID: &accountID},
		},
	}
	client := &stubConnectClient{
		fetchResult: &stripe.Account{
			ID:               accountID,
			DetailsSubmitted: true,
			ChargesEnabled:   true,
			PayoutsEnabled:   true,
		},
	}
	svc := newConnectService(t, artistsRepo, &stubVenuesRepo{}, client)

	report, err := svc.Status(context.Background(), enums.RecipientTypeArtist, "artist-1")
	require.NoError(t, err)
	assert.Equal(t, enums.ConnectStatusComplete, report.Status)
	assert.True(t, report.PayoutReady)
	assert.Equal(t, []string{accountID}, client.fetchedIDs)
	require.Len(t, artistsRepo.patches, 1)
	assert.Equal(t, enums.ConnectStatusComplete, *artistsRepo.patches[0].ConnectStatus)
}

func TestStatusWithoutAccount(t *testing.T) {
	artistsRepo := &stubArtistsRepo{
		byID: map[string]*models.Artist{
			"artist-1": {ID: "artist-1"},
		},
	}
	svc := newConnectService(t, artistsRepo, &stubVenuesRepo{}, &stubConnectClient{})

	report, err := svc.Status(context.Background(), enums.RecipientTypeArtist, "artist-1")
	require.NoError(t, err)
	assert.Equal(t, enums.ConnectStatusNotStarted, report.Status)
	assert.False(t, report.PayoutReady)
}

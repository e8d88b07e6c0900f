package connect

import (
	"context"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/atelierhq/atelier-backend/internal/artists"
	"github.com/atelierhq/atelier-backend/internal/venues"
	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
)

type artistsRepository interface {
	FindByID(ctx context.Context, id string) (*models.Artist, error)
	FindByPayoutAccountID(ctx context.Context, accountID string) (*models.Artist, error)
	ApplyPatch(ctx context.Context, id string, patch artists.Patch) error
}

type venuesRepository interface {
	FindByID(ctx context.Context, id string) (*models.Venue, error)
	FindByPayoutAccountID(ctx context.Context, accountID string) (*models.Venue, error)
	ApplyPatch(ctx context.Context, id string, patch venues.Patch) error
}

// OnboardingLink is a one-time hosted onboarding URL for a recipient.
type OnboardingLink struct {
	AccountID string `json:"account_id"`
	URL       string `json:"url"`
}

// StatusReport is the live onboarding state for a recipient.
type StatusReport struct {
	AccountID   string              `json:"account_id,omitempty"`
	Status      enums.ConnectStatus `json:"status"`
	PayoutReady bool                `json:"payout_ready"`
}

// ServiceParams wires the connect service dependencies.
type ServiceParams struct {
	ArtistsRepo  artistsRepository
	VenuesRepo   venuesRepository
	StripeClient StripeConnectClient
	ReturnURL    string
	RefreshURL   string
}

// Service manages payout account onboarding and status synchronization.
type Service struct {
	artists    artistsRepository
	venues     venuesRepository
	stripe     StripeConnectClient
	returnURL  string
	refreshURL string
}

func NewService(params ServiceParams) (*Service, error) {
	if params.ArtistsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "artists repo required")
	}
	if params.VenuesRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "venues repo required")
	}
	if params.StripeClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	if params.ReturnURL == "" || params.RefreshURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "onboarding urls required")
	}
	return &Service{
		artists:    params.ArtistsRepo,
		venues:     params.VenuesRepo,
		stripe:     params.StripeClient,
		returnURL:  params.ReturnURL,
		refreshURL: params.RefreshURL,
	}, nil
}

// StartOnboarding creates the recipient's payout account on first use and
// returns a fresh hosted onboarding link.
func (s *Service) StartOnboarding(ctx context.Context, recipientType enums.RecipientType, recipientID string) (*OnboardingLink, error) {
	accountID, err := s.EnsureAccount(ctx, recipientType, recipientID)
	if err != nil {
		return nil, err
	}

	link, err := s.stripe.CreateAccountLink(ctx, &stripe.AccountLinkCreateParams{
		Account:    stripe.String(accountID),
		ReturnURL:  stripe.String(s.returnURL),
		RefreshURL: stripe.String(s.refreshURL),
		Type:       stripe.String("account_onboarding"),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create onboarding link")
	}

	return &OnboardingLink{AccountID: accountID, URL: link.URL}, nil
}

// EnsureAccount returns the recipient's payout account id, creating an
// express account and persisting it with status pending on first use.
func (s *Service) EnsureAccount(ctx context.Context, recipientType enums.RecipientType, recipientID string) (string, error) {
	if !recipientType.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid recipient type")
	}
	if strings.TrimSpace(recipientID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "recipient id is required")
	}

	accountID, email, err := s.payoutAccountFor(ctx, recipientType, recipientID)
	if err != nil {
		return "", err
	}
	if accountID != "" {
		return accountID, nil
	}

	params := &stripe.AccountCreateParams{
		Type: stripe.String(string(stripe.AccountTypeExpress)),
		Capabilities: &stripe.AccountCreateCapabilitiesParams{
			Transfers: &stripe.AccountCreateCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
	}
	if email != "" {
		params.Email = stripe.String(email)
	}
	account, err := s.stripe.CreateAccount(ctx, params)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payout account")
	}
	accountID = account.ID

	status := enums.ConnectStatusPending
	if err := s.persistSnapshot(ctx, recipientType, recipientID, &accountID, status); err != nil {
		return "", err
	}
	return accountID, nil
}

// Status fetches the live account, persists the derived status, and reports it.
func (s *Service) Status(ctx context.Context, recipientType enums.RecipientType, recipientID string) (*StatusReport, error) {
	if !recipientType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid recipient type")
	}

	accountID, _, err := s.payoutAccountFor(ctx, recipientType, recipientID)
	if err != nil {
		return nil, err
	}
	if accountID == "" {
		return &StatusReport{Status: enums.ConnectStatusNotStarted}, nil
	}

	account, err := s.stripe.GetAccount(ctx, accountID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch payout account")
	}

	snapshot := SnapshotFromAccount(account)
	status := DeriveStatus(snapshot)
	if err := s.persistSnapshot(ctx, recipientType, recipientID, nil, status); err != nil {
		return nil, err
	}

	return &StatusReport{
		AccountID:   accountID,
		Status:      status,
		PayoutReady: IsPayoutReady(snapshot),
	}, nil
}

// SyncAccount applies an account.updated event to whichever recipient owns
// the account. Events for accounts we do not track are ignored.
func (s *Service) SyncAccount(ctx context.Context, account *stripe.Account) error {
	if account == nil || account.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "account payload required")
	}

	snapshot := SnapshotFromAccount(account)
	status := DeriveStatus(snapshot)

	artist, err := s.artists.FindByPayoutAccountID(ctx, account.ID)
	if err == nil {
		return s.artists.ApplyPatch(ctx, artist.ID, artists.Patch{ConnectStatus: &status})
	}
	if !isNotFound(err) {
		return err
	}

	venue, err := s.venues.FindByPayoutAccountID(ctx, account.ID)
	if err == nil {
		return s.venues.ApplyPatch(ctx, venue.ID, venues.Patch{ConnectStatus: &status})
	}
	if !isNotFound(err) {
		return err
	}
	return nil
}

func (s *Service) payoutAccountFor(ctx context.Context, recipientType enums.RecipientType, recipientID string) (accountID, email string, err error) {
	switch recipientType {
	case enums.RecipientTypeArtist:
		artist, err := s.artists.FindByID(ctx, recipientID)
		if err != nil {
			return "", "", err
		}
		if artist.PayoutAccountID != nil {
			accountID = *artist.PayoutAccountID
		}
		return accountID, artist.Email, nil
	case enums.RecipientTypeVenue:
		venue, err := s.venues.FindByID(ctx, recipientID)
		if err != nil {
			return "", "", err
		}
		if venue.PayoutAccountID != nil {
			accountID = *venue.PayoutAccountID
		}
		return accountID, "", nil
	default:
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "invalid recipient type")
	}
}

func (s *Service) persistSnapshot(ctx context.Context, recipientType enums.RecipientType, recipientID string, accountID *string, status enums.ConnectStatus) error {
	switch recipientType {
	case enums.RecipientTypeArtist:
		return s.artists.ApplyPatch(ctx, recipientID, artists.Patch{
			PayoutAccountID: accountID,
			ConnectStatus:   &status,
		})
	case enums.RecipientTypeVenue:
		return s.venues.ApplyPatch(ctx, recipientID, venues.Patch{
			PayoutAccountID: accountID,
			ConnectStatus:   &status,
		})
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid recipient type")
	}
}

func isNotFound(err error) bool {
	appErr := pkgerrors.As(err)
	return appErr != nil && appErr.Code() == pkgerrors.CodeNotFound
}

package connect

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgstripe "github.com/atelierhq/atelier-backend/pkg/stripe"
)

// StripeConnectClient exposes the subset of Stripe operations required by the connect service.
type StripeConnectClient interface {
	CreateAccount(ctx context.Context, params *stripe.AccountCreateParams) (*stripe.Account, error)
	GetAccount(ctx context.Context, id string, params *stripe.AccountRetrieveParams) (*stripe.Account, error)
	CreateAccountLink(ctx context.Context, params *stripe.AccountLinkCreateParams) (*stripe.AccountLink, error)
}

type stripeClientWrapper struct {
	api *stripe.Client
}

// NewStripeClient adapts the shared Stripe client so the connect service can be tested.
func NewStripeClient(api *pkgstripe.Client) StripeConnectClient {
	if api == nil || api.API() == nil {
		return nil
	}
	return &stripeClientWrapper{api: api.API()}
}

func (w *stripeClientWrapper) CreateAccount(ctx context.Context, params *stripe.AccountCreateParams) (*stripe.Account, error) {
	return w.api.V1Accounts.Create(ctx, params)
}

func (w *stripeClientWrapper) GetAccount(ctx context.Context, id string, params *stripe.AccountRetrieveParams) (*stripe.Account, error) {
	return w.api.V1Accounts.GetByID(ctx, id, params)
}

func (w *stripeClientWrapper) CreateAccountLink(ctx context.Context, params *stripe.AccountLinkCreateParams) (*stripe.AccountLink, error) {
	return w.api.V1AccountLinks.Create(ctx, params)
}

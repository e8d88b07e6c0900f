package checkout

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgstripe "github.com/atelierhq/atelier-backend/pkg/stripe"
)

// StripeCheckoutClient exposes the subset of Stripe operations required by the checkout service.
type StripeCheckoutClient interface {
	CreateSession(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
}

type stripeClientWrapper struct {
	api *stripe.Client
}

// NewStripeClient adapts the shared Stripe client so the checkout service can be tested.
func NewStripeClient(api *pkgstripe.Client) StripeCheckoutClient {
	if api == nil || api.API() == nil {
		return nil
	}
	return &stripeClientWrapper{api: api.API()}
}

func (w *stripeClientWrapper) CreateSession(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
	return w.api.V1CheckoutSessions.Create(ctx, params)
}

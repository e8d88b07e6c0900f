package payouts

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgstripe "github.com/atelierhq/atelier-backend/pkg/stripe"
)

// StripeTransferClient exposes the subset of Stripe operations required by the payout service.
type StripeTransferClient interface {
	CreateTransfer(ctx context.Context, params *stripe.TransferCreateParams) (*stripe.Transfer, error)
	ListTransfersByGroup(ctx context.Context, transferGroup string) ([]*stripe.Transfer, error)
}

type stripeClientWrapper struct {
	api *stripe.Client
}

// NewStripeClient adapts the shared Stripe client so the payout service can be tested.
func NewStripeClient(api *pkgstripe.Client) StripeTransferClient {
	if api == nil || api.API() == nil {
		return nil
	}
	return &stripeClientWrapper{api: api.API()}
}

func (w *stripeClientWrapper) CreateTransfer(ctx context.Context, params *stripe.TransferCreateParams) (*stripe.Transfer, error) {
	return w.api.V1Transfers.Create(ctx, params)
}

func (w *stripeClientWrapper) ListTransfersByGroup(ctx context.Context, transferGroup string) ([]*stripe.Transfer, error) {
	params := &stripe.TransferListParams{TransferGroup: stripe.String(transferGroup)}

	var out []*stripe.Transfer
	for tr, err := range w.api.V1Transfers.List(ctx, params) {
		if err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	return out, nil
}

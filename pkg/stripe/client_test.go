package stripe

import (
	"context"
	"testing"

	stripesdk "github.com/stripe/stripe-go/v84"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier-backend/pkg/config"
)

func TestNewClientValidation(t *testing.T) {
	ctx := context.Background()

	_, err := NewClient(ctx, config.StripeConfig{Env: "test", WebhookSecret: "whsec_1"}, nil)
	assert.ErrorIs(t, err, errAPIKeyRequired)

	_, err = NewClient(ctx, config.StripeConfig{Env: "test", APIKey: "sk_test_1"}, nil)
	assert.ErrorIs(t, err, errSecretRequired)

	_, err = NewClient(ctx, config.StripeConfig{Env: "live", APIKey: "sk_test_1", WebhookSecret: "whsec_1"}, nil)
	assert.Error(t, err)

	_, err = NewClient(ctx, config.StripeConfig{Env: "staging", APIKey: "sk_test_1", WebhookSecret: "whsec_1"}, nil)
	assert.ErrorIs(t, err, errInvalidStripeEnv)
}

func TestNewClientHoldsStateLocally(t *testing.T) {
	client, err := NewClient(context.Background(), config.StripeConfig{
		Env:           "test",
		APIKey:        "sk_test_1",
		WebhookSecret: "whsec_1",
	}, nil)
	require.NoError(t, err)

	assert.NotNil(t, client.API())
	assert.Equal(t, "test", client.Environment())
	assert.Equal(t, "whsec_1", client.SigningSecret())

	// All Stripe calls go through the held client; the SDK's package-level
	// key must stay unset.
	assert.Empty(t, stripesdk.Key)
}

package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/atelierhq/atelier-backend/pkg/errors"
)

type stubCheckout struct {
	orderID  uuid.UUID
	err      error
	sessions []string
}

func (s *stubCheckout) CompleteSession(_ context.Context, session *stripe.CheckoutSession) (uuid.UUID, error) {
	s.sessions = append(s.sessions, session.ID)
	if s.err != nil {
		return uuid.Nil, s.err
	}
	return s.orderID, nil
}

type stubPayouts struct {
	err    error
	orders []uuid.UUID
}

func (s *stubPayouts) SettleOrder(_ context.Context, orderID uuid.UUID) error {
	s.orders = append(s.orders, orderID)
	return s.err
}

type stubConnect struct {
	err      error
	accounts []string
}

func (s *stubConnect) SyncAccount(_ context.Context, account *stripe.Account) error {
	s.accounts = append(s.accounts, account.ID)
	return s.err
}

func newTestService(t *testing.T, checkout *stubCheckout, payouts *stubPayouts, connect *stubConnect) *Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		Checkout: checkout,
		Payouts:  payouts,
		Connect:  connect,
	})
	require.NoError(t, err)
	return svc
}

func sessionCompletedEvent(t *testing.T, sessionID string) *stripe.Event {
	t.Helper()

	raw, err := json.Marshal(map[string]any{"id": sessionID})
	require.NoError(t, err)
	return &stripe.Event{
		ID:   "evt_session",
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: raw},
	}
}

func accountUpdatedEvent(t *testing.T, accountID string) *stripe.Event {
	t.Helper()

	raw, err := json.Marshal(map[string]any{"id": accountID})
	require.NoError(t, err)
	return &stripe.Event{
		ID:   "evt_account",
		Type: stripe.EventTypeAccountUpdated,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleEventSessionCompletedSettles(t *testing.T) {
	orderID := uuid.New()
	checkout := &stubCheckout{orderID: orderID}
	payouts := &stubPayouts{}
	connect := &stubConnect{}
	svc := newTestService(t, checkout, payouts, connect)

	err := svc.HandleEvent(context.Background(), sessionCompletedEvent(t, "cs_test_1"))
	require.NoError(t, err)

	assert.Equal(t, []string{"cs_test_1"}, checkout.sessions)
	assert.Equal(t, []uuid.UUID{orderID}, payouts.orders)
	assert.Empty(t, connect.accounts)
}

func TestHandleEventSettlementFailureSurfaces(t *testing.T) {
	checkout := &stubCheckout{orderID: uuid.New()}
	payouts := &stubPayouts{err: pkgerrors.New(pkgerrors.CodeDependency, "transfer failed")}
	svc := newTestService(t, checkout, payouts, &stubConnect{})

	err := svc.HandleEvent(context.Background(), sessionCompletedEvent(t, "cs_test_1"))
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeDependency, appErr.Code())
}

func TestHandleEventCompletionFailureSkipsSettlement(t *testing.T) {
	checkout := &stubCheckout{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	payouts := &stubPayouts{}
	svc := newTestService(t, checkout, payouts, &stubConnect{})

	err := svc.HandleEvent(context.Background(), sessionCompletedEvent(t, "cs_test_1"))
	require.Error(t, err)
	assert.Empty(t, payouts.orders)
}

func TestHandleEventAccountUpdatedSyncs(t *testing.T) {
	connect := &stubConnect{}
	svc := newTestService(t, &stubCheckout{}, &stubPayouts{}, connect)

	err := svc.HandleEvent(context.Background(), accountUpdatedEvent(t, "acct_1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"acct_1"}, connect.accounts)
}

func TestHandleEventUnknownTypeAcknowledged(t *testing.T) {
	checkout := &stubCheckout{}
	payouts := &stubPayouts{}
	connect := &stubConnect{}
	svc := newTestService(t, checkout, payouts, connect)

	event := &stripe.Event{
		ID:   "evt_unknown",
		Type: stripe.EventType("invoice.paid"),
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	}
	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Empty(t, checkout.sessions)
	assert.Empty(t, payouts.orders)
	assert.Empty(t, connect.accounts)
}

func TestHandleEventMalformedPayload(t *testing.T) {
	svc := newTestService(t, &stubCheckout{}, &stubPayouts{}, &stubConnect{})

	event := &stripe.Event{
		ID:   "evt_bad",
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: json.RawMessage(`{"id":`)},
	}
	err := svc.HandleEvent(context.Background(), event)
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestHandleEventNilData(t *testing.T) {
	svc := newTestService(t, &stubCheckout{}, &stubPayouts{}, &stubConnect{})

	err := svc.HandleEvent(context.Background(), &stripe.Event{ID: "evt_nil"})
	require.Error(t, err)
}

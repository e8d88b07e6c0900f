package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	checkoutsvc "github.com/atelierhq/atelier-backend/internal/checkout"
	"github.com/atelierhq/atelier-backend/pkg/types"
)

func postCheckout(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestCheckoutWithoutServiceFailsClosed(t *testing.T) {
	handler := Checkout(nil, nil)

	rec := postCheckout(t, handler, `{}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCheckoutValidatesInput(t *testing.T) {
	// A non-nil service is never reached when decoding fails, so the zero
	// value is enough for validation-only coverage.
	handler := Checkout(&checkoutsvc.Service{}, nil)

	cases := []struct {
		name string
		body string
	}{
		{"truncated json", `{"artwork_id":`},
		{"unknown field", `{"artwork_id":"3f8a9c1e-7b2d-4e5f-9a1b-2c3d4e5f6a7b","buyer_email":"b@x.com","amount":1}`},
		{"missing buyer email", `{"artwork_id":"3f8a9c1e-7b2d-4e5f-9a1b-2c3d4e5f6a7b"}`},
		{"bad email", `{"artwork_id":"3f8a9c1e-7b2d-4e5f-9a1b-2c3d4e5f6a7b","buyer_email":"not-an-email"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postCheckout(t, handler, tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var envelope types.ErrorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
		})
	}
}

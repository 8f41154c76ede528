package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sunbird/internal/apperrors"
)

func newTestClient(url string) *PaymentClient {
	return NewPaymentClient(PaymentConfig{
		BaseURL:      url,
		MerchantSlug: "sunbird-test",
		Password:     "secret",
		Currency:     "EUR",
	})
}

func TestAuthorizeSuccess(t *testing.T) {
	var got authorizeWire
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/PaymentAuthorize/authorize", r.URL.Path)
		assert.Equal(t, "BK-ref", r.Header.Get("Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(gatewayResponse{Success: true, PaymentRef: "pay_123"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	result, err := client.Authorize(context.Background(), AuthorizeRequest{
		Amount:         15000,
		OrderRef:       "BK-ref",
		OperatorID:     7,
		OperatorAmount: 13350,
		PlatformFee:    1650,
		CardToken:      "tok_visa",
	})

	require.NoError(t, err)
	assert.Equal(t, "pay_123", result.PaymentRef)
	assert.Equal(t, int64(13350), got.OperatorAmount)
	assert.Equal(t, int64(1650), got.PlatformFee)
	assert.NotEmpty(t, got.Token)
}

func TestAuthorizeDeclineMapping(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"card_declined", apperrors.DeclineGeneric},
		{"expired_card", apperrors.DeclineExpiredCard},
		{"incorrect_cvc", apperrors.DeclineBadCVC},
		{"insufficient_funds", apperrors.DeclineInsufficientFunds},
		{"weird_processor_code", apperrors.DeclineUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(gatewayResponse{Success: false, ErrorCode: tt.code})
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Authorize(context.Background(), AuthorizeRequest{
				Amount: 100, OrderRef: "x", CardToken: "tok",
			})

			declined, ok := apperrors.IsPaymentDeclined(err)
			require.True(t, ok, "expected a decline, got %v", err)
			assert.Equal(t, tt.want, declined.Reason)
		})
	}
}

func TestAuthorizeGatewayDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // transport error on every call

	_, err := newTestClient(srv.URL).Authorize(context.Background(), AuthorizeRequest{
		Amount: 100, OrderRef: "x", CardToken: "tok",
	})

	assert.True(t, apperrors.IsGatewayUnavailable(err))
}

func TestCaptureVoidRefundPaths(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	ctx := context.Background()

	require.NoError(t, client.Capture(ctx, "pay_1"))
	require.NoError(t, client.Void(ctx, "pay_2"))
	require.NoError(t, client.Refund(ctx, "pay_3"))

	assert.Equal(t, []string{
		"/api/v1/PaymentCapture/capture",
		"/api/v1/PaymentVoid/void",
		"/api/v1/PaymentRefund/refund",
	}, paths)
}

func TestTerminalOpErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(gatewayResponse{ErrorCode: "already_captured"})
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Capture(context.Background(), "pay_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already_captured")
}

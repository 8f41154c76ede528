package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sunbird/internal/models"
)

func TestPaymentWebhookCapture(t *testing.T) {
	client := NewTestClient(baseURL(t))
	operator := client.AsOperator(OperatorEmail, OperatorPassword)

	occurrenceID := setupOccurrence(t, operator, 8, 5000)
	email := uniqueEmail("webhook")

	booking, resp := client.CreateBooking(t, bookingRequest(occurrenceID, email))
	require.NotNil(t, booking, "create failed with status %d", resp.StatusCode)

	confirmResp := operator.BookingAction(t, "confirm", booking.Reference, "")
	require.Equal(t, http.StatusOK, confirmResp.StatusCode)

	webhookResp := client.SendPaymentNotification(t, models.PaymentNotificationPayload{
		OrderRef:  booking.Reference,
		Status:    "CAPTURED",
		Timestamp: time.Now().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusOK, webhookResp.StatusCode)

	detail, _ := client.GetBooking(t, booking.Reference)
	require.NotNil(t, detail)
	assert.Equal(t, models.PaymentCaptured, detail.Booking.PaymentStatus)
	assert.Equal(t, "paid", detail.Actions.Label)

	// Replay must be acknowledged without effect
	webhookResp = client.SendPaymentNotification(t, models.PaymentNotificationPayload{
		OrderRef:  booking.Reference,
		Status:    "CAPTURED",
		Timestamp: time.Now().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusOK, webhookResp.StatusCode)
}

func TestPaymentWebhookUnknownOrder(t *testing.T) {
	client := NewTestClient(baseURL(t))

	resp := client.SendPaymentNotification(t, models.PaymentNotificationPayload{
		OrderRef: "no-such-order",
		Status:   "CAPTURED",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOperatorCaptureEndpoint(t *testing.T) {
	client := NewTestClient(baseURL(t))
	operator := client.AsOperator(OperatorEmail, OperatorPassword)

	occurrenceID := setupOccurrence(t, operator, 8, 5000)
	email := uniqueEmail("capture")

	booking, resp := client.CreateBooking(t, bookingRequest(occurrenceID, email))
	require.NotNil(t, booking, "create failed with status %d", resp.StatusCode)

	// Capture before confirmation is rejected, no state change
	captureResp := operator.BookingAction(t, "capture", booking.Reference, "")
	assert.Equal(t, http.StatusConflict, captureResp.StatusCode)

	confirmResp := operator.BookingAction(t, "confirm", booking.Reference, "")
	require.Equal(t, http.StatusOK, confirmResp.StatusCode)

	captureResp = operator.BookingAction(t, "capture", booking.Reference, "")
	assert.Equal(t, http.StatusOK, captureResp.StatusCode)

	detail, _ := client.GetBooking(t, booking.Reference)
	require.NotNil(t, detail)
	assert.Equal(t, models.PaymentCaptured, detail.Booking.PaymentStatus)

	// Cancelling after capture refunds instead of voiding
	cancelResp := client.BookingAction(t, "cancel", booking.Reference, "refund please")
	assert.Equal(t, http.StatusOK, cancelResp.StatusCode)

	detail, _ = client.GetBooking(t, booking.Reference)
	require.NotNil(t, detail)
	assert.Equal(t, models.BookingCancelled, detail.Booking.Status)
	assert.Equal(t, models.PaymentRefunded, detail.Booking.PaymentStatus)
}

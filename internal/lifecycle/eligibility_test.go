package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sunbird/internal/models"
)

func TestActionsFor(t *testing.T) {
	tests := []struct {
		name          string
		status        string
		paymentStatus string
		want          models.BookingActions
	}{
		{
			name:          "pending without payment",
			status:        models.BookingPending,
			paymentStatus: models.PaymentNone,
			want: models.BookingActions{
				CanContactOperator: true,
				Label:              "awaiting_payment",
				Progress:           10,
			},
		},
		{
			name:          "pending awaiting operator",
			status:        models.BookingPending,
			paymentStatus: models.PaymentAuthorized,
			want: models.BookingActions{
				CanContactOperator: true,
				ShowPaymentInfo:    true,
				Label:              "awaiting_operator",
				Progress:           40,
			},
		},
		{
			name:          "confirmed before capture",
			status:        models.BookingConfirmed,
			paymentStatus: models.PaymentAuthorized,
			want: models.BookingActions{
				CanContactOperator: true,
				ShowPaymentInfo:    true,
				Label:              "confirmed",
				Progress:           60,
			},
		},
		{
			name:          "confirmed and paid",
			status:        models.BookingConfirmed,
			paymentStatus: models.PaymentCaptured,
			want: models.BookingActions{
				CanContactOperator: true,
				ShowPaymentInfo:    true,
				Label:              "paid",
				Progress:           80,
			},
		},
		{
			name:          "completed",
			status:        models.BookingCompleted,
			paymentStatus: models.PaymentCaptured,
			want: models.BookingActions{
				CanRebook:       true,
				ShowPaymentInfo: true,
				Label:           "completed",
				Progress:        100,
			},
		},
		{
			name:          "declined with refund",
			status:        models.BookingDeclined,
			paymentStatus: models.PaymentRefunded,
			want: models.BookingActions{
				CanRebook:       true,
				ShowPaymentInfo: true,
				ShowRefundInfo:  true,
				Label:           "declined",
				Progress:        100,
			},
		},
		{
			name:          "declined before payment",
			status:        models.BookingDeclined,
			paymentStatus: models.PaymentNone,
			want: models.BookingActions{
				CanRebook: true,
				Label:     "declined",
				Progress:  100,
			},
		},
		{
			name:          "cancelled with refund",
			status:        models.BookingCancelled,
			paymentStatus: models.PaymentRefunded,
			want: models.BookingActions{
				CanRebook:       true,
				ShowPaymentInfo: true,
				ShowRefundInfo:  true,
				Label:           "cancelled",
				Progress:        100,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActionsFor(tt.status, tt.paymentStatus))
		})
	}
}

func TestActionsForUnknownPairFallsBack(t *testing.T) {
	got := ActionsFor(models.BookingCompleted, models.PaymentRefunded)

	assert.Equal(t, "unknown", got.Label)
	assert.True(t, got.CanRebook, "terminal statuses still allow rebooking")
	assert.True(t, got.ShowRefundInfo)
	assert.False(t, got.CanContactOperator)
}

func TestRefundInfoOnlyAfterRefund(t *testing.T) {
	for pair, actions := range actionTable {
		if actions.ShowRefundInfo {
			assert.Equal(t, models.PaymentRefunded, pair.PaymentStatus,
				"refund details must never show for %s/%s", pair.Status, pair.PaymentStatus)
		}
	}
}

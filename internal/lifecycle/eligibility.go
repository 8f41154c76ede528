package lifecycle

import (
	"sunbird/internal/models"
)

// statePair keys the eligibility table. User-facing classification depends on
// the full pair: a PENDING booking with an authorized hold reads differently
// from one whose payment never went through.
type statePair struct {
	Status        string
	PaymentStatus string
}

// actionTable is the single source for user-facing action eligibility and
// status labels. Presentation layers look states up here instead of
// re-deriving their own branching.
var actionTable = map[statePair]models.BookingActions{
	{models.BookingPending, models.PaymentNone}: {
		CanContactOperator: true,
		Label:              "awaiting_payment",
		Progress:           10,
	},
	{models.BookingPending, models.PaymentAuthorized}: {
		CanContactOperator: true,
		ShowPaymentInfo:    true,
		Label:              "awaiting_operator",
		Progress:           40,
	},
	{models.BookingConfirmed, models.PaymentAuthorized}: {
		CanContactOperator: true,
		ShowPaymentInfo:    true,
		Label:              "confirmed",
		Progress:           60,
	},
	{models.BookingConfirmed, models.PaymentCaptured}: {
		CanContactOperator: true,
		ShowPaymentInfo:    true,
		Label:              "paid",
		Progress:           80,
	},
	{models.BookingCompleted, models.PaymentCaptured}: {
		CanRebook:       true,
		ShowPaymentInfo: true,
		Label:           "completed",
		Progress:        100,
	},
	{models.BookingDeclined, models.PaymentRefunded}: {
		CanRebook:       true,
		ShowPaymentInfo: true,
		ShowRefundInfo:  true,
		Label:           "declined",
		Progress:        100,
	},
	{models.BookingDeclined, models.PaymentNone}: {
		CanRebook: true,
		Label:     "declined",
		Progress:  100,
	},
	{models.BookingCancelled, models.PaymentRefunded}: {
		CanRebook:       true,
		ShowPaymentInfo: true,
		ShowRefundInfo:  true,
		Label:           "cancelled",
		Progress:        100,
	},
	{models.BookingCancelled, models.PaymentNone}: {
		CanRebook: true,
		Label:     "cancelled",
		Progress:  100,
	},
}

// ActionsFor returns the eligibility block for a state pair. Pairs outside the
// table cannot be produced by the machine; they fall back to the general rules
// so a corrupted row still renders something coherent.
func ActionsFor(status, paymentStatus string) models.BookingActions {
	if actions, ok := actionTable[statePair{status, paymentStatus}]; ok {
		return actions
	}

	return models.BookingActions{
		CanContactOperator: status == models.BookingPending || status == models.BookingConfirmed,
		CanRebook:          models.IsTerminalBookingStatus(status),
		ShowPaymentInfo:    paymentStatus != models.PaymentNone,
		ShowRefundInfo:     paymentStatus == models.PaymentRefunded,
		Label:              "unknown",
	}
}

package models

import "time"

// NATS Event Types
const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingDeclined  = "booking.declined"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
	EventPaymentCaptured  = "payment.captured"
	EventPaymentRefunded  = "payment.refunded"
)

// BookingCreatedEvent represents a booking creation event
type BookingCreatedEvent struct {
	BookingID     int64     `json:"booking_id"`
	Reference     string    `json:"reference"`
	OccurrenceID  int64     `json:"occurrence_id"`
	OperatorID    int64     `json:"operator_id"`
	TouristID     int64     `json:"tourist_id"`
	TouristEmail  string    `json:"tourist_email"`
	TotalAmount   int64     `json:"total_amount"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Timestamp     time.Time `json:"timestamp"`
}

// BookingStatusEvent represents any lifecycle transition of a booking
type BookingStatusEvent struct {
	BookingID     int64     `json:"booking_id"`
	Reference     string    `json:"reference"`
	OccurrenceID  int64     `json:"occurrence_id"`
	OperatorID    int64     `json:"operator_id"`
	TouristID     int64     `json:"tourist_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Reason        string    `json:"reason,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// PaymentCapturedEvent represents a captured marketplace payment
type PaymentCapturedEvent struct {
	BookingID      int64     `json:"booking_id"`
	Reference      string    `json:"reference"`
	PaymentRef     string    `json:"payment_ref"`
	TotalAmount    int64     `json:"total_amount"`
	OperatorAmount int64     `json:"operator_amount"`
	PlatformFee    int64     `json:"platform_fee"`
	Timestamp      time.Time `json:"timestamp"`
}

// PaymentRefundedEvent represents a voided hold or refunded capture
type PaymentRefundedEvent struct {
	BookingID  int64     `json:"booking_id"`
	Reference  string    `json:"reference"`
	PaymentRef string    `json:"payment_ref"`
	Amount     int64     `json:"amount"`
	Voided     bool      `json:"voided"`
	Timestamp  time.Time `json:"timestamp"`
}

package models

import (
	"time"
)

// Booking statuses
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingDeclined  = "DECLINED"
	BookingCompleted = "COMPLETED"
	BookingCancelled = "CANCELLED"
)

// Payment statuses
const (
	PaymentNone       = "NONE"
	PaymentAuthorized = "AUTHORIZED"
	PaymentCaptured   = "CAPTURED"
	PaymentRefunded   = "REFUNDED"
)

// IsTerminalBookingStatus reports whether no transition may leave the status.
func IsTerminalBookingStatus(status string) bool {
	switch status {
	case BookingCompleted, BookingDeclined, BookingCancelled:
		return true
	}
	return false
}

// Operator represents a tour operator fulfilling bookings
type Operator struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CommissionBP int64     `json:"commission_bp" db:"commission_bp"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Tourist represents a customer account, created lazily at booking time
type Tourist struct {
	ID        int64     `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Activity represents a bookable tour/experience template
type Activity struct {
	ID          int64     `json:"id" db:"id"`
	OperatorID  int64     `json:"operator_id" db:"operator_id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	Location    string    `json:"location" db:"location"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Occurrence is one bookable date/time instance of an activity.
// OperatorID is already resolved by the repository: standalone listings carry
// their own operator_id, template-generated instances inherit it from the
// parent activity.
type Occurrence struct {
	ID              int64     `json:"id" db:"id"`
	ActivityID      int64     `json:"activity_id" db:"activity_id"`
	OperatorID      int64     `json:"operator_id" db:"operator_id"`
	StartsAt        time.Time `json:"starts_at" db:"starts_at"`
	BookingDeadline time.Time `json:"booking_deadline" db:"booking_deadline"`
	AvailableSpots  int       `json:"available_spots" db:"available_spots"`
	PricePerAdult   int64     `json:"price_per_adult" db:"price_per_adult"`
	PricePerChild   int64     `json:"price_per_child" db:"price_per_child"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Booking represents one reservation request for one activity occurrence.
// Monetary fields are minor units of the base currency and immutable once the
// payment is authorized. CommissionBP, OperatorAmount and PlatformFee are
// frozen at authorization time and never recomputed.
type Booking struct {
	ID             int64      `json:"id" db:"id"`
	Reference      string     `json:"reference" db:"reference"`
	OccurrenceID   int64      `json:"occurrence_id" db:"occurrence_id"`
	OperatorID     int64      `json:"operator_id" db:"operator_id"`
	TouristID      int64      `json:"tourist_id" db:"tourist_id"`
	AdultCount     int        `json:"adult_count" db:"adult_count"`
	ChildCount     int        `json:"child_count" db:"child_count"`
	PricePerAdult  int64      `json:"price_per_adult" db:"price_per_adult"`
	PricePerChild  int64      `json:"price_per_child" db:"price_per_child"`
	TotalAmount    int64      `json:"total_amount" db:"total_amount"`
	CommissionBP   int64      `json:"commission_bp" db:"commission_bp"`
	OperatorAmount int64      `json:"operator_amount" db:"operator_amount"`
	PlatformFee    int64      `json:"platform_fee" db:"platform_fee"`
	PaymentRef     *string    `json:"payment_ref" db:"payment_ref"`
	Status         string     `json:"status" db:"status"`
	PaymentStatus  string     `json:"payment_status" db:"payment_status"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	ConfirmedAt    *time.Time `json:"confirmed_at" db:"confirmed_at"`
	DeclinedAt     *time.Time `json:"declined_at" db:"declined_at"`
	CapturedAt     *time.Time `json:"captured_at" db:"captured_at"`
	CancelledAt    *time.Time `json:"cancelled_at" db:"cancelled_at"`
	CompletedAt    *time.Time `json:"completed_at" db:"completed_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// PartySize returns the number of spots the booking occupies.
func (b *Booking) PartySize() int {
	return b.AdultCount + b.ChildCount
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"sunbird/internal/database"
	"sunbird/internal/models"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	id, reference, occurrence_id, operator_id, tourist_id,
	adult_count, child_count, price_per_adult, price_per_child,
	total_amount, commission_bp, operator_amount, platform_fee,
	payment_ref, status, payment_status,
	created_at, confirmed_at, declined_at, captured_at, cancelled_at, completed_at, updated_at`

func scanBooking(row interface {
	Scan(dest ...interface{}) error
}) (*models.Booking, error) {
	booking := &models.Booking{}
	err := row.Scan(
		&booking.ID,
		&booking.Reference,
		&booking.OccurrenceID,
		&booking.OperatorID,
		&booking.TouristID,
		&booking.AdultCount,
		&booking.ChildCount,
		&booking.PricePerAdult,
		&booking.PricePerChild,
		&booking.TotalAmount,
		&booking.CommissionBP,
		&booking.OperatorAmount,
		&booking.PlatformFee,
		&booking.PaymentRef,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.CreatedAt,
		&booking.ConfirmedAt,
		&booking.DeclinedAt,
		&booking.CapturedAt,
		&booking.CancelledAt,
		&booking.CompletedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (reference, occurrence_id, operator_id, tourist_id,
		                      adult_count, child_count, price_per_adult, price_per_child,
		                      total_amount, commission_bp, operator_amount, platform_fee,
		                      payment_ref, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		booking.Reference,
		booking.OccurrenceID,
		booking.OperatorID,
		booking.TouristID,
		booking.AdultCount,
		booking.ChildCount,
		booking.PricePerAdult,
		booking.PricePerChild,
		booking.TotalAmount,
		booking.CommissionBP,
		booking.OperatorAmount,
		booking.PlatformFee,
		booking.PaymentRef,
		booking.Status,
		booking.PaymentStatus,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	return err
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return booking, err
}

func (r *BookingRepository) GetByReference(ctx context.Context, reference string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = $1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, reference))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return booking, err
}

func (r *BookingRepository) GetByPaymentRef(ctx context.Context, paymentRef string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_ref = $1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, paymentRef))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return booking, err
}

func (r *BookingRepository) ListByTourist(ctx context.Context, touristID int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE tourist_id = $1
		ORDER BY created_at DESC`

	return r.queryBookings(ctx, query, touristID)
}

func (r *BookingRepository) ListByOperator(ctx context.Context, operatorID int64, status string) ([]models.Booking, error) {
	if status != "" {
		query := `SELECT ` + bookingColumns + `
			FROM bookings
			WHERE operator_id = $1 AND status = $2
			ORDER BY created_at DESC`
		return r.queryBookings(ctx, query, operatorID, status)
	}

	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE operator_id = $1
		ORDER BY created_at DESC`
	return r.queryBookings(ctx, query, operatorID)
}

// TransitionState writes the booking's state only while the row still holds
// the expected (status, payment_status) pair. A false return means another
// writer advanced the row first and the caller's state is stale.
func (r *BookingRepository) TransitionState(ctx context.Context, booking *models.Booking, fromStatus, fromPayment string) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $1, payment_status = $2,
		    confirmed_at = $3, declined_at = $4, captured_at = $5,
		    cancelled_at = $6, completed_at = $7, updated_at = NOW()
		WHERE id = $8 AND status = $9 AND payment_status = $10`

	result, err := r.db.ExecContext(ctx, query,
		booking.Status,
		booking.PaymentStatus,
		booking.ConfirmedAt,
		booking.DeclinedAt,
		booking.CapturedAt,
		booking.CancelledAt,
		booking.CompletedAt,
		booking.ID,
		fromStatus,
		fromPayment,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// GetCapturable returns confirmed bookings with an uncaptured hold whose
// occurrence starts within the capture window. The sweep job captures them.
func (r *BookingRepository) GetCapturable(ctx context.Context, window time.Duration, limit int) ([]models.Booking, error) {
	query := `SELECT ` + qualifiedBookingColumns("b") + `
		FROM bookings b
		JOIN occurrences o ON o.id = b.occurrence_id
		WHERE b.status = $1 AND b.payment_status = $2
		  AND o.starts_at <= NOW() + make_interval(secs => $3)
		ORDER BY o.starts_at
		LIMIT $4`

	return r.queryBookings(ctx, query, models.BookingConfirmed, models.PaymentAuthorized, window.Seconds(), limit)
}

// GetCompletable returns confirmed, captured bookings whose occurrence has
// already started. The sweep job settles them as completed.
func (r *BookingRepository) GetCompletable(ctx context.Context, limit int) ([]models.Booking, error) {
	query := `SELECT ` + qualifiedBookingColumns("b") + `
		FROM bookings b
		JOIN occurrences o ON o.id = b.occurrence_id
		WHERE b.status = $1 AND b.payment_status = $2
		  AND o.starts_at <= NOW()
		ORDER BY o.starts_at
		LIMIT $3`

	return r.queryBookings(ctx, query, models.BookingConfirmed, models.PaymentCaptured, limit)
}

func (r *BookingRepository) queryBookings(ctx context.Context, query string, args ...interface{}) ([]models.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}

func qualifiedBookingColumns(alias string) string {
	return alias + `.id, ` + alias + `.reference, ` + alias + `.occurrence_id, ` + alias + `.operator_id, ` + alias + `.tourist_id,
		` + alias + `.adult_count, ` + alias + `.child_count, ` + alias + `.price_per_adult, ` + alias + `.price_per_child,
		` + alias + `.total_amount, ` + alias + `.commission_bp, ` + alias + `.operator_amount, ` + alias + `.platform_fee,
		` + alias + `.payment_ref, ` + alias + `.status, ` + alias + `.payment_status,
		` + alias + `.created_at, ` + alias + `.confirmed_at, ` + alias + `.declined_at, ` + alias + `.captured_at, ` + alias + `.cancelled_at, ` + alias + `.completed_at, ` + alias + `.updated_at`
}

package repository

import (
	"context"
	"database/sql"

	"sunbird/internal/apperrors"
	"sunbird/internal/database"
	"sunbird/internal/models"
)

type OccurrenceRepository struct {
	db *database.DB
}

func NewOccurrenceRepository(db *database.DB) *OccurrenceRepository {
	return &OccurrenceRepository{db: db}
}

func (r *OccurrenceRepository) Create(ctx context.Context, occ *models.Occurrence, operatorID *int64) error {
	query := `
		INSERT INTO occurrences (activity_id, operator_id, starts_at, booking_deadline,
		                         available_spots, price_per_adult, price_per_child)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		occ.ActivityID,
		operatorID,
		occ.StartsAt,
		occ.BookingDeadline,
		occ.AvailableSpots,
		occ.PricePerAdult,
		occ.PricePerChild,
	).Scan(&occ.ID, &occ.CreatedAt, &occ.UpdatedAt)
}

// GetByID loads one occurrence with its operator already resolved: the
// occurrence's own operator_id wins, otherwise the parent activity's applies.
func (r *OccurrenceRepository) GetByID(ctx context.Context, id int64) (*models.Occurrence, error) {
	query := `
		SELECT o.id, o.activity_id, COALESCE(o.operator_id, a.operator_id),
		       o.starts_at, o.booking_deadline, o.available_spots,
		       o.price_per_adult, o.price_per_child, o.created_at, o.updated_at
		FROM occurrences o
		JOIN activities a ON a.id = o.activity_id
		WHERE o.id = $1`

	occ := &models.Occurrence{}
	var operatorID sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&occ.ID,
		&occ.ActivityID,
		&operatorID,
		&occ.StartsAt,
		&occ.BookingDeadline,
		&occ.AvailableSpots,
		&occ.PricePerAdult,
		&occ.PricePerChild,
		&occ.CreatedAt,
		&occ.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !operatorID.Valid {
		return nil, &apperrors.OperatorResolutionError{OccurrenceID: id}
	}
	occ.OperatorID = operatorID.Int64

	return occ, nil
}

func (r *OccurrenceRepository) ListByActivity(ctx context.Context, activityID int64) ([]models.Occurrence, error) {
	query := `
		SELECT o.id, o.activity_id, COALESCE(o.operator_id, a.operator_id),
		       o.starts_at, o.booking_deadline, o.available_spots,
		       o.price_per_adult, o.price_per_child, o.created_at, o.updated_at
		FROM occurrences o
		JOIN activities a ON a.id = o.activity_id
		WHERE o.activity_id = $1 AND o.starts_at > NOW()
		ORDER BY o.starts_at`

	rows, err := r.db.QueryContext(ctx, query, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var occurrences []models.Occurrence
	for rows.Next() {
		var occ models.Occurrence
		var operatorID sql.NullInt64
		err := rows.Scan(
			&occ.ID,
			&occ.ActivityID,
			&operatorID,
			&occ.StartsAt,
			&occ.BookingDeadline,
			&occ.AvailableSpots,
			&occ.PricePerAdult,
			&occ.PricePerChild,
			&occ.CreatedAt,
			&occ.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		occ.OperatorID = operatorID.Int64
		occurrences = append(occurrences, occ)
	}

	return occurrences, rows.Err()
}

// ReserveSpots takes count spots atomically. The condition keeps the counter
// from ever going negative under concurrent bookings; zero rows affected
// means not enough spots were left.
func (r *OccurrenceRepository) ReserveSpots(ctx context.Context, occurrenceID int64, count int) error {
	query := `
		UPDATE occurrences
		SET available_spots = available_spots - $2, updated_at = NOW()
		WHERE id = $1 AND available_spots >= $2`

	result, err := r.db.ExecContext(ctx, query, occurrenceID, count)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &apperrors.CapacityExceededError{OccurrenceID: occurrenceID, Requested: count}
	}
	return nil
}

// ReleaseSpots gives reserved spots back after a decline or cancellation.
func (r *OccurrenceRepository) ReleaseSpots(ctx context.Context, occurrenceID int64, count int) error {
	query := `
		UPDATE occurrences
		SET available_spots = available_spots + $2, updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, occurrenceID, count)
	return err
}

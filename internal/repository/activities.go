package repository

import (
	"context"
	"database/sql"

	"sunbird/internal/database"
	"sunbird/internal/models"
)

type ActivityRepository struct {
	db *database.DB
}

func NewActivityRepository(db *database.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	query := `
		INSERT INTO activities (operator_id, title, description, location)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		activity.OperatorID,
		activity.Title,
		activity.Description,
		activity.Location,
	).Scan(&activity.ID, &activity.CreatedAt, &activity.UpdatedAt)
}

func (r *ActivityRepository) GetByID(ctx context.Context, id int64) (*models.Activity, error) {
	activity := &models.Activity{}
	query := `
		SELECT id, operator_id, title, description, location, created_at, updated_at
		FROM activities
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&activity.ID,
		&activity.OperatorID,
		&activity.Title,
		&activity.Description,
		&activity.Location,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return activity, err
}

func (r *ActivityRepository) List(ctx context.Context, limit, offset int) ([]models.Activity, error) {
	query := `
		SELECT id, operator_id, title, description, location, created_at, updated_at
		FROM activities
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var activity models.Activity
		err := rows.Scan(
			&activity.ID,
			&activity.OperatorID,
			&activity.Title,
			&activity.Description,
			&activity.Location,
			&activity.CreatedAt,
			&activity.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}

	return activities, rows.Err()
}

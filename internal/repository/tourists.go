package repository

import (
	"context"
	"database/sql"

	"sunbird/internal/database"
	"sunbird/internal/models"
)

type TouristRepository struct {
	db *database.DB
}

func NewTouristRepository(db *database.DB) *TouristRepository {
	return &TouristRepository{db: db}
}

// ResolveOrCreate finds the tourist account by email or creates one on the
// spot. Bookings never require prior registration. The upsert keeps the most
// recent contact details.
func (r *TouristRepository) ResolveOrCreate(ctx context.Context, tourist *models.Tourist) error {
	query := `
		INSERT INTO tourists (first_name, last_name, email, phone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    phone = EXCLUDED.phone
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		tourist.FirstName,
		tourist.LastName,
		tourist.Email,
		tourist.Phone,
	).Scan(&tourist.ID, &tourist.CreatedAt)
}

func (r *TouristRepository) GetByID(ctx context.Context, id int64) (*models.Tourist, error) {
	tourist := &models.Tourist{}
	query := `
		SELECT id, first_name, last_name, email, phone, created_at
		FROM tourists
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tourist.ID,
		&tourist.FirstName,
		&tourist.LastName,
		&tourist.Email,
		&tourist.Phone,
		&tourist.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return tourist, err
}

func (r *TouristRepository) GetByEmail(ctx context.Context, email string) (*models.Tourist, error) {
	tourist := &models.Tourist{}
	query := `
		SELECT id, first_name, last_name, email, phone, created_at
		FROM tourists
		WHERE email = $1`

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&tourist.ID,
		&tourist.FirstName,
		&tourist.LastName,
		&tourist.Email,
		&tourist.Phone,
		&tourist.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return tourist, err
}

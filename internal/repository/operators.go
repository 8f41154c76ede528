package repository

import (
	"context"
	"database/sql"

	"sunbird/internal/database"
	"sunbird/internal/models"
)

type OperatorRepository struct {
	db *database.DB
}

func NewOperatorRepository(db *database.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

func (r *OperatorRepository) Create(ctx context.Context, operator *models.Operator) error {
	query := `
		INSERT INTO operators (name, email, password_hash, commission_bp, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		operator.Name,
		operator.Email,
		operator.PasswordHash,
		operator.CommissionBP,
		operator.IsActive,
	).Scan(&operator.ID, &operator.CreatedAt)
}

func (r *OperatorRepository) GetByID(ctx context.Context, id int64) (*models.Operator, error) {
	query := `
		SELECT id, name, email, password_hash, commission_bp, is_active, created_at
		FROM operators
		WHERE id = $1`

	return r.scanOperator(r.db.QueryRowContext(ctx, query, id))
}

func (r *OperatorRepository) GetByEmail(ctx context.Context, email string) (*models.Operator, error) {
	query := `
		SELECT id, name, email, password_hash, commission_bp, is_active, created_at
		FROM operators
		WHERE email = $1 AND is_active = TRUE`

	return r.scanOperator(r.db.QueryRowContext(ctx, query, email))
}

func (r *OperatorRepository) scanOperator(row *sql.Row) (*models.Operator, error) {
	operator := &models.Operator{}
	err := row.Scan(
		&operator.ID,
		&operator.Name,
		&operator.Email,
		&operator.PasswordHash,
		&operator.CommissionBP,
		&operator.IsActive,
		&operator.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return operator, nil
}

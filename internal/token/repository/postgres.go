package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/db"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/token/domain"
)

// PostgresRepository implements Repository using database/sql over pgx.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a token repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByCompany returns the token of companyID, or nil if the company has none.
func (r *PostgresRepository) GetByCompany(ctx context.Context, companyID int64) (*domain.AccessToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT company_id, secret, created_at FROM company_tokens WHERE company_id = $1`, companyID)
	return scanToken(row)
}

// GetBySecret returns the token with the given secret, or nil if none matches.
func (r *PostgresRepository) GetBySecret(ctx context.Context, secret string) (*domain.AccessToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT company_id, secret, created_at FROM company_tokens WHERE secret = $1`, secret)
	return scanToken(row)
}

// Create inserts the token. Both company_id and secret are unique; a violation of either yields ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.AccessToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO company_tokens (company_id, secret, created_at) VALUES ($1, $2, $3)`,
		t.CompanyID, t.Secret, t.CreatedAt.UTC())
	if db.IsUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func scanToken(row *sql.Row) (*domain.AccessToken, error) {
	var t domain.AccessToken
	if err := row.Scan(&t.CompanyID, &t.Secret, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

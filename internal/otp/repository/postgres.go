package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/otp/domain"
)

// PostgresRepository implements Repository using database/sql over pgx.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an OTP repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert writes the company's code in one statement so concurrent issuers never leave two live codes.
func (r *PostgresRepository) Upsert(ctx context.Context, c *domain.Credential) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO company_otps (company_id, code_hash, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (company_id) DO UPDATE SET code_hash = EXCLUDED.code_hash, created_at = EXCLUDED.created_at`,
		c.CompanyID, c.CodeHash, c.CreatedAt.UTC())
	return err
}

// GetByCompanyAndCode returns the credential for companyID holding codeHash, or nil if not found.
func (r *PostgresRepository) GetByCompanyAndCode(ctx context.Context, companyID int64, codeHash string) (*domain.Credential, error) {
	var c domain.Credential
	err := r.db.QueryRowContext(ctx,
		`SELECT company_id, code_hash, created_at FROM company_otps WHERE company_id = $1 AND code_hash = $2`,
		companyID, codeHash).Scan(&c.CompanyID, &c.CodeHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// Consume deletes the credential if it still holds codeHash.
func (r *PostgresRepository) Consume(ctx context.Context, companyID int64, codeHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM company_otps WHERE company_id = $1 AND code_hash = $2`, companyID, codeHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteExpired removes credentials created before cutoff.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM company_otps WHERE created_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

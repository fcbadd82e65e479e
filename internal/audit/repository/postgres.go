package repository

import (
	"context"
	"database/sql"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the audit log. The audit log must have ID set.
// A zero CompanyID and empty Metadata are stored as NULL.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	companyID := sql.NullInt64{Int64: a.CompanyID, Valid: a.CompanyID != 0}
	meta := sql.NullString{String: a.Metadata, Valid: a.Metadata != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, company_id, action, resource, ip, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, companyID, a.Action, a.Resource, a.IP, meta, a.CreatedAt.UTC())
	return err
}

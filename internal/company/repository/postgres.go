package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/company/domain"
)

const companyColumns = `id, name, stir, phone_number, status, region, district, created_at`

// PostgresRepository implements Repository using database/sql over pgx.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a company repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the company for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	return scanCompany(row)
}

// GetByStir returns the company with the given tax identifier, or nil if not found.
func (r *PostgresRepository) GetByStir(ctx context.Context, stir string) (*domain.Company, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE stir = $1`, stir)
	return scanCompany(row)
}

// GetByPhone returns the company whose phone exactly matches phone, or nil if not found.
// When several companies share a phone the lowest id wins.
func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*domain.Company, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE phone_number = $1 ORDER BY id LIMIT 1`, phone)
	return scanCompany(row)
}

// ListRequests returns the company's requests, newest first.
func (r *PostgresRepository) ListRequests(ctx context.Context, companyID int64) ([]*domain.Request, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, company_id, priority, description, long, lat, status, created_at
		 FROM requests WHERE company_id = $1 ORDER BY id DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Request{}
	for rows.Next() {
		var (
			req       domain.Request
			long, lat sql.NullFloat64
			status    string
		)
		if err := rows.Scan(&req.ID, &req.CompanyID, &req.Priority, &req.Description, &long, &lat, &status, &req.CreatedAt); err != nil {
			return nil, err
		}
		if long.Valid {
			req.Long = &long.Float64
		}
		if lat.Valid {
			req.Lat = &lat.Float64
		}
		req.Status = domain.RequestStatus(status)
		out = append(out, &req)
	}
	return out, rows.Err()
}

func scanCompany(row *sql.Row) (*domain.Company, error) {
	var (
		c     domain.Company
		phone sql.NullString
	)
	err := row.Scan(&c.ID, &c.Name, &c.Stir, &phone, &c.Status, &c.Region, &c.District, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if phone.Valid {
		c.Phone = phone.String
	}
	return &c, nil
}

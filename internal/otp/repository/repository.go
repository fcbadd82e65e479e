package repository

import (
	"context"
	"time"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/otp/domain"
)

// Repository defines persistence for company one-time codes. Each company has at most one row.
type Repository interface {
	// Upsert atomically replaces the company's code, or inserts it if none exists.
	Upsert(ctx context.Context, c *domain.Credential) error
	// GetByCompanyAndCode returns the credential matching both companyID and codeHash, or nil if none.
	GetByCompanyAndCode(ctx context.Context, companyID int64, codeHash string) (*domain.Credential, error)
	// Consume deletes the credential only if it still holds codeHash. Returns false when nothing was deleted
	// (already consumed or superseded).
	Consume(ctx context.Context, companyID int64, codeHash string) (bool, error)
	// DeleteExpired removes credentials created before cutoff and returns how many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

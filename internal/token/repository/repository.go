package repository

import (
	"context"
	"errors"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/token/domain"
)

// ErrConflict is returned by Create when the company already has a token or the secret is taken.
var ErrConflict = errors.New("token already exists")

// Repository defines persistence for company access tokens.
type Repository interface {
	GetByCompany(ctx context.Context, companyID int64) (*domain.AccessToken, error)
	GetBySecret(ctx context.Context, secret string) (*domain.AccessToken, error)
	// Create inserts t. Returns ErrConflict on a unique constraint violation.
	Create(ctx context.Context, t *domain.AccessToken) error
}

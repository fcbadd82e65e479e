package repository

import (
	"context"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/company/domain"
)

// Repository defines read access to companies and their requests.
// Companies are created and mutated by administrative tooling outside this service.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
	GetByStir(ctx context.Context, stir string) (*domain.Company, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Company, error)
	ListRequests(ctx context.Context, companyID int64) ([]*domain.Request, error)
}

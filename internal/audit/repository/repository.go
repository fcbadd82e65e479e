package repository

import (
	"context"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
}

package identity

import (
	"context"

	companydomain "github.com/abdul-rozzaq/StaffFlow-backend/internal/company/domain"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/security"
)

type contextKey struct{ name string }

var (
	companyKey = contextKey{"company"}
	staffKey   = contextKey{"staff"}
)

// WithCompany returns a context carrying the resolved company. A nil company leaves ctx unchanged.
func WithCompany(ctx context.Context, c *companydomain.Company) context.Context {
	if c == nil {
		return ctx
	}
	return context.WithValue(ctx, companyKey, c)
}

// CompanyFrom returns the resolved company and true if one was bound; otherwise nil, false.
func CompanyFrom(ctx context.Context) (*companydomain.Company, bool) {
	c, ok := ctx.Value(companyKey).(*companydomain.Company)
	return c, ok && c != nil
}

// WithStaff returns a context carrying the resolved staff principal.
func WithStaff(ctx context.Context, p security.StaffPrincipal) context.Context {
	return context.WithValue(ctx, staffKey, p)
}

// StaffFrom returns the resolved staff principal and true if one was bound.
func StaffFrom(ctx context.Context) (security.StaffPrincipal, bool) {
	p, ok := ctx.Value(staffKey).(security.StaffPrincipal)
	return p, ok
}

// Package identity resolves the bearer credential of an inbound request into a company or staff identity
// and carries it on the request context.
package identity

import (
	"context"
	"log/slog"
	"strings"

	companydomain "github.com/abdul-rozzaq/StaffFlow-backend/internal/company/domain"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/logging"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/security"
	tokendomain "github.com/abdul-rozzaq/StaffFlow-backend/internal/token/domain"
)

// TokenLookup finds a company access token by its secret.
type TokenLookup interface {
	GetBySecret(ctx context.Context, secret string) (*tokendomain.AccessToken, error)
}

// CompanyLookup loads a company by ID.
type CompanyLookup interface {
	GetByID(ctx context.Context, id int64) (*companydomain.Company, error)
}

// StaffVerifier validates a staff access token.
type StaffVerifier interface {
	Verify(token string) (security.StaffPrincipal, error)
}

// Resolver turns an Authorization value into request-scoped identities. It only reads stored state.
// Every failure resolves to "no identity"; rejecting the request is left to authorization predicates.
type Resolver struct {
	tokens    TokenLookup
	companies CompanyLookup
	staff     StaffVerifier
	log       *slog.Logger
}

// NewResolver returns a Resolver for company tokens. log may be nil.
func NewResolver(tokens TokenLookup, companies CompanyLookup, log *slog.Logger) *Resolver {
	return &Resolver{tokens: tokens, companies: companies, log: logging.OrDiscard(log)}
}

// SetStaffVerifier enables staff identity resolution on the same header. nil disables it.
func (r *Resolver) SetStaffVerifier(v StaffVerifier) { r.staff = v }

// Credential returns the second whitespace-separated field of an Authorization value.
// The first field (the scheme) is ignored; fewer than two fields yields "", false.
func Credential(header string) (string, bool) {
	fields := strings.Fields(header)
	if len(fields) < 2 {
		return "", false
	}
	return fields[1], true
}

// ResolveCompany returns the company owning the token in header, or nil.
func (r *Resolver) ResolveCompany(ctx context.Context, header string) *companydomain.Company {
	secret, ok := Credential(header)
	if !ok || !security.IsSecretShape(secret) || r.tokens == nil {
		return nil
	}
	tok, err := r.tokens.GetBySecret(ctx, secret)
	if err != nil {
		r.log.WarnContext(ctx, "identity: token lookup failed", "error", err)
		return nil
	}
	if tok == nil || r.companies == nil {
		return nil
	}
	company, err := r.companies.GetByID(ctx, tok.CompanyID)
	if err != nil {
		r.log.WarnContext(ctx, "identity: company lookup failed", "company_id", tok.CompanyID, "error", err)
		return nil
	}
	return company
}

// ResolveStaff returns the staff principal of a valid staff access token in header.
func (r *Resolver) ResolveStaff(header string) (security.StaffPrincipal, bool) {
	if r.staff == nil {
		return security.StaffPrincipal{}, false
	}
	token, ok := Credential(header)
	if !ok {
		return security.StaffPrincipal{}, false
	}
	p, err := r.staff.Verify(token)
	if err != nil {
		return security.StaffPrincipal{}, false
	}
	return p, true
}

// Bind resolves header and returns ctx carrying whichever identities matched.
func (r *Resolver) Bind(ctx context.Context, header string) context.Context {
	if r == nil || strings.TrimSpace(header) == "" {
		return ctx
	}
	if c := r.ResolveCompany(ctx, header); c != nil {
		return WithCompany(ctx, c)
	}
	if p, ok := r.ResolveStaff(header); ok {
		return WithStaff(ctx, p)
	}
	return ctx
}

// Package authz provides the authorization predicates evaluated against a request's resolved identities.
package authz

import (
	"context"
	"net/http"

	companydomain "github.com/abdul-rozzaq/StaffFlow-backend/internal/company/domain"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/identity"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/security"
)

// Request is what a predicate sees: the method and whatever identities were resolved.
type Request struct {
	Method  string
	Company *companydomain.Company
	Staff   *security.StaffPrincipal
}

// FromContext builds a Request from the identities bound on ctx.
func FromContext(ctx context.Context, method string) Request {
	r := Request{Method: method}
	if c, ok := identity.CompanyFrom(ctx); ok {
		r.Company = c
	}
	if p, ok := identity.StaffFrom(ctx); ok {
		r.Staff = &p
	}
	return r
}

// Predicate reports whether r may proceed.
type Predicate func(r Request) bool

// CompanyAuthenticated allows requests with a resolved company.
func CompanyAuthenticated(r Request) bool {
	return r.Company != nil
}

// StaffAuthenticated allows requests with a resolved staff member.
func StaffAuthenticated(r Request) bool {
	return r.Staff != nil
}

// EitherAuthenticated allows requests with a resolved company or staff member.
func EitherAuthenticated(r Request) bool {
	return CompanyAuthenticated(r) || StaffAuthenticated(r)
}

// StaffWriteElseReadOnly allows safe methods to anyone and mutating methods to privileged staff only.
func StaffWriteElseReadOnly(r Request) bool {
	if IsSafeMethod(r.Method) {
		return true
	}
	return r.Staff != nil && r.Staff.Privileged
}

// IsSafeMethod reports whether method is GET, HEAD or OPTIONS.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// All is the conjunction of preds. With no predicates it allows everything.
func All(preds ...Predicate) Predicate {
	return func(r Request) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// Any is the disjunction of preds. With no predicates it denies everything.
func Any(preds ...Predicate) Predicate {
	return func(r Request) bool {
		for _, p := range preds {
			if p(r) {
				return true
			}
		}
		return false
	}
}

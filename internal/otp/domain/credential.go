package domain

import "time"

// DefaultTTL is how long an issued code stays valid.
const DefaultTTL = 5 * time.Minute

// Credential is the single live one-time code of a company (stored in company_otps).
// Only the SHA-256 hash of the code is persisted.
type Credential struct {
	CompanyID int64
	CodeHash  string
	CreatedAt time.Time
}

// ExpiresAt returns the last instant at which the code is still accepted.
func (c *Credential) ExpiresAt(ttl time.Duration) time.Time {
	return c.CreatedAt.Add(ttl)
}

// Expired reports whether now is strictly after CreatedAt+ttl.
func (c *Credential) Expired(now time.Time, ttl time.Duration) bool {
	return now.After(c.ExpiresAt(ttl))
}

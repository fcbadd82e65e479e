package domain

import "time"

// SecretLength is the length of a token secret: 32 random bytes, hex-encoded.
const SecretLength = 64

// AccessToken is the long-lived opaque credential of a company. One per company, never rotated.
type AccessToken struct {
	CompanyID int64
	Secret    string
	CreatedAt time.Time
}

package security

import (
	"crypto/rand"
	"encoding/hex"
)

const secretBytes = 32

// GenerateSecret returns 256 bits from crypto/rand as a 64-character lowercase hex string.
func GenerateSecret() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// IsSecretShape reports whether s has the shape of a token secret (64 lowercase hex chars).
// Used to skip a store lookup for values that can never match.
func IsSecretShape(s string) bool {
	if len(s) != 2*secretBytes {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

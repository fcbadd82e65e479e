package security

import (
	"crypto"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token is malformed or invalid.
var ErrInvalidToken = errors.New("invalid token")

// StaffClaims holds JWT claims of a staff access token issued by the staff auth service.
type StaffClaims struct {
	jwt.RegisteredClaims
	IsStaff bool `json:"is_staff"`
}

// StaffPrincipal is the verified subject of a staff access token.
type StaffPrincipal struct {
	ID         string
	Privileged bool
}

// StaffVerifier validates staff access JWTs against a public key. The algorithm is pinned to the key type.
type StaffVerifier struct {
	publicKey crypto.PublicKey
	issuer    string
	audience  string
}

// NewStaffVerifier returns a verifier for tokens signed by the key matching publicKey.
func NewStaffVerifier(publicKey crypto.PublicKey, issuer, audience string) *StaffVerifier {
	return &StaffVerifier{publicKey: publicKey, issuer: issuer, audience: audience}
}

// Verify parses and validates the token (signature, exp, iss, aud) and returns its principal.
func (v *StaffVerifier) Verify(tokenString string) (StaffPrincipal, error) {
	method := SigningMethod(v.publicKey)
	if method == nil {
		return StaffPrincipal{}, ErrInvalidToken
	}
	keyFunc := func(*jwt.Token) (any, error) { return v.publicKey, nil }
	token, err := jwt.ParseWithClaims(tokenString, &StaffClaims{}, keyFunc,
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
	)
	if err != nil {
		return StaffPrincipal{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(*StaffClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return StaffPrincipal{}, ErrInvalidToken
	}
	return StaffPrincipal{ID: claims.Subject, Privileged: claims.IsStaff}, nil
}

// StaffSigner mints staff access tokens. The staff auth service owns issuance in production;
// this is used by cmd/seed for local development tokens and by tests.
type StaffSigner struct {
	privateKey crypto.Signer
	issuer     string
	audience   string
	ttl        time.Duration
}

// NewStaffSigner returns a signer using privateKey. The key type picks the algorithm (see SigningMethod).
func NewStaffSigner(privateKey crypto.Signer, issuer, audience string, ttl time.Duration) *StaffSigner {
	return &StaffSigner{privateKey: privateKey, issuer: issuer, audience: audience, ttl: ttl}
}

// Issue returns a signed token for staff member id.
func (s *StaffSigner) Issue(id string, privileged bool) (string, error) {
	method := SigningMethod(s.privateKey.Public())
	if method == nil {
		return "", ErrInvalidKey
	}
	jti, err := generateJTI()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	claims := StaffClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   id,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		IsStaff: privileged,
	}
	return jwt.NewWithClaims(method, claims).SignedString(s.privateKey)
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

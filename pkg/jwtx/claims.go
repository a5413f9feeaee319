// Package jwtx provides HMAC-signed JWT issuance and verification with an
// explicit access/refresh token-type separation. Both token kinds share one
// secret and one encoding, so the type tag in the claims is the only thing
// stopping a refresh token being replayed where an access token is expected.
package jwtx

import (
	"crypto/rand"
	"encoding/hex"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Access tokens are short-lived to limit the blast
// radius of a leak; refresh tokens trade longevity for user convenience.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenType tags a token as access or refresh.
type TokenType string

const (
	TypeAccess  TokenType = "access"
	TypeRefresh TokenType = "refresh"
)

// Extra is the bounded set of custom claims a caller may embed in an access
// token. It is deliberately a struct, not an open map, so sensitive fields
// cannot leak into a signed-but-unencrypted token by accident.
type Extra struct {
	// TenantID scopes the subject to a tenant of the platform.
	TenantID string `json:"tenant_id,omitempty"`

	// Role is the subject's role within the tenant ("admin", "instructor",
	// "student", ...). Authorization middleware branches on it.
	Role string `json:"role,omitempty"`
}

// Claims are the signed token payload used across the platform.
type Claims struct {
	jwt.RegisteredClaims

	TokenType TokenType `json:"type"`

	Extra
}

// NewClaims builds claims for the given subject and token type.
func NewClaims(
	subject string,
	typ TokenType,
	extra Extra,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: typ,
		Extra:     extra,
	}
}

// NewJTI returns a random hex identifier for the "jti" claim. Refresh tokens
// carry one so a revocation list can blacklist them individually.
func NewJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// ValidateIssuer checks the issuer matches the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateType checks the token-type tag. An access token presented where a
// refresh token is expected (or vice versa) must fail here, not at the
// signature check, so callers can report the mismatch precisely.
func (c *Claims) ValidateType(expected TokenType) error {
	if c.TokenType != expected {
		return ErrTypeMismatch
	}
	return nil
}

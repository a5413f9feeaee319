package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrAlgMismatch  = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrTypeMismatch = errors.New("jwtx: token type mismatch")
)

// HS256 signs and verifies tokens with a single shared HMAC secret.
// Signing is deterministic given the secret; no server-side state is touched
// on either path, so validity is fully determined by signature, expiry and
// issuer/audience match.
type HS256 struct {
	secret   []byte
	issuer   string
	audience []string

	// Leeway allows small clock skew when validating exp/nbf.
	Leeway time.Duration
}

// NewHS256 builds a signer/verifier bound to a secret, issuer and audience.
func NewHS256(secret []byte, issuer string, audience []string) *HS256 {
	return &HS256{secret: secret, issuer: issuer, audience: audience}
}

// Sign produces a compact serialized token for the given claims.
func (h *HS256) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify parses and validates a token, returning the claims on success.
//
// Failure modes are distinguishable by the caller: ErrExpired means the
// token was once valid and the holder should refresh, every signature or
// claim mismatch means the token was never trustworthy and the holder must
// re-authenticate.
func (h *HS256) Verify(raw string) (Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAlgMismatch
		}
		return h.secret, nil
	}, jwt.WithLeeway(h.Leeway))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return Claims{}, ErrNotYetValid
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		case errors.Is(err, ErrAlgMismatch):
			return Claims{}, ErrAlgMismatch
		default:
			return Claims{}, ErrInvalidSig
		}
	}
	if !token.Valid {
		return Claims{}, ErrInvalidSig
	}

	if err := claims.ValidateIssuer(h.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(h.audience); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

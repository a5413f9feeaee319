// Package cryptox provides random opaque tokens and their fingerprints for
// out-of-band flows (password reset, email verification) that are not JWTs.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DefaultTokenSize is the byte length used for opaque tokens when the caller
// has no reason to pick another; 32 bytes gives 256 bits of entropy.
const DefaultTokenSize = 32

// GenerateToken creates a cryptographically secure random token of the given
// byte length, hex-encoded. Returns an error if the random source fails.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// MustGenerateToken is like GenerateToken but panics on error. Use only
// where failure is unrecoverable.
func MustGenerateToken(size int) string {
	token, err := GenerateToken(size)
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to generate token: %v", err))
	}
	return token
}

// FingerprintToken returns the deterministic SHA-256 fingerprint of a token,
// hex-encoded. Callers persist only the fingerprint, never the raw token, so
// a database read cannot be used to impersonate a pending flow.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

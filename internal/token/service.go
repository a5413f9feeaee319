// Package token implements the platform's token service: stateless issuance
// and verification of access/refresh JWT pairs, opaque one-off tokens for
// out-of-band flows, and refresh-token revocation.
package token

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tutora/platform/pkg/cryptox"
	"github.com/tutora/platform/pkg/jwtx"
)

var (
	// ErrRevoked marks a refresh token whose jti is on the revocation list.
	ErrRevoked = errors.New("token: refresh token revoked")
)

// Config holds the process-wide signing configuration, loaded once from the
// environment by the application composer.
type Config struct {
	Secret     string
	Issuer     string
	Audience   []string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Production tightens the secret policy: known-weak secrets are fatal
	// instead of warnings.
	Production bool
}

// Pair is the result of issuing both token kinds at once.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

// Service issues and verifies tokens. Issuance and verification are
// synchronous and side-effect-free apart from the optional revocation list.
type Service struct {
	cfg     Config
	logger  *slog.Logger
	revoked RevocationList
	now     func() time.Time
}

// NewService builds a token service. revoked may be nil, in which case
// refresh tokens cannot be individually revoked and logout is a client-side
// operation only.
func NewService(cfg Config, logger *slog.Logger, revoked RevocationList) *Service {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = jwtx.DefaultAccessTokenTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = jwtx.DefaultRefreshTokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cfg: cfg, logger: logger, revoked: revoked, now: time.Now}
}

// SetClock replaces the service's time source for deterministic expiry tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// IssueAccessToken signs a short-lived access token for the subject with the
// bounded extra claim set.
func (s *Service) IssueAccessToken(subjectID string, extra jwtx.Extra) (string, error) {
	signer, err := s.signer()
	if err != nil {
		return "", err
	}

	claims := jwtx.NewClaims(
		subjectID, jwtx.TypeAccess, extra,
		s.cfg.AccessTTL, s.cfg.Issuer, s.cfg.Audience, s.now(),
	)
	return signer.Sign(claims)
}

// IssueRefreshToken signs a long-lived refresh token. The jti claim lets the
// revocation list blacklist this token individually.
func (s *Service) IssueRefreshToken(subjectID string) (string, error) {
	signer, err := s.signer()
	if err != nil {
		return "", err
	}

	claims := jwtx.NewClaims(
		subjectID, jwtx.TypeRefresh, jwtx.Extra{},
		s.cfg.RefreshTTL, s.cfg.Issuer, s.cfg.Audience, s.now(),
	)
	claims.ID = jwtx.NewJTI()
	return signer.Sign(claims)
}

// IssuePair issues an access and refresh token together. The two tokens are
// independent; the pair is a convenience, not a cross-validated unit.
func (s *Service) IssuePair(subjectID string, extra jwtx.Extra) (*Pair, error) {
	access, err := s.IssueAccessToken(subjectID, extra)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefreshToken(subjectID)
	if err != nil {
		return nil, err
	}
	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.AccessTTL.Seconds()),
	}, nil
}

// Verify validates signature, expiry, issuer/audience and the token-type
// tag, and for refresh tokens consults the revocation list. Callers branch
// on the sentinel errors: jwtx.ErrExpired means "refresh me", anything else
// means "re-authenticate".
func (s *Service) Verify(raw string, expected jwtx.TokenType) (jwtx.Claims, error) {
	signer, err := s.signer()
	if err != nil {
		return jwtx.Claims{}, err
	}

	claims, err := signer.Verify(raw)
	if err != nil {
		return jwtx.Claims{}, err
	}

	if err := claims.ValidateType(expected); err != nil {
		return jwtx.Claims{}, err
	}

	if expected == jwtx.TypeRefresh && s.revoked != nil && claims.ID != "" {
		if s.revoked.IsRevoked(claims.ID) {
			return jwtx.Claims{}, ErrRevoked
		}
	}

	return claims, nil
}

// Revoke blacklists a refresh token by jti until its natural expiry.
func (s *Service) Revoke(claims jwtx.Claims) error {
	if s.revoked == nil {
		return fmt.Errorf("token: no revocation list configured")
	}
	if claims.ID == "" {
		return fmt.Errorf("token: claims carry no jti")
	}
	expiry := s.now().Add(s.cfg.RefreshTTL)
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}
	s.revoked.Revoke(claims.ID, expiry)
	return nil
}

// GenerateOpaqueToken produces a random hex token for out-of-band flows
// such as password reset. These are not JWTs and carry no claims.
func (s *Service) GenerateOpaqueToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = cryptox.DefaultTokenSize
	}
	return cryptox.GenerateToken(byteLength)
}

// HashOpaqueToken returns the one-way digest persisted in place of the raw
// token.
func (s *Service) HashOpaqueToken(token string) string {
	return cryptox.FingerprintToken(token)
}

// signer validates the secret policy and returns the HS256 signer. Policy
// runs on every call, not once at boot, so a secret rotated or broken
// mid-process is caught on first use rather than silently trusted.
func (s *Service) signer() (*jwtx.HS256, error) {
	if err := s.validateSecret(); err != nil {
		return nil, err
	}
	return jwtx.NewHS256([]byte(s.cfg.Secret), s.cfg.Issuer, s.cfg.Audience), nil
}

package token

import (
	"errors"
	"strings"
)

var (
	// ErrNoSigningSecret means the service cannot issue or verify anything;
	// an application must not start issuing unsigned trust.
	ErrNoSigningSecret = errors.New("token: no signing secret configured")

	// ErrWeakSigningSecret means the configured secret is on the known-weak
	// deny list. Fatal in production, a warning otherwise.
	ErrWeakSigningSecret = errors.New("token: signing secret is a known weak value")
)

// minSecretLength is advisory only; shorter secrets warn but never block.
const minSecretLength = 32

// weakSecrets is the deny list of values that show up in tutorials and
// default configs. Matched case-insensitively.
var weakSecrets = []string{
	"secret",
	"password",
	"changeme",
	"jwt-secret",
	"jwt_secret",
	"your-secret-key",
	"supersecret",
	"12345678",
}

// validateSecret enforces the signing-secret policy.
//
//  1. Missing secret: hard failure, unconditionally.
//  2. Shorter than minSecretLength: logged warning only.
//  3. On the weak deny list: hard failure in production, warning otherwise.
func (s *Service) validateSecret() error {
	secret := s.cfg.Secret
	if secret == "" {
		return ErrNoSigningSecret
	}

	if len(secret) < minSecretLength {
		s.logger.Warn("signing secret is shorter than recommended",
			"length", len(secret),
			"recommended", minSecretLength,
		)
	}

	lowered := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if lowered == weak {
			if s.cfg.Production {
				return ErrWeakSigningSecret
			}
			s.logger.Warn("signing secret is a known weak value; refusing to start with this in production")
			break
		}
	}

	return nil
}

package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tutora/platform/internal/token"
	"github.com/tutora/platform/pkg/errx"
	"github.com/tutora/platform/pkg/httpx"
	"github.com/tutora/platform/pkg/jwtx"
	"github.com/tutora/platform/pkg/slogx"
)

// AuthnMiddleware verifies the Bearer access token and injects the claims
// into the request context for downstream handlers.
func AuthnMiddleware(tokens *token.Service) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				httpx.WriteError(w, r, errx.Unauthorized("missing bearer token"))
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := tokens.Verify(raw, jwtx.TypeAccess)
			if err != nil {
				slogx.FromContext(r.Context()).Warn("access token rejected", "err", err)
				httpx.WriteError(w, r, authError(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claims)))
		})
	}
}

// authError maps token verification failures to taxonomy errors. Expiry gets
// its own message so clients can branch on "expired, please refresh" versus
// "invalid, re-authenticate".
func authError(err error) *errx.Error {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return errx.Unauthorized("token expired")
	case errors.Is(err, jwtx.ErrTypeMismatch):
		return errx.Unauthorized("wrong token type")
	case errors.Is(err, token.ErrRevoked):
		return errx.Unauthorized("token revoked")
	case errors.Is(err, token.ErrNoSigningSecret), errors.Is(err, token.ErrWeakSigningSecret):
		return errx.Internal("token service misconfigured").WithCause(err)
	default:
		return errx.Unauthorized("invalid token")
	}
}

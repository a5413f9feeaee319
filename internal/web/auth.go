package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tutora/platform/internal/token"
	"github.com/tutora/platform/pkg/errx"
	"github.com/tutora/platform/pkg/httpx"
	"github.com/tutora/platform/pkg/jwtx"
	"github.com/tutora/platform/pkg/slogx"
)

// SubjectResolver resolves the bounded extra claims for a subject. It is
// implemented by the user store, which is a collaborator of this core;
// refresh tokens deliberately carry no tenant/role claims, so they must be
// looked up fresh on every rotation.
type SubjectResolver interface {
	ResolveExtra(ctx context.Context, subjectID string) (jwtx.Extra, error)
}

// AuthHandler serves the token-lifecycle endpoints. Login itself lives with
// the user-facing auth routes (a collaborator of this core); these endpoints
// cover everything that only needs the token service.
type AuthHandler struct {
	Tokens *token.Service

	// Resolver may be nil, in which case rotated access tokens carry no
	// extra claims.
	Resolver SubjectResolver
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// HandleRefresh exchanges a valid refresh token for a fresh pair. The spent
// refresh token's jti is revoked so each refresh token is single-use.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) error {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return errx.Validation("request body is not valid JSON").WithCause(err)
	}
	if req.RefreshToken == "" {
		return errx.Validation("refresh_token is required")
	}

	claims, err := h.Tokens.Verify(req.RefreshToken, jwtx.TypeRefresh)
	if err != nil {
		return authError(err)
	}

	if err := h.Tokens.Revoke(claims); err != nil {
		slogx.FromContext(r.Context()).Warn("failed to revoke spent refresh token", "err", err)
	}

	var extra jwtx.Extra
	if h.Resolver != nil {
		extra, err = h.Resolver.ResolveExtra(r.Context(), claims.Subject)
		if err != nil {
			return errx.Internal("failed to resolve subject claims").WithCause(err)
		}
	}

	pair, err := h.Tokens.IssuePair(claims.Subject, extra)
	if err != nil {
		return errx.Internal("failed to issue tokens").WithCause(err)
	}

	httpx.WriteSuccess(w, http.StatusOK, pair, "token refreshed")
	return nil
}

// HandleLogout revokes the presented refresh token. An already-expired token
// is treated as success; there is nothing left to revoke.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) error {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return errx.Validation("request body is not valid JSON").WithCause(err)
	}
	if req.RefreshToken == "" {
		return errx.Validation("refresh_token is required")
	}

	claims, err := h.Tokens.Verify(req.RefreshToken, jwtx.TypeRefresh)
	if err != nil {
		httpx.WriteSuccess(w, http.StatusOK, nil, "logged out")
		return nil
	}

	if err := h.Tokens.Revoke(claims); err != nil {
		return errx.Internal("failed to revoke token").WithCause(err)
	}

	httpx.WriteSuccess(w, http.StatusOK, nil, "logged out")
	return nil
}

// HandleMe returns the verified claims of the calling access token.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) error {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		return errx.Unauthorized("not authenticated")
	}

	httpx.WriteSuccess(w, http.StatusOK, map[string]any{
		"subject_id": claims.Subject,
		"tenant_id":  claims.TenantID,
		"role":       claims.Role,
		"expires_at": claims.ExpiresAt,
	}, "")
	return nil
}

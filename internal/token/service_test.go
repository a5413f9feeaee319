package token_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tutora/platform/internal/token"
	"github.com/tutora/platform/pkg/jwtx"
)

const testSecret = "a-perfectly-reasonable-32-char-secret"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, mutate func(*token.Config)) *token.Service {
	t.Helper()
	cfg := token.Config{
		Secret:     testSecret,
		Issuer:     "tutora-platform",
		Audience:   []string{"tutora-clients"},
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return token.NewService(cfg, quietLogger(), token.NewMemoryRevocationList())
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	svc := newTestService(t, nil)

	t.Run("access token", func(t *testing.T) {
		signed, err := svc.IssueAccessToken("user-1", jwtx.Extra{TenantID: "t-1", Role: "student"})
		require.NoError(t, err)

		claims, err := svc.Verify(signed, jwtx.TypeAccess)
		require.NoError(t, err)
		require.Equal(t, "user-1", claims.Subject)
		require.Equal(t, jwtx.TypeAccess, claims.TokenType)
		require.Equal(t, "t-1", claims.TenantID)
	})

	t.Run("refresh token", func(t *testing.T) {
		signed, err := svc.IssueRefreshToken("user-1")
		require.NoError(t, err)

		claims, err := svc.Verify(signed, jwtx.TypeRefresh)
		require.NoError(t, err)
		require.Equal(t, "user-1", claims.Subject)
		require.Equal(t, jwtx.TypeRefresh, claims.TokenType)
		require.Len(t, claims.ID, 32, "refresh tokens carry a 16-byte hex jti")
	})
}

func TestTypeMismatchRejectedBothWays(t *testing.T) {
	svc := newTestService(t, nil)

	access, err := svc.IssueAccessToken("user-1", jwtx.Extra{})
	require.NoError(t, err)
	refresh, err := svc.IssueRefreshToken("user-1")
	require.NoError(t, err)

	_, err = svc.Verify(access, jwtx.TypeRefresh)
	require.ErrorIs(t, err, jwtx.ErrTypeMismatch)

	_, err = svc.Verify(refresh, jwtx.TypeAccess)
	require.ErrorIs(t, err, jwtx.ErrTypeMismatch)
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	svc := newTestService(t, nil)
	other := newTestService(t, func(c *token.Config) {
		c.Secret = "the-other-service-signing-secretXX"
	})

	signed, err := other.IssueAccessToken("user-1", jwtx.Extra{})
	require.NoError(t, err)

	_, err = svc.Verify(signed, jwtx.TypeAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestExpiredToken(t *testing.T) {
	svc := newTestService(t, nil)

	issuedAt := time.Now().Add(-time.Hour)
	svc.SetClock(func() time.Time { return issuedAt })

	signed, err := svc.IssueAccessToken("user-1", jwtx.Extra{})
	require.NoError(t, err)

	svc.SetClock(time.Now)
	_, err = svc.Verify(signed, jwtx.TypeAccess)
	require.ErrorIs(t, err, jwtx.ErrExpired, "expiry must be distinguishable from invalidity")
}

func TestIssuePair(t *testing.T) {
	svc := newTestService(t, nil)

	pair, err := svc.IssuePair("user-1", jwtx.Extra{Role: "admin"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, int64((15 * time.Minute).Seconds()), pair.ExpiresIn)

	access, err := svc.Verify(pair.AccessToken, jwtx.TypeAccess)
	require.NoError(t, err)
	require.Equal(t, "admin", access.Role)

	_, err = svc.Verify(pair.RefreshToken, jwtx.TypeRefresh)
	require.NoError(t, err)
}

func TestSecretPolicy(t *testing.T) {
	t.Run("missing secret always fails", func(t *testing.T) {
		svc := newTestService(t, func(c *token.Config) { c.Secret = "" })

		_, err := svc.IssueAccessToken("user-1", jwtx.Extra{})
		require.ErrorIs(t, err, token.ErrNoSigningSecret)

		_, err = svc.Verify("whatever", jwtx.TypeAccess)
		require.ErrorIs(t, err, token.ErrNoSigningSecret)
	})

	t.Run("weak secret fatal in production", func(t *testing.T) {
		svc := newTestService(t, func(c *token.Config) {
			c.Secret = "ChangeMe"
			c.Production = true
		})

		_, err := svc.IssueAccessToken("user-1", jwtx.Extra{})
		require.ErrorIs(t, err, token.ErrWeakSigningSecret)
	})

	t.Run("weak secret tolerated outside production", func(t *testing.T) {
		svc := newTestService(t, func(c *token.Config) { c.Secret = "changeme" })

		_, err := svc.IssueAccessToken("user-1", jwtx.Extra{})
		require.NoError(t, err)
	})

	t.Run("short secret warns but works", func(t *testing.T) {
		svc := newTestService(t, func(c *token.Config) { c.Secret = "short-but-unique" })

		signed, err := svc.IssueAccessToken("user-1", jwtx.Extra{})
		require.NoError(t, err)

		_, err = svc.Verify(signed, jwtx.TypeAccess)
		require.NoError(t, err)
	})
}

func TestRevocation(t *testing.T) {
	svc := newTestService(t, nil)

	refresh, err := svc.IssueRefreshToken("user-1")
	require.NoError(t, err)

	claims, err := svc.Verify(refresh, jwtx.TypeRefresh)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(claims))

	_, err = svc.Verify(refresh, jwtx.TypeRefresh)
	require.ErrorIs(t, err, token.ErrRevoked)

	// Other tokens for the same subject are unaffected.
	second, err := svc.IssueRefreshToken("user-1")
	require.NoError(t, err)
	_, err = svc.Verify(second, jwtx.TypeRefresh)
	require.NoError(t, err)
}

func TestOpaqueTokens(t *testing.T) {
	svc := newTestService(t, nil)

	tok, err := svc.GenerateOpaqueToken(32)
	require.NoError(t, err)
	require.Len(t, tok, 64)

	other, err := svc.GenerateOpaqueToken(32)
	require.NoError(t, err)
	require.NotEqual(t, tok, other)

	require.Equal(t, svc.HashOpaqueToken(tok), svc.HashOpaqueToken(tok))
	require.NotEqual(t, svc.HashOpaqueToken(tok), svc.HashOpaqueToken(other))
	require.NotEqual(t, tok, svc.HashOpaqueToken(tok), "hash must not reveal the token")
}

func TestMemoryRevocationListExpiry(t *testing.T) {
	list := token.NewMemoryRevocationList()
	now := time.Now()
	list.SetClock(func() time.Time { return now })

	list.Revoke("jti-1", now.Add(time.Hour))
	require.True(t, list.IsRevoked("jti-1"))

	// Once the token's own expiry passes, the entry is dropped; the
	// signature check rejects the token from then on anyway.
	now = now.Add(2 * time.Hour)
	require.False(t, list.IsRevoked("jti-1"))
}

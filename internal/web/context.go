package web

import (
	"context"

	"github.com/tutora/platform/pkg/jwtx"
)

type ctxKey string

const (
	ctxKeySubjectID ctxKey = "subject_id"
	ctxKeyClaims    ctxKey = "claims"
)

func contextWithClaims(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, ctxKeySubjectID, c.Subject)
	ctx = context.WithValue(ctx, ctxKeyClaims, c)
	return ctx
}

// ClaimsFromContext returns the verified access-token claims injected by the
// authentication middleware.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims).(jwtx.Claims)
	return c, ok
}

// SubjectFromContext returns the authenticated subject id.
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ctxKeySubjectID).(string)
	return s, ok
}

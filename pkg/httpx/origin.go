package httpx

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
	"github.com/tutora/platform/pkg/errx"
	"github.com/tutora/platform/pkg/slogx"
)

// defaultOrigins are always permitted alongside whatever deployment config
// provides, covering local development of the admin dashboard and storefront.
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// OriginAllowList is the deduplicated, normalized set of origins permitted
// to make browser requests.
type OriginAllowList struct {
	origins map[string]struct{}

	// Production controls enforcement: outside production every origin is
	// allowed so local tooling works against real data shapes.
	Production bool
}

// NewOriginAllowList builds an allow-list from configured origins plus the
// hardcoded development defaults. Entries are normalized so a configured
// origin with or without a trailing slash matches either inbound form.
func NewOriginAllowList(configured []string, production bool) *OriginAllowList {
	list := &OriginAllowList{
		origins:    make(map[string]struct{}),
		Production: production,
	}
	for _, o := range defaultOrigins {
		list.origins[NormalizeOrigin(o)] = struct{}{}
	}
	for _, o := range configured {
		if normalized := NormalizeOrigin(o); normalized != "" {
			list.origins[normalized] = struct{}{}
		}
	}
	return list
}

// NormalizeOrigin lowercases and strips trailing slashes. Idempotent:
// normalizing a normalized origin is a no-op.
func NormalizeOrigin(origin string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(origin)), "/")
}

// Allows reports whether the origin is a member of the allow-list. Requests
// without an Origin header (non-browser clients) are always allowed, as is
// everything outside production.
func (l *OriginAllowList) Allows(origin string) bool {
	if origin == "" || !l.Production {
		return true
	}
	_, ok := l.origins[NormalizeOrigin(origin)]
	return ok
}

// Origins returns the normalized members, for logging and CORS config.
func (l *OriginAllowList) Origins() []string {
	out := make([]string, 0, len(l.origins))
	for o := range l.origins {
		out = append(out, o)
	}
	return out
}

// OriginGateMiddleware rejects requests from disallowed origins with a typed
// OriginForbidden error rather than silently omitting CORS headers, so
// client tooling can distinguish "your origin is not permitted" from other
// 4xx classes.
func OriginGateMiddleware(list *OriginAllowList) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if !list.Allows(origin) {
				slogx.FromContext(r.Context()).Warn("origin rejected", "origin", origin)
				WriteError(w, r, errx.OriginForbidden("origin not permitted by CORS policy"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware emits CORS headers and answers preflight for allowed
// origins, driven by the same allow-list the gate enforces.
func CORSMiddleware(list *OriginAllowList) Middleware {
	c := cors.New(cors.Options{
		AllowOriginFunc:  list.Allows,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * 60 * 60,
	})
	return c.Handler
}

package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tutora/platform/internal/token"
	"github.com/tutora/platform/pkg/httpx"
	"github.com/tutora/platform/pkg/sanitizex"
	"github.com/tutora/platform/pkg/slogx"
)

// Router composes the request-security pipeline and wires it to the HTTP
// entry point. Stage order is load-bearing: origin gate and rate limit run
// before any body is read, sanitization runs before any route handler, and
// the terminal error handler catches everything the stages and handlers
// raise.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	startTime time.Time
	logger    *slog.Logger

	Tokens    *token.Service
	Resolver  SubjectResolver
	DB        HealthReporter
	Limiter   *httpx.RateLimiter
	Identity  httpx.ClientIdentity
	Origins   *httpx.OriginAllowList
	Sanitizer *sanitizex.Sanitizer

	// RateLimitBypassPrefixes are always exempt from the global limiter
	// (payment-critical paths).
	RateLimitBypassPrefixes []string
}

// NewRouter builds the router with the default pipeline.
func NewRouter(
	logger *slog.Logger,
	tokens *token.Service,
	resolver SubjectResolver,
	db HealthReporter,
	limiter *httpx.RateLimiter,
	identity httpx.ClientIdentity,
	origins *httpx.OriginAllowList,
	sanitizer *sanitizex.Sanitizer,
	rateLimitBypass []string,
) *Router {
	r := &Router{
		Mux:                     http.NewServeMux(),
		startTime:               time.Now(),
		logger:                  logger,
		Tokens:                  tokens,
		Resolver:                resolver,
		DB:                      db,
		Limiter:                 limiter,
		Identity:                identity,
		Origins:                 origins,
		Sanitizer:               sanitizer,
		RateLimitBypassPrefixes: rateLimitBypass,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(logger),
		httpx.Recover(),
		httpx.CORSMiddleware(origins),
		httpx.OriginGateMiddleware(origins),
		httpx.RateLimitMiddleware(limiter, identity, rateLimitBypass),
		sanitizex.Middleware(sanitizer),
	}

	return r
}

// ApplyRoutes registers all routes owned by this core. Domain routes
// (products, courses, payments, ...) are mounted by their own packages onto
// the same mux and inherit the pipeline.
func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()

	// Unmatched requests terminate in the taxonomy NotFound shape.
	r.Mux.Handle("/", httpx.NotFoundHandler())
}

// ServeHTTP applies the global middleware chain around the mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Tokens: r.Tokens, Resolver: r.Resolver}

	// Token endpoints get the tighter burst limiter on top of the global
	// window limiter (brute-force prevention).
	r.Mux.Handle("POST /api/auth/refresh",
		httpx.Chain(httpx.Wrap(h.HandleRefresh),
			httpx.BurstLimitMiddleware(httpx.AuthBurstLimit, r.Identity),
		),
	)
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(httpx.Wrap(h.HandleLogout),
			httpx.BurstLimitMiddleware(httpx.AuthBurstLimit, r.Identity),
		),
	)
	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(httpx.Wrap(h.HandleMe),
			AuthnMiddleware(r.Tokens),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /api/health", HealthHandler(r.startTime, r.DB))
}

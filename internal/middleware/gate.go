package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/portfolio/internal/auth"
	"github.com/2beens/portfolio/internal/telemetry/tracing"
	"github.com/2beens/portfolio/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=gate_mocks_test.go -package=middleware_test

type sessionVerifier interface {
	Verify(token string) (*auth.Session, error)
}

type tokenSource interface {
	TokenFromRequest(r *http.Request) (string, bool)
}

type GateParams struct {
	// PagePrefix is the admin UI root, e.g. /admin
	PagePrefix string
	// LoginPath is always reachable, with or without a session.
	LoginPath string
	// PublicPrefixes are static asset paths under PagePrefix that skip the check.
	PublicPrefixes []string
}

// Gate enforces the admin trust boundary. Missing, malformed, expired and
// not-authenticated tokens are all rejected the same way.
type Gate struct {
	verifier sessionVerifier
	tokens   tokenSource
	params   GateParams
}

func NewGate(verifier sessionVerifier, tokens tokenSource, params GateParams) *Gate {
	if params.PagePrefix == "" {
		params.PagePrefix = "/admin"
	}
	if params.LoginPath == "" {
		params.LoginPath = params.PagePrefix + "/login"
	}
	return &Gate{
		verifier: verifier,
		tokens:   tokens,
		params:   params,
	}
}

func (g *Gate) authenticate(r *http.Request) (*auth.Session, bool) {
	token, ok := g.tokens.TokenFromRequest(r)
	if !ok {
		return nil, false
	}
	session, err := g.verifier.Verify(token)
	if err != nil || session == nil {
		return nil, false
	}
	return session, true
}

// API rejects unauthenticated requests with 401.
func (g *Gate) API() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.gate.api")
			defer span.End()

			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			session, ok := g.authenticate(r)
			if !ok {
				log.Tracef("[gate] unauthorized => %s %s", r.Method, r.URL.Path)
				span.SetStatus(codes.Error, "unauthorized")
				pkg.WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.WithSession(ctx, session)))
		})
	}
}

// Pages redirects unauthenticated admin page requests to the login page.
// Paths outside the page prefix, the login page itself and static assets pass through.
func (g *Gate) Pages() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !g.isProtectedPage(r.URL.Path) || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			session, ok := g.authenticate(r)
			if !ok {
				log.Tracef("[gate] redirect to login => %s", r.URL.Path)
				http.Redirect(w, r, g.params.LoginPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
		})
	}
}

// Optional attaches a valid session when present and never rejects.
func (g *Gate) Optional() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session, ok := g.authenticate(r); ok {
				r = r.WithContext(auth.WithSession(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *Gate) isProtectedPage(path string) bool {
	prefix := g.params.PagePrefix
	if path != prefix && !strings.HasPrefix(path, prefix+"/") {
		return false
	}

	login := g.params.LoginPath
	if path == login || strings.HasPrefix(path, login+"/") {
		return false
	}

	for _, public := range g.params.PublicPrefixes {
		if strings.HasPrefix(path, public) {
			return false
		}
	}

	return true
}

package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/portfolio/internal/telemetry/metrics"
	"github.com/2beens/portfolio/internal/telemetry/tracing"
	"github.com/2beens/portfolio/pkg"
)

type Handler struct {
	verifier       CredentialsVerifier
	sessions       *SessionManager
	cookies        *CookieTransport
	metricsManager *metrics.Manager
}

// RouteMiddlewares are applied per route. Nil ones are skipped.
type RouteMiddlewares struct {
	RequireSession  mux.MiddlewareFunc
	OptionalSession mux.MiddlewareFunc
	LoginRateLimit  mux.MiddlewareFunc
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

type LoginUser struct {
	Username string `json:"username"`
}

type SessionStatus struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Username        string `json:"username,omitempty"`
}

func NewHandler(
	verifier CredentialsVerifier,
	sessions *SessionManager,
	cookies *CookieTransport,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		verifier:       verifier,
		sessions:       sessions,
		cookies:        cookies,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router, mw RouteMiddlewares) {
	authRouter := mainRouter.PathPrefix("/auth").Subrouter()

	authRouter.
		Handle("/login", wrap(http.HandlerFunc(handler.handleLogin), mw.LoginRateLimit)).
		Methods("POST", "OPTIONS").Name("login")
	authRouter.
		Handle("/logout", wrap(http.HandlerFunc(handler.handleLogout), mw.RequireSession)).
		Methods("POST", "OPTIONS").Name("logout")
	authRouter.
		Handle("/verify", wrap(http.HandlerFunc(handler.handleVerify), mw.RequireSession)).
		Methods("GET", "OPTIONS").Name("verify")
	authRouter.
		Handle("/session", wrap(http.HandlerFunc(handler.handleSession), mw.OptionalSession)).
		Methods("GET", "OPTIONS").Name("session")
}

func wrap(h http.Handler, mw mux.MiddlewareFunc) http.Handler {
	if mw == nil {
		return h
	}
	return mw(h)
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var loginReq loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), pkg.ContentType.JSON) {
		if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
			log.Tracef("login, unmarshal json params: %s", err)
			pkg.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Tracef("login, parse form: %s", err)
			pkg.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		loginReq = loginRequest{
			Username: r.Form.Get("username"),
			Password: r.Form.Get("password"),
		}
	}

	var fieldErrors []pkg.FieldError
	if loginReq.Username == "" {
		fieldErrors = append(fieldErrors, pkg.FieldError{Field: "username", Message: "username is required"})
	}
	if loginReq.Password == "" {
		fieldErrors = append(fieldErrors, pkg.FieldError{Field: "password", Message: "password is required"})
	}
	if len(fieldErrors) > 0 {
		pkg.WriteValidationError(w, fieldErrors)
		return
	}

	span.SetAttributes(attribute.String("login.username", loginReq.Username))

	if !handler.verifier.Verify(ctx, loginReq.Username, loginReq.Password) {
		log.Tracef("failed login attempt for user: %s", loginReq.Username)
		handler.countLogin("failure")
		span.SetStatus(codes.Error, "invalid-credentials")
		pkg.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, session, err := handler.sessions.Issue(loginReq.Username)
	if err != nil {
		log.Errorf("login, issue session: %s", err)
		handler.countLogin("error")
		span.RecordError(err)
		pkg.WriteError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	handler.cookies.Set(w, token)
	handler.countLogin("success")
	log.Infof("admin [%s] logged in, session expires at %s", session.Username, session.ExpiresAt)

	pkg.WriteSuccess(w, http.StatusOK, LoginResponse{
		Token: token,
		User:  LoginUser{Username: session.Username},
	}, "Login successful")
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	handler.cookies.Clear(w)
	if session, ok := SessionFromContext(r.Context()); ok {
		log.Debugf("admin [%s] logged out", session.Username)
	}

	pkg.WriteSuccess(w, http.StatusOK, nil, "Logout successful")
}

func (handler *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	status := SessionStatus{IsAuthenticated: true}
	if session, ok := SessionFromContext(r.Context()); ok {
		status.Username = session.Username
	}
	pkg.WriteSuccess(w, http.StatusOK, status, "")
}

// handleSession never rejects, it only reports whether the caller has a valid session.
func (handler *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	status := SessionStatus{}
	if session, ok := SessionFromContext(r.Context()); ok {
		status.IsAuthenticated = true
		status.Username = session.Username
	}
	pkg.WriteSuccess(w, http.StatusOK, status, "")
}

func (handler *Handler) countLogin(result string) {
	if handler.metricsManager != nil {
		handler.metricsManager.CounterLoginAttempts.WithLabelValues(result).Inc()
	}
}

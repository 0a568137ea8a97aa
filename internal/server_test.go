package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/2beens/portfolio/internal/auth"
	"github.com/2beens/portfolio/internal/config"
	"github.com/2beens/portfolio/internal/telemetry/metrics"
	"github.com/2beens/portfolio/pkg"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper"),
	)
}

func newTestServer(t *testing.T, adminUIDir string) *Server {
	t.Helper()

	sessions, err := auth.NewSessionManager(auth.SessionManagerParams{
		Secret: "test-secret-test-secret-test-secret",
		TTL:    time.Hour,
	})
	require.NoError(t, err)

	verifier, err := auth.NewCredentialsVerifier(auth.VerifierParams{
		Source:        config.CredentialsSourceEnv,
		Username:      "admin",
		PlainPassword: "admin-pass",
	})
	require.NoError(t, err)

	redisClient, _ := redismock.NewClientMock()
	t.Cleanup(func() {
		_ = redisClient.Close()
	})

	cfg, err := config.Parse("development", `
[development]
port = 9000
credentials_source = "env"
allowed_origins = ["http://localhost:3000"]
`)
	require.NoError(t, err)
	cfg.AdminUIDir = adminUIDir

	return &Server{
		config:         cfg,
		redisClient:    redisClient,
		versionInfo:    "test-version",
		verifier:       verifier,
		sessions:       sessions,
		cookies:        auth.NewCookieTransport(false, sessions.TTL()),
		metricsManager: metrics.NewTestManager(),
		otelShutdown:   func() {},
	}
}

func TestServer_RouterSetup_Routes(t *testing.T) {
	server := newTestServer(t, "")
	router, err := server.routerSetup()
	require.NoError(t, err)

	names := map[string]bool{}
	require.NoError(t, router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		if name := route.GetName(); name != "" {
			names[name] = true
		}
		return nil
	}))

	for _, name := range []string{
		"login", "logout", "verify", "session",
		"content", "root", "version", "health",
		"profile", "profile-update",
		"settings", "settings-update",
		"projects", "projects-create", "projects-reorder", "projects-toggle",
		"skills", "skills-update",
		"testimonials", "testimonials-delete",
	} {
		assert.True(t, names[name], "route %s not registered", name)
	}
	assert.False(t, names["admin-ui"])
}

func TestServer_RouterSetup_AdminRoutesRequireSession(t *testing.T) {
	server := newTestServer(t, "")
	router, err := server.routerSetup()
	require.NoError(t, err)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{method: "GET", path: "/projects/admin"},
		{method: "POST", path: "/skills/admin"},
		{method: "DELETE", path: "/testimonials/admin/3"},
		{method: "PUT", path: "/profile/admin"},
		{method: "PUT", path: "/settings/admin"},
		{method: "GET", path: "/auth/verify"},
		{method: "POST", path: "/auth/logout"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", tc.method, tc.path)
		var resp pkg.Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, "Unauthorized", resp.Error)
	}
}

func TestServer_RouterSetup_SessionAndVerify(t *testing.T) {
	server := newTestServer(t, "")
	router, err := server.routerSetup()
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/auth/session", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"isAuthenticated":false`)

	token, _, err := server.sessions.Issue("admin")
	require.NoError(t, err)

	req = httptest.NewRequest("GET", "/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestServer_RouterSetup_UnknownPath(t *testing.T) {
	server := newTestServer(t, "")
	router, err := server.routerSetup()
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/no/such/path", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, `{"success":false,"error":"Not found"}`, rr.Body.String())
}

func TestServer_RouterSetup_VersionAndSecurityHeaders(t *testing.T) {
	server := newTestServer(t, "")
	router, err := server.routerSetup()
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/version", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "test-version")
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, 1.0, testutil.ToFloat64(server.metricsManager.CounterRequests.WithLabelValues("GET", "200")))
}

func TestServer_RouterSetup_AdminUI(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("dashboard"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "login"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "login", "index.html"), []byte("login page"), 0o644))
	for _, bundle := range []string{"_next/static/chunk.js", "static/app.js", "assets/app.css"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, filepath.Dir(bundle)), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, bundle), []byte("bundle"), 0o644))
	}

	server := newTestServer(t, dir)
	router, err := server.routerSetup()
	require.NoError(t, err)

	// no session, redirected to the login page
	req := httptest.NewRequest("GET", "/admin/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, adminLoginPath, rr.Header().Get("Location"))

	// the login page itself is reachable
	req = httptest.NewRequest("GET", "/admin/login/", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "login page", rr.Body.String())

	// bundles load without a session, so the login page can render
	for _, path := range []string{"/admin/_next/static/chunk.js", "/admin/static/app.js", "/admin/assets/app.css"} {
		req = httptest.NewRequest("GET", path, nil)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.Equal(t, "bundle", rr.Body.String(), path)
	}

	// with a session cookie the dashboard is served
	token, _, err := server.sessions.Issue("admin")
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/admin/", nil)
	cookieRR := httptest.NewRecorder()
	server.cookies.Set(cookieRR, token)
	for _, c := range cookieRR.Result().Cookies() {
		req.AddCookie(c)
	}
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "dashboard", rr.Body.String())
}

func TestNewServer_ClosesConnectionsOnError(t *testing.T) {
	cfg, err := config.Parse("production", `
[production]
port = 9000
postgres_host = "127.0.0.1"
postgres_port = "1"
postgres_db_name = "portfolio"
redis_host = "127.0.0.1"
redis_port = "1"
credentials_source = "store"
`)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// no session secret in production; the pool and redis client built before
	// must not outlive the failed call (checked by goleak in TestMain)
	server, err := NewServer(ctx, NewServerParams{Config: cfg})
	require.ErrorIs(t, err, auth.ErrSecretNotSet)
	assert.Nil(t, server)
}

func TestServer_connStateMetrics(t *testing.T) {
	server := &Server{
		metricsManager: metrics.NewTestManager(),
	}

	server.connStateMetrics(nil, http.StateNew)
	server.connStateMetrics(nil, http.StateNew)
	server.connStateMetrics(nil, http.StateActive)
	server.connStateMetrics(nil, http.StateClosed)

	assert.Equal(t, 1.0, testutil.ToFloat64(server.metricsManager.GaugeRequests))
}

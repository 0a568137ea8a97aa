package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/portfolio/internal/telemetry/metrics"
	"github.com/2beens/portfolio/pkg"
)

type testRequestRateLimiter struct {
	// key to remaining allowed requests
	Limits map[string]int
	Err    error
}

func (l *testRequestRateLimiter) Allow(_ context.Context, key string, _ redis_rate.Limit) (*redis_rate.Result, error) {
	if l.Err != nil {
		return nil, l.Err
	}

	res := &redis_rate.Result{RetryAfter: 1500 * time.Millisecond}
	if l.Limits[key] > 0 {
		res.Allowed = 1
		l.Limits[key]--
	}
	return res, nil
}

func TestRateLimit(t *testing.T) {
	metricsManager := metrics.NewTestManager()
	limiter := &testRequestRateLimiter{
		Limits: map[string]int{"login:83.12.53.65": 2},
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimit(limiter, "login", 2, nil, metricsManager)(next)

	serve := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = remoteAddr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, serve("83.12.53.65:1234").Code)
	assert.Equal(t, http.StatusOK, serve("83.12.53.65:1235").Code)

	rr := serve("83.12.53.65:1236")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("Retry-After"))

	// other clients have their own budget
	assert.Equal(t, http.StatusTooManyRequests, serve("91.1.1.1:80").Code)
	assert.Equal(t, 2.0, testutil.ToFloat64(metricsManager.CounterRateLimitedRequests))

	limiter.Err = errors.New("redis down")
	assert.Equal(t, http.StatusInternalServerError, serve("83.12.53.65:1237").Code)
}

func TestRateLimit_ForwardedHeaders(t *testing.T) {
	trusted, err := pkg.ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	limiter := &testRequestRateLimiter{
		Limits: map[string]int{
			"login:83.12.53.65": 1,
			"login:91.2.3.4":    1,
		},
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimit(limiter, "login", 1, trusted, metrics.NewTestManager())(next)

	serve := func(remoteAddr, forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = remoteAddr
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	// a direct client rotating the header keeps hitting its own bucket
	assert.Equal(t, http.StatusOK, serve("83.12.53.65:1234", "1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, serve("83.12.53.65:1234", "2.2.2.2"))
	assert.Equal(t, http.StatusTooManyRequests, serve("83.12.53.65:1234", "3.3.3.3"))

	// behind the trusted proxy the forwarded client is limited
	assert.Equal(t, http.StatusOK, serve("10.0.0.2:4321", "91.2.3.4"))
	assert.Equal(t, http.StatusTooManyRequests, serve("10.0.0.2:4321", "91.2.3.4"))
}

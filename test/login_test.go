//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/portfolio/internal/auth"
)

func (s *IntegrationTestSuite) TestLogin() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cases := map[string]struct {
		loginReq           loginRequest
		expectedStatusCode int
		expectedError      string
	}{
		"good creds": {
			loginReq:           loginRequest{Username: testUsername, Password: testPassword},
			expectedStatusCode: http.StatusOK,
		},
		"bad password": {
			loginReq:           loginRequest{Username: testUsername, Password: "bad-password"},
			expectedStatusCode: http.StatusUnauthorized,
			expectedError:      "Invalid credentials",
		},
		"unknown user": {
			loginReq:           loginRequest{Username: "nobody", Password: testPassword},
			expectedStatusCode: http.StatusUnauthorized,
			expectedError:      "Invalid credentials",
		},
		"missing password": {
			loginReq:           loginRequest{Username: testUsername},
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "Validation failed",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp := doRequest(ctx, t, s.httpClient, "POST", "/auth/login", "", tc.loginReq)
			require.Equal(t, tc.expectedStatusCode, resp.StatusCode)

			if tc.expectedError != "" {
				apiResp := readResponse(t, resp)
				assert.False(t, apiResp.Success)
				assert.Equal(t, tc.expectedError, apiResp.Error)
				assert.Empty(t, resp.Cookies())
				return
			}

			var cookie *http.Cookie
			for _, c := range resp.Cookies() {
				if c.Name == auth.SessionCookieName {
					cookie = c
				}
			}
			require.NotNil(t, cookie)
			assert.True(t, cookie.HttpOnly)

			var loginResp auth.LoginResponse
			apiResp := decodeData(t, resp, &loginResp)
			assert.True(t, apiResp.Success)
			assert.Equal(t, cookie.Value, loginResp.Token)
			assert.Equal(t, testUsername, loginResp.User.Username)
		})
	}
}

func (s *IntegrationTestSuite) TestSessionLifecycle() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resp := doRequest(ctx, t, s.httpClient, "GET", "/auth/verify", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(ctx, t, s.httpClient, "GET", "/auth/verify", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := doLogin(ctx, t, s.httpClient)

	resp = doRequest(ctx, t, s.httpClient, "GET", "/auth/verify", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status auth.SessionStatus
	decodeData(t, resp, &status)
	assert.True(t, status.IsAuthenticated)
	assert.Equal(t, testUsername, status.Username)

	resp = doRequest(ctx, t, s.httpClient, "GET", "/auth/session", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeData(t, resp, &status)
	assert.False(t, status.IsAuthenticated)

	resp = doRequest(ctx, t, s.httpClient, "POST", "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookieName {
			assert.Empty(t, c.Value)
			assert.True(t, c.MaxAge < 0)
		}
	}
}

func (s *IntegrationTestSuite) TestHealth() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resp := doRequest(ctx, t, s.httpClient, "GET", "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]any
	decodeData(t, resp, &health)
	assert.Equal(t, "ok", health["status"])

	raw, err := json.Marshal(health)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"database"`)
}

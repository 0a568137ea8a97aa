//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/2beens/portfolio/internal/auth"
	"github.com/2beens/portfolio/pkg"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// apiResponse mirrors pkg.Response, with data left raw for the caller to decode.
type apiResponse struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Message string           `json:"message"`
	Error   string           `json:"error"`
	Errors  []pkg.FieldError `json:"errors"`
}

func doLogin(ctx context.Context, t *testing.T, client *http.Client) string {
	t.Helper()

	resp := doRequest(ctx, t, client, "POST", "/auth/login", "", loginRequest{
		Username: testUsername,
		Password: testPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResp auth.LoginResponse
	decodeData(t, resp, &loginResp)
	require.NotEmpty(t, loginResp.Token)

	return loginResp.Token
}

// doRequest sends body as JSON, with the bearer token when one is given.
func doRequest(ctx context.Context, t *testing.T, client *http.Client, method, path, token string, body any) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s%s", serverEndpoint, path), reqBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})

	return resp
}

func readResponse(t *testing.T, resp *http.Response) apiResponse {
	t.Helper()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var apiResp apiResponse
	require.NoError(t, json.Unmarshal(respBytes, &apiResp), string(respBytes))
	return apiResp
}

func decodeData(t *testing.T, resp *http.Response, target any) apiResponse {
	t.Helper()

	apiResp := readResponse(t, resp)
	require.NoError(t, json.Unmarshal(apiResp.Data, target))
	return apiResp
}

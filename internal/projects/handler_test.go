package projects

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/2beens/portfolio/internal/content"
	"github.com/2beens/portfolio/internal/telemetry/metrics"
	"github.com/2beens/portfolio/pkg"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func allowAll(next http.Handler) http.Handler { return next }

func setupRouter(t *testing.T, projects ...*Project) (*mux.Router, *content.MemoryRepo[*Project]) {
	t.Helper()

	repo := content.NewMemoryRepo(New)
	for _, p := range projects {
		require.NoError(t, repo.Add(context.Background(), p))
	}

	r := mux.NewRouter()
	NewHandler(repo, allowAll, metrics.NewTestManager(), nil).SetupRoutes(r)
	return r, repo
}

func serve(t *testing.T, r *mux.Router, method, path, body string) (int, pkg.Response) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var resp pkg.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return rr.Code, resp
}

func TestProjects_CreateAppliesDefaults(t *testing.T) {
	r, repo := setupRouter(t)

	code, resp := serve(t, r, "POST", "/projects/admin", `{"title": "Portfolio", "description": "This site"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, resp.Success)

	stored, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, stored.Active)
	assert.Equal(t, []string{}, stored.Tags)
}

func TestProjects_CreateValidation(t *testing.T) {
	r, repo := setupRouter(t)

	code, resp := serve(t, r, "POST", "/projects/admin", `{
		"title": "Broken",
		"description": "",
		"tags": ["go", " "],
		"liveUrl": "not-a-url",
		"githubUrl": "https://github.com/2beens"
	}`)
	require.Equal(t, http.StatusBadRequest, code)

	fields := make([]string, 0, len(resp.Errors))
	for _, fe := range resp.Errors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"description", "tags[1]", "liveUrl"}, fields)
	assert.Equal(t, 0, repo.Count())
}

func TestProjects_PublicProjectionAndReorderByEntityKey(t *testing.T) {
	r, _ := setupRouter(t,
		&Project{Title: "first", Description: "d", Active: true, Order: 1},
		&Project{Title: "hidden", Description: "d", Active: false, Order: 0},
		&Project{Title: "second", Description: "d", Active: true, Order: 2},
	)

	code, resp := serve(t, r, "PATCH", "/projects/admin/reorder", `{"projects": [{"id": 1, "order": 3}, {"id": 3, "order": 1}]}`)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)

	code, resp = serve(t, r, "GET", "/projects", "")
	require.Equal(t, http.StatusOK, code)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var projected []Project
	require.NoError(t, json.Unmarshal(raw, &projected))
	require.Len(t, projected, 2)
	assert.Equal(t, "second", projected[0].Title)
	assert.Equal(t, "first", projected[1].Title)
}

//go:build integration_test || all_tests

package test

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/portfolio/internal/profile"
	"github.com/2beens/portfolio/internal/projects"
	"github.com/2beens/portfolio/internal/settings"
	"github.com/2beens/portfolio/internal/site"
)

func (s *IntegrationTestSuite) TestProjects_AdminRoutesRequireSession() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, tc := range []struct {
		method string
		path   string
	}{
		{method: "GET", path: "/projects/admin"},
		{method: "POST", path: "/projects/admin"},
		{method: "PUT", path: "/projects/admin/1"},
		{method: "DELETE", path: "/projects/admin/1"},
		{method: "PATCH", path: "/projects/admin/1/toggle"},
		{method: "PATCH", path: "/projects/admin/reorder"},
		{method: "PUT", path: "/profile/admin"},
		{method: "PUT", path: "/settings/admin"},
	} {
		resp := doRequest(ctx, t, s.httpClient, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func (s *IntegrationTestSuite) TestProjects_CRUD() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := doLogin(ctx, t, s.httpClient)

	// invalid project
	resp := doRequest(ctx, t, s.httpClient, "POST", "/projects/admin", token, map[string]any{
		"title":   "No description",
		"liveUrl": "not a url",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	apiResp := readResponse(t, resp)
	assert.Equal(t, "Validation failed", apiResp.Error)
	fields := map[string]bool{}
	for _, fe := range apiResp.Errors {
		fields[fe.Field] = true
	}
	assert.True(t, fields["description"])
	assert.True(t, fields["liveUrl"])

	created := make([]*projects.Project, 0, 3)
	for i := 1; i <= 3; i++ {
		resp = doRequest(ctx, t, s.httpClient, "POST", "/projects/admin", token, map[string]any{
			"title":       fmt.Sprintf("project %d", i),
			"description": "a project",
			"tags":        []string{"go"},
			"order":       4 - i,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		p := &projects.Project{}
		apiResp = decodeData(t, resp, p)
		assert.Equal(t, "Project created successfully", apiResp.Message)
		assert.Equal(t, i, p.ID)
		assert.True(t, p.Active)
		created = append(created, p)
	}

	// update keeps fields the body leaves out
	resp = doRequest(ctx, t, s.httpClient, "PUT", "/projects/admin/1", token, map[string]any{
		"title":    "project one",
		"featured": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := &projects.Project{}
	decodeData(t, resp, updated)
	assert.Equal(t, "project one", updated.Title)
	assert.Equal(t, "a project", updated.Description)
	assert.True(t, updated.Featured)

	// hide project 2
	resp = doRequest(ctx, t, s.httpClient, "PATCH", "/projects/admin/2/toggle", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Project deactivated successfully", readResponse(t, resp).Message)

	// public list: visible only, by order
	resp = doRequest(ctx, t, s.httpClient, "GET", "/projects", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var public []*projects.Project
	decodeData(t, resp, &public)
	require.Len(t, public, 2)
	assert.Equal(t, 3, public[0].ID)
	assert.Equal(t, 1, public[1].ID)

	// admin list: everything
	resp = doRequest(ctx, t, s.httpClient, "GET", "/projects/admin", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []*projects.Project
	decodeData(t, resp, &all)
	assert.Len(t, all, 3)

	// reorder with one unknown id
	resp = doRequest(ctx, t, s.httpClient, "PATCH", "/projects/admin/reorder", token, map[string]any{
		"items": []map[string]int{
			{"id": 1, "order": 1},
			{"id": 3, "order": 2},
			{"id": 99, "order": 3},
		},
	})
	require.Equal(t, http.StatusMultiStatus, resp.StatusCode)
	apiResp = readResponse(t, resp)
	assert.False(t, apiResp.Success)
	require.Len(t, apiResp.Errors, 1)
	assert.Equal(t, "99", apiResp.Errors[0].Field)

	resp = doRequest(ctx, t, s.httpClient, "GET", "/projects", "", nil)
	decodeData(t, resp, &public)
	require.Len(t, public, 2)
	assert.Equal(t, 1, public[0].ID)
	assert.Equal(t, 3, public[1].ID)

	// delete
	resp = doRequest(ctx, t, s.httpClient, "DELETE", "/projects/admin/3", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doRequest(ctx, t, s.httpClient, "DELETE", "/projects/admin/3", token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Project not found", readResponse(t, resp).Error)
}

func (s *IntegrationTestSuite) TestSkills_DuplicateCategoryID() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := doLogin(ctx, t, s.httpClient)

	category := map[string]any{
		"categoryId": "backend",
		"title":      "Backend",
		"skills":     []map[string]any{{"name": "Go"}},
	}
	resp := doRequest(ctx, t, s.httpClient, "POST", "/skills/admin", token, category)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(ctx, t, s.httpClient, "POST", "/skills/admin", token, category)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	apiResp := readResponse(t, resp)
	require.Len(t, apiResp.Errors, 1)
	assert.Equal(t, "categoryId", apiResp.Errors[0].Field)
}

func (s *IntegrationTestSuite) TestSiteContent() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := doLogin(ctx, t, s.httpClient)

	resp := doRequest(ctx, t, s.httpClient, "PUT", "/profile/admin", token, map[string]any{
		"name":    "Serj",
		"tagline": "Engineer",
		"email":   "serj@example.com",
		"bio":     []string{"Builds things."},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	storedProfile := &profile.Profile{}
	decodeData(t, resp, storedProfile)
	assert.True(t, storedProfile.Active)

	resp = doRequest(ctx, t, s.httpClient, "PUT", "/settings/admin", token, map[string]any{
		"sections": []map[string]any{
			{"id": "hero", "title": "Hero", "visible": true, "order": 1},
			{"id": "testimonials", "title": "Testimonials", "visible": false, "order": 2},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var storedSettings settings.Settings
	decodeData(t, resp, &storedSettings)
	assert.Len(t, storedSettings.Sections, 2)

	for i, visible := range []bool{true, false} {
		resp = doRequest(ctx, t, s.httpClient, "POST", "/testimonials/admin", token, map[string]any{
			"name":     fmt.Sprintf("client %d", i),
			"role":     "CTO",
			"company":  "ACME",
			"content":  "Great work.",
			"isActive": visible,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	// anonymous: hidden records and sections are left out
	resp = doRequest(ctx, t, s.httpClient, "GET", "/content", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var public site.Content
	decodeData(t, resp, &public)
	require.NotNil(t, public.Profile)
	assert.Equal(t, "Serj", public.Profile.Name)
	assert.Len(t, public.Testimonials, 1)
	require.Len(t, public.Sections, 1)
	assert.Equal(t, "hero", public.Sections[0].ID)

	// admin: everything
	resp = doRequest(ctx, t, s.httpClient, "GET", "/content", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var admin site.Content
	decodeData(t, resp, &admin)
	assert.Len(t, admin.Testimonials, 2)
	assert.Len(t, admin.Sections, 2)

	// a write invalidates the cached public document
	resp = doRequest(ctx, t, s.httpClient, "PATCH", "/testimonials/admin/2/toggle", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(ctx, t, s.httpClient, "GET", "/content", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeData(t, resp, &public)
	assert.Len(t, public.Testimonials, 2)

	// hiding the profile hides it from the public endpoints
	resp = doRequest(ctx, t, s.httpClient, "PUT", "/profile/admin", token, map[string]any{
		"isActive": false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(ctx, t, s.httpClient, "GET", "/profile", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

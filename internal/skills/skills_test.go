package skills

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/2beens/portfolio/internal/content"
	"github.com/2beens/portfolio/pkg"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSkill_DefaultLevel(t *testing.T) {
	var c SkillCategory
	require.NoError(t, json.Unmarshal([]byte(`{"skills": [{"name": "Go"}, {"name": "SQL", "level": 55}]}`), &c))
	require.Len(t, c.Skills, 2)
	assert.Equal(t, DefaultSkillLevel, c.Skills[0].Level)
	assert.Equal(t, 55, c.Skills[1].Level)
}

func TestSkillCategory_Validation(t *testing.T) {
	valid := New()
	valid.CategoryID = "backend"
	valid.Title = "Backend"
	valid.Skills = []Skill{{Name: "Go", Level: 90}}
	assert.Empty(t, content.Validate(valid))

	invalid := New()
	invalid.Title = "Backend"
	invalid.Skills = []Skill{{Name: "Go", Level: 190}}
	fieldErrors := content.Validate(invalid)
	require.Len(t, fieldErrors, 2)
	assert.Equal(t, "categoryId", fieldErrors[0].Field)
	assert.Equal(t, "skills[0].level", fieldErrors[1].Field)
}

type takenCategoryRepo struct {
	*content.MemoryRepo[*SkillCategory]
}

func (takenCategoryRepo) Add(context.Context, *SkillCategory) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: categoryIDConstraint}
}

func TestHandler_DuplicateCategoryID(t *testing.T) {
	r := mux.NewRouter()
	NewHandler(takenCategoryRepo{content.NewMemoryRepo(New)}, nil, nil, nil).SetupRoutes(r)

	req := httptest.NewRequest("POST", "/skills/admin", strings.NewReader(`{"categoryId": "backend", "title": "Backend"}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var resp pkg.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Equal(t, []pkg.FieldError{{Field: "categoryId", Message: "categoryId already exists"}}, resp.Errors)
}

func TestHandler_CreateWithDefaults(t *testing.T) {
	repo := content.NewMemoryRepo(New)
	r := mux.NewRouter()
	NewHandler(repo, nil, nil, nil).SetupRoutes(r)

	req := httptest.NewRequest("POST", "/skills/admin", strings.NewReader(`{"categoryId": "frontend", "title": "Frontend", "skills": [{"name": "React"}]}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	stored, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, DefaultIcon, stored.Icon)
	assert.True(t, stored.Active)
	assert.Equal(t, []Skill{{Name: "React", Level: DefaultSkillLevel}}, stored.Skills)
}

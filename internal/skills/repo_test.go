//go:build integration_test || all_tests

package skills

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/portfolio/internal/content"
	"github.com/2beens/portfolio/internal/testinternals"
	"github.com/2beens/portfolio/pkg"
)

func TestRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(testinternals.NewTestDBPool(t, "skill_category"))

	c := &SkillCategory{
		CategoryID: "backend",
		Title:      "Backend",
		Skills: []Skill{
			{Name: gofakeit.ProgrammingLanguage(), Level: gofakeit.Number(0, 100)},
			{Name: gofakeit.ProgrammingLanguage(), Level: gofakeit.Number(0, 100)},
		},
		Active: true,
		Order:  1,
	}
	require.NoError(t, repo.Add(ctx, c))
	assert.Equal(t, DefaultIcon, c.Icon)

	stored, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Skills, stored.Skills)

	duplicate := &SkillCategory{CategoryID: "backend", Title: "Again"}
	err = repo.Add(ctx, duplicate)
	require.Error(t, err)
	constraint, ok := pkg.UniqueViolationConstraint(err)
	require.True(t, ok)
	assert.Equal(t, categoryIDConstraint, constraint)

	c.Skills = append(c.Skills, Skill{Name: "Postgres", Level: 70})
	require.NoError(t, repo.Update(ctx, c))
	stored, err = repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Skills, 3)

	toggled, err := repo.ToggleVisible(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	require.NoError(t, repo.SetOrder(ctx, c.ID, 4))
	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.ErrorIs(t, repo.SetOrder(ctx, c.ID, 5), content.ErrNotFound)
}

//go:build integration_test || all_tests

package testimonials

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/portfolio/internal/content"
	"github.com/2beens/portfolio/internal/testinternals"
)

func TestRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(testinternals.NewTestDBPool(t, "testimonial"))

	testimonial := &Testimonial{
		Name:    gofakeit.Name(),
		Role:    gofakeit.JobTitle(),
		Company: gofakeit.Company(),
		Content: gofakeit.Sentence(20),
		Active:  true,
	}
	require.NoError(t, repo.Add(ctx, testimonial))
	assert.Equal(t, DefaultAvatar, testimonial.Avatar)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, testimonial.Name, all[0].Name)

	testimonial.Order = 3
	require.NoError(t, repo.Update(ctx, testimonial))

	toggled, err := repo.ToggleVisible(ctx, testimonial.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)
	assert.Equal(t, 3, toggled.Order)

	require.NoError(t, repo.Delete(ctx, testimonial.ID))
	_, err = repo.Get(ctx, testimonial.ID)
	assert.ErrorIs(t, err, content.ErrNotFound)
}

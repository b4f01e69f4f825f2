package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/brandreview/pkg/review"
)

func TestReviewRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepo()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, b := range []string{"OAD", "ACME", "OAD"} {
		_, err := repo.Create(ctx, review.Review{BrandID: b, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))

	oad, err := repo.List(ctx, "OAD", 1, 0)
	require.NoError(t, err)
	require.Len(t, oad, 1)
	assert.Equal(t, base.Add(2*time.Minute), oad[0].CreatedAt)

	empty, err := repo.List(ctx, "", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)

	got, err := repo.GetByID(ctx, all[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "ACME", got.BrandID)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, review.ErrNotFound)
}

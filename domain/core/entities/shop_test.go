package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShop_AverageScore(t *testing.T) {
	assert.Equal(t, 0.0, Shop{}.AverageScore())
	assert.Equal(t, 7.0, Shop{TotalScore: 14, ReviewNumber: 2}.AverageScore())
}

func TestShop_ApplyReviewDelta(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	scores := []float64{8.0, 6.5, 9.25, 3.0}

	var shop Shop
	for _, s := range scores {
		require.NoError(t, shop.ApplyReviewDelta(s, 1, now))
	}
	assert.Equal(t, 4, shop.ReviewNumber)
	assert.Equal(t, 26.75, shop.TotalScore)

	// remove a subset
	require.NoError(t, shop.ApplyReviewDelta(-6.5, -1, now))
	require.NoError(t, shop.ApplyReviewDelta(-3.0, -1, now))
	assert.Equal(t, 2, shop.ReviewNumber)
	assert.Equal(t, 17.25, shop.TotalScore)

	require.NoError(t, shop.ApplyReviewDelta(-8.0, -1, now))
	require.NoError(t, shop.ApplyReviewDelta(-9.25, -1, now))
	assert.Equal(t, 0, shop.ReviewNumber)
	assert.Equal(t, 0.0, shop.TotalScore)
	assert.Equal(t, 0.0, shop.AverageScore())

	err := shop.ApplyReviewDelta(-1, -1, now)
	assert.ErrorIs(t, err, ErrAggregateUnderflow)
	assert.Equal(t, 0, shop.ReviewNumber)
}

func TestMarkDeleted(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	shop := Shop{ShopID: "s1"}
	deleted := shop.MarkDeleted(at)
	assert.False(t, shop.IsDeleted())
	assert.True(t, deleted.IsDeleted())
	assert.Equal(t, "s1", deleted.EntityID())

	assert.True(t, ShopReview{}.MarkDeleted(at).IsDeleted())
	assert.True(t, Reply{}.MarkDeleted(at).IsDeleted())
}

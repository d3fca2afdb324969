package vector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weecici/fusedex/core"
)

func TestMemoryBackendKNN(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.Upsert(ctx, "docs", 1, []float32{1, 0, 0}))
	require.NoError(t, b.Upsert(ctx, "docs", 2, []float32{0, 1, 0}))
	require.NoError(t, b.Upsert(ctx, "docs", 3, []float32{1, 1, 0}))

	t.Run("ranks by cosine similarity", func(t *testing.T) {
		matches, err := b.KNN(ctx, "docs", []float32{1, 0.1, 0}, 3)
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, core.ID(1), matches[0].Id)
		assert.Equal(t, core.ID(3), matches[1].Id)
		assert.Equal(t, core.ID(2), matches[2].Id)
		assert.InDelta(t, 1.0, float64(matches[0].Score), 1e-2)
	})

	t.Run("truncates to k", func(t *testing.T) {
		matches, err := b.KNN(ctx, "docs", []float32{1, 0, 0}, 2)
		require.NoError(t, err)
		assert.Len(t, matches, 2)
	})

	t.Run("unknown collection yields empty result", func(t *testing.T) {
		matches, err := b.KNN(ctx, "nope", []float32{1, 0, 0}, 5)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("equal scores tie-break by id", func(t *testing.T) {
		tied := NewMemoryBackend()
		require.NoError(t, tied.Upsert(ctx, "docs", 9, []float32{0, 1}))
		require.NoError(t, tied.Upsert(ctx, "docs", 4, []float32{0, 1}))

		matches, err := tied.KNN(ctx, "docs", []float32{0, 1}, 2)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, core.ID(4), matches[0].Id)
		assert.Equal(t, core.ID(9), matches[1].Id)
	})
}

func TestMemoryBackendUpsert(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces existing vector", func(t *testing.T) {
		b := NewMemoryBackend()
		require.NoError(t, b.Upsert(ctx, "docs", 1, []float32{1, 0}))
		require.NoError(t, b.Upsert(ctx, "docs", 1, []float32{0, 1}))

		matches, err := b.KNN(ctx, "docs", []float32{0, 1}, 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.InDelta(t, 1.0, float64(matches[0].Score), 1e-6)
	})

	t.Run("rejects zero vector", func(t *testing.T) {
		b := NewMemoryBackend()
		err := b.Upsert(ctx, "docs", 1, []float32{0, 0, 0})
		require.ErrorIs(t, err, ErrZeroVector)
	})

	t.Run("rejects mismatched dimension", func(t *testing.T) {
		b := NewMemoryBackend()
		require.NoError(t, b.Upsert(ctx, "docs", 1, []float32{1, 0, 0}))
		err := b.Upsert(ctx, "docs", 2, []float32{1, 0})
		require.ErrorIs(t, err, core.ErrDimensionMismatch)
	})
}

func TestMemoryBackendQueryDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.Upsert(ctx, "docs", 1, []float32{1, 0, 0}))

	_, err := b.KNN(ctx, "docs", []float32{1, 0}, 1)
	require.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestMemoryBackendDelete(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.Upsert(ctx, "docs", 1, []float32{1, 0}))
	require.NoError(t, b.Upsert(ctx, "docs", 2, []float32{0, 1}))

	require.NoError(t, b.Delete(ctx, "docs", 1))
	assert.Equal(t, 2, b.Dimension("docs"))

	matches, err := b.KNN(ctx, "docs", []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, core.ID(2), matches[0].Id)

	// Deleting an absent id is a no-op.
	require.NoError(t, b.Delete(ctx, "docs", 42))
	require.NoError(t, b.Delete(ctx, "other", 1))
}

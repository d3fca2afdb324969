package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weecici/fusedex/core"
	"github.com/weecici/fusedex/storage"
)

func TestPayloadStoreGet(t *testing.T) {
	ctx := context.Background()
	repo, payloads, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, repo.SaveIndex(ctx, "articles", testSnapshot()))

	t.Run("existing payload", func(t *testing.T) {
		payload, err := payloads.GetPayload(ctx, "articles", 1)
		require.NoError(t, err)
		assert.Equal(t, "the cat sat", payload.Text)
		assert.Equal(t, "one", payload.Metadata.Title)
	})

	t.Run("missing payload", func(t *testing.T) {
		_, err := payloads.GetPayload(ctx, "articles", 404)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("batch get skips missing", func(t *testing.T) {
		got, err := payloads.GetPayloads(ctx, "articles", []core.ID{1, 2, 404})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Contains(t, got, core.ID(1))
		assert.Contains(t, got, core.ID(2))
	})
}

func TestPayloadStoreScan(t *testing.T) {
	ctx := context.Background()
	repo, payloads, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, repo.SaveIndex(ctx, "articles", testSnapshot()))

	t.Run("full scan in id order", func(t *testing.T) {
		docs, err := payloads.ScanPayloads(ctx, "articles", 0, 10)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, core.ID(1), docs[0].Id)
		assert.Equal(t, core.ID(2), docs[1].Id)
		assert.Equal(t, docs[0].Payload.Text, docs[0].Text)
	})

	t.Run("resumes after id", func(t *testing.T) {
		docs, err := payloads.ScanPayloads(ctx, "articles", 1, 10)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, core.ID(2), docs[0].Id)
	})

	t.Run("respects limit", func(t *testing.T) {
		docs, err := payloads.ScanPayloads(ctx, "articles", 0, 1)
		require.NoError(t, err)
		require.Len(t, docs, 1)
	})

	t.Run("exhausted scan returns empty", func(t *testing.T) {
		docs, err := payloads.ScanPayloads(ctx, "articles", 2, 10)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestPayloadStoreCount(t *testing.T) {
	ctx := context.Background()
	repo, payloads, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	count, err := payloads.CountPayloads(ctx, "articles")
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, repo.SaveIndex(ctx, "articles", testSnapshot()))

	count, err = payloads.CountPayloads(ctx, "articles")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

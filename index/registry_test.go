package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weecici/fusedex/core"
	"github.com/weecici/fusedex/tokenizer"
)

type fakeLoader struct {
	indexes map[string]*LexicalIndex
	calls   int
}

func (f *fakeLoader) LoadIndex(_ context.Context, collection string) (*LexicalIndex, error) {
	f.calls++
	ix, ok := f.indexes[collection]
	if !ok {
		return nil, core.ErrIndexNotFound
	}
	return ix, nil
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()

	tok, err := tokenizer.New()
	require.NoError(t, err)
	b, err := NewBuilder(tok)
	require.NoError(t, err)
	defer b.Release()

	ix, err := b.Build(ctx, testCorpus())
	require.NoError(t, err)

	t.Run("unknown collection without loader", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.Get(ctx, "missing")
		assert.ErrorIs(t, err, core.ErrIndexNotFound)
	})

	t.Run("publish then get", func(t *testing.T) {
		r := NewRegistry()
		r.Publish("lectures", ix)

		got, err := r.Get(ctx, "lectures")
		require.NoError(t, err)
		assert.Same(t, ix, got)
	})

	t.Run("loader fallback is cached", func(t *testing.T) {
		loader := &fakeLoader{indexes: map[string]*LexicalIndex{"lectures": ix}}
		r := NewRegistry(WithLoader(loader))

		got, err := r.Get(ctx, "lectures")
		require.NoError(t, err)
		assert.Same(t, ix, got)

		_, err = r.Get(ctx, "lectures")
		require.NoError(t, err)
		assert.Equal(t, 1, loader.calls)
	})

	t.Run("loader miss surfaces not found", func(t *testing.T) {
		loader := &fakeLoader{indexes: map[string]*LexicalIndex{}}
		r := NewRegistry(WithLoader(loader))

		_, err := r.Get(ctx, "missing")
		assert.ErrorIs(t, err, core.ErrIndexNotFound)
	})

	t.Run("publish replaces the snapshot", func(t *testing.T) {
		r := NewRegistry()
		r.Publish("lectures", ix)

		updated, err := b.BuildOrUpdate(ctx, ix, []core.Document{{Id: 42, Text: "new material"}})
		require.NoError(t, err)
		r.Publish("lectures", updated)

		got, err := r.Get(ctx, "lectures")
		require.NoError(t, err)
		assert.Same(t, updated, got)
	})

	t.Run("drop evicts the cache", func(t *testing.T) {
		loader := &fakeLoader{indexes: map[string]*LexicalIndex{"lectures": ix}}
		r := NewRegistry(WithLoader(loader))
		r.Publish("lectures", ix)

		r.Drop("lectures")
		_, err := r.Get(ctx, "lectures")
		require.NoError(t, err)
		assert.Equal(t, 1, loader.calls)
	})
}

package fusedex

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weecici/fusedex/ai/mock"
	"github.com/weecici/fusedex/core"
)

func TestOpen(t *testing.T) {
	t.Run("create new engine", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "test_db")
		engine, err := Open(dir, WithProvider(mock.NewProvider()))
		require.NoError(t, err)
		require.NotNil(t, engine)
		defer engine.Close()

		assert.NotNil(t, engine.Registry())
		assert.NotNil(t, engine.IndexRepository())
		assert.NotNil(t, engine.PayloadStore())
		assert.NotNil(t, engine.VectorBackend())
		assert.NotNil(t, engine.CheckpointRepository())
	})

	t.Run("in-memory engine", func(t *testing.T) {
		engine, err := Open("", WithProvider(mock.NewProvider()))
		require.NoError(t, err)
		require.NoError(t, engine.Close())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// A file path where a directory is expected.
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		engine, err := Open(tmpFile, WithProvider(mock.NewProvider()))
		assert.Error(t, err)
		assert.Nil(t, engine)
	})

	t.Run("invalid process method", func(t *testing.T) {
		engine, err := Open("", WithProvider(mock.NewProvider()), WithProcessMethod("soundex"))
		assert.Error(t, err)
		assert.Nil(t, engine)
	})
}

func TestEngine_Close(t *testing.T) {
	engine, err := Open(t.TempDir(), WithProvider(mock.NewProvider()))
	require.NoError(t, err)
	assert.NoError(t, engine.Close())
}

func TestEngine_FactoryMethods(t *testing.T) {
	engine, err := Open(t.TempDir(), WithProvider(mock.NewProvider()))
	require.NoError(t, err)
	defer engine.Close()

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := engine.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := engine.NewSearcher()
		require.NoError(t, err)
		require.NotNil(t, searcher)
	})

	t.Run("can create reindexer", func(t *testing.T) {
		reindexer, err := engine.NewReindexer()
		require.NoError(t, err)
		require.NotNil(t, reindexer)
	})
}

func TestEngine_IngestAndSearch(t *testing.T) {
	ctx := context.Background()
	engine, err := Open("", WithProvider(mock.NewProvider()))
	require.NoError(t, err)
	defer engine.Close()

	pipeline, err := engine.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	docs := []core.Document{
		{Text: "the cat sat on the mat"},
		{Text: "dogs chase cats around the yard"},
		{Text: "quantum computing advances rapidly"},
	}
	require.NoError(t, pipeline.Ingest(ctx, "articles", docs))

	searcher, err := engine.NewSearcher()
	require.NoError(t, err)

	t.Run("lexical", func(t *testing.T) {
		results, err := searcher.LexicalSearch(ctx, "articles", []string{"cat"}, 5, core.ScoringBM25)
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.Len(t, results[0], 2)
		assert.NotEmpty(t, results[0][0].Payload.Text)
	})

	t.Run("hybrid", func(t *testing.T) {
		results, err := searcher.HybridSearch(ctx, "articles", []string{"cat"}, nil, 3, 2.0, core.FusionRRF)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.NotEmpty(t, results[0])
	})

	t.Run("survives reopen", func(t *testing.T) {
		// An on-disk engine reloads the snapshot through the registry loader.
		dir := t.TempDir()
		onDisk, err := Open(dir, WithProvider(mock.NewProvider()))
		require.NoError(t, err)

		p, err := onDisk.NewIngestionPipeline()
		require.NoError(t, err)
		require.NoError(t, p.Ingest(ctx, "articles", docs))
		p.Release()
		require.NoError(t, onDisk.Close())

		reopened, err := Open(dir, WithProvider(mock.NewProvider()))
		require.NoError(t, err)
		defer reopened.Close()

		s, err := reopened.NewSearcher()
		require.NoError(t, err)
		results, err := s.LexicalSearch(ctx, "articles", []string{"quantum"}, 5, core.ScoringBM25)
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.Len(t, results[0], 1)
	})
}

package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weecici/fusedex/ai/mock"
	"github.com/weecici/fusedex/core"
	"github.com/weecici/fusedex/index"
	"github.com/weecici/fusedex/storage"
	badgerstore "github.com/weecici/fusedex/storage/badger"
	"github.com/weecici/fusedex/tokenizer"
	"github.com/weecici/fusedex/vector"
)

type pipelineFixture struct {
	pipeline *Pipeline
	registry *index.Registry
	embedder *mock.Embedder
	backend  *badgerstore.Backend
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	indexRepo, _, vectors, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	tok, err := tokenizer.New()
	require.NoError(t, err)

	builder, err := index.NewBuilder(tok)
	require.NoError(t, err)
	t.Cleanup(builder.Release)

	registry := index.NewRegistry(index.WithLoader(indexRepo))
	embedder := mock.NewEmbedder()

	pipeline, err := NewPipeline(builder, registry, indexRepo, vectors, embedder)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return &pipelineFixture{
		pipeline: pipeline,
		registry: registry,
		embedder: embedder,
		backend:  backend,
	}
}

func TestPipelineIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes the new snapshot", func(t *testing.T) {
		f := newPipelineFixture(t)

		err := f.pipeline.Ingest(ctx, "articles", []core.Document{
			{Id: 1, Text: "the cat sat on the mat"},
			{Id: 2, Text: "dogs chase cats"},
		})
		require.NoError(t, err)

		ix, err := f.registry.Get(ctx, "articles")
		require.NoError(t, err)
		assert.Equal(t, 2, ix.DocCount())
		require.NoError(t, ix.Validate())

		// Payload text defaults to the indexed text.
		payload, ok := ix.Payload(1)
		require.True(t, ok)
		assert.Equal(t, "the cat sat on the mat", payload.Text)
	})

	t.Run("assigns content-based ids", func(t *testing.T) {
		f := newPipelineFixture(t)

		require.NoError(t, f.pipeline.Ingest(ctx, "articles", []core.Document{
			{Text: "a stable piece of text"},
		}))

		ix, err := f.registry.Get(ctx, "articles")
		require.NoError(t, err)
		assert.True(t, ix.Contains(core.IDFromContent("a stable piece of text")))
	})

	t.Run("re-ingestion is idempotent", func(t *testing.T) {
		f := newPipelineFixture(t)
		docs := []core.Document{
			{Id: 1, Text: "the cat sat"},
			{Id: 2, Text: "on the mat"},
		}

		require.NoError(t, f.pipeline.Ingest(ctx, "articles", docs))
		first, err := f.registry.Get(ctx, "articles")
		require.NoError(t, err)

		require.NoError(t, f.pipeline.Ingest(ctx, "articles", docs))
		second, err := f.registry.Get(ctx, "articles")
		require.NoError(t, err)

		assert.Equal(t, first.Export(), second.Export())
	})

	t.Run("upsert replaces a changed document", func(t *testing.T) {
		f := newPipelineFixture(t)

		require.NoError(t, f.pipeline.Ingest(ctx, "articles", []core.Document{
			{Id: 1, Text: "old words here"},
		}))
		require.NoError(t, f.pipeline.Ingest(ctx, "articles", []core.Document{
			{Id: 1, Text: "completely new words"},
		}))

		ix, err := f.registry.Get(ctx, "articles")
		require.NoError(t, err)
		assert.Equal(t, 1, ix.DocCount())
		require.NoError(t, ix.Validate())
	})

	t.Run("empty batch is rejected", func(t *testing.T) {
		f := newPipelineFixture(t)
		err := f.pipeline.Ingest(ctx, "articles", nil)
		require.ErrorIs(t, err, core.ErrEmptyCorpus)
	})

	t.Run("blank document is rejected", func(t *testing.T) {
		f := newPipelineFixture(t)
		err := f.pipeline.Ingest(ctx, "articles", []core.Document{{Id: 1, Text: "   "}})
		require.ErrorIs(t, err, core.ErrEmptyContent)
	})
}

func TestPipelineIngestFailuresAbortBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("embedder failure publishes nothing", func(t *testing.T) {
		f := newPipelineFixture(t)
		f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("embedding service down")
		}

		err := f.pipeline.Ingest(ctx, "articles", []core.Document{{Id: 1, Text: "doomed"}})
		require.Error(t, err)

		_, err = f.registry.Get(ctx, "articles")
		require.ErrorIs(t, err, core.ErrIndexNotFound)
	})

	t.Run("inconsistent embedding dimensions abort", func(t *testing.T) {
		f := newPipelineFixture(t)
		f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			vec := make([]float32, len(text))
			for i := range vec {
				vec[i] = 1
			}
			return vec, nil
		}

		err := f.pipeline.Ingest(ctx, "articles", []core.Document{
			{Id: 1, Text: "short"},
			{Id: 2, Text: "a much longer document"},
		})
		require.ErrorIs(t, err, core.ErrDimensionMismatch)
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		f := newPipelineFixture(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := f.pipeline.Ingest(cancelled, "articles", []core.Document{{Id: 1, Text: "doc"}})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestPipelineIngestPersists(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)

	require.NoError(t, f.pipeline.Ingest(ctx, "articles", []core.Document{
		{Id: 1, Text: "the cat sat on the mat"},
	}))

	// A fresh registry backed by the same storage sees the snapshot.
	indexRepo, err := badgerstore.NewIndexRepository(f.backend)
	require.NoError(t, err)
	fresh := index.NewRegistry(index.WithLoader(indexRepo))

	ix, err := fresh.Get(ctx, "articles")
	require.NoError(t, err)
	assert.Equal(t, 1, ix.DocCount())
}

// flakyVectorBackend delegates to a real backend and fails the nth Upsert.
type flakyVectorBackend struct {
	vector.Backend
	failAt int
	calls  int
	err    error
}

func (f *flakyVectorBackend) Upsert(ctx context.Context, collection string, id core.ID, vec []float32) error {
	f.calls++
	if f.calls == f.failAt {
		return f.err
	}
	return f.Backend.Upsert(ctx, collection, id, vec)
}

// failingIndexRepo refuses to persist any snapshot.
type failingIndexRepo struct {
	storage.IndexRepository
	err error
}

func (f *failingIndexRepo) SaveIndex(ctx context.Context, collection string, snap *index.Snapshot) error {
	return f.err
}

func TestPipelineIngestRollsBackVectors(t *testing.T) {
	ctx := context.Background()

	docs := []core.Document{
		{Id: 1, Text: "the cat sat on the mat"},
		{Id: 2, Text: "dogs chase the cat"},
		{Id: 3, Text: "quantum entanglement of photons"},
	}
	probeVector := func() []float32 {
		q := make([]float32, mock.DefaultDimension)
		q[0] = 1
		return q
	}

	t.Run("mid-batch upsert failure", func(t *testing.T) {
		indexRepo, _, vectors, backend, err := badgerstore.NewMemoryRepositories()
		require.NoError(t, err)
		t.Cleanup(func() { backend.Close() })

		tok, err := tokenizer.New()
		require.NoError(t, err)
		builder, err := index.NewBuilder(tok)
		require.NoError(t, err)
		t.Cleanup(builder.Release)

		registry := index.NewRegistry(index.WithLoader(indexRepo))
		boom := errors.New("quota exceeded")
		flaky := &flakyVectorBackend{Backend: vectors, failAt: 3, err: boom}

		pipeline, err := NewPipeline(builder, registry, indexRepo, flaky, mock.NewEmbedder())
		require.NoError(t, err)
		t.Cleanup(pipeline.Release)

		err = pipeline.Ingest(ctx, "articles", docs)
		require.ErrorIs(t, err, boom)

		// The vectors upserted before the failure must not be retrievable.
		matches, err := vectors.KNN(ctx, "articles", probeVector(), 10)
		require.NoError(t, err)
		assert.Empty(t, matches)

		_, err = registry.Get(ctx, "articles")
		assert.ErrorIs(t, err, core.ErrIndexNotFound)
	})

	t.Run("snapshot persist failure", func(t *testing.T) {
		indexRepo, _, vectors, backend, err := badgerstore.NewMemoryRepositories()
		require.NoError(t, err)
		t.Cleanup(func() { backend.Close() })

		tok, err := tokenizer.New()
		require.NoError(t, err)
		builder, err := index.NewBuilder(tok)
		require.NoError(t, err)
		t.Cleanup(builder.Release)

		registry := index.NewRegistry(index.WithLoader(indexRepo))
		boom := errors.New("disk full")
		broken := &failingIndexRepo{IndexRepository: indexRepo, err: boom}

		pipeline, err := NewPipeline(builder, registry, broken, vectors, mock.NewEmbedder())
		require.NoError(t, err)
		t.Cleanup(pipeline.Release)

		err = pipeline.Ingest(ctx, "articles", docs)
		require.ErrorIs(t, err, boom)

		matches, err := vectors.KNN(ctx, "articles", probeVector(), 10)
		require.NoError(t, err)
		assert.Empty(t, matches)

		_, err = registry.Get(ctx, "articles")
		assert.ErrorIs(t, err, core.ErrIndexNotFound)
	})
}

func TestNewPipelineValidation(t *testing.T) {
	tok, err := tokenizer.New()
	require.NoError(t, err)
	builder, err := index.NewBuilder(tok)
	require.NoError(t, err)
	defer builder.Release()

	_, err = NewPipeline(nil, nil, nil, nil, nil)
	require.ErrorIs(t, err, ErrBuilderRequired)

	_, err = NewPipeline(builder, nil, nil, nil, nil)
	require.ErrorIs(t, err, ErrRegistryRequired)
}

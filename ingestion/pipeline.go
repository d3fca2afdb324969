package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/weecici/fusedex/ai"
	"github.com/weecici/fusedex/core"
	"github.com/weecici/fusedex/index"
	"github.com/weecici/fusedex/storage"
	"github.com/weecici/fusedex/vector"
)

// Pipeline orchestrates document ingestion into a collection.
// It updates the lexical index, embeds documents concurrently, feeds the
// vector backend, persists the snapshot, and publishes it to the registry.
type Pipeline struct {
	builder   *index.Builder
	registry  *index.Registry
	indexRepo storage.IndexRepository
	vectors   vector.Backend
	embedder  ai.Embedder
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	builder *index.Builder,
	registry *index.Registry,
	indexRepo storage.IndexRepository,
	vectors vector.Backend,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if builder == nil {
		return nil, ErrBuilderRequired
	}
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if indexRepo == nil {
		return nil, ErrIndexRepositoryRequired
	}
	if vectors == nil {
		return nil, ErrVectorBackendRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		builder:   builder,
		registry:  registry,
		indexRepo: indexRepo,
		vectors:   vectors,
		embedder:  embedder,
		pool:      pool,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	return p, nil
}

// Ingest adds a batch of documents to the collection, with upsert semantics
// for documents whose id already exists. The whole batch succeeds or fails
// together: on any error the previous snapshot stays current and nothing is
// published.
func (p *Pipeline) Ingest(ctx context.Context, collection string, docs []core.Document) error {
	if err := core.ValidateDocuments(docs); err != nil {
		return err
	}
	prepared := prepareDocuments(docs)

	base, err := p.registry.Get(ctx, collection)
	if err != nil && !errors.Is(err, core.ErrIndexNotFound) {
		return err
	}

	ix, err := p.builder.BuildOrUpdate(ctx, base, prepared)
	if err != nil {
		return fmt.Errorf("building index for collection %q: %w", collection, err)
	}

	vecs, err := p.embedDocuments(ctx, prepared)
	if err != nil {
		return fmt.Errorf("embedding batch for collection %q: %w", collection, err)
	}

	upserted := make([]core.ID, 0, len(prepared))
	for i, doc := range prepared {
		if err := p.vectors.Upsert(ctx, collection, doc.Id, vecs[i]); err != nil {
			p.rollbackVectors(collection, upserted)
			return fmt.Errorf("upserting vector for document %d: %w", doc.Id, err)
		}
		upserted = append(upserted, doc.Id)
	}

	if err := p.indexRepo.SaveIndex(ctx, collection, ix.Export()); err != nil {
		p.rollbackVectors(collection, upserted)
		return err
	}
	p.registry.Publish(collection, ix)

	p.logger.Info("batch ingested",
		"collection", collection,
		"docs", len(prepared),
		"doc_count", ix.DocCount(),
		"vocab", ix.VocabSize())
	return nil
}

// rollbackVectors removes vectors upserted by a batch that failed before
// its snapshot was persisted, so dense queries never retrieve documents
// from an unpublished batch. Runs on a detached context: the batch may have
// failed through cancellation, and the compensation must still complete.
func (p *Pipeline) rollbackVectors(collection string, ids []core.ID) {
	ctx := context.Background()
	for _, id := range ids {
		if err := p.vectors.Delete(ctx, collection, id); err != nil {
			p.logger.Error("rolling back vector",
				"collection", collection,
				"doc", id,
				"err", err)
		}
	}
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// embedDocuments fans embedding out across the worker pool, one task per
// document. Every embedding must have the same dimension; a disagreement
// aborts the batch with core.ErrDimensionMismatch.
func (p *Pipeline) embedDocuments(ctx context.Context, docs []core.Document) ([][]float32, error) {
	vecs := make([][]float32, len(docs))
	errs := make([]error, len(docs))

	var wg sync.WaitGroup
	for i := range docs {
		if err := ctx.Err(); err != nil {
			break
		}
		wg.Add(1)
		idx := i
		err := p.pool.Submit(func() {
			defer wg.Done()
			vecs[idx], errs[idx] = p.embedder.EmbedText(ctx, docs[idx].Text)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", docs[i].Id, err)
		}
	}

	dim := len(vecs[0])
	for i, vec := range vecs {
		if len(vec) != dim {
			return nil, fmt.Errorf("%w: document %d embedded to %d dimensions, expected %d",
				core.ErrDimensionMismatch, docs[i].Id, len(vec), dim)
		}
	}
	return vecs, nil
}

// prepareDocuments copies the batch, assigns content-based ids to documents
// without one, and defaults the payload text to the indexed text so results
// hydrate even when the caller supplied no payload.
func prepareDocuments(docs []core.Document) []core.Document {
	prepared := make([]core.Document, len(docs))
	copy(prepared, docs)
	for i := range prepared {
		if prepared[i].Id == 0 {
			prepared[i].Id = core.IDFromContent(prepared[i].Text)
		}
		if prepared[i].Payload.Text == "" {
			prepared[i].Payload.Text = prepared[i].Text
		}
	}
	return prepared
}

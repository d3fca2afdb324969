package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/weecici/fusedex/ai"
	"github.com/weecici/fusedex/core"
	"github.com/weecici/fusedex/vector"
)

// BatchProcessor regenerates embeddings for batches of documents and
// upserts them into the vector backend.
type BatchProcessor struct {
	embedder       ai.Embedder
	vectors        vector.Backend
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(embedder ai.Embedder, vectors vector.Backend, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		embedder:       embedder,
		vectors:        vectors,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds a batch of documents and replaces their stored vectors.
// The backend normalizes vectors on write, so cosine ranking stays valid
// across embedding model changes.
func (bp *BatchProcessor) Process(ctx context.Context, collection string, docs []core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(docs) {
		return fmt.Errorf("%w: expected %d, got %d", core.ErrDimensionMismatch, len(docs), len(embeddings))
	}

	for i, doc := range docs {
		if err := bp.vectors.Upsert(ctx, collection, doc.Id, embeddings[i]); err != nil {
			return fmt.Errorf("failed to store vector for document %d: %w", doc.Id, err)
		}
	}
	return nil
}

// Copyright 2025 The fusedex authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reindex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/weecici/fusedex/ai"
	"github.com/weecici/fusedex/core"
	"github.com/weecici/fusedex/index"
	"github.com/weecici/fusedex/storage"
	"github.com/weecici/fusedex/vector"
)

// Config holds configuration for a reindexing run.
type Config struct {
	// BatchSize is the number of documents to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer rebuilds a collection's lexical index from stored payloads,
// optionally regenerating its vectors.
type Reindexer struct {
	payloads    storage.PayloadStore
	checkpoints storage.CheckpointRepository
	indexRepo   storage.IndexRepository
	registry    *index.Registry
	builder     *index.Builder
	config      *Config
	progress    io.Writer
	embedder    ai.Embedder
	vectors     vector.Backend
	processor   *BatchProcessor
	iterator    *DocumentIterator
}

// Option configures a Reindexer.
type Option func(*Reindexer)

// WithConfig replaces the default configuration.
func WithConfig(config *Config) Option {
	return func(r *Reindexer) {
		if config != nil {
			r.config = config
		}
	}
}

// WithProgressWriter sets where progress output is written.
// Default is io.Discard.
func WithProgressWriter(w io.Writer) Option {
	return func(r *Reindexer) {
		if w != nil {
			r.progress = w
		}
	}
}

// WithEmbedding enables vector regeneration during the run. Without it the
// run rebuilds only the lexical index and leaves stored vectors untouched.
func WithEmbedding(embedder ai.Embedder, vectors vector.Backend) Option {
	return func(r *Reindexer) {
		if embedder != nil && vectors != nil {
			r.embedder = embedder
			r.vectors = vectors
		}
	}
}

// NewReindexer creates a new reindexer.
func NewReindexer(
	payloads storage.PayloadStore,
	checkpoints storage.CheckpointRepository,
	indexRepo storage.IndexRepository,
	registry *index.Registry,
	builder *index.Builder,
	opts ...Option,
) (*Reindexer, error) {
	if payloads == nil {
		return nil, ErrPayloadStoreRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointsRequired
	}
	if indexRepo == nil {
		return nil, ErrIndexRepositoryRequired
	}
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if builder == nil {
		return nil, ErrBuilderRequired
	}

	r := &Reindexer{
		payloads:    payloads,
		checkpoints: checkpoints,
		indexRepo:   indexRepo,
		registry:    registry,
		builder:     builder,
		config:      DefaultConfig(),
		progress:    io.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	// The processor and iterator read the config, so they are built only
	// after every option has been applied.
	if r.embedder != nil {
		r.processor = NewBatchProcessor(r.embedder, r.vectors, r.config.MaxRetries, r.config.RetryDelay)
	}
	r.iterator = NewDocumentIterator(payloads, r.config.BatchSize)
	return r, nil
}

// checkpointTask names the checkpoint record for a collection's run.
func checkpointTask(collection string) string {
	return "reindex:" + collection
}

// Run rebuilds the collection's index from its stored documents. After each
// batch the snapshot and a checkpoint are persisted, so an interrupted run
// resumes from the last completed batch. On success the rebuilt index is
// published and the checkpoint is cleared.
func (r *Reindexer) Run(ctx context.Context, collection string) error {
	total, err := r.payloads.CountPayloads(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No documents found in collection %q\n", collection)
		return nil
	}

	task := checkpointTask(collection)
	var afterID core.ID
	processed := 0
	if cp, err := r.checkpoints.LoadCheckpoint(ctx, task); err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	} else if cp != nil {
		afterID = cp.LastID
		processed = cp.Processed
		fmt.Fprintf(r.progress, "Resuming from checkpoint: %d/%d documents done\n", processed, total)
	}

	// The rebuild runs on top of the current snapshot: each batch replaces
	// its documents in place, so payload records for unprocessed documents
	// survive the per-batch persists.
	ix, err := r.indexRepo.LoadIndex(ctx, collection)
	if err != nil && !errors.Is(err, core.ErrIndexNotFound) {
		return fmt.Errorf("failed to load index: %w", err)
	}

	fmt.Fprintf(r.progress, "Reindexing %d documents in %q (batch size: %d)\n",
		total, collection, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start(processed)

	err = r.iterator.ForEach(ctx, collection, afterID, func(docs []core.Document) error {
		ix, err = r.builder.BuildOrUpdate(ctx, ix, docs)
		if err != nil {
			return fmt.Errorf("failed to rebuild batch: %w", err)
		}

		if r.processor != nil {
			if err := r.processor.Process(ctx, collection, docs); err != nil {
				return err
			}
		}

		if err := r.indexRepo.SaveIndex(ctx, collection, ix.Export()); err != nil {
			return fmt.Errorf("failed to persist snapshot: %w", err)
		}

		processed += len(docs)
		cp := &core.Checkpoint{
			Task:      task,
			LastID:    docs[len(docs)-1].Id,
			Processed: processed,
		}
		if err := r.checkpoints.SaveCheckpoint(ctx, cp); err != nil {
			return fmt.Errorf("failed to save checkpoint: %w", err)
		}

		tracker.Update(processed)
		return nil
	})
	if err != nil {
		return err
	}

	r.registry.Publish(collection, ix)
	if err := r.checkpoints.DeleteCheckpoint(ctx, task); err != nil {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}

	tracker.Finish()
	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindexing complete. Processed %d documents in %v (%.1f docs/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())
	return nil
}

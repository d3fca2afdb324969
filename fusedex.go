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


package fusedex

import (
	"log/slog"

	"github.com/weecici/fusedex/ai"
	"github.com/weecici/fusedex/ai/openai"
	"github.com/weecici/fusedex/index"
	"github.com/weecici/fusedex/ingestion"
	"github.com/weecici/fusedex/reindex"
	"github.com/weecici/fusedex/search"
	"github.com/weecici/fusedex/storage"
	"github.com/weecici/fusedex/storage/badger"
	"github.com/weecici/fusedex/tokenizer"
	"github.com/weecici/fusedex/vector"
)

// Engine wires the storage backend, index registry, embedding provider, and
// tokenizer into a single handle, and hands out ingestion pipelines,
// searchers, and reindexers built on top of them.
type Engine struct {
	backend     *badger.Backend
	indexRepo   storage.IndexRepository
	payloads    storage.PayloadStore
	vectors     vector.Backend
	checkpoints storage.CheckpointRepository
	registry    *index.Registry
	tok         *tokenizer.Tokenizer
	builder     *index.Builder
	provider    ai.Provider
	logger      *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig      *ai.Config
	provider      ai.Provider
	processMethod tokenizer.ProcessMethod
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider replaces the default OpenAI-compatible provider, for tests
// or alternative embedding backends.
func WithProvider(provider ai.Provider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithProcessMethod sets the tokenizer's word-processing stage.
func WithProcessMethod(method tokenizer.ProcessMethod) EngineOption {
	return func(o *engineOptions) {
		o.processMethod = method
	}
}

// Open creates an engine backed by a badger database at filePath.
// An empty filePath opens an in-memory database that is lost on Close.
func Open(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, filePath == "")
	if err != nil {
		return nil, err
	}

	indexRepo, err := badger.NewIndexRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	payloads, err := badger.NewPayloadStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	vectors, err := badger.NewVectorStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	checkpoints := badger.NewCheckpointRepository(backend)

	var tokOpts []tokenizer.Option
	if options.processMethod != "" {
		tokOpts = append(tokOpts, tokenizer.WithProcessMethod(options.processMethod))
	}
	tok, err := tokenizer.New(tokOpts...)
	if err != nil {
		backend.Close()
		return nil, err
	}

	builder, err := index.NewBuilder(tok)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			builder.Release()
			backend.Close()
			return nil, err
		}
	}

	return &Engine{
		backend:     backend,
		indexRepo:   indexRepo,
		payloads:    payloads,
		vectors:     vectors,
		checkpoints: checkpoints,
		registry:    index.NewRegistry(index.WithLoader(indexRepo)),
		tok:         tok,
		builder:     builder,
		provider:    provider,
		logger:      slog.Default(),
	}, nil
}

// Close releases the engine's resources. The embedding provider is closed
// first, then the worker pool and the storage backend.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing embedding provider", "err", err)
	}

	e.builder.Release()

	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Registry returns the engine's index registry.
func (e *Engine) Registry() *index.Registry {
	return e.registry
}

// IndexRepository returns the engine's persisted index repository.
func (e *Engine) IndexRepository() storage.IndexRepository {
	return e.indexRepo
}

// PayloadStore returns the engine's payload store.
func (e *Engine) PayloadStore() storage.PayloadStore {
	return e.payloads
}

// VectorBackend returns the engine's vector backend.
func (e *Engine) VectorBackend() vector.Backend {
	return e.vectors
}

// Builder returns the engine's index builder.
func (e *Engine) Builder() *index.Builder {
	return e.builder
}

// CheckpointRepository returns the engine's checkpoint repository.
func (e *Engine) CheckpointRepository() storage.CheckpointRepository {
	return e.checkpoints
}

// NewIngestionPipeline creates an ingestion pipeline on the engine's
// components.
func (e *Engine) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(e.builder, e.registry, e.indexRepo, e.vectors, e.provider.Embedder(), opts...)
}

// NewSearcher creates a searcher on the engine's components. Dense hits are
// hydrated from the payload store when the lexical snapshot lacks them.
func (e *Engine) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	opts = append([]search.Option{search.WithPayloadStore(e.payloads)}, opts...)
	return search.NewSearcher(e.registry, e.vectors, e.provider.Embedder(), e.tok, opts...)
}

// NewReindexer creates a reindexer on the engine's components. Vector
// regeneration uses the engine's embedding provider.
func (e *Engine) NewReindexer(opts ...reindex.Option) (*reindex.Reindexer, error) {
	opts = append(opts, reindex.WithEmbedding(e.provider.Embedder(), e.vectors))
	return reindex.NewReindexer(e.payloads, e.checkpoints, e.indexRepo, e.registry, e.builder, opts...)
}

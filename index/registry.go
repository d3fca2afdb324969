package index

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/weecici/fusedex/core"
)

// Loader loads a persisted index snapshot for a collection.
// Implementations return core.ErrIndexNotFound for collections that were
// never built. storage backends satisfy this interface.
type Loader interface {
	LoadIndex(ctx context.Context, collection string) (*LexicalIndex, error)
}

// Registry holds the current index snapshot per collection. Snapshots are
// immutable; Publish swaps in a new one atomically so concurrent readers
// always see a consistent index. An optional Loader backs cache misses with
// persisted snapshots.
type Registry struct {
	mu      sync.RWMutex
	indexes map[string]*LexicalIndex
	loader  Loader
	logger  *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLoader backs the registry with a persisted-snapshot loader.
func WithLoader(loader Loader) RegistryOption {
	return func(r *Registry) {
		r.loader = loader
	}
}

// WithRegistryLogger sets a custom logger.
// Default is slog.Default().
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		indexes: make(map[string]*LexicalIndex),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the current snapshot for a collection. On a cache miss it
// falls back to the loader; core.ErrIndexNotFound is returned for a
// collection that was never built.
func (r *Registry) Get(ctx context.Context, collection string) (*LexicalIndex, error) {
	r.mu.RLock()
	ix, ok := r.indexes[collection]
	r.mu.RUnlock()
	if ok {
		return ix, nil
	}

	if r.loader == nil {
		return nil, fmt.Errorf("%w: collection %q", core.ErrIndexNotFound, collection)
	}

	ix, err := r.loader.LoadIndex(ctx, collection)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another goroutine may have loaded or published in the meantime;
	// keep whichever snapshot is already current.
	if current, ok := r.indexes[collection]; ok {
		return current, nil
	}
	r.indexes[collection] = ix
	r.logger.Debug("index loaded from storage", "collection", collection, "doc_count", ix.DocCount())
	return ix, nil
}

// Publish makes ix the current snapshot for the collection.
func (r *Registry) Publish(collection string, ix *LexicalIndex) {
	r.mu.Lock()
	r.indexes[collection] = ix
	r.mu.Unlock()
	r.logger.Debug("index snapshot published", "collection", collection, "doc_count", ix.DocCount())
}

// Drop removes a collection's snapshot from the registry cache.
// The next Get falls back to the loader.
func (r *Registry) Drop(collection string) {
	r.mu.Lock()
	delete(r.indexes, collection)
	r.mu.Unlock()
}

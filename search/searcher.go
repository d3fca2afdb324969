package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/weecici/fusedex/ai"
	"github.com/weecici/fusedex/core"
	"github.com/weecici/fusedex/fusion"
	"github.com/weecici/fusedex/index"
	"github.com/weecici/fusedex/storage"
	"github.com/weecici/fusedex/tokenizer"
	"github.com/weecici/fusedex/vector"
)

// Default request parameters.
const (
	// DefaultTopK is the result count used when a request leaves TopK zero.
	DefaultTopK = 5
	// DefaultOverfetchMultiplier is the candidate overfetch factor for
	// hybrid retrieval when a request leaves it zero.
	DefaultOverfetchMultiplier = 2.0
)

// Request describes one retrieval batch over a single collection.
// Zero-valued fields fall back to defaults: ModeHybrid, ScoringBM25,
// FusionDBSF, DefaultTopK, DefaultOverfetchMultiplier.
type Request struct {
	Collection string
	Queries    []string

	// Vectors optionally carries precomputed query embeddings, one per
	// query. When nil and the mode needs them, queries are embedded.
	Vectors [][]float32

	TopK                int
	Mode                core.SearchMode
	Scoring             core.ScoringMethod
	Fusion              core.FusionMethod
	OverfetchMultiplier float64
}

// Searcher dispatches retrieval requests across the lexical index and the
// vector backend.
type Searcher struct {
	registry *index.Registry
	vectors  vector.Backend
	embedder ai.Embedder
	tok      *tokenizer.Tokenizer
	payloads storage.PayloadStore
	fuser    *fusion.Fuser
	reranker Reranker
	params   index.BM25Params
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithPayloadStore backs dense-result hydration with a payload store, for
// hits whose payloads are not in the lexical snapshot.
func WithPayloadStore(payloads storage.PayloadStore) Option {
	return func(s *Searcher) error {
		s.payloads = payloads
		return nil
	}
}

// WithFuser replaces the default fuser.
func WithFuser(fuser *fusion.Fuser) Option {
	return func(s *Searcher) error {
		if fuser != nil {
			s.fuser = fuser
		}
		return nil
	}
}

// WithReranker applies a reranker to final result lists.
// Default is NoopReranker.
func WithReranker(reranker Reranker) Option {
	return func(s *Searcher) error {
		if reranker != nil {
			s.reranker = reranker
		}
		return nil
	}
}

// WithBM25Params overrides the BM25 free parameters.
func WithBM25Params(params index.BM25Params) Option {
	return func(s *Searcher) error {
		s.params = params
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	registry *index.Registry,
	vectors vector.Backend,
	embedder ai.Embedder,
	tok *tokenizer.Tokenizer,
	opts ...Option,
) (*Searcher, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if vectors == nil {
		return nil, ErrVectorBackendRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if tok == nil {
		return nil, ErrTokenizerRequired
	}

	fuser, err := fusion.New()
	if err != nil {
		return nil, err
	}

	s := &Searcher{
		registry: registry,
		vectors:  vectors,
		embedder: embedder,
		tok:      tok,
		fuser:    fuser,
		reranker: NoopReranker{},
		params:   index.DefaultBM25Params(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LexicalSearch runs a sparse batch with the given scoring method and
// returns one ranked list per query.
func (s *Searcher) LexicalSearch(ctx context.Context, collection string, queries []string, topK int, method core.ScoringMethod) ([][]core.RetrievedDocument, error) {
	return s.Retrieve(ctx, Request{
		Collection: collection,
		Queries:    queries,
		TopK:       topK,
		Mode:       core.ModeSparse,
		Scoring:    method,
	})
}

// HybridSearch runs both backends for each query and fuses the rankings.
// Vectors may be nil, in which case the queries are embedded.
func (s *Searcher) HybridSearch(ctx context.Context, collection string, queries []string, vectors [][]float32, topK int, overfetchMul float64, method core.FusionMethod) ([][]core.RetrievedDocument, error) {
	return s.Retrieve(ctx, Request{
		Collection:          collection,
		Queries:             queries,
		Vectors:             vectors,
		TopK:                topK,
		Mode:                core.ModeHybrid,
		Fusion:              method,
		OverfetchMultiplier: overfetchMul,
	})
}

// Retrieve runs a retrieval batch and returns one ranked list per query, in
// query order. Any per-query failure aborts the whole batch.
func (s *Searcher) Retrieve(ctx context.Context, req Request) ([][]core.RetrievedDocument, error) {
	return s.RetrieveWithMonitor(ctx, req, nil)
}

// RetrieveWithMonitor runs a retrieval batch with monitoring. The monitor
// receives callbacks at each stage, concurrently across queries.
func (s *Searcher) RetrieveWithMonitor(ctx context.Context, req Request, monitor SearchMonitor) ([][]core.RetrievedDocument, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	req, err := normalizeRequest(req)
	if err != nil {
		return nil, err
	}

	ix, err := s.registry.Get(ctx, req.Collection)
	if err != nil {
		// Dense retrieval can serve without a lexical snapshot.
		if req.Mode != core.ModeDense || !errors.Is(err, core.ErrIndexNotFound) {
			return nil, err
		}
		ix = nil
	}

	vecs := req.Vectors
	if vecs == nil && req.Mode != core.ModeSparse {
		vecs, err = s.embedder.EmbedTexts(ctx, req.Queries)
		if err != nil {
			return nil, fmt.Errorf("embedding queries: %w", err)
		}
		if len(vecs) != len(req.Queries) {
			return nil, fmt.Errorf("%w: embedder returned %d vectors for %d queries",
				core.ErrDimensionMismatch, len(vecs), len(req.Queries))
		}
	}

	results := make([][]core.RetrievedDocument, len(req.Queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, query := range req.Queries {
		var vec []float32
		if vecs != nil {
			vec = vecs[i]
		}
		g.Go(func() error {
			ranked, err := s.searchOne(gctx, ix, req, query, vec, monitor)
			if err != nil {
				return fmt.Errorf("query %q: %w", query, err)
			}
			results[i] = ranked
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("batch retrieved",
		"collection", req.Collection,
		"mode", req.Mode,
		"queries", len(req.Queries),
		"top_k", req.TopK)
	return results, nil
}

// searchOne serves a single query in the requested mode.
func (s *Searcher) searchOne(ctx context.Context, ix *index.LexicalIndex, req Request, query string, vec []float32, monitor SearchMonitor) ([]core.RetrievedDocument, error) {
	monitor.Start(query)

	var ranked []core.RetrievedDocument
	switch req.Mode {
	case core.ModeSparse:
		var err error
		ranked, err = ix.Search(s.tok.Tokenize(query), req.TopK, req.Scoring, s.params)
		if err != nil {
			return nil, err
		}
		monitor.AfterSparseSearch(query, ranked)

	case core.ModeDense:
		matches, err := s.vectors.KNN(ctx, req.Collection, vec, req.TopK)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrBackendUnavailable, err)
		}
		monitor.AfterDenseSearch(query, matches)
		ranked, err = s.hydrate(ctx, ix, req.Collection, matches)
		if err != nil {
			return nil, err
		}

	case core.ModeHybrid:
		overfetch := overfetchCount(req.TopK, req.OverfetchMultiplier)

		sparse, err := ix.Search(s.tok.Tokenize(query), overfetch, req.Scoring, s.params)
		if err != nil {
			return nil, err
		}
		monitor.AfterSparseSearch(query, sparse)

		matches, err := s.vectors.KNN(ctx, req.Collection, vec, overfetch)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrBackendUnavailable, err)
		}
		monitor.AfterDenseSearch(query, matches)

		dense, err := s.hydrate(ctx, ix, req.Collection, matches)
		if err != nil {
			return nil, err
		}

		// Nothing to fuse when neither backend produced candidates.
		if len(dense) == 0 && len(sparse) == 0 {
			monitor.Finish(query, nil)
			return nil, nil
		}

		ranked, err = s.fuser.Fuse(dense, sparse, req.Fusion)
		if err != nil {
			return nil, err
		}
		if len(ranked) > req.TopK {
			ranked = ranked[:req.TopK]
		}
		monitor.AfterFusion(query, ranked)
	}

	ranked, err := s.reranker.Rerank(ctx, query, ranked)
	if err != nil {
		return nil, err
	}
	monitor.Finish(query, ranked)
	return ranked, nil
}

// hydrate converts raw vector matches into result documents, taking payloads
// from the lexical snapshot first and falling back to the payload store.
func (s *Searcher) hydrate(ctx context.Context, ix *index.LexicalIndex, collection string, matches []core.VectorMatch) ([]core.RetrievedDocument, error) {
	if len(matches) == 0 {
		return nil, nil
	}

	ranked := make([]core.RetrievedDocument, len(matches))
	var missing []core.ID
	for i, match := range matches {
		ranked[i] = core.RetrievedDocument{Id: match.Id, Score: float64(match.Score)}
		if ix != nil {
			if payload, ok := ix.Payload(match.Id); ok {
				ranked[i].Payload = payload
				continue
			}
		}
		missing = append(missing, match.Id)
	}

	if len(missing) > 0 && s.payloads != nil {
		payloads, err := s.payloads.GetPayloads(ctx, collection, missing)
		if err != nil {
			return nil, err
		}
		for i := range ranked {
			if payload, ok := payloads[ranked[i].Id]; ok {
				ranked[i].Payload = payload
			}
		}
	}
	return ranked, nil
}

// normalizeRequest applies defaults and validates the request.
func normalizeRequest(req Request) (Request, error) {
	if len(req.Queries) == 0 {
		return req, core.ErrNoQueries
	}

	if req.Mode == "" {
		req.Mode = core.ModeHybrid
	}
	if !req.Mode.Valid() {
		return req, fmt.Errorf("%w: %q", core.ErrUnsupportedSearchMode, req.Mode)
	}

	if req.Scoring == "" {
		req.Scoring = core.ScoringBM25
	}
	if !req.Scoring.Valid() {
		return req, fmt.Errorf("%w: %q", core.ErrUnsupportedScoringMethod, req.Scoring)
	}

	if req.Fusion == "" {
		req.Fusion = core.FusionDBSF
	}
	if !req.Fusion.Valid() {
		return req, fmt.Errorf("%w: %q", core.ErrUnsupportedFusionMethod, req.Fusion)
	}

	if req.TopK == 0 {
		req.TopK = DefaultTopK
	}
	if req.TopK < 0 {
		return req, fmt.Errorf("%w: %d", ErrInvalidTopK, req.TopK)
	}

	if req.OverfetchMultiplier == 0 {
		req.OverfetchMultiplier = DefaultOverfetchMultiplier
	}
	if req.OverfetchMultiplier < 1 {
		return req, fmt.Errorf("%w: %g", ErrInvalidOverfetch, req.OverfetchMultiplier)
	}

	if req.Vectors != nil && len(req.Vectors) != len(req.Queries) {
		return req, fmt.Errorf("%w: %d vectors for %d queries",
			core.ErrDimensionMismatch, len(req.Vectors), len(req.Queries))
	}
	return req, nil
}

// overfetchCount is the candidate count requested from each backend before
// fusion: max(topK, round(topK * multiplier)).
func overfetchCount(topK int, multiplier float64) int {
	n := int(math.Round(float64(topK) * multiplier))
	if n < topK {
		return topK
	}
	return n
}

package search

import (
	"context"

	"github.com/weecici/fusedex/core"
)

// Reranker reorders a final result list for one query. It runs after fusion
// and truncation; implementations may call out to an external scoring model.
type Reranker interface {
	Rerank(ctx context.Context, query string, results []core.RetrievedDocument) ([]core.RetrievedDocument, error)
}

// NoopReranker returns results unchanged. It is the default.
type NoopReranker struct{}

var _ Reranker = (*NoopReranker)(nil)

// Rerank returns the results as they were ranked by retrieval.
func (NoopReranker) Rerank(_ context.Context, _ string, results []core.RetrievedDocument) ([]core.RetrievedDocument, error) {
	return results, nil
}

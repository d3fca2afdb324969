package vector

import (
	"context"

	"github.com/weecici/fusedex/core"
)

// Backend is a dense vector store grouped by collection.
type Backend interface {
	// Upsert stores or replaces the vector for the given document id.
	Upsert(ctx context.Context, collection string, id core.ID, vec []float32) error

	// KNN returns up to k matches for the query vector, ranked by cosine
	// similarity descending. An empty or unknown collection yields an
	// empty result, not an error.
	KNN(ctx context.Context, collection string, query []float32, k int) ([]core.VectorMatch, error)

	// Delete removes the vector for the given document id, if present.
	Delete(ctx context.Context, collection string, id core.ID) error

	// Dimension reports the dimension of the vectors stored in the
	// collection, or 0 when the collection is empty.
	Dimension(collection string) int
}

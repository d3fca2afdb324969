package badger

import (
	"context"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/weecici/fusedex/core"
	"github.com/weecici/fusedex/storage"
	"github.com/weecici/fusedex/vector"
)

// VectorStore implements vector.Backend on top of BadgerDB. Embeddings are
// normalized on insert and compared with a brute-force dot-product scan per
// query, the same strategy as the in-memory backend but durable.
type VectorStore struct {
	backend *Backend
}

var _ vector.Backend = (*VectorStore)(nil)

// NewVectorStore creates a new VectorStore.
func NewVectorStore(backend *Backend) (vector.Backend, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &VectorStore{backend: backend}, nil
}

// Upsert stores or replaces the embedding for the given document id.
// The stored copy is normalized to unit length.
func (s *VectorStore) Upsert(ctx context.Context, collection string, id core.ID, vec []float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	normalized, err := vector.Normalize(vec)
	if err != nil {
		return err
	}

	if dim := s.Dimension(collection); dim != 0 && dim != len(normalized) {
		return fmt.Errorf("%w: collection %q holds %d-dimensional vectors, got %d",
			core.ErrDimensionMismatch, collection, dim, len(normalized))
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeVectorKey(collection, id), storage.MarshalVector(normalized)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// KNN returns up to k matches for the query vector, ranked by cosine
// similarity descending, ties broken by ascending document id.
func (s *VectorStore) KNN(ctx context.Context, collection string, query []float32, k int) ([]core.VectorMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	normalized, err := vector.Normalize(query)
	if err != nil {
		return nil, err
	}

	prefix := makeVectorPrefix(collection)
	var matches []core.VectorMatch

	err = s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			id := vectorIDFromKey(prefix, item.Key())
			err := item.Value(func(val []byte) error {
				vec, err := storage.UnmarshalVector(val)
				if err != nil {
					return err
				}
				if len(vec) != len(normalized) {
					return fmt.Errorf("%w: collection %q holds %d-dimensional vectors, query has %d",
						core.ErrDimensionMismatch, collection, len(vec), len(normalized))
				}
				matches = append(matches, core.VectorMatch{
					Id:    id,
					Score: dotProduct(normalized, vec),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(matches, func(a, b core.VectorMatch) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return 0
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Delete removes the embedding for the given document id, if present.
func (s *VectorStore) Delete(ctx context.Context, collection string, id core.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeVectorKey(collection, id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Dimension reports the dimension of the vectors stored in the collection,
// or 0 when the collection is empty.
func (s *VectorStore) Dimension(collection string) int {
	dim := 0
	_ = s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeVectorPrefix(collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		iter.Rewind()
		if !iter.Valid() {
			return nil
		}
		return iter.Item().Value(func(val []byte) error {
			vec, err := storage.UnmarshalVector(val)
			if err != nil {
				return err
			}
			dim = len(vec)
			return nil
		})
	}, false)
	return dim
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

package vector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/weecici/fusedex/core"
)

// ErrZeroVector is returned when a zero-magnitude vector is upserted.
// Such a vector has no direction and cannot participate in cosine ranking.
var ErrZeroVector = errors.New("zero vector not allowed")

type entry struct {
	id  core.ID
	vec []float32
}

// MemoryBackend is a brute-force in-memory vector store. Vectors are
// normalized on insert and compared with a plain dot product. Safe for
// concurrent use.
type MemoryBackend struct {
	mu          sync.RWMutex
	collections map[string][]entry
	positions   map[string]map[core.ID]int
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		collections: make(map[string][]entry),
		positions:   make(map[string]map[core.ID]int),
	}
}

// Upsert stores or replaces the vector for the given document id.
// The stored copy is normalized to unit length.
func (m *MemoryBackend) Upsert(ctx context.Context, collection string, id core.ID, vec []float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	normalized, err := Normalize(vec)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if dim := m.dimensionLocked(collection); dim != 0 && dim != len(normalized) {
		return fmt.Errorf("%w: collection %q holds %d-dimensional vectors, got %d",
			core.ErrDimensionMismatch, collection, dim, len(normalized))
	}

	pos, ok := m.positions[collection]
	if !ok {
		pos = make(map[core.ID]int)
		m.positions[collection] = pos
	}
	if i, exists := pos[id]; exists {
		m.collections[collection][i].vec = normalized
		return nil
	}
	pos[id] = len(m.collections[collection])
	m.collections[collection] = append(m.collections[collection], entry{id: id, vec: normalized})
	return nil
}

// KNN returns up to k matches ranked by cosine similarity descending,
// ties broken by ascending document id.
func (m *MemoryBackend) KNN(ctx context.Context, collection string, query []float32, k int) ([]core.VectorMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	normalized, err := Normalize(query)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.collections[collection]
	if len(entries) == 0 {
		return nil, nil
	}
	if dim := len(entries[0].vec); dim != len(normalized) {
		return nil, fmt.Errorf("%w: collection %q holds %d-dimensional vectors, query has %d",
			core.ErrDimensionMismatch, collection, dim, len(normalized))
	}

	matches := make([]core.VectorMatch, 0, len(entries))
	for _, e := range entries {
		matches = append(matches, core.VectorMatch{
			Id:    e.id,
			Score: dotProduct(normalized, e.vec),
		})
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

// Delete removes the vector for the given document id, if present.
func (m *MemoryBackend) Delete(ctx context.Context, collection string, id core.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	pos, ok := m.positions[collection]
	if !ok {
		return nil
	}
	i, exists := pos[id]
	if !exists {
		return nil
	}

	entries := m.collections[collection]
	last := len(entries) - 1
	if i != last {
		entries[i] = entries[last]
		pos[entries[i].id] = i
	}
	m.collections[collection] = entries[:last]
	delete(pos, id)
	return nil
}

// Dimension reports the dimension of the vectors stored in the collection,
// or 0 when the collection is empty.
func (m *MemoryBackend) Dimension(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dimensionLocked(collection)
}

func (m *MemoryBackend) dimensionLocked(collection string) int {
	entries := m.collections[collection]
	if len(entries) == 0 {
		return 0
	}
	return len(entries[0].vec)
}

// Normalize returns a unit-length copy of vec. Storing and querying with
// unit vectors lets backends rank by plain dot product.
func Normalize(vec []float32) ([]float32, error) {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return nil, ErrZeroVector
	}
	inv := 1 / math.Sqrt(sumSq)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) * inv)
	}
	return out, nil
}

// dotProduct is cosine similarity for unit vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

package fusion

import (
	"fmt"
	"sort"

	"github.com/weecici/fusedex/core"
)

// DefaultRRFK is the default RRF smoothing constant.
// Small values give steep positional weighting: with k=2 the top ranks
// dominate, which suits fusing two short overfetched candidate lists.
const DefaultRRFK = 2

// Fuser combines ranked result lists. The zero-cost constructor applies
// DefaultRRFK; use options to change parameters.
type Fuser struct {
	rrfK int
}

// Option configures a Fuser.
type Option func(*Fuser) error

// WithRRFK sets the RRF smoothing constant. It must be positive.
func WithRRFK(k int) Option {
	return func(f *Fuser) error {
		if k <= 0 {
			return ErrInvalidRRFK
		}
		f.rrfK = k
		return nil
	}
}

// New creates a Fuser.
func New(opts ...Option) (*Fuser, error) {
	f := &Fuser{rrfK: DefaultRRFK}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Fuse merges two ranked lists into one, identified by document id. A
// document appearing in both lists contributes from both; its payload is
// taken from the first list scanned. Both lists empty is reported as
// core.ErrEmptyFusionInput.
func (f *Fuser) Fuse(a, b []core.RetrievedDocument, method core.FusionMethod) ([]core.RetrievedDocument, error) {
	switch method {
	case core.FusionRRF:
		return f.fuseRRF(a, b)
	case core.FusionDBSF:
		return f.fuseDBSF(a, b)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFusionMethod, method)
	}
}

// Fuse merges two ranked lists with default parameters.
func Fuse(a, b []core.RetrievedDocument, method core.FusionMethod) ([]core.RetrievedDocument, error) {
	f := &Fuser{rrfK: DefaultRRFK}
	return f.Fuse(a, b, method)
}

// accumulator gathers fused scores per document id while remembering the
// payload and first-occurrence order of every id, so that equal scores sort
// deterministically by input order.
type accumulator struct {
	scores  map[core.ID]float64
	docs    map[core.ID]core.RetrievedDocument
	arrival []core.ID
}

func newAccumulator(capacity int) *accumulator {
	return &accumulator{
		scores: make(map[core.ID]float64, capacity),
		docs:   make(map[core.ID]core.RetrievedDocument, capacity),
	}
}

func (acc *accumulator) add(doc core.RetrievedDocument, score float64) {
	if _, seen := acc.docs[doc.Id]; !seen {
		acc.docs[doc.Id] = doc
		acc.arrival = append(acc.arrival, doc.Id)
	}
	acc.scores[doc.Id] += score
}

// ranked returns the fused documents sorted by descending score, ties broken
// by first occurrence in the input lists.
func (acc *accumulator) ranked() []core.RetrievedDocument {
	results := make([]core.RetrievedDocument, 0, len(acc.arrival))
	for _, id := range acc.arrival {
		doc := acc.docs[id]
		doc.Score = acc.scores[id]
		results = append(results, doc)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

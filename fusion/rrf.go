package fusion

import "github.com/weecici/fusedex/core"

// fuseRRF combines two rankings with Reciprocal Rank Fusion:
// score(doc) = sum over lists containing doc of 1 / (k + rank), with
// 0-based ranks. Raw input scores are ignored entirely; only positions
// matter. A document present in a single list still receives that list's
// reciprocal contribution.
//
// Reference: Cormack et al., "Reciprocal Rank Fusion outperforms Condorcet
// and individual rank learning methods" (SIGIR 2009).
func (f *Fuser) fuseRRF(a, b []core.RetrievedDocument) ([]core.RetrievedDocument, error) {
	if len(a) == 0 && len(b) == 0 {
		return nil, core.ErrEmptyFusionInput
	}

	acc := newAccumulator(len(a) + len(b))
	k := float64(f.rrfK)
	for rank, doc := range a {
		acc.add(doc, 1/(k+float64(rank)))
	}
	for rank, doc := range b {
		acc.add(doc, 1/(k+float64(rank)))
	}
	return acc.ranked(), nil
}

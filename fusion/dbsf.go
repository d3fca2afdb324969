package fusion

import (
	"math"

	"github.com/weecici/fusedex/core"
)

// fuseDBSF combines two rankings with Distribution-Based Score Fusion.
// Each list's raw scores are normalized by their own distribution: clipped
// to [mean-3σ, mean+3σ] and rescaled to [0,1], i.e.
// normalized = (score - (mean - 3σ)) / (6σ), with σ the sample standard
// deviation. When a list's scores are all identical (σ = 0, including
// single-element lists), every document in it gets 0.5. Normalized
// contributions are summed per document id across lists; a document present
// in only one list keeps its full contribution from that list.
func (f *Fuser) fuseDBSF(a, b []core.RetrievedDocument) ([]core.RetrievedDocument, error) {
	if len(a) == 0 && len(b) == 0 {
		return nil, core.ErrEmptyFusionInput
	}

	acc := newAccumulator(len(a) + len(b))
	normalizeInto(acc, a)
	normalizeInto(acc, b)
	return acc.ranked(), nil
}

func normalizeInto(acc *accumulator, results []core.RetrievedDocument) {
	if len(results) == 0 {
		return
	}

	mean, std := sampleStats(results)
	if std == 0 {
		for _, doc := range results {
			acc.add(doc, 0.5)
		}
		return
	}

	lower := mean - 3*std
	span := 6 * std
	for _, doc := range results {
		// Scores more than three deviations from the mean are clipped so
		// every contribution stays within [0, 1].
		acc.add(doc, math.Min(1, math.Max(0, (doc.Score-lower)/span)))
	}
}

// sampleStats returns the mean and sample standard deviation (ddof=1) of
// the raw scores. A single-element list has no spread by definition and
// reports a zero deviation.
func sampleStats(results []core.RetrievedDocument) (mean, std float64) {
	n := float64(len(results))
	for _, doc := range results {
		mean += doc.Score
	}
	mean /= n

	if len(results) < 2 {
		return mean, 0
	}
	var ss float64
	for _, doc := range results {
		d := doc.Score - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / (n - 1))
}

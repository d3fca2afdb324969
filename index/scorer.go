package index

import (
	"math"
	"sort"

	"github.com/weecici/fusedex/core"
)

// Default Okapi BM25 parameters.
const (
	// DefaultK1 controls term-frequency saturation.
	DefaultK1 = 1.5
	// DefaultB controls document-length normalization.
	DefaultB = 0.75
)

// BM25Params are the free parameters of the Okapi BM25 formula.
// They are ignored by the TF-IDF method.
type BM25Params struct {
	K1 float64
	B  float64
}

// DefaultBM25Params returns the standard parameterization (k1=1.5, b=0.75).
func DefaultBM25Params() BM25Params {
	return BM25Params{K1: DefaultK1, B: DefaultB}
}

// idf is the Robertson inverse document frequency:
// ln((N - df + 0.5) / (df + 0.5) + 1). Both scoring methods share it.
func idf(docFreq, docCount int) float64 {
	n := float64(docCount)
	df := float64(docFreq)
	return math.Log((n-df+0.5)/(df+0.5) + 1)
}

// Score computes a relevance score per candidate document for the given
// query terms. Query terms absent from the vocabulary contribute nothing.
// Documents with no matching terms are never materialized: absence from the
// returned map is the implicit zero. Scoring an empty index returns an empty
// map, not an error.
func (ix *LexicalIndex) Score(queryTerms []string, method core.ScoringMethod, params BM25Params) (map[core.ID]float64, error) {
	if !method.Valid() {
		return nil, core.ErrUnsupportedScoringMethod
	}

	n := ix.stats.DocCount
	scores := make(map[core.ID]float64)
	if n == 0 {
		return scores, nil
	}

	queryCounts := make(map[string]int, len(queryTerms))
	for _, term := range queryTerms {
		queryCounts[term]++
	}

	for term, qtf := range queryCounts {
		id, ok := ix.vocab[term]
		if !ok {
			continue
		}
		entry := ix.entries[id]
		w := idf(entry.DocFreq, n)

		for _, p := range entry.Postings {
			tf := float64(p.TermFreq)
			switch method {
			case core.ScoringTFIDF:
				scores[p.DocID] += float64(qtf) * tf * w
			case core.ScoringBM25:
				dl := float64(ix.stats.DocLens[p.DocID])
				norm := tf + params.K1*(1-params.B+params.B*dl/ix.stats.AvgDocLen)
				scores[p.DocID] += float64(qtf) * w * (tf * (params.K1 + 1)) / norm
			}
		}
	}
	return scores, nil
}

// Search scores the query terms and returns the top k documents, hydrated
// with their payloads. Ordering is descending by score with ties broken by
// ascending document id, so equal-score results are reproducible.
func (ix *LexicalIndex) Search(queryTerms []string, topK int, method core.ScoringMethod, params BM25Params) ([]core.RetrievedDocument, error) {
	scores, err := ix.Score(queryTerms, method, params)
	if err != nil {
		return nil, err
	}

	ranked := make([]core.RetrievedDocument, 0, len(scores))
	for id, score := range scores {
		doc := core.RetrievedDocument{Id: id, Score: score}
		if payload, ok := ix.payloads[id]; ok {
			doc.Payload = payload
		}
		ranked = append(ranked, doc)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Id < ranked[j].Id
	})

	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}

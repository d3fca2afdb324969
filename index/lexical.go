package index

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/weecici/fusedex/core"
)

// TermID is a dense integer identifier for a vocabulary term.
// IDs are assigned in insertion order and are never reused or reassigned.
type TermID uint32

// Posting records a term's occurrence count within one document.
type Posting struct {
	DocID    core.ID
	TermFreq int
}

// TermEntry holds the postings list for a single term.
//
// DocFreq always equals len(Postings); it is recomputed whenever postings
// change. Docs mirrors the posting document ids as a bitmap for fast
// membership checks during upserts.
type TermEntry struct {
	DocFreq  int
	Postings []Posting
	Docs     *roaring64.Bitmap
}

// CorpusStats aggregates per-corpus statistics used by length-normalized
// scoring. AvgDocLen is meaningful only when DocCount > 0.
type CorpusStats struct {
	DocCount  int
	DocLens   map[core.ID]int
	AvgDocLen float64
}

// LexicalIndex is an immutable inverted-index snapshot over one collection:
// vocabulary, postings, corpus statistics, and a payload table for result
// hydration. Snapshots are safe for concurrent readers; updates go through
// Builder.BuildOrUpdate which derives a new snapshot.
type LexicalIndex struct {
	vocab    map[string]TermID
	terms    []string // TermID -> term
	entries  []*TermEntry
	docTerms map[core.ID][]TermID // terms per document, for upsert removal
	payloads map[core.ID]core.DocumentPayload
	stats    CorpusStats
}

// NewLexicalIndex returns an empty index snapshot. An empty index is a valid
// terminal state: every query scored against it yields no results.
func NewLexicalIndex() *LexicalIndex {
	return &LexicalIndex{
		vocab:    make(map[string]TermID),
		docTerms: make(map[core.ID][]TermID),
		payloads: make(map[core.ID]core.DocumentPayload),
		stats:    CorpusStats{DocLens: make(map[core.ID]int)},
	}
}

// DocCount returns the number of indexed documents.
func (ix *LexicalIndex) DocCount() int {
	return ix.stats.DocCount
}

// AvgDocLen returns the average document length in tokens.
// The value is undefined when DocCount is zero.
func (ix *LexicalIndex) AvgDocLen() float64 {
	return ix.stats.AvgDocLen
}

// Stats returns the corpus statistics.
func (ix *LexicalIndex) Stats() CorpusStats {
	return ix.stats
}

// VocabSize returns the number of distinct terms.
func (ix *LexicalIndex) VocabSize() int {
	return len(ix.vocab)
}

// TermID looks up the dense id for a term.
func (ix *LexicalIndex) TermID(term string) (TermID, bool) {
	id, ok := ix.vocab[term]
	return id, ok
}

// Entry returns the term entry for a term id.
func (ix *LexicalIndex) Entry(id TermID) *TermEntry {
	return ix.entries[id]
}

// Payload returns the hydration payload for a document.
func (ix *LexicalIndex) Payload(id core.ID) (core.DocumentPayload, bool) {
	p, ok := ix.payloads[id]
	return p, ok
}

// Contains reports whether the document is indexed.
func (ix *LexicalIndex) Contains(id core.ID) bool {
	_, ok := ix.stats.DocLens[id]
	return ok
}

// Snapshot is the persistable form of a LexicalIndex: plain slices and maps
// with no derived state. Terms are ordered by TermID so that loading
// reconstructs the identical vocabulary.
type Snapshot struct {
	Terms    []string
	Postings [][]Posting
	DocLens  map[core.ID]int
	Payloads map[core.ID]core.DocumentPayload
}

// Export returns the persistable form of the index. Derived state (document
// frequencies, bitmaps, corpus averages) is omitted and rebuilt on load.
func (ix *LexicalIndex) Export() *Snapshot {
	s := &Snapshot{
		Terms:    make([]string, len(ix.terms)),
		Postings: make([][]Posting, len(ix.entries)),
		DocLens:  make(map[core.ID]int, len(ix.stats.DocLens)),
		Payloads: make(map[core.ID]core.DocumentPayload, len(ix.payloads)),
	}
	copy(s.Terms, ix.terms)
	for i, e := range ix.entries {
		postings := make([]Posting, len(e.Postings))
		copy(postings, e.Postings)
		s.Postings[i] = postings
	}
	for id, l := range ix.stats.DocLens {
		s.DocLens[id] = l
	}
	for id, p := range ix.payloads {
		s.Payloads[id] = p
	}
	return s
}

// FromSnapshot reconstructs a LexicalIndex from its persisted form,
// rebuilding vocabulary, bitmaps, per-document term lists, and corpus
// statistics.
func FromSnapshot(s *Snapshot) (*LexicalIndex, error) {
	if len(s.Terms) != len(s.Postings) {
		return nil, fmt.Errorf("snapshot has %d terms but %d postings lists", len(s.Terms), len(s.Postings))
	}

	ix := NewLexicalIndex()
	ix.terms = make([]string, len(s.Terms))
	copy(ix.terms, s.Terms)
	ix.entries = make([]*TermEntry, len(s.Terms))

	for i, term := range s.Terms {
		id := TermID(i)
		ix.vocab[term] = id

		entry := &TermEntry{
			Postings: make([]Posting, len(s.Postings[i])),
			Docs:     roaring64.New(),
		}
		copy(entry.Postings, s.Postings[i])
		for _, p := range entry.Postings {
			entry.Docs.Add(uint64(p.DocID))
			ix.docTerms[p.DocID] = append(ix.docTerms[p.DocID], id)
		}
		entry.DocFreq = len(entry.Postings)
		ix.entries[i] = entry
	}

	total := 0
	for id, l := range s.DocLens {
		ix.stats.DocLens[id] = l
		total += l
	}
	ix.stats.DocCount = len(ix.stats.DocLens)
	if ix.stats.DocCount > 0 {
		ix.stats.AvgDocLen = float64(total) / float64(ix.stats.DocCount)
	}

	for id, p := range s.Payloads {
		ix.payloads[id] = p
	}
	return ix, nil
}

// Validate checks the structural invariants of the index. It exists for
// tests; a violation indicates a bug in the builder, not a runtime
// condition to handle.
func (ix *LexicalIndex) Validate() error {
	for i, e := range ix.entries {
		if e.DocFreq != len(e.Postings) {
			return fmt.Errorf("term %q: doc_freq %d != %d postings", ix.terms[i], e.DocFreq, len(e.Postings))
		}
		if e.Docs.GetCardinality() != uint64(len(e.Postings)) {
			return fmt.Errorf("term %q: bitmap cardinality %d != %d postings", ix.terms[i], e.Docs.GetCardinality(), len(e.Postings))
		}
	}
	if ix.stats.DocCount != len(ix.stats.DocLens) {
		return fmt.Errorf("doc_count %d != %d doc lengths", ix.stats.DocCount, len(ix.stats.DocLens))
	}
	if ix.stats.DocCount > 0 {
		total := 0
		for _, l := range ix.stats.DocLens {
			total += l
		}
		want := float64(total) / float64(ix.stats.DocCount)
		if diff := ix.stats.AvgDocLen - want; diff > 1e-9 || diff < -1e-9 {
			return fmt.Errorf("avg_doc_len %g != mean doc length %g", ix.stats.AvgDocLen, want)
		}
	}
	return nil
}

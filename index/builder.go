package index

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/panjf2000/ants/v2"

	"github.com/weecici/fusedex/core"
	"github.com/weecici/fusedex/tokenizer"
)

// Builder constructs LexicalIndex snapshots from document batches.
// Tokenization is fanned out across a worker pool; the merge into the new
// snapshot is single-threaded.
type Builder struct {
	tok    *tokenizer.Tokenizer
	pool   *ants.Pool
	logger *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder) error

// WithPoolSize sets the tokenization worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) BuilderOption {
	return func(b *Builder) error {
		if size < 1 {
			size = 1
		}
		if b.pool != nil {
			b.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		b.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBuilder creates an index builder using the given tokenizer.
func NewBuilder(tok *tokenizer.Tokenizer, opts ...BuilderOption) (*Builder, error) {
	if tok == nil {
		return nil, ErrTokenizerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		tok:    tok,
		pool:   pool,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			b.Release()
			return nil, err
		}
	}
	return b, nil
}

// Release frees the builder's worker pool.
func (b *Builder) Release() {
	if b.pool != nil {
		b.pool.Release()
	}
}

// Tokenizer returns the tokenizer the builder indexes with.
func (b *Builder) Tokenizer() *tokenizer.Tokenizer {
	return b.tok
}

// Build constructs a fresh index from the given documents.
// It requires a non-empty corpus and returns core.ErrEmptyCorpus otherwise.
func (b *Builder) Build(ctx context.Context, docs []core.Document) (*LexicalIndex, error) {
	if len(docs) == 0 {
		return nil, core.ErrEmptyCorpus
	}
	return b.BuildOrUpdate(ctx, nil, docs)
}

// BuildOrUpdate derives a new index snapshot from base with the given
// documents upserted. A nil base starts from an empty index. The base is
// never mutated, so published snapshots stay consistent for concurrent
// readers. If a document id already exists in base, all of its prior
// postings are removed before the new ones are inserted, keeping doc_freq
// and avg_doc_len consistent under re-ingestion.
func (b *Builder) BuildOrUpdate(ctx context.Context, base *LexicalIndex, docs []core.Document) (*LexicalIndex, error) {
	next := NewLexicalIndex()
	if base != nil {
		next = base.clone()
	}
	if len(docs) == 0 {
		return next, nil
	}

	tokenized, err := b.tokenizeAll(ctx, docs)
	if err != nil {
		return nil, err
	}

	touched := make(map[TermID]struct{})
	for i := range docs {
		doc := &docs[i]
		if next.Contains(doc.Id) {
			for _, id := range next.removeDoc(doc.Id) {
				touched[id] = struct{}{}
			}
		}
		for _, id := range next.insertDoc(doc, tokenized[i]) {
			touched[id] = struct{}{}
		}
	}

	for id := range touched {
		entry := next.entries[id]
		entry.DocFreq = len(entry.Postings)
	}
	next.recomputeStats()

	b.logger.Debug("index snapshot built",
		"docs", len(docs), "doc_count", next.DocCount(), "vocab", next.VocabSize())
	return next, nil
}

// tokenizeAll fans per-document tokenization out across the worker pool.
func (b *Builder) tokenizeAll(ctx context.Context, docs []core.Document) ([][]string, error) {
	tokenized := make([][]string, len(docs))

	var wg sync.WaitGroup
	for i := range docs {
		if err := ctx.Err(); err != nil {
			break
		}
		wg.Add(1)
		idx := i
		err := b.pool.Submit(func() {
			defer wg.Done()
			tokenized[idx] = b.tok.Tokenize(docs[idx].Text)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return tokenized, nil
}

// clone deep-copies the index so the derived snapshot can be mutated freely.
func (ix *LexicalIndex) clone() *LexicalIndex {
	next := &LexicalIndex{
		vocab:    make(map[string]TermID, len(ix.vocab)),
		terms:    make([]string, len(ix.terms)),
		entries:  make([]*TermEntry, len(ix.entries)),
		docTerms: make(map[core.ID][]TermID, len(ix.docTerms)),
		payloads: make(map[core.ID]core.DocumentPayload, len(ix.payloads)),
		stats: CorpusStats{
			DocCount:  ix.stats.DocCount,
			DocLens:   make(map[core.ID]int, len(ix.stats.DocLens)),
			AvgDocLen: ix.stats.AvgDocLen,
		},
	}
	for term, id := range ix.vocab {
		next.vocab[term] = id
	}
	copy(next.terms, ix.terms)
	for i, e := range ix.entries {
		postings := make([]Posting, len(e.Postings))
		copy(postings, e.Postings)
		next.entries[i] = &TermEntry{
			DocFreq:  e.DocFreq,
			Postings: postings,
			Docs:     e.Docs.Clone(),
		}
	}
	for id, terms := range ix.docTerms {
		cp := make([]TermID, len(terms))
		copy(cp, terms)
		next.docTerms[id] = cp
	}
	for id, p := range ix.payloads {
		next.payloads[id] = p
	}
	for id, l := range ix.stats.DocLens {
		next.stats.DocLens[id] = l
	}
	return next
}

// removeDoc deletes all postings of a document and returns the term ids
// whose entries changed. Vocabulary ids are never reclaimed, so a term whose
// postings become empty stays in the vocabulary with zero document frequency.
func (ix *LexicalIndex) removeDoc(docID core.ID) []TermID {
	termIDs := ix.docTerms[docID]
	for _, id := range termIDs {
		entry := ix.entries[id]
		kept := entry.Postings[:0]
		for _, p := range entry.Postings {
			if p.DocID != docID {
				kept = append(kept, p)
			}
		}
		entry.Postings = kept
		entry.Docs.Remove(uint64(docID))
	}
	delete(ix.docTerms, docID)
	delete(ix.stats.DocLens, docID)
	delete(ix.payloads, docID)
	return termIDs
}

// insertDoc adds a tokenized document to the index and returns the term ids
// it touched. Term frequencies are accumulated in first-appearance order so
// that vocabulary ids are assigned deterministically.
func (ix *LexicalIndex) insertDoc(doc *core.Document, terms []string) []TermID {
	counts := make(map[string]int, len(terms))
	distinct := make([]string, 0, len(terms))
	for _, term := range terms {
		if _, seen := counts[term]; !seen {
			distinct = append(distinct, term)
		}
		counts[term]++
	}

	touched := make([]TermID, 0, len(distinct))
	for _, term := range distinct {
		id, ok := ix.vocab[term]
		if !ok {
			id = TermID(len(ix.terms))
			ix.vocab[term] = id
			ix.terms = append(ix.terms, term)
			ix.entries = append(ix.entries, &TermEntry{Docs: roaring64.New()})
		}
		entry := ix.entries[id]
		entry.Postings = append(entry.Postings, Posting{DocID: doc.Id, TermFreq: counts[term]})
		entry.Docs.Add(uint64(doc.Id))
		touched = append(touched, id)
	}

	ix.docTerms[doc.Id] = touched
	ix.stats.DocLens[doc.Id] = len(terms)
	ix.payloads[doc.Id] = doc.Payload
	return touched
}

func (ix *LexicalIndex) recomputeStats() {
	ix.stats.DocCount = len(ix.stats.DocLens)
	if ix.stats.DocCount == 0 {
		ix.stats.AvgDocLen = 0
		return
	}
	total := 0
	for _, l := range ix.stats.DocLens {
		total += l
	}
	ix.stats.AvgDocLen = float64(total) / float64(ix.stats.DocCount)
}

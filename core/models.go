package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for documents.
// It is generated from content hashing or assigned by the caller.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs, which makes
// re-ingestion of an unchanged corpus idempotent.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocumentMetadata carries descriptive fields about a document's origin.
type DocumentMetadata struct {
	DocumentId string
	Title      string
	FileName   string
	FilePath   string
}

// DocumentPayload is the hydration record returned with search results:
// the document text plus its metadata.
type DocumentPayload struct {
	Text     string
	Metadata DocumentMetadata
}

// Document is the ingestion input: an identifier, the text to index, and
// the payload stored for result hydration. A zero Id is replaced with
// IDFromContent(Text) during ingestion.
type Document struct {
	Id      ID
	Text    string
	Payload DocumentPayload
}

// RetrievedDocument is a single ranked search result.
//
// Score is only meaningful relative to other results produced by the same
// scoring method over the same collection; fusion normalizes before
// combining scores from different backends.
type RetrievedDocument struct {
	Id      ID
	Score   float64
	Payload DocumentPayload
}

// VectorMatch is a raw nearest-neighbor hit from the vector backend.
type VectorMatch struct {
	Id    ID
	Score float32
}

// Checkpoint records the progress of a long-running batch task, so an
// interrupted run can resume from where it stopped.
type Checkpoint struct {
	// Task identifies the task the checkpoint belongs to.
	Task string
	// LastID is the highest document id the task has fully processed.
	LastID ID
	// Processed is the number of documents processed so far.
	Processed int
	// UpdatedAt is when the checkpoint was last persisted, in UTC.
	UpdatedAt time.Time
}

// SearchMode selects which retrieval backends serve a query.
type SearchMode string

const (
	// ModeDense retrieves from the vector backend only.
	ModeDense SearchMode = "dense"
	// ModeSparse retrieves from the lexical index only.
	ModeSparse SearchMode = "sparse"
	// ModeHybrid retrieves from both backends and fuses the rankings.
	ModeHybrid SearchMode = "hybrid"
)

// ScoringMethod selects the lexical relevance function.
type ScoringMethod string

const (
	// ScoringTFIDF scores documents by qtf * tf * idf.
	ScoringTFIDF ScoringMethod = "tfidf"
	// ScoringBM25 scores documents with the Okapi BM25 formula.
	ScoringBM25 ScoringMethod = "okapi-bm25"
)

// FusionMethod selects the rank-fusion algorithm.
type FusionMethod string

const (
	// FusionRRF is Reciprocal Rank Fusion.
	FusionRRF FusionMethod = "rrf"
	// FusionDBSF is Distribution-Based Score Fusion.
	FusionDBSF FusionMethod = "dbsf"
)

package core

import (
	"fmt"
	"strings"
)

// Validate checks that a document is suitable for indexing.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Text) == "" {
		return ErrEmptyContent
	}
	return nil
}

// ValidateDocuments checks a batch of documents for ingestion.
// Returns ErrEmptyCorpus for an empty batch and the first per-document
// validation failure otherwise.
func ValidateDocuments(docs []Document) error {
	if len(docs) == 0 {
		return ErrEmptyCorpus
	}
	for i := range docs {
		if err := docs[i].Validate(); err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
	}
	return nil
}

// Valid reports whether the mode is one of the supported retrieval modes.
func (m SearchMode) Valid() bool {
	switch m {
	case ModeDense, ModeSparse, ModeHybrid:
		return true
	}
	return false
}

// Valid reports whether the method is a supported lexical scoring method.
func (m ScoringMethod) Valid() bool {
	switch m {
	case ScoringTFIDF, ScoringBM25:
		return true
	}
	return false
}

// Valid reports whether the method is a supported fusion method.
func (m FusionMethod) Valid() bool {
	switch m {
	case FusionRRF, FusionDBSF:
		return true
	}
	return false
}

// ParseSearchMode converts a string (e.g. a CLI flag value) into a SearchMode.
func ParseSearchMode(s string) (SearchMode, error) {
	m := SearchMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedSearchMode, s)
	}
	return m, nil
}

// ParseScoringMethod converts a string into a ScoringMethod.
func ParseScoringMethod(s string) (ScoringMethod, error) {
	m := ScoringMethod(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScoringMethod, s)
	}
	return m, nil
}

// ParseFusionMethod converts a string into a FusionMethod.
func ParseFusionMethod(s string) (FusionMethod, error) {
	m := FusionMethod(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFusionMethod, s)
	}
	return m, nil
}

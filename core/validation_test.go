package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocuments(t *testing.T) {
	t.Run("empty batch", func(t *testing.T) {
		err := ValidateDocuments(nil)
		assert.ErrorIs(t, err, ErrEmptyCorpus)
	})

	t.Run("blank text", func(t *testing.T) {
		err := ValidateDocuments([]Document{{Id: 1, Text: "   "}})
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("valid batch", func(t *testing.T) {
		err := ValidateDocuments([]Document{
			{Id: 1, Text: "the cat sat"},
			{Id: 2, Text: "cats and dogs"},
		})
		assert.NoError(t, err)
	})
}

func TestParseSearchMode(t *testing.T) {
	m, err := ParseSearchMode(" Hybrid ")
	require.NoError(t, err)
	assert.Equal(t, ModeHybrid, m)

	_, err = ParseSearchMode("fuzzy")
	assert.ErrorIs(t, err, ErrUnsupportedSearchMode)
}

func TestParseScoringMethod(t *testing.T) {
	m, err := ParseScoringMethod("okapi-bm25")
	require.NoError(t, err)
	assert.Equal(t, ScoringBM25, m)

	m, err = ParseScoringMethod("TFIDF")
	require.NoError(t, err)
	assert.Equal(t, ScoringTFIDF, m)

	_, err = ParseScoringMethod("bm42")
	assert.ErrorIs(t, err, ErrUnsupportedScoringMethod)
}

func TestParseFusionMethod(t *testing.T) {
	m, err := ParseFusionMethod("dbsf")
	require.NoError(t, err)
	assert.Equal(t, FusionDBSF, m)

	_, err = ParseFusionMethod("borda")
	assert.ErrorIs(t, err, ErrUnsupportedFusionMethod)
}

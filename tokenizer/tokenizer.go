package tokenizer

import (
	"strings"
	"unicode"

	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/english"
	"github.com/clipperhouse/uax29/v2/words"
	"golang.org/x/text/unicode/norm"
)

// ProcessMethod selects the word-processing stage applied to each token.
type ProcessMethod string

const (
	// Stem reduces words to their Snowball (Porter2) English stems.
	Stem ProcessMethod = "stem"
	// Lemmatize reduces words to dictionary form with suffix rules.
	Lemmatize ProcessMethod = "lemmatize"
)

// Valid reports whether the method is supported.
func (m ProcessMethod) Valid() bool {
	return m == Stem || m == Lemmatize
}

// Tokenizer converts raw text into normalized index terms.
// A Tokenizer is immutable after construction and safe for concurrent use.
type Tokenizer struct {
	method    ProcessMethod
	stopwords map[string]struct{}
}

// Option configures a Tokenizer.
type Option func(*Tokenizer) error

// WithProcessMethod sets the word-processing stage.
// Default is Stem.
func WithProcessMethod(method ProcessMethod) Option {
	return func(t *Tokenizer) error {
		if !method.Valid() {
			return ErrUnsupportedProcessMethod
		}
		t.method = method
		return nil
	}
}

// WithStopwords replaces the default English stopword set.
// Passing an empty slice disables stopword filtering.
func WithStopwords(stopwords []string) Option {
	return func(t *Tokenizer) error {
		set := make(map[string]struct{}, len(stopwords))
		for _, w := range stopwords {
			set[strings.ToLower(w)] = struct{}{}
		}
		t.stopwords = set
		return nil
	}
}

// New creates a tokenizer with English stopwords and Snowball stemming.
func New(opts ...Option) (*Tokenizer, error) {
	t := &Tokenizer{
		method:    Stem,
		stopwords: defaultStopwords,
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// normalize applies Unicode normalization (NFKC) and converts to lowercase.
func normalize(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// isIndexable reports whether a segment carries at least one letter or digit.
// UAX#29 emits whitespace and punctuation runs as segments; those are dropped
// before stopword filtering.
func isIndexable(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// Tokenize splits text into an ordered sequence of normalized terms.
// Duplicates are preserved so callers can derive term frequencies.
func (t *Tokenizer) Tokenize(text string) []string {
	toks := words.FromString(normalize(text))

	var terms []string
	for toks.Next() {
		tok := toks.Value()
		if !isIndexable(tok) {
			continue
		}
		if _, stop := t.stopwords[tok]; stop {
			continue
		}
		term := t.processWord(tok)
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// TokenizeAll tokenizes each input independently, preserving input order.
func (t *Tokenizer) TokenizeAll(texts []string) [][]string {
	out := make([][]string, len(texts))
	for i, text := range texts {
		out[i] = t.Tokenize(text)
	}
	return out
}

// Method returns the configured word-processing stage.
func (t *Tokenizer) Method() ProcessMethod {
	return t.method
}

func (t *Tokenizer) processWord(word string) string {
	if t.method == Lemmatize {
		return lemmatize(word)
	}
	return stemWord(word)
}

// stemWord applies the Snowball English stemmer to a single token.
func stemWord(word string) string {
	env := snowballstem.NewEnv(word)
	english.Stem(env)
	return env.Current()
}

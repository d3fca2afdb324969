package index

import "errors"

var (
	// ErrTokenizerRequired is returned when a builder is created without a tokenizer.
	ErrTokenizerRequired = errors.New("tokenizer required")

	// ErrRepositoryRequired is returned when a registry loader is nil.
	ErrRepositoryRequired = errors.New("index repository required")
)

package ingestion

import "errors"

var (
	// ErrBuilderRequired is returned when an index builder is not provided.
	ErrBuilderRequired = errors.New("index builder required")

	// ErrRegistryRequired is returned when an index registry is not provided.
	ErrRegistryRequired = errors.New("index registry required")

	// ErrIndexRepositoryRequired is returned when an index repository is not provided.
	ErrIndexRepositoryRequired = errors.New("index repository required")

	// ErrVectorBackendRequired is returned when a vector backend is not provided.
	ErrVectorBackendRequired = errors.New("vector backend required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)

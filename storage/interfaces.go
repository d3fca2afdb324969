package storage

import (
	"context"

	"github.com/weecici/fusedex/core"
	"github.com/weecici/fusedex/index"
)

// Repository provides common storage operations shared across repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// IndexRepository persists lexical index snapshots per collection.
type IndexRepository interface {
	Repository

	// SaveIndex replaces the persisted snapshot for the collection.
	// The write is atomic with respect to LoadIndex: a concurrent load sees
	// either the previous snapshot or the new one, never a mix.
	SaveIndex(ctx context.Context, collection string, snap *index.Snapshot) error

	// LoadIndex reconstructs the collection's index from its persisted
	// snapshot. Returns core.ErrIndexNotFound for a collection that was
	// never saved. Implements index.Loader.
	LoadIndex(ctx context.Context, collection string) (*index.LexicalIndex, error)

	// DropIndex removes the collection's persisted snapshot and payloads.
	// Dropping an unknown collection is a no-op.
	DropIndex(ctx context.Context, collection string) error
}

// PayloadStore provides read access to persisted document payloads, used
// for result hydration and for rebuilding indexes from stored documents.
type PayloadStore interface {
	// GetPayload retrieves a single payload by document id.
	// Returns ErrNotFound if the document doesn't exist.
	GetPayload(ctx context.Context, collection string, id core.ID) (core.DocumentPayload, error)

	// GetPayloads retrieves multiple payloads by id.
	// Returns only the payloads that exist (no error for missing documents).
	GetPayloads(ctx context.Context, collection string, ids []core.ID) (map[core.ID]core.DocumentPayload, error)

	// ScanPayloads returns up to limit documents with id > afterID, in
	// ascending id order. A zero afterID starts from the beginning; an
	// empty result means the scan is complete.
	ScanPayloads(ctx context.Context, collection string, afterID core.ID, limit int) ([]core.Document, error)

	// CountPayloads reports the number of stored documents in the collection.
	CountPayloads(ctx context.Context, collection string) (int, error)
}

// CheckpointRepository persists progress checkpoints for batch tasks.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint for a task.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a task.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, task string) (*core.Checkpoint, error)

	// DeleteCheckpoint removes the checkpoint for a task, so the next run
	// starts from the beginning. Deleting a missing checkpoint is a no-op.
	DeleteCheckpoint(ctx context.Context, task string) error
}

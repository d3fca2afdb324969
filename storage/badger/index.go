// Copyright 2025 The fusedex authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/weecici/fusedex/core"
	"github.com/weecici/fusedex/index"
	"github.com/weecici/fusedex/storage"
)

// IndexRepository implements storage.IndexRepository for BadgerDB.
//
// A collection's snapshot is stored as one term record per vocabulary entry
// (keyed by TermID), one stats record holding the document length table,
// and one payload record per document. All writes for a snapshot happen in
// a single transaction, so loads never observe a partially saved index.
type IndexRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.IndexRepository = (*IndexRepository)(nil)
var _ index.Loader = (*IndexRepository)(nil)

// NewIndexRepository creates a new IndexRepository.
func NewIndexRepository(backend *Backend) (storage.IndexRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &IndexRepository{
		backend: backend,
		logger:  slog.Default().With("component", "badger-index"),
	}, nil
}

// SaveIndex replaces the persisted snapshot for the collection.
func (r *IndexRepository) SaveIndex(ctx context.Context, collection string, snap *index.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if err := deletePrefix(tx, makeTermPrefix(collection)); err != nil {
			return err
		}
		if err := deletePrefix(tx, makePayloadPrefix(collection)); err != nil {
			return err
		}

		for i, term := range snap.Terms {
			record := storage.TermRecord{Term: term, Postings: snap.Postings[i]}
			if err := tx.Set(makeTermKey(collection, index.TermID(i)), storage.MarshalTermRecord(&record)); err != nil {
				return err
			}
		}

		if err := tx.Set(makeStatsKey(collection), storage.MarshalDocLens(snap.DocLens)); err != nil {
			return err
		}

		for id, payload := range snap.Payloads {
			if err := tx.Set(makePayloadKey(collection, id), storage.MarshalPayload(&payload)); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("saving index for collection %q: %w", collection, err)
	}

	r.logger.Debug("index snapshot saved",
		"collection", collection,
		"terms", len(snap.Terms),
		"docs", len(snap.DocLens))
	return nil
}

// LoadIndex reconstructs the collection's index from its persisted snapshot.
// Returns core.ErrIndexNotFound for a collection that was never saved.
func (r *IndexRepository) LoadIndex(ctx context.Context, collection string) (*index.LexicalIndex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := &index.Snapshot{
		DocLens:  make(map[core.ID]int),
		Payloads: make(map[core.ID]core.DocumentPayload),
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeStatsKey(collection))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("%w: collection %q", core.ErrIndexNotFound, collection)
			}
			return err
		}
		if err := item.Value(func(val []byte) error {
			lens, err := storage.UnmarshalDocLens(val)
			if err != nil {
				return err
			}
			snap.DocLens = lens
			return nil
		}); err != nil {
			return err
		}

		// Term keys are BigEndian TermIDs, so iteration order is TermID order.
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeTermPrefix(collection)
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				record, err := storage.UnmarshalTermRecord(val)
				if err != nil {
					return err
				}
				snap.Terms = append(snap.Terms, record.Term)
				snap.Postings = append(snap.Postings, record.Postings)
				return nil
			})
			if err != nil {
				iter.Close()
				return err
			}
		}
		iter.Close()

		payloadPrefix := makePayloadPrefix(collection)
		opts = badger.DefaultIteratorOptions
		opts.Prefix = payloadPrefix
		iter = tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			id := payloadIDFromKey(payloadPrefix, item.Key())
			err := item.Value(func(val []byte) error {
				payload, err := storage.UnmarshalPayload(val)
				if err != nil {
					return err
				}
				snap.Payloads[id] = *payload
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	ix, err := index.FromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("reconstructing index for collection %q: %w", collection, err)
	}

	r.logger.Debug("index snapshot loaded",
		"collection", collection,
		"terms", ix.VocabSize(),
		"docs", ix.DocCount())
	return ix, nil
}

// DropIndex removes the collection's persisted snapshot and payloads.
func (r *IndexRepository) DropIndex(ctx context.Context, collection string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := deletePrefix(tx, makeTermPrefix(collection)); err != nil {
			return err
		}
		if err := deletePrefix(tx, makePayloadPrefix(collection)); err != nil {
			return err
		}
		if err := tx.Delete(makeStatsKey(collection)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// WithTransaction delegates to the backend.
func (r *IndexRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// Close is a no-op; the shared backend owns the database handle.
func (r *IndexRepository) Close() error {
	return nil
}

// deletePrefix removes every key under the prefix within the transaction.
func deletePrefix(tx *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

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

	"github.com/dgraph-io/badger/v4"

	"github.com/weecici/fusedex/core"
	"github.com/weecici/fusedex/storage"
)

// PayloadStore implements storage.PayloadStore for BadgerDB. It reads the
// payload records written by IndexRepository.SaveIndex.
type PayloadStore struct {
	backend *Backend
}

var _ storage.PayloadStore = (*PayloadStore)(nil)

// NewPayloadStore creates a new PayloadStore.
func NewPayloadStore(backend *Backend) (storage.PayloadStore, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &PayloadStore{backend: backend}, nil
}

// GetPayload retrieves a single payload by document id.
// Returns storage.ErrNotFound if the document doesn't exist.
func (s *PayloadStore) GetPayload(ctx context.Context, collection string, id core.ID) (core.DocumentPayload, error) {
	var payload core.DocumentPayload
	if err := ctx.Err(); err != nil {
		return payload, err
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makePayloadKey(collection, id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("%w: document %d in collection %q", storage.ErrNotFound, id, collection)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			p, err := storage.UnmarshalPayload(val)
			if err != nil {
				return err
			}
			payload = *p
			return nil
		})
	}, false)
	return payload, err
}

// GetPayloads retrieves multiple payloads by id, skipping missing documents.
func (s *PayloadStore) GetPayloads(ctx context.Context, collection string, ids []core.ID) (map[core.ID]core.DocumentPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payloads := make(map[core.ID]core.DocumentPayload, len(ids))
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			item, err := tx.Get(makePayloadKey(collection, id))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}
			err = item.Value(func(val []byte) error {
				p, err := storage.UnmarshalPayload(val)
				if err != nil {
					return err
				}
				payloads[id] = *p
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
	return payloads, nil
}

// ScanPayloads returns up to limit documents with id > afterID, in ascending
// id order. Payload keys embed the id in BigEndian, so a forward iteration
// from the seek position walks ids in order.
func (s *PayloadStore) ScanPayloads(ctx context.Context, collection string, afterID core.ID, limit int) ([]core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	prefix := makePayloadPrefix(collection)
	var docs []core.Document

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makePayloadKey(collection, afterID)); iter.Valid(); iter.Next() {
			item := iter.Item()
			id := payloadIDFromKey(prefix, item.Key())
			if id <= afterID {
				continue
			}
			err := item.Value(func(val []byte) error {
				p, err := storage.UnmarshalPayload(val)
				if err != nil {
					return err
				}
				docs = append(docs, core.Document{Id: id, Text: p.Text, Payload: *p})
				return nil
			})
			if err != nil {
				return err
			}
			if len(docs) == limit {
				break
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// CountPayloads reports the number of stored documents in the collection.
func (s *PayloadStore) CountPayloads(ctx context.Context, collection string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePayloadPrefix(collection)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

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


package reindex

import (
	"context"

	"github.com/weecici/fusedex/core"
	"github.com/weecici/fusedex/storage"
)

const (
	// DefaultBatchSize is the default number of documents fetched per batch.
	DefaultBatchSize = 100
)

// DocumentIterator streams a collection's stored documents in batches of
// ascending id, without loading the whole corpus into memory.
type DocumentIterator struct {
	payloads  storage.PayloadStore
	batchSize int
}

// NewDocumentIterator creates a new document iterator.
// batchSize: number of documents to fetch in each batch (must be > 0)
func NewDocumentIterator(payloads storage.PayloadStore, batchSize int) *DocumentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &DocumentIterator{
		payloads:  payloads,
		batchSize: batchSize,
	}
}

// ForEach scans documents with id > afterID and calls fn for each batch.
// Iteration stops on the first error from fn or when the scan is exhausted.
// Context cancellation is checked between batches.
func (it *DocumentIterator) ForEach(ctx context.Context, collection string, afterID core.ID, fn func([]core.Document) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := it.payloads.ScanPayloads(ctx, collection, afterID, it.batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		if err := fn(batch); err != nil {
			return err
		}
		afterID = batch[len(batch)-1].Id

		if len(batch) < it.batchSize {
			return nil
		}
	}
}

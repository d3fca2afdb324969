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


// Package index implements the lexical side of hybrid retrieval: an
// inverted index over tokenized documents, TF-IDF and Okapi BM25 scoring,
// and a per-collection registry of immutable index snapshots.
//
// # Snapshots
//
// A LexicalIndex is an immutable snapshot. Ingestion never mutates a
// published index; the Builder derives a new snapshot from the previous one
// (upsert by document id) and the Registry swaps it in atomically. Readers
// therefore always observe either the pre-update or the post-update state of
// a document, never a partial update.
//
// # Invariants
//
// For every term entry, DocFreq equals the number of postings, and the
// corpus average document length equals the mean of the per-document
// lengths. These hold by construction; Validate exists so tests can assert
// them.
package index

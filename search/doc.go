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


// Package search provides the retrieval orchestrator.
//
// The Searcher type dispatches query batches across three modes:
//
//   - sparse: the lexical index scored with TF-IDF or Okapi BM25
//   - dense: the vector backend queried with embedded (or caller-supplied)
//     query vectors
//   - hybrid: both backends overfetched independently, then combined with
//     rank fusion and truncated to the requested result count
//
// Batches fan out one goroutine per query; any per-query failure aborts the
// whole batch. An optional Reranker reorders final results, and an optional
// SearchMonitor observes each stage.
package search

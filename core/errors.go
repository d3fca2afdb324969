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


package core

import "errors"

// Retrieval error taxonomy. These sentinels are surfaced unchanged through
// the orchestrator so callers can match on them with errors.Is.
var (
	// ErrEmptyCorpus indicates an index build was requested with zero usable documents.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrUnsupportedScoringMethod indicates an unknown lexical scoring method.
	ErrUnsupportedScoringMethod = errors.New("unsupported scoring method")

	// ErrUnsupportedFusionMethod indicates an unknown rank-fusion method.
	ErrUnsupportedFusionMethod = errors.New("unsupported fusion method")

	// ErrUnsupportedSearchMode indicates an unknown retrieval mode.
	ErrUnsupportedSearchMode = errors.New("unsupported search mode")

	// ErrIndexNotFound indicates a query against a collection that was never built.
	ErrIndexNotFound = errors.New("index not found")

	// ErrBackendUnavailable indicates the vector backend failed or timed out.
	ErrBackendUnavailable = errors.New("vector backend unavailable")

	// ErrDimensionMismatch indicates the embedding count does not match the input count.
	ErrDimensionMismatch = errors.New("embedding count does not match input count")

	// ErrEmptyFusionInput indicates fusion was invoked with both input lists empty
	// when the caller required a non-empty result.
	ErrEmptyFusionInput = errors.New("both fusion inputs are empty")

	// ErrEmptyContent indicates a document with no text was submitted for indexing.
	ErrEmptyContent = errors.New("document text cannot be empty")

	// ErrNoQueries indicates a retrieval request with an empty query batch.
	ErrNoQueries = errors.New("no query text provided")
)

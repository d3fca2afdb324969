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


// Package tokenizer normalizes raw text into ordered index terms.
//
// The pipeline is: Unicode NFKC normalization and lowercasing, UAX#29 word
// segmentation, punctuation removal, stopword filtering, and a configurable
// word-processing stage (Snowball stemming or rule-based lemmatization).
//
// Tokenization is pure and deterministic: the same input always yields the
// same term sequence. Duplicate terms are preserved in order so downstream
// consumers can count term frequencies.
package tokenizer

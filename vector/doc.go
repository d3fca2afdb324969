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


// Package vector provides the dense retrieval backend abstraction and an
// in-memory implementation.
//
// Vectors are normalized to unit length on insert, so cosine similarity
// reduces to a dot product at query time. The in-memory store does a
// brute-force scan per query, which is the right trade-off for the corpus
// sizes this engine targets; the Backend interface leaves room for an ANN
// implementation behind the same contract.
package vector

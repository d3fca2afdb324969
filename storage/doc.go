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


// Package storage provides the persistence abstraction layer for fusedex.
//
// It defines repository interfaces that decouple storage implementation from
// retrieval logic, so different backends can be used interchangeably. The
// storage/badger sub-package is the production implementation.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return the interfaces
// defined here to prevent accidental coupling to backend specifics:
//
//	repo, err := badger.NewIndexRepository(backend) // returns storage.IndexRepository
//
// # Architecture
//
// The storage layer follows the repository pattern:
//
//   - IndexRepository: persisting and loading lexical index snapshots
//   - PayloadStore: document payload reads for result hydration and reindexing
//   - CheckpointRepository: progress checkpoints for batch tasks
//
// Values are serialized with mus-format marshalers; the helpers live in
// serialization.go so value encoding stays in one place.
package storage

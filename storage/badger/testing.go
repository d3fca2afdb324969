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
	"github.com/weecici/fusedex/storage"
	"github.com/weecici/fusedex/vector"
)

// NewMemoryRepositories creates in-memory repositories for testing.
// Returns the index repository, payload store, vector store, backend, and
// error. Caller must close the backend when done.
func NewMemoryRepositories() (storage.IndexRepository, storage.PayloadStore, vector.Backend, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	indexRepo, err := NewIndexRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	payloads, err := NewPayloadStore(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	vectors, err := NewVectorStore(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	return indexRepo, payloads, vectors, backend, nil
}

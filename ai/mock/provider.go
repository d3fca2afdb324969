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


package mock

import "github.com/weecici/fusedex/ai"

// Provider is a test double for ai.Provider.
type Provider struct {
	embedder *Embedder
}

// NewProvider creates a mock provider with a default mock embedder.
//
// Returns ai.Provider interface for consistency with production
// constructors. Use MockEmbedder() to access the concrete type for test
// assertions.
func NewProvider() ai.Provider {
	return &Provider{embedder: NewEmbedder()}
}

// NewProviderWithEmbedder creates a mock provider around a custom mock
// embedder, for tests that inject behavior.
func NewProviderWithEmbedder(embedder *Embedder) ai.Provider {
	return &Provider{embedder: embedder}
}

// Embedder returns the mock embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// MockEmbedder returns the concrete mock embedder for test assertions.
func (p *Provider) MockEmbedder() *Embedder {
	return p.embedder
}

// Close is a no-op.
func (p *Provider) Close() error {
	return nil
}

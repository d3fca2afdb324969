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


// Package ai provides abstractions for the embedding services the engine
// depends on.
//
// The core retrieval logic depends only on the Embedder and Provider
// interfaces defined here, never on a concrete client. Two implementation
// sub-packages exist:
//
//   - ai/openai: production implementation for OpenAI-compatible APIs
//     (OpenAI, Ollama, LocalAI, vLLM)
//   - ai/mock: deterministic test doubles that run without a network
//
// Public constructors in the implementation packages return the interface
// types; mock constructors return concrete types so tests can inject
// behavior and assert on call counts.
package ai

// Copyright 2025 Poiesic Systems
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

// Package ai provides abstractions for the model services infobot depends on.
//
// Three interfaces cover everything the engine asks of a model:
//
//   - Embedder: turns text into vectors for similarity search
//   - ConceptExtractor: names the entities a passage is about
//   - Generator: writes an answer from retrieved context
//
// AIProvider bundles the three so they share configuration and lifecycle.
//
// # Implementation Packages
//
//   - ai/openai: langchaingo clients for OpenAI-compatible endpoints (Ollama by default)
//   - ai/mock: deterministic test doubles
//
// Public constructors in ai/openai return interfaces. Mock constructors return
// concrete types so tests can inject behaviour and read call counts.
//
// # Usage Example
//
//	provider, err := openai.NewProvider(ai.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "Tell me the history of IIUC.")
//	answer, err := provider.Generator().Generate(ctx, system, prompt)
package ai

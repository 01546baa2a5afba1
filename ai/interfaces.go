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

package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ConceptExtractor extracts semantic concepts from text.
// Implementations must be thread-safe for concurrent use.
type ConceptExtractor interface {
	// ExtractConcepts analyzes text and extracts key concepts with their types
	// and importance scores.
	// Returns an empty slice if no concepts are found.
	ExtractConcepts(ctx context.Context, text string) ([]ExtractedConcept, error)
}

// Generator produces a natural-language completion.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate completes prompt under the given system instructions.
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// ExtractedConcept represents a semantic concept identified in text.
type ExtractedConcept struct {
	// Name is the concept identifier in lowercase, 1-3 words, singular form.
	// Example: "university", "chittagong", "founder"
	Name string

	// Type categorizes the concept (e.g., "organization", "place", "person").
	Type string

	// Importance is a score from 1-10 indicating how central this concept
	// is to understanding the text.
	Importance int
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// ConceptExtractor returns the concept extraction service.
	ConceptExtractor() ConceptExtractor

	// Generator returns the answer generation service.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	Close() error
}

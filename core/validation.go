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

package core

import "fmt"

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Contents must not be empty
//   - Index must not be negative
//   - Concept references must carry an importance between 1 and 10
//
// NOT validated (populated on insert):
//   - Vector
//   - ID (derived from document, index and contents when zero)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Contents == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.Index < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeIndex)
	}

	for _, ref := range chunk.Concepts {
		if ref.Importance < 1 || ref.Importance > 10 {
			return fmt.Errorf("%w: %w: got %d", ErrInvalidChunk, ErrInvalidImportance, ref.Importance)
		}
	}

	return nil
}

// ValidateConcept validates a Concept according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Type must not be empty
func ValidateConcept(concept *Concept) error {
	if concept == nil {
		return fmt.Errorf("%w: concept is nil", ErrInvalidConcept)
	}

	if concept.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, ErrEmptyConceptName)
	}

	if concept.Type == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, ErrEmptyConceptType)
	}

	return nil
}

// ValidateDocument validates a Document before it is recorded.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.ChunkCount < 0 {
		return fmt.Errorf("%w: negative chunk count %d", ErrInvalidDocument, doc.ChunkCount)
	}
	return nil
}

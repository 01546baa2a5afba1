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

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkID derives the ID of the chunk at index within a document.
// Identical text at the same position of the same document always maps to the same ID.
func ChunkID(documentID ID, index int, contents string) ID {
	return IDFromContent(strconv.FormatUint(uint64(documentID), 16) + ":" + strconv.Itoa(index) + ":" + contents)
}

// Document records a body of text that has been inserted into the engine.
type Document struct {
	Id         ID        `json:"id"`
	Source     string    `json:"source,omitempty"` // Where the text came from (file path, "inline", ...)
	ChunkCount int       `json:"chunk_count"`
	InsertedAt time.Time `json:"inserted_at"`
}

// Chunk is a retrievable unit of indexed text.
// It is enriched with an embedding and concepts when inserted.
type Chunk struct {
	Id         ID           `json:"id"`
	DocumentId ID           `json:"document_id"`
	Index      int          `json:"index"` // Position within the document
	Contents   string       `json:"contents"`
	Vector     []float32    `json:"vector,omitempty"`   // Normalized embedding for semantic search
	Concepts   []ConceptRef `json:"concepts,omitempty"` // Concepts extracted from the contents
	InsertedAt time.Time    `json:"inserted_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Concept represents a named entity extracted from indexed text.
type Concept struct {
	Id         ID        `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Vector     []float32 `json:"vector,omitempty"` // Embedding of the concept name
	InsertedAt time.Time `json:"inserted_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Tuple returns a string representation of the concept as "(Type,Name)".
// This is used for generating deterministic IDs.
func (c *Concept) Tuple() string {
	return ConceptTuple(c.Name, c.Type)
}

// ConceptTuple formats a name and type the way Concept.Tuple does.
func ConceptTuple(name, conceptType string) string {
	return "(" + conceptType + "," + name + ")"
}

// ConceptRef represents a reference to a concept with an importance score.
type ConceptRef struct {
	ConceptId  ID  `json:"concept_id"`
	Importance int `json:"importance"` // Importance score from 1-10
}

// SearchResult represents a retrieved chunk with its relevance score.
type SearchResult struct {
	Chunk *Chunk
	Score float32
}

// ConceptMatch represents a concept found by vector similarity.
type ConceptMatch struct {
	Concept *Concept
	Score   float32
}

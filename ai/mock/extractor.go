package mock

import (
	"context"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/poiesic/infobot/ai"
)

// stopWords are skipped by the default extractor.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "me": true, "tell": true, "what": true, "who": true,
}

// MockConceptExtractor is a test double for ai.ConceptExtractor.
// It allows custom behavior injection via function fields.
type MockConceptExtractor struct {
	// ExtractConceptsFunc is called by ExtractConcepts if set.
	ExtractConceptsFunc func(ctx context.Context, text string) ([]ai.ExtractedConcept, error)

	// Limit caps the default behavior's output. Zero means 5.
	Limit int

	callCount atomic.Int64
}

// NewMockConceptExtractor creates a mock concept extractor with default behavior.
func NewMockConceptExtractor() *MockConceptExtractor {
	return &MockConceptExtractor{}
}

// ExtractConcepts returns one "keyword" concept per distinct non-stop word,
// in order of first appearance, with importance falling from 10.
func (m *MockConceptExtractor) ExtractConcepts(ctx context.Context, text string) ([]ai.ExtractedConcept, error) {
	m.callCount.Add(1)

	if m.ExtractConceptsFunc != nil {
		return m.ExtractConceptsFunc(ctx, text)
	}

	limit := m.Limit
	if limit <= 0 {
		limit = 5
	}

	concepts := make([]ai.ExtractedConcept, 0, limit)
	seen := make(map[string]bool)
	importance := 10
	for _, word := range Words(text) {
		if len(concepts) >= limit {
			break
		}
		if stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		concepts = append(concepts, ai.ExtractedConcept{
			Name:       word,
			Type:       "keyword",
			Importance: importance,
		})
		if importance > 1 {
			importance--
		}
	}
	return concepts, nil
}

// CallCount returns the number of times ExtractConcepts was called.
func (m *MockConceptExtractor) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockConceptExtractor) Reset() {
	m.callCount.Store(0)
	m.ExtractConceptsFunc = nil
}

// Words lowercases text and splits it on anything that is not a letter or digit.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

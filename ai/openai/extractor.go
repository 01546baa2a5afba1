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

package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/infobot/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxExtractAttempts bounds how often a malformed JSON reply is re-requested.
const maxExtractAttempts = 3

// ConceptExtractor implements ai.ConceptExtractor using OpenAI-compatible chat APIs.
type ConceptExtractor struct {
	client        llms.Model
	minImportance int
	logger        *slog.Logger
}

// concept is an internal type used for JSON unmarshaling.
// It matches the structure expected from the model.
type concept struct {
	Concept    string `json:"concept"`
	Type       string `json:"type"`
	Importance int    `json:"importance"`
}

// analysis is the wrapper structure for the model's JSON response.
type analysis struct {
	CoreConcepts []concept `json:"core_concepts"`
}

// newConceptExtractor is an internal constructor that returns the concrete type.
func newConceptExtractor(config *ai.Config) (*ConceptExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.CompletionHost),
		openai.WithToken("none"),
		openai.WithModel(config.CompletionModel),
	)
	if err != nil {
		return nil, err
	}

	return &ConceptExtractor{
		client:        client,
		minImportance: config.MinImportance,
		logger:        slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewConceptExtractor creates a new concept extractor using the provided configuration.
//
// Returns ai.ConceptExtractor interface to enforce abstraction.
func NewConceptExtractor(config *ai.Config) (ai.ConceptExtractor, error) {
	return newConceptExtractor(config)
}

// ExtractConcepts extracts semantic concepts from text using the chat model.
// Only concepts at or above the minimum importance are returned, most important first.
func (e *ConceptExtractor) ExtractConcepts(ctx context.Context, text string) ([]ai.ExtractedConcept, error) {
	text = scrubString(text)
	if text == "" {
		return []ai.ExtractedConcept{}, nil
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, buildExtractionPrompt()),
		llms.TextParts(llms.ChatMessageTypeHuman, text),
	}

	var result analysis
	var lastErr error
	for attempt := 0; attempt < maxExtractAttempts; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return []ai.ExtractedConcept{}, nil
		}

		responseText := cleanJSONResponse(response.Choices[0].Content)
		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extraction response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extraction response after retries", "err", lastErr)
		return nil, lastErr
	}

	extracted := filterConcepts(result.CoreConcepts, e.minImportance)
	e.logger.Debug("extracted concepts",
		"total", len(result.CoreConcepts),
		"filtered", len(extracted))
	return extracted, nil
}

// cleanJSONResponse strips markdown fences and repairs common key-quoting slips.
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return repairJSON(strings.TrimSpace(s))
}

// filterConcepts drops concepts below minImportance, normalizes names and types,
// merges duplicates and sorts by importance descending.
func filterConcepts(raw []concept, minImportance int) []ai.ExtractedConcept {
	seen := make(map[string]int, len(raw))
	extracted := make([]ai.ExtractedConcept, 0, len(raw))
	for _, c := range raw {
		if c.Importance < minImportance {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(c.Concept))
		kind := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(c.Type)), " ", "_")
		if name == "" || kind == "" {
			continue
		}
		key := kind + "\x00" + name
		if idx, ok := seen[key]; ok {
			extracted[idx].Importance = max(extracted[idx].Importance, min(c.Importance, 10))
			continue
		}
		seen[key] = len(extracted)
		extracted = append(extracted, ai.ExtractedConcept{
			Name:       name,
			Type:       kind,
			Importance: min(c.Importance, 10),
		})
	}

	slices.SortStableFunc(extracted, func(a, b ai.ExtractedConcept) int {
		return b.Importance - a.Importance
	})
	return extracted
}

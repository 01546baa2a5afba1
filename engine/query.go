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

package engine

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/infobot/core"
)

const systemPrompt = `You are a helpful assistant answering questions about the documents in a knowledge base.

Answer using only the information in the context below. When the context does not contain
the answer, say that you do not know. Do not make anything up. Answer in clear prose of one
or more paragraphs.`

const contextSeparator = "\n-----\n"

// Query answers question using the retrieval strategy named by mode.
func (e *Engine) Query(ctx context.Context, question string, mode core.Mode) (*Result, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidMode, string(mode))
	}
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	e.monitor.Start(question, mode)

	sources, err := e.retrieve(ctx, question, mode)
	if err != nil {
		return nil, err
	}
	ids := make([]core.ID, len(sources))
	for i, s := range sources {
		ids[i] = s.Chunk.Id
	}
	e.monitor.AfterRetrieval(mode, ids)

	contextBlock := buildContext(sources, e.maxContextRunes)
	e.monitor.AfterContext(utf8.RuneCountInString(contextBlock))
	e.logger.Debug("context assembled", "mode", mode, "chunks", len(sources), "runes", utf8.RuneCountInString(contextBlock))

	answer, err := e.generate(ctx, systemPrompt, buildPrompt(contextBlock, question))
	if err != nil {
		e.logger.Error("error generating answer", "mode", mode, "err", err)
		return nil, err
	}

	result := &Result{Answer: answer, Mode: mode, Sources: sources}
	e.monitor.Finish(result)
	return result, nil
}

// buildContext joins chunk contents in order until maxRunes is reached.
// A first chunk larger than the budget is truncated rather than dropped.
func buildContext(sources []*core.SearchResult, maxRunes int) string {
	var sb strings.Builder
	used := 0
	sepRunes := utf8.RuneCountInString(contextSeparator)
	for i, s := range sources {
		contents := s.Chunk.Contents
		n := utf8.RuneCountInString(contents)
		if i > 0 {
			if used+sepRunes+n > maxRunes {
				break
			}
			sb.WriteString(contextSeparator)
			used += sepRunes
		} else if n > maxRunes {
			contents = truncateRunes(contents, maxRunes)
			n = maxRunes
		}
		sb.WriteString(contents)
		used += n
	}
	return sb.String()
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func buildPrompt(contextBlock, question string) string {
	if contextBlock == "" {
		contextBlock = "(no relevant context was found)"
	}
	return "---Context---\n" + contextBlock + "\n\n---Question---\n" + question
}

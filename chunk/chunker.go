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

package chunk

import (
	"iter"
	"unicode/utf8"
)

// DefaultSize is the window length, in characters, used when none is given.
const DefaultSize = 1000

// Chunks returns the fixed-size windows of doc as a lazy sequence.
//
// Windows are size characters (runes) long, cover doc left to right with no
// overlap and no gaps, and the final window may be shorter. An empty doc
// yields nothing. A size below 1 falls back to DefaultSize. The sequence can
// be ranged over any number of times; each pass starts from the beginning.
func Chunks(doc string, size int) iter.Seq[string] {
	if size < 1 {
		size = DefaultSize
	}
	return func(yield func(string) bool) {
		start := 0
		for start < len(doc) {
			end := start
			for n := 0; n < size && end < len(doc); n++ {
				_, w := utf8.DecodeRuneInString(doc[end:])
				end += w
			}
			if !yield(doc[start:end]) {
				return
			}
			start = end
		}
	}
}

// Split collects every window of doc into a slice.
func Split(doc string, size int) []string {
	out := make([]string, 0, Count(doc, size))
	for c := range Chunks(doc, size) {
		out = append(out, c)
	}
	return out
}

// Count returns the number of windows Chunks would yield for doc.
func Count(doc string, size int) int {
	if size < 1 {
		size = DefaultSize
	}
	n := utf8.RuneCountInString(doc)
	return (n + size - 1) / size
}

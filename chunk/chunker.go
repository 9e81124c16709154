// Copyright 2025 SentinelAI Systems
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


// Package chunk splits extracted document text into overlapping pieces
// sized for embedding. The generic path is sentence-aware so chunk
// boundaries land between sentences; markdown gets a structure-aware
// splitter that respects headings and code blocks.
package chunk

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultSize is the character budget per chunk.
	DefaultSize = 500
	// DefaultOverlap is the approximate number of characters repeated
	// between consecutive chunks.
	DefaultOverlap = 50
)

// Chunker splits text into overlapping chunks.
type Chunker struct {
	size    int
	overlap int
	md      *textsplitter.MarkdownTextSplitter
}

// New creates a Chunker. Non-positive arguments fall back to defaults.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultOverlap
	}
	return &Chunker{
		size:    size,
		overlap: overlap,
		md: textsplitter.NewMarkdownTextSplitter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
		),
	}
}

// SplitFor splits text using the splitter best suited to the file type.
// Markdown goes through the structure-aware splitter; everything else
// uses sentence-aware splitting. Falls back to the generic path when the
// markdown splitter fails.
func (c *Chunker) SplitFor(fileType, text string) []string {
	if strings.EqualFold(fileType, ".md") {
		if chunks, err := c.md.SplitText(text); err == nil && len(chunks) > 0 {
			return chunks
		}
	}
	return c.Split(text)
}

// Split breaks text into overlapping chunks at sentence boundaries.
// Sentences longer than the chunk size become chunks of their own rather
// than being cut mid-sentence.
func (c *Chunker) Split(text string) []string {
	// Normalize whitespace
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)

	var chunks []string
	var current []string
	currentLen := 0

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		if currentLen+len(sentence) > c.size && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current, currentLen = c.overlapTail(current)
		}

		current = append(current, sentence)
		currentLen += len(sentence) + 1
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}

// overlapTail takes the last words of a finished chunk, up to the overlap
// budget, as the seed of the next chunk.
func (c *Chunker) overlapTail(current []string) ([]string, int) {
	joined := strings.Join(current, " ")
	if len(joined) <= c.overlap {
		return nil, 0
	}

	words := strings.Fields(joined)
	var tail []string
	tailLen := 0
	for i := len(words) - 1; i >= 0; i-- {
		if tailLen+len(words[i]) >= c.overlap {
			break
		}
		tail = append([]string{words[i]}, tail...)
		tailLen += len(words[i]) + 1
	}
	return tail, tailLen
}

// splitSentences cuts text after sentence-ending punctuation followed by
// a space.
func splitSentences(text string) []string {
	replaced := strings.NewReplacer(
		". ", ".\n",
		"? ", "?\n",
		"! ", "!\n",
	).Replace(text)
	return strings.Split(replaced, "\n")
}

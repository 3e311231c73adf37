// Package rag implements the text processing side of the retrieval
// pipeline: chunking, rerank scoring, context assembly, and parsing of
// model answers into structured recommendations.
package rag

import (
	"regexp"
	"strings"
)

// Chunk is one window of a chunked document
type Chunk struct {
	Index      int
	Content    string
	TokenCount int
}

// Chunker splits document text into overlapping token windows
type Chunker struct {
	windowTokens  int
	overlapTokens int
}

// minChunkTokens drops trailing fragments too small to embed usefully.
const minChunkTokens = 20

// NewChunker creates a chunker. Zero or negative sizes fall back to
// the 512/50 defaults.
func NewChunker(windowTokens, overlapTokens int) *Chunker {
	if windowTokens <= 0 {
		windowTokens = 512
	}
	if overlapTokens < 0 || overlapTokens >= windowTokens {
		overlapTokens = 50
	}
	return &Chunker{windowTokens: windowTokens, overlapTokens: overlapTokens}
}

var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

// Clean strips control characters and collapses whitespace runs.
func Clean(text string) string {
	text = controlChars.ReplaceAllString(text, "")
	text = multiSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Split chunks cleaned text into overlapping windows. Tokens are
// whitespace-delimited words, which tracks the embedding model's
// tokenizer closely enough for sizing.
func (c *Chunker) Split(text string) []Chunk {
	words := strings.Fields(Clean(text))
	if len(words) == 0 {
		return nil
	}

	step := c.windowTokens - c.overlapTokens
	var chunks []Chunk

	for start := 0; start < len(words); start += step {
		end := start + c.windowTokens
		if end > len(words) {
			end = len(words)
		}

		window := words[start:end]
		// Drop a trailing fragment unless it is the only chunk.
		if len(window) < minChunkTokens && len(chunks) > 0 {
			break
		}

		chunks = append(chunks, Chunk{
			Index:      len(chunks),
			Content:    strings.Join(window, " "),
			TokenCount: len(window),
		})

		if end == len(words) {
			break
		}
	}

	return chunks
}

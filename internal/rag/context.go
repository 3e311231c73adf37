package rag

import (
	"fmt"
	"strings"

	"github.com/tradeboard/tradeboard/internal/domain"
)

// charsPerToken approximates the context budget in characters.
const charsPerToken = 4

// FormatContext renders retrieved chunks into the prompt context
// block, capped at maxTokens worth of characters. Chunks that do not
// fit are dropped in rank order.
func FormatContext(chunks []domain.ScoredChunk, maxTokens int) string {
	if len(chunks) == 0 {
		return ""
	}
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	budget := maxTokens * charsPerToken

	var b strings.Builder
	for i, ch := range chunks {
		symbol := ch.Symbol
		if symbol == "" {
			symbol = "GENERAL"
		}
		block := fmt.Sprintf("[Context %d - %s - %s - Relevance: %.2f]\n%s\n\n",
			i+1, strings.ToUpper(string(ch.DocType)), symbol, ch.Similarity, ch.Chunk.Content)

		if b.Len()+len(block) > budget {
			break
		}
		b.WriteString(block)
	}

	return strings.TrimRight(b.String(), "\n")
}

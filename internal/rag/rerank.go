package rag

import (
	"sort"
	"time"

	"github.com/tradeboard/tradeboard/internal/domain"
)

// Hybrid rerank weights: retrieval similarity dominates, recency
// breaks ties toward fresher analysis.
const (
	hybridSimilarityWeight = 0.6
	hybridRecencyWeight    = 0.4
	recencyHalfLife        = 7 * 24 * time.Hour
)

// Rerank reorders retrieved chunks in place according to the method
// and returns the same slice.
func Rerank(chunks []domain.ScoredChunk, method domain.RerankMethod, now time.Time) []domain.ScoredChunk {
	switch method {
	case domain.RerankRecency:
		sort.SliceStable(chunks, func(i, j int) bool {
			return chunks[i].DocCreated.After(chunks[j].DocCreated)
		})
	case domain.RerankHybrid:
		score := func(ch domain.ScoredChunk) float64 {
			return hybridSimilarityWeight*ch.Similarity +
				hybridRecencyWeight*recencyScore(ch.DocCreated, now)
		}
		sort.SliceStable(chunks, func(i, j int) bool {
			return score(chunks[i]) > score(chunks[j])
		})
	default:
		// similarity: retrieval order already descending
		sort.SliceStable(chunks, func(i, j int) bool {
			return chunks[i].Similarity > chunks[j].Similarity
		})
	}
	return chunks
}

// recencyScore decays exponentially with document age, 1.0 for a
// brand new document, 0.5 after one half-life.
func recencyScore(created, now time.Time) float64 {
	age := now.Sub(created)
	if age <= 0 {
		return 1.0
	}
	halfLives := float64(age) / float64(recencyHalfLife)
	score := 1.0
	for halfLives >= 1 {
		score /= 2
		halfLives--
	}
	return score * (1 - halfLives/2)
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is a unit of ingested knowledge for the retrieval pipeline
type Document struct {
	ID        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	DocType   DocType           `json:"docType"`
	Symbol    string            `json:"symbol,omitempty"`
	Timeframe string            `json:"timeframe,omitempty"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// DocumentInput represents input for ingesting a document
type DocumentInput struct {
	Title     string            `json:"title" validate:"required,min=1,max=200"`
	DocType   DocType           `json:"docType" validate:"required"`
	Symbol    string            `json:"symbol,omitempty" validate:"omitempty,symbol"`
	Timeframe string            `json:"timeframe,omitempty" validate:"max=20"`
	Content   string            `json:"content" validate:"required,min=1"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Async     bool              `json:"async,omitempty"`
}

// DocumentChunk is one embedded slice of a document
type DocumentChunk struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"documentId"`
	ChunkIndex int       `json:"chunkIndex"`
	Content    string    `json:"content"`
	TokenCount int       `json:"tokenCount"`
	Embedding  []float32 `json:"-"`
}

// ScoredChunk is a retrieved chunk with its similarity to a query
type ScoredChunk struct {
	Chunk      DocumentChunk `json:"chunk"`
	Similarity float64       `json:"similarity"`
	DocType    DocType       `json:"docType"`
	Symbol     string        `json:"symbol,omitempty"`
	DocCreated time.Time     `json:"docCreated"`
}

// ChunkFilter narrows a similarity search
type ChunkFilter struct {
	Symbol    string
	DocType   DocType
	Timeframe string
}

// QueryHistory records one answered RAG query
type QueryHistory struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"userId"`
	Query          string    `json:"query"`
	Answer         string    `json:"answer"`
	Confidence     float64   `json:"confidence"`
	SourcesUsed    int       `json:"sourcesUsed"`
	ResponseTimeMs int64     `json:"responseTimeMs"`
	CreatedAt      time.Time `json:"createdAt"`
}

// QueryInput represents input for a RAG query
type QueryInput struct {
	Query     string       `json:"query" validate:"required,min=1,max=2000"`
	Symbol    string       `json:"symbol,omitempty" validate:"omitempty,symbol"`
	DocType   DocType      `json:"docType,omitempty"`
	Timeframe string       `json:"timeframe,omitempty" validate:"max=20"`
	TopK      int          `json:"topK,omitempty" validate:"omitempty,gte=1,lte=50"`
	Rerank    RerankMethod `json:"rerank,omitempty"`
}

// QueryResult is the answer to a RAG query
type QueryResult struct {
	Answer         string   `json:"answer"`
	Confidence     float64  `json:"confidence"`
	Sources        []Source `json:"sources"`
	ResponseTimeMs int64    `json:"responseTimeMs"`
}

// Source identifies a document chunk backing an answer
type Source struct {
	DocumentID uuid.UUID `json:"documentId"`
	Title      string    `json:"title,omitempty"`
	DocType    DocType   `json:"docType"`
	Symbol     string    `json:"symbol,omitempty"`
	Similarity float64   `json:"similarity"`
}

// RecommendationInput represents input for a trading recommendation
type RecommendationInput struct {
	Symbol        string  `json:"symbol" validate:"required,symbol"`
	AvailableCash float64 `json:"availableCash" validate:"gte=0"`
}

// Recommendation is a parsed trading recommendation
type Recommendation struct {
	Symbol       string       `json:"symbol"`
	Action       SignalAction `json:"action"`
	Confidence   float64      `json:"confidence"`
	Risk         RiskLevel    `json:"risk"`
	PositionSize float64      `json:"positionSize"`
	Reasoning    string       `json:"reasoning"`
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/config"
	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/middleware"
	apperrors "github.com/tradeboard/tradeboard/internal/pkg/errors"
	"github.com/tradeboard/tradeboard/internal/pkg/logger"
	"github.com/tradeboard/tradeboard/internal/rag"
)

const openAIProvider = "openai"

const answerSystemPrompt = `You are a trading research assistant. Answer using only the
provided context blocks. If the context does not cover the question, say so plainly.
Be concise and cite concrete numbers from the context where available.`

const recommendSystemPrompt = `You are a trading research assistant. Based only on the
provided context, state whether to BUY, SELL or HOLD the symbol, your confidence as a
percentage, and whether the risk is low, medium or high. Explain briefly.`

// degradedAnswerNote prefixes the raw context returned when the
// completion provider is unavailable.
const degradedAnswerNote = "Answer provider unavailable; returning the retrieved context unprocessed."

// DocumentRepository defines document, chunk and query history
// repository operations
type DocumentRepository interface {
	CreateDocument(ctx context.Context, d *domain.Document) error
	GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error
	CreateChunks(ctx context.Context, chunks []domain.DocumentChunk) error
	SearchSimilar(ctx context.Context, embedding []float32, topK int, minSimilarity float64, filter domain.ChunkFilter) ([]domain.ScoredChunk, error)
	CreateQueryHistory(ctx context.Context, h *domain.QueryHistory) error
	ListQueryHistory(ctx context.Context, userID uuid.UUID, limit int) ([]domain.QueryHistory, error)
}

// Embedder produces embedding vectors for texts
type Embedder interface {
	Embed(ctx context.Context, apiKey string, texts []string) ([][]float32, error)
}

// Completer produces a chat completion answer
type Completer interface {
	Complete(ctx context.Context, apiKey, systemPrompt, userPrompt string) (string, error)
}

// IntelligenceService runs the retrieval pipeline: document ingestion,
// similarity search, answer generation and trading recommendations.
type IntelligenceService struct {
	cfg       *config.Config
	docRepo   DocumentRepository
	embedder  Embedder
	completer Completer
	keys      ProviderKeyResolver
	chunker   *rag.Chunker
}

// NewIntelligenceService creates a new intelligence service
func NewIntelligenceService(cfg *config.Config, docRepo DocumentRepository, embedder Embedder, completer Completer, keys ProviderKeyResolver) *IntelligenceService {
	return &IntelligenceService{
		cfg:       cfg,
		docRepo:   docRepo,
		embedder:  embedder,
		completer: completer,
		keys:      keys,
		chunker:   rag.NewChunker(cfg.RAG.ChunkTokens, cfg.RAG.ChunkOverlap),
	}
}

// resolveKey prefers a stored key for the provider and falls back to
// the configured one
func (s *IntelligenceService) resolveKey(ctx context.Context) (string, error) {
	if key, err := s.keys.ResolveForProvider(ctx, nil, openAIProvider); err == nil {
		return key, nil
	}
	if s.cfg.OpenAI.APIKey != "" {
		return s.cfg.OpenAI.APIKey, nil
	}
	return "", apperrors.Unavailable("no OpenAI API key configured")
}

// CreateDocument stores a document without embedding it. Use
// EmbedDocument to build its chunks, or IngestDocument for both.
func (s *IntelligenceService) CreateDocument(ctx context.Context, input *domain.DocumentInput) (*domain.Document, error) {
	if !input.DocType.IsValid() {
		return nil, apperrors.Validation("invalid document type")
	}

	doc := &domain.Document{
		ID:        uuid.New(),
		Title:     input.Title,
		DocType:   input.DocType,
		Symbol:    strings.ToUpper(input.Symbol),
		Timeframe: input.Timeframe,
		Content:   rag.Clean(input.Content),
		Metadata:  input.Metadata,
		CreatedAt: time.Now(),
	}

	if err := s.docRepo.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// EmbedDocument chunks a stored document and writes its embedded
// chunks. A batch whose embedding call fails twice is stored with zero
// vectors so ingestion never loses text.
func (s *IntelligenceService) EmbedDocument(ctx context.Context, documentID uuid.UUID) (int, error) {
	doc, err := s.docRepo.GetDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}

	pieces := s.chunker.Split(doc.Content)
	if len(pieces) == 0 {
		return 0, nil
	}

	key, err := s.resolveKey(ctx)
	if err != nil {
		return 0, err
	}

	chunks := make([]domain.DocumentChunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = domain.DocumentChunk{
			ID:         uuid.New(),
			DocumentID: doc.ID,
			ChunkIndex: p.Index,
			Content:    p.Content,
			TokenCount: p.TokenCount,
		}
	}

	batchSize := s.cfg.RAG.EmbeddingBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, ch := range chunks[start:end] {
			texts = append(texts, ch.Content)
		}

		vectors, err := s.embedBatch(ctx, key, texts)
		if err != nil {
			logger.Warn("embedding batch failed, storing zero vectors",
				zap.String("document_id", doc.ID.String()),
				zap.Int("batch_start", start),
				zap.Error(err),
			)
			vectors = make([][]float32, len(texts))
			for i := range vectors {
				vectors[i] = make([]float32, s.cfg.RAG.EmbeddingDims)
			}
		}

		for i := range vectors {
			chunks[start+i].Embedding = vectors[i]
		}
	}

	if err := s.docRepo.CreateChunks(ctx, chunks); err != nil {
		return 0, err
	}

	return len(chunks), nil
}

// embedBatch retries a failed embedding call once before giving up
func (s *IntelligenceService) embedBatch(ctx context.Context, key string, texts []string) ([][]float32, error) {
	vectors, err := s.embedder.Embed(ctx, key, texts)
	if err == nil {
		return vectors, nil
	}
	return s.embedder.Embed(ctx, key, texts)
}

// IngestDocument stores and embeds a document in one call
func (s *IntelligenceService) IngestDocument(ctx context.Context, input *domain.DocumentInput) (*domain.Document, int, error) {
	doc, err := s.CreateDocument(ctx, input)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.EmbedDocument(ctx, doc.ID)
	if err != nil {
		return nil, 0, err
	}

	return doc, count, nil
}

// GetDocument retrieves a stored document
func (s *IntelligenceService) GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetDocument(ctx, id)
}

// DeleteDocument removes a document and its chunks
func (s *IntelligenceService) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	return s.docRepo.DeleteDocument(ctx, id)
}

// Query answers a question from the document store. When the
// completion call fails the retrieved context is returned with a
// provider unavailable note and zero confidence rather than failing
// the request.
func (s *IntelligenceService) Query(ctx context.Context, userID uuid.UUID, input *domain.QueryInput) (*domain.QueryResult, error) {
	start := time.Now()

	chunks, key, err := s.retrieve(ctx, input)
	if err != nil {
		middleware.RecordRAGQuery("error", time.Since(start), 0, 0)
		return nil, err
	}

	if len(chunks) == 0 {
		result := &domain.QueryResult{
			Answer:         "No relevant context found for this query.",
			Confidence:     0,
			Sources:        []domain.Source{},
			ResponseTimeMs: time.Since(start).Milliseconds(),
		}
		middleware.RecordRAGQuery("empty", time.Since(start), 0, 0)
		return result, nil
	}

	contextText := rag.FormatContext(chunks, s.cfg.RAG.MaxContextTokens)
	confidence := averageSimilarity(chunks)

	status := "success"
	answer, err := s.completer.Complete(ctx, key, answerSystemPrompt,
		fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, input.Query))
	if err != nil {
		logger.Warn("completion failed, returning raw context", zap.Error(err))
		answer = degradedAnswerNote + "\n\n" + contextText
		confidence = 0
		status = "degraded"
	}

	result := &domain.QueryResult{
		Answer:         answer,
		Confidence:     confidence,
		Sources:        sourcesOf(chunks),
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}

	s.recordHistory(ctx, userID, input.Query, result)
	middleware.RecordRAGQuery(status, time.Since(start), result.Confidence, len(chunks))

	return result, nil
}

// Recommend produces a structured trading recommendation for a symbol
func (s *IntelligenceService) Recommend(ctx context.Context, userID uuid.UUID, input *domain.RecommendationInput) (*domain.Recommendation, error) {
	symbol := strings.ToUpper(input.Symbol)
	query := &domain.QueryInput{
		Query:  fmt.Sprintf("Should I buy, sell or hold %s right now?", symbol),
		Symbol: symbol,
		Rerank: domain.RerankHybrid,
	}

	start := time.Now()
	chunks, key, err := s.retrieve(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, apperrors.NotFound("context for symbol")
	}

	contextText := rag.FormatContext(chunks, s.cfg.RAG.MaxContextTokens)
	answer, err := s.completer.Complete(ctx, key, recommendSystemPrompt,
		fmt.Sprintf("Context:\n%s\n\nSymbol: %s", contextText, symbol))
	if err != nil {
		return nil, apperrors.Unavailable("recommendation model unavailable").WithError(err)
	}

	rec := rag.ParseRecommendation(symbol, answer, input.AvailableCash)
	middleware.RecordRAGQuery("success", time.Since(start), rec.Confidence, len(chunks))

	return &rec, nil
}

// History retrieves the user's recent answered queries
func (s *IntelligenceService) History(ctx context.Context, userID uuid.UUID, limit int) ([]domain.QueryHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.docRepo.ListQueryHistory(ctx, userID, limit)
}

// retrieve embeds the query and returns the reranked top chunks plus
// the resolved API key for the follow-up completion
func (s *IntelligenceService) retrieve(ctx context.Context, input *domain.QueryInput) ([]domain.ScoredChunk, string, error) {
	key, err := s.resolveKey(ctx)
	if err != nil {
		return nil, "", err
	}

	vectors, err := s.embedder.Embed(ctx, key, []string{input.Query})
	if err != nil || len(vectors) == 0 {
		return nil, "", apperrors.Unavailable("failed to embed query").WithError(err)
	}

	topK := input.TopK
	if topK <= 0 {
		topK = s.cfg.RAG.TopK
	}

	filter := domain.ChunkFilter{
		Symbol:    strings.ToUpper(input.Symbol),
		DocType:   input.DocType,
		Timeframe: input.Timeframe,
	}

	chunks, err := s.docRepo.SearchSimilar(ctx, vectors[0], topK, s.cfg.RAG.MinSimilarity, filter)
	if err != nil {
		return nil, "", err
	}

	method := input.Rerank
	if method == "" {
		method = domain.RerankHybrid
	}
	if !method.IsValid() {
		return nil, "", apperrors.Validation("invalid rerank method")
	}

	return rag.Rerank(chunks, method, time.Now()), key, nil
}

func (s *IntelligenceService) recordHistory(ctx context.Context, userID uuid.UUID, query string, result *domain.QueryResult) {
	h := &domain.QueryHistory{
		ID:             uuid.New(),
		UserID:         userID,
		Query:          query,
		Answer:         result.Answer,
		Confidence:     result.Confidence,
		SourcesUsed:    len(result.Sources),
		ResponseTimeMs: result.ResponseTimeMs,
		CreatedAt:      time.Now(),
	}
	if err := s.docRepo.CreateQueryHistory(ctx, h); err != nil {
		logger.Error("failed to record query history", zap.Error(err))
	}
}

func averageSimilarity(chunks []domain.ScoredChunk) float64 {
	if len(chunks) == 0 {
		return 0
	}
	var sum float64
	for _, c := range chunks {
		sum += c.Similarity
	}
	return sum / float64(len(chunks))
}

func sourcesOf(chunks []domain.ScoredChunk) []domain.Source {
	sources := make([]domain.Source, 0, len(chunks))
	for _, c := range chunks {
		sources = append(sources, domain.Source{
			DocumentID: c.Chunk.DocumentID,
			DocType:    c.DocType,
			Symbol:     c.Symbol,
			Similarity: c.Similarity,
		})
	}
	return sources
}

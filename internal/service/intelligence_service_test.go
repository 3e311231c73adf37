package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tradeboard/tradeboard/internal/config"
	"github.com/tradeboard/tradeboard/internal/domain"
	apperrors "github.com/tradeboard/tradeboard/internal/pkg/errors"
)

// MockDocumentRepository is a mock implementation of the document
// repository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) CreateDocument(ctx context.Context, d *domain.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) CreateChunks(ctx context.Context, chunks []domain.DocumentChunk) error {
	args := m.Called(ctx, chunks)
	return args.Error(0)
}

func (m *MockDocumentRepository) SearchSimilar(ctx context.Context, embedding []float32, topK int, minSimilarity float64, filter domain.ChunkFilter) ([]domain.ScoredChunk, error) {
	args := m.Called(ctx, embedding, topK, minSimilarity, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredChunk), args.Error(1)
}

func (m *MockDocumentRepository) CreateQueryHistory(ctx context.Context, h *domain.QueryHistory) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockDocumentRepository) ListQueryHistory(ctx context.Context, userID uuid.UUID, limit int) ([]domain.QueryHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QueryHistory), args.Error(1)
}

// MockEmbedder is a mock embedding client
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, apiKey string, texts []string) ([][]float32, error) {
	args := m.Called(ctx, apiKey, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

// MockCompleter is a mock chat completion client
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, apiKey, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, apiKey, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

// MockKeyResolver is a mock provider key resolver
type MockKeyResolver struct {
	mock.Mock
}

func (m *MockKeyResolver) ResolveForProvider(ctx context.Context, userID *uuid.UUID, provider string) (string, error) {
	args := m.Called(ctx, userID, provider)
	return args.String(0), args.Error(1)
}

func ragTestConfig() *config.Config {
	return &config.Config{
		OpenAI: config.OpenAIConfig{APIKey: "cfg-fallback-key"},
		RAG: config.RAGConfig{
			ChunkTokens:        512,
			ChunkOverlap:       50,
			EmbeddingDims:      8,
			EmbeddingBatchSize: 100,
			TopK:               5,
			MinSimilarity:      0.6,
			MaxContextTokens:   2000,
		},
	}
}

func storedKeyResolver(key string) *MockKeyResolver {
	keys := new(MockKeyResolver)
	keys.On("ResolveForProvider", mock.Anything, (*uuid.UUID)(nil), "openai").Return(key, nil)
	return keys
}

func TestIntelligenceService_Query(t *testing.T) {
	queryVec := [][]float32{{0.1, 0.2, 0.3}}

	t.Run("answers from retrieved context", func(t *testing.T) {
		docRepo := new(MockDocumentRepository)
		embedder := new(MockEmbedder)
		completer := new(MockCompleter)
		svc := NewIntelligenceService(ragTestConfig(), docRepo, embedder, completer, storedKeyResolver("stored-key"))

		userID := uuid.New()
		now := time.Now()
		chunks := []domain.ScoredChunk{
			{Chunk: domain.DocumentChunk{DocumentID: uuid.New(), Content: "BTC momentum strong"}, Similarity: 0.9, DocType: domain.DocTypeMarketAnalysis, Symbol: "BTCUSDT", DocCreated: now},
			{Chunk: domain.DocumentChunk{DocumentID: uuid.New(), Content: "Volume rising"}, Similarity: 0.7, DocType: domain.DocTypeNews, Symbol: "BTCUSDT", DocCreated: now},
		}

		embedder.On("Embed", mock.Anything, "stored-key", []string{"What is BTC doing?"}).Return(queryVec, nil)
		docRepo.On("SearchSimilar", mock.Anything, queryVec[0], 5, 0.6, mock.Anything).Return(chunks, nil)
		completer.On("Complete", mock.Anything, "stored-key", mock.Anything, mock.Anything).
			Return("BTC shows strong upward momentum.", nil)
		docRepo.On("CreateQueryHistory", mock.Anything, mock.MatchedBy(func(h *domain.QueryHistory) bool {
			return h.UserID == userID && h.SourcesUsed == 2
		})).Return(nil)

		result, err := svc.Query(context.Background(), userID, &domain.QueryInput{
			Query: "What is BTC doing?",
		})

		require.NoError(t, err)
		assert.Equal(t, "BTC shows strong upward momentum.", result.Answer)
		assert.InDelta(t, 0.8, result.Confidence, 1e-9)
		assert.Len(t, result.Sources, 2)
		docRepo.AssertExpectations(t)
	})

	t.Run("returns raw context when completion fails", func(t *testing.T) {
		docRepo := new(MockDocumentRepository)
		embedder := new(MockEmbedder)
		completer := new(MockCompleter)
		svc := NewIntelligenceService(ragTestConfig(), docRepo, embedder, completer, storedKeyResolver("stored-key"))

		chunks := []domain.ScoredChunk{
			{Chunk: domain.DocumentChunk{DocumentID: uuid.New(), Content: "SPY consolidating"}, Similarity: 0.75, DocType: domain.DocTypeReport, Symbol: "SPY", DocCreated: time.Now()},
		}

		embedder.On("Embed", mock.Anything, mock.Anything, mock.Anything).Return(queryVec, nil)
		docRepo.On("SearchSimilar", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(chunks, nil)
		completer.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("rate limited"))
		docRepo.On("CreateQueryHistory", mock.Anything, mock.Anything).Return(nil)

		result, err := svc.Query(context.Background(), uuid.New(), &domain.QueryInput{Query: "SPY?"})

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(result.Answer, degradedAnswerNote))
		assert.Contains(t, result.Answer, "SPY consolidating")
		assert.Zero(t, result.Confidence)
	})

	t.Run("reports when nothing relevant is stored", func(t *testing.T) {
		docRepo := new(MockDocumentRepository)
		embedder := new(MockEmbedder)
		completer := new(MockCompleter)
		svc := NewIntelligenceService(ragTestConfig(), docRepo, embedder, completer, storedKeyResolver("stored-key"))

		embedder.On("Embed", mock.Anything, mock.Anything, mock.Anything).Return(queryVec, nil)
		docRepo.On("SearchSimilar", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.ScoredChunk{}, nil)

		result, err := svc.Query(context.Background(), uuid.New(), &domain.QueryInput{Query: "obscure topic"})

		require.NoError(t, err)
		assert.Zero(t, result.Confidence)
		assert.Empty(t, result.Sources)
		completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("falls back to the configured key", func(t *testing.T) {
		docRepo := new(MockDocumentRepository)
		embedder := new(MockEmbedder)
		completer := new(MockCompleter)

		keys := new(MockKeyResolver)
		keys.On("ResolveForProvider", mock.Anything, (*uuid.UUID)(nil), "openai").
			Return("", apperrors.NotFound("API key"))

		svc := NewIntelligenceService(ragTestConfig(), docRepo, embedder, completer, keys)

		embedder.On("Embed", mock.Anything, "cfg-fallback-key", mock.Anything).Return(queryVec, nil)
		docRepo.On("SearchSimilar", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.ScoredChunk{}, nil)

		_, err := svc.Query(context.Background(), uuid.New(), &domain.QueryInput{Query: "anything"})

		require.NoError(t, err)
		embedder.AssertExpectations(t)
	})
}

func TestIntelligenceService_EmbedDocument(t *testing.T) {
	t.Run("stores zero vectors when embedding keeps failing", func(t *testing.T) {
		docRepo := new(MockDocumentRepository)
		embedder := new(MockEmbedder)
		svc := NewIntelligenceService(ragTestConfig(), docRepo, embedder, new(MockCompleter), storedKeyResolver("k"))

		docID := uuid.New()
		docRepo.On("GetDocument", mock.Anything, docID).Return(&domain.Document{
			ID:      docID,
			Content: "market structure looks constructive going into the close with breadth improving across sectors and volume confirming the move higher on the session",
		}, nil)
		embedder.On("Embed", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("upstream down"))
		docRepo.On("CreateChunks", mock.Anything, mock.MatchedBy(func(chunks []domain.DocumentChunk) bool {
			if len(chunks) == 0 {
				return false
			}
			for _, ch := range chunks {
				if len(ch.Embedding) != 8 {
					return false
				}
				for _, v := range ch.Embedding {
					if v != 0 {
						return false
					}
				}
			}
			return true
		})).Return(nil)

		count, err := svc.EmbedDocument(context.Background(), docID)

		require.NoError(t, err)
		assert.Equal(t, 1, count)
		embedder.AssertNumberOfCalls(t, "Embed", 2)
		docRepo.AssertExpectations(t)
	})

	t.Run("skips empty documents", func(t *testing.T) {
		docRepo := new(MockDocumentRepository)
		svc := NewIntelligenceService(ragTestConfig(), docRepo, new(MockEmbedder), new(MockCompleter), storedKeyResolver("k"))

		docID := uuid.New()
		docRepo.On("GetDocument", mock.Anything, docID).Return(&domain.Document{ID: docID, Content: "   "}, nil)

		count, err := svc.EmbedDocument(context.Background(), docID)

		require.NoError(t, err)
		assert.Zero(t, count)
		docRepo.AssertNotCalled(t, "CreateChunks", mock.Anything, mock.Anything)
	})
}

func TestIntelligenceService_Recommend(t *testing.T) {
	t.Run("parses a structured recommendation", func(t *testing.T) {
		docRepo := new(MockDocumentRepository)
		embedder := new(MockEmbedder)
		completer := new(MockCompleter)
		svc := NewIntelligenceService(ragTestConfig(), docRepo, embedder, completer, storedKeyResolver("k"))

		chunks := []domain.ScoredChunk{
			{Chunk: domain.DocumentChunk{DocumentID: uuid.New(), Content: "ETH setup"}, Similarity: 0.8, DocType: domain.DocTypeStrategy, Symbol: "ETHUSDT", DocCreated: time.Now()},
		}

		embedder.On("Embed", mock.Anything, mock.Anything, mock.Anything).Return([][]float32{{0.5}}, nil)
		docRepo.On("SearchSimilar", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
			mock.MatchedBy(func(f domain.ChunkFilter) bool { return f.Symbol == "ETHUSDT" }),
		).Return(chunks, nil)
		completer.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("Recommendation: BUY with 80% confidence. Risk is low given the tight invalidation.", nil)

		rec, err := svc.Recommend(context.Background(), uuid.New(), &domain.RecommendationInput{
			Symbol:        "ethusdt",
			AvailableCash: 10000,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.ActionBuy, rec.Action)
		assert.InDelta(t, 0.8, rec.Confidence, 1e-9)
		assert.Equal(t, domain.RiskLow, rec.Risk)
		assert.InDelta(t, 200, rec.PositionSize, 1e-9)
	})

	t.Run("fails without any context for the symbol", func(t *testing.T) {
		docRepo := new(MockDocumentRepository)
		embedder := new(MockEmbedder)
		svc := NewIntelligenceService(ragTestConfig(), docRepo, embedder, new(MockCompleter), storedKeyResolver("k"))

		embedder.On("Embed", mock.Anything, mock.Anything, mock.Anything).Return([][]float32{{0.5}}, nil)
		docRepo.On("SearchSimilar", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.ScoredChunk{}, nil)

		_, err := svc.Recommend(context.Background(), uuid.New(), &domain.RecommendationInput{Symbol: "XRPUSDT"})

		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

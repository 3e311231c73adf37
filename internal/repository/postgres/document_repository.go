package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/pkg/database"
	apperrors "github.com/tradeboard/tradeboard/internal/pkg/errors"
)

// DocumentRepository handles documents, chunks and query history in
// PostgreSQL. Chunk embeddings live in a pgvector column.
type DocumentRepository struct {
	db *database.PostgresDB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *database.PostgresDB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// CreateDocument stores a new document
func (r *DocumentRepository) CreateDocument(ctx context.Context, d *domain.Document) error {
	metadata, err := json.Marshal(d.Metadata)
	if err != nil {
		metadata = []byte("{}")
	}

	query := `
		INSERT INTO documents (id, title, doc_type, symbol, timeframe, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.Pool.Exec(ctx, query,
		d.ID, d.Title, d.DocType, d.Symbol, d.Timeframe, d.Content, metadata, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// GetDocument retrieves a document by ID
func (r *DocumentRepository) GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	query := `
		SELECT id, title, doc_type, symbol, timeframe, content, metadata, created_at
		FROM documents
		WHERE id = $1
	`

	var d domain.Document
	var metadata []byte
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Title, &d.DocType, &d.Symbol, &d.Timeframe, &d.Content, &metadata, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("document")
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	if len(metadata) > 0 {
		_ = json.Unmarshal(metadata, &d.Metadata)
	}

	return &d, nil
}

// DeleteDocument removes a document; chunks cascade at the schema level
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("document")
	}

	return nil
}

// CreateChunks batch-inserts embedded chunks for a document
func (r *DocumentRepository) CreateChunks(ctx context.Context, chunks []domain.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	return database.Transaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO document_chunks (id, document_id, chunk_index, content, token_count, embedding)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		for _, ch := range chunks {
			_, err := tx.Exec(ctx, query,
				ch.ID, ch.DocumentID, ch.ChunkIndex, ch.Content, ch.TokenCount,
				pgvector.NewVector(ch.Embedding))
			if err != nil {
				return fmt.Errorf("failed to insert chunk %d: %w", ch.ChunkIndex, err)
			}
		}
		return nil
	})
}

// SearchSimilar retrieves the chunks closest to the query embedding by
// cosine similarity, above a minimum threshold, with optional filters.
func (r *DocumentRepository) SearchSimilar(ctx context.Context, embedding []float32, topK int, minSimilarity float64, filter domain.ChunkFilter) ([]domain.ScoredChunk, error) {
	query := `
		SELECT c.id, c.document_id, c.chunk_index, c.content, c.token_count,
		       1 - (c.embedding <=> $1) AS similarity,
		       d.doc_type, d.symbol, d.created_at
		FROM document_chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE 1 - (c.embedding <=> $1) >= $2
	`
	args := []interface{}{pgvector.NewVector(embedding), minSimilarity}

	if filter.Symbol != "" {
		args = append(args, filter.Symbol)
		query += fmt.Sprintf(" AND d.symbol = $%d", len(args))
	}
	if filter.DocType != "" {
		args = append(args, filter.DocType)
		query += fmt.Sprintf(" AND d.doc_type = $%d", len(args))
	}
	if filter.Timeframe != "" {
		args = append(args, filter.Timeframe)
		query += fmt.Sprintf(" AND d.timeframe = $%d", len(args))
	}

	args = append(args, topK)
	query += fmt.Sprintf(" ORDER BY c.embedding <=> $1 LIMIT $%d", len(args))

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.ScoredChunk
	for rows.Next() {
		var sc domain.ScoredChunk
		err := rows.Scan(
			&sc.Chunk.ID,
			&sc.Chunk.DocumentID,
			&sc.Chunk.ChunkIndex,
			&sc.Chunk.Content,
			&sc.Chunk.TokenCount,
			&sc.Similarity,
			&sc.DocType,
			&sc.Symbol,
			&sc.DocCreated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		results = append(results, sc)
	}

	return results, rows.Err()
}

// CreateQueryHistory records an answered query
func (r *DocumentRepository) CreateQueryHistory(ctx context.Context, h *domain.QueryHistory) error {
	query := `
		INSERT INTO query_history (id, user_id, query, answer, confidence, sources_used, response_time_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		h.ID, h.UserID, h.Query, h.Answer, h.Confidence, h.SourcesUsed, h.ResponseTimeMs, h.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record query history: %w", err)
	}

	return nil
}

// ListQueryHistory retrieves a user's recent queries, newest first
func (r *DocumentRepository) ListQueryHistory(ctx context.Context, userID uuid.UUID, limit int) ([]domain.QueryHistory, error) {
	query := `
		SELECT id, user_id, query, answer, confidence, sources_used, response_time_ms, created_at
		FROM query_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list query history: %w", err)
	}
	defer rows.Close()

	var history []domain.QueryHistory
	for rows.Next() {
		var h domain.QueryHistory
		err := rows.Scan(&h.ID, &h.UserID, &h.Query, &h.Answer, &h.Confidence,
			&h.SourcesUsed, &h.ResponseTimeMs, &h.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan query history: %w", err)
		}
		history = append(history, h)
	}

	return history, rows.Err()
}

// PruneQueryHistory deletes history entries older than the cutoff
func (r *DocumentRepository) PruneQueryHistory(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM query_history WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune query history: %w", err)
	}

	return tag.RowsAffected(), nil
}

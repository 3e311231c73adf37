package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/domain"
	apperrors "github.com/tradeboard/tradeboard/internal/pkg/errors"
	"github.com/tradeboard/tradeboard/internal/pkg/logger"
)

// AuditExportReader reads audits for export
type AuditExportReader interface {
	ListAllSince(ctx context.Context, since time.Time) ([]domain.PortfolioAudit, error)
}

// CollectionLogExportReader reads collection runs for export
type CollectionLogExportReader interface {
	ListSince(ctx context.Context, since time.Time) ([]domain.DataCollectionLog, error)
}

// ExportService writes CSV snapshots of audits and collection runs to
// object storage
type ExportService struct {
	auditRepo AuditExportReader
	logRepo   CollectionLogExportReader
	store     *minio.Client
	bucket    string
}

// NewExportService creates a new export service
func NewExportService(auditRepo AuditExportReader, logRepo CollectionLogExportReader, store *minio.Client, bucket string) *ExportService {
	return &ExportService{
		auditRepo: auditRepo,
		logRepo:   logRepo,
		store:     store,
		bucket:    bucket,
	}
}

// ExportCSV exports a dataset since a cutoff and returns the object key
func (s *ExportService) ExportCSV(ctx context.Context, dataset string, since time.Time) (string, error) {
	var fetch func(context.Context, time.Time) ([]byte, error)
	switch dataset {
	case "audits":
		fetch = s.auditsCSV
	case "collections":
		fetch = s.collectionsCSV
	default:
		return "", apperrors.Validation(fmt.Sprintf("unsupported export dataset: %s", dataset))
	}

	// The store is nil when no object storage endpoint is configured
	if s.store == nil {
		return "", apperrors.Unavailable("object storage not configured")
	}

	data, err := fetch(ctx, since)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("exports/%s_%s.csv", dataset, time.Now().Format("20060102_150405"))
	reader := bytes.NewReader(data)
	_, err = s.store.PutObject(ctx, s.bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload export: %w", err)
	}

	logger.Info("export uploaded",
		zap.String("dataset", dataset),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return key, nil
}

func (s *ExportService) auditsCSV(ctx context.Context, since time.Time) ([]byte, error) {
	audits, err := s.auditRepo.ListAllSince(ctx, since)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"id", "user_id", "audit_date", "period_months", "twr_pct", "irr_pct", "sharpe", "sortino", "beta", "strengths", "weaknesses", "actions", "created_at"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, a := range audits {
		row := []string{
			a.ID.String(),
			a.UserID.String(),
			a.AuditDate.Format("2006-01-02"),
			strconv.Itoa(a.PeriodMonths),
			floatOrEmpty(a.TWRPct),
			floatOrEmpty(a.IRRPct),
			floatOrEmpty(a.Sharpe),
			floatOrEmpty(a.Sortino),
			floatOrEmpty(a.Beta),
			strings.Join(a.Strengths, "|"),
			strings.Join(a.Weaknesses, "|"),
			strings.Join(a.Actions, "|"),
			a.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	return buf.Bytes(), writer.Error()
}

func (s *ExportService) collectionsCSV(ctx context.Context, since time.Time) ([]byte, error) {
	runs, err := s.logRepo.ListSince(ctx, since)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"id", "provider", "asset_type", "symbols_requested", "symbols_succeeded", "symbols_failed", "status", "error_detail", "duration_ms", "started_at"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, r := range runs {
		row := []string{
			r.ID.String(),
			r.Provider,
			string(r.AssetType),
			strconv.Itoa(r.SymbolsRequested),
			strconv.Itoa(r.SymbolsSucceeded),
			strconv.Itoa(r.SymbolsFailed),
			string(r.Status),
			r.ErrorDetail,
			strconv.FormatInt(r.DurationMs, 10),
			r.StartedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	return buf.Bytes(), writer.Error()
}

func floatOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

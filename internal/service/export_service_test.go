package service

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tradeboard/tradeboard/internal/domain"
	apperrors "github.com/tradeboard/tradeboard/internal/pkg/errors"
)

// MockAuditExportReader is a mock implementation of the audit export
// reader
type MockAuditExportReader struct {
	mock.Mock
}

func (m *MockAuditExportReader) ListAllSince(ctx context.Context, since time.Time) ([]domain.PortfolioAudit, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PortfolioAudit), args.Error(1)
}

// MockCollectionLogExportReader is a mock implementation of the
// collection log export reader
type MockCollectionLogExportReader struct {
	mock.Mock
}

func (m *MockCollectionLogExportReader) ListSince(ctx context.Context, since time.Time) ([]domain.DataCollectionLog, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DataCollectionLog), args.Error(1)
}

func TestExportService_AuditsCSV(t *testing.T) {
	auditRepo := new(MockAuditExportReader)
	svc := NewExportService(auditRepo, new(MockCollectionLogExportReader), nil, "exports")

	twr := 12.5
	audits := []domain.PortfolioAudit{
		{
			ID:           uuid.New(),
			UserID:       uuid.New(),
			AuditDate:    time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
			PeriodMonths: 6,
			TWRPct:       &twr,
			Strengths:    []string{"low fees", "diversified"},
			CreatedAt:    time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC),
		},
	}
	auditRepo.On("ListAllSince", mock.Anything, mock.Anything).Return(audits, nil)

	data, err := svc.auditsCSV(context.Background(), time.Time{})
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "audit_date", records[0][2])
	assert.Equal(t, "2026-06-30", records[1][2])
	assert.Equal(t, "12.5000", records[1][4])
	assert.Empty(t, records[1][5])
	assert.Equal(t, "low fees|diversified", records[1][9])
}

func TestExportService_CollectionsCSV(t *testing.T) {
	logRepo := new(MockCollectionLogExportReader)
	svc := NewExportService(new(MockAuditExportReader), logRepo, nil, "exports")

	runs := []domain.DataCollectionLog{
		{
			ID:               uuid.New(),
			Provider:         "binance",
			AssetType:        domain.AssetTypeCrypto,
			SymbolsRequested: 3,
			SymbolsSucceeded: 2,
			SymbolsFailed:    1,
			Status:           domain.CollectionStatusPartial,
			DurationMs:       1450,
			StartedAt:        time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		},
	}
	logRepo.On("ListSince", mock.Anything, mock.Anything).Return(runs, nil)

	data, err := svc.collectionsCSV(context.Background(), time.Time{})
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "binance", records[1][1])
	assert.Equal(t, "partial", records[1][6])
	assert.Equal(t, "1450", records[1][8])
}

func TestExportService_StorageNotConfigured(t *testing.T) {
	auditRepo := new(MockAuditExportReader)
	svc := NewExportService(auditRepo, new(MockCollectionLogExportReader), nil, "exports")

	_, err := svc.ExportCSV(context.Background(), "audits", time.Time{})

	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))
	auditRepo.AssertNotCalled(t, "ListAllSince", mock.Anything, mock.Anything)
}

func TestExportService_UnknownDataset(t *testing.T) {
	svc := NewExportService(new(MockAuditExportReader), new(MockCollectionLogExportReader), nil, "exports")

	_, err := svc.ExportCSV(context.Background(), "trades", time.Time{})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

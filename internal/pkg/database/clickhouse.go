package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/config"
	"github.com/tradeboard/tradeboard/internal/pkg/logger"
)

// ClickHouseDB wraps a ClickHouse connection
type ClickHouseDB struct {
	Conn driver.Conn
}

// NewClickHouse creates a new ClickHouse connection
func NewClickHouse(ctx context.Context, cfg config.ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout:          10 * time.Second,
		MaxOpenConns:         25,
		MaxIdleConns:         5,
		ConnMaxLifetime:      time.Hour,
		ConnOpenStrategy:     clickhouse.ConnOpenInOrder,
		BlockBufferSize:      10,
		MaxCompressionBuffer: 10 * 1024 * 1024, // 10MB
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open clickhouse connection: %w", err)
	}

	// Test connection
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	logger.Info("connected to ClickHouse",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
	)

	return &ClickHouseDB{Conn: conn}, nil
}

// Close closes the connection
func (db *ClickHouseDB) Close() error {
	if db.Conn != nil {
		return db.Conn.Close()
	}
	return nil
}

// PrepareBatch prepares a batch insert
func (db *ClickHouseDB) PrepareBatch(ctx context.Context, query string) (driver.Batch, error) {
	return db.Conn.PrepareBatch(ctx, query)
}

// Exec executes a query
func (db *ClickHouseDB) Exec(ctx context.Context, query string, args ...interface{}) error {
	return db.Conn.Exec(ctx, query, args...)
}

// Select executes a select query and scans results into dest
func (db *ClickHouseDB) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return db.Conn.Select(ctx, dest, query, args...)
}

// QueryRow executes a query that returns a single row
func (db *ClickHouseDB) QueryRow(ctx context.Context, query string, args ...interface{}) driver.Row {
	return db.Conn.QueryRow(ctx, query, args...)
}

// Query executes a query
func (db *ClickHouseDB) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	return db.Conn.Query(ctx, query, args...)
}

// AsyncInsert performs an asynchronous insert
func (db *ClickHouseDB) AsyncInsert(ctx context.Context, query string, wait bool, args ...interface{}) error {
	return db.Conn.AsyncInsert(ctx, query, wait, args...)
}

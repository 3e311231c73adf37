package config

import (
	"fmt"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Postgres   PostgresConfig
	ClickHouse ClickHouseConfig
	Redis      RedisConfig
	MinIO      MinIOConfig
	JWT        JWTConfig
	Crypto     CryptoConfig
	OpenAI     OpenAIConfig
	RAG        RAGConfig
	Collector  CollectorConfig
	Services   ServicesConfig
	RateLimit  RateLimitConfig
	Worker     WorkerConfig
	Log        LogConfig
	Retention  RetentionConfig
	Sentry     SentryConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// PostgresConfig holds PostgreSQL configuration
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// DSN returns the PostgreSQL connection string
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// ClickHouseConfig holds ClickHouse configuration
type ClickHouseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MinIOConfig holds MinIO configuration
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	ExpiryHours       int           `mapstructure:"expiry_hours"`
	RefreshExpiryDays int           `mapstructure:"refresh_expiry_days"`
	Expiry            time.Duration `mapstructure:"-"`
	RefreshExpiry     time.Duration `mapstructure:"-"`
	Issuer            string        `mapstructure:"issuer"`
}

// CryptoConfig holds secret sealing configuration
type CryptoConfig struct {
	// EncryptionKey is the base64-encoded 32-byte key used to seal
	// stored API key values.
	EncryptionKey string `mapstructure:"encryption_key"`
}

// OpenAIConfig holds OpenAI client configuration
type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	ChatModel      string `mapstructure:"chat_model"`
}

// RAGConfig holds retrieval pipeline configuration
type RAGConfig struct {
	ChunkTokens        int     `mapstructure:"chunk_tokens"`
	ChunkOverlap       int     `mapstructure:"chunk_overlap"`
	EmbeddingDims      int     `mapstructure:"embedding_dims"`
	EmbeddingBatchSize int     `mapstructure:"embedding_batch_size"`
	TopK               int     `mapstructure:"top_k"`
	MinSimilarity      float64 `mapstructure:"min_similarity"`
	MaxContextTokens   int     `mapstructure:"max_context_tokens"`
}

// CollectorConfig holds market data collection configuration
type CollectorConfig struct {
	Enabled               bool          `mapstructure:"enabled"`
	CryptoSymbols         []string      `mapstructure:"crypto_symbols"`
	StockSymbols          []string      `mapstructure:"stock_symbols"`
	RequestTimeout        time.Duration `mapstructure:"request_timeout"`
	ProviderCooldown      time.Duration `mapstructure:"provider_cooldown"`
	VerificationThreshold float64       `mapstructure:"verification_threshold"`
}

// ServiceEndpoint describes one sibling service to probe
type ServiceEndpoint struct {
	Name      string
	HealthURL string
	Optional  bool
}

// ServicesConfig holds the sibling service registry
type ServicesConfig struct {
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	Endpoints    []ServiceEndpoint
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

// WorkerConfig holds background worker configuration
type WorkerConfig struct {
	Concurrency   int    `mapstructure:"concurrency"`
	QueueCritical string `mapstructure:"queue_critical"`
	QueueDefault  string `mapstructure:"queue_default"`
	QueueLow      string `mapstructure:"queue_low"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RetentionConfig holds data retention configuration
type RetentionConfig struct {
	Days    int  `mapstructure:"days"`
	Enabled bool `mapstructure:"enabled"`
}

// SentryConfig holds error reporting configuration
type SentryConfig struct {
	DSN         string  `mapstructure:"dsn"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Environment string  `mapstructure:"environment"`
}

// IsDevelopment returns true if running in development mode
func (c Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c Config) IsProduction() bool {
	return c.Server.Env == "production"
}

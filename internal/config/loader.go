package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Optionally read from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/tradeboard")

	// Ignore error if config file not found
	_ = v.ReadInConfig()

	var cfg Config

	// Server
	cfg.Server.Host = v.GetString("server_host")
	cfg.Server.Port = v.GetInt("server_port")
	cfg.Server.Env = v.GetString("server_env")

	// PostgreSQL
	cfg.Postgres.Host = v.GetString("postgres_host")
	cfg.Postgres.Port = v.GetInt("postgres_port")
	cfg.Postgres.User = v.GetString("postgres_user")
	cfg.Postgres.Password = v.GetString("postgres_password")
	cfg.Postgres.Database = v.GetString("postgres_db")
	cfg.Postgres.SSLMode = v.GetString("postgres_ssl_mode")
	cfg.Postgres.MaxConns = int32(v.GetInt("postgres_max_conns"))
	cfg.Postgres.MinConns = int32(v.GetInt("postgres_min_conns"))

	// ClickHouse
	cfg.ClickHouse.Host = v.GetString("clickhouse_host")
	cfg.ClickHouse.Port = v.GetInt("clickhouse_port")
	cfg.ClickHouse.User = v.GetString("clickhouse_user")
	cfg.ClickHouse.Password = v.GetString("clickhouse_password")
	cfg.ClickHouse.Database = v.GetString("clickhouse_db")

	// Redis
	cfg.Redis.Host = v.GetString("redis_host")
	cfg.Redis.Port = v.GetInt("redis_port")
	cfg.Redis.Password = v.GetString("redis_password")
	cfg.Redis.DB = v.GetInt("redis_db")

	// MinIO
	cfg.MinIO.Endpoint = v.GetString("minio_endpoint")
	cfg.MinIO.AccessKey = v.GetString("minio_access_key")
	cfg.MinIO.SecretKey = v.GetString("minio_secret_key")
	cfg.MinIO.UseSSL = v.GetBool("minio_use_ssl")
	cfg.MinIO.Bucket = v.GetString("minio_bucket")

	// JWT
	cfg.JWT.Secret = v.GetString("jwt_secret")
	cfg.JWT.ExpiryHours = v.GetInt("jwt_expiry_hours")
	cfg.JWT.RefreshExpiryDays = v.GetInt("jwt_refresh_expiry_days")
	cfg.JWT.Issuer = v.GetString("jwt_issuer")
	cfg.JWT.Expiry = time.Duration(cfg.JWT.ExpiryHours) * time.Hour
	cfg.JWT.RefreshExpiry = time.Duration(cfg.JWT.RefreshExpiryDays) * 24 * time.Hour

	// Crypto
	cfg.Crypto.EncryptionKey = v.GetString("encryption_key")

	// OpenAI
	cfg.OpenAI.APIKey = v.GetString("openai_api_key")
	cfg.OpenAI.BaseURL = v.GetString("openai_base_url")
	cfg.OpenAI.EmbeddingModel = v.GetString("openai_embedding_model")
	cfg.OpenAI.ChatModel = v.GetString("openai_chat_model")

	// RAG
	cfg.RAG.ChunkTokens = v.GetInt("rag_chunk_tokens")
	cfg.RAG.ChunkOverlap = v.GetInt("rag_chunk_overlap")
	cfg.RAG.EmbeddingDims = v.GetInt("rag_embedding_dims")
	cfg.RAG.EmbeddingBatchSize = v.GetInt("rag_embedding_batch_size")
	cfg.RAG.TopK = v.GetInt("rag_top_k")
	cfg.RAG.MinSimilarity = v.GetFloat64("rag_min_similarity")
	cfg.RAG.MaxContextTokens = v.GetInt("rag_max_context_tokens")

	// Collector
	cfg.Collector.Enabled = v.GetBool("collector_enabled")
	cfg.Collector.CryptoSymbols = v.GetStringSlice("collector_crypto_symbols")
	cfg.Collector.StockSymbols = v.GetStringSlice("collector_stock_symbols")
	cfg.Collector.RequestTimeout = v.GetDuration("collector_request_timeout")
	cfg.Collector.ProviderCooldown = v.GetDuration("collector_provider_cooldown")
	cfg.Collector.VerificationThreshold = v.GetFloat64("collector_verification_threshold")

	// Sibling services
	cfg.Services.ProbeTimeout = v.GetDuration("services_probe_timeout")
	cfg.Services.Endpoints = defaultEndpoints(v)

	// Rate Limiting
	cfg.RateLimit.Enabled = v.GetBool("rate_limit_enabled")
	cfg.RateLimit.RequestsPerMinute = v.GetInt("rate_limit_requests_per_minute")

	// Worker
	cfg.Worker.Concurrency = v.GetInt("worker_concurrency")
	cfg.Worker.QueueCritical = v.GetString("worker_queue_critical")
	cfg.Worker.QueueDefault = v.GetString("worker_queue_default")
	cfg.Worker.QueueLow = v.GetString("worker_queue_low")

	// Logging
	cfg.Log.Level = v.GetString("log_level")
	cfg.Log.Format = v.GetString("log_format")

	// Retention
	cfg.Retention.Days = v.GetInt("retention_days")
	cfg.Retention.Enabled = v.GetBool("retention_worker_enabled")

	// Sentry
	cfg.Sentry.DSN = v.GetString("sentry_dsn")
	cfg.Sentry.SampleRate = v.GetFloat64("sentry_sample_rate")
	cfg.Sentry.Environment = cfg.Server.Env

	// Validate required fields
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// defaultEndpoints builds the sibling service registry. Each service
// exposes a /health endpoint on its own port; hosts are overridable so
// the same registry works in compose and bare-metal setups.
func defaultEndpoints(v *viper.Viper) []ServiceEndpoint {
	base := v.GetString("services_base_host")
	endpoint := func(name string, port int, optional bool) ServiceEndpoint {
		return ServiceEndpoint{
			Name:      name,
			HealthURL: fmt.Sprintf("http://%s:%d/health", base, port),
			Optional:  optional,
		}
	}
	return []ServiceEndpoint{
		endpoint("web", 8000, false),
		endpoint("api", 8001, false),
		endpoint("app", 8002, false),
		endpoint("data", 8003, false),
		endpoint("execution", 8004, true),
		endpoint("ai", 8007, true),
		endpoint("analyze", 8008, true),
		endpoint("monitor", 8009, true),
	}
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", 8080)
	v.SetDefault("server_env", "development")

	// PostgreSQL defaults
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "tradeboard")
	v.SetDefault("postgres_password", "tradeboard")
	v.SetDefault("postgres_db", "tradeboard")
	v.SetDefault("postgres_ssl_mode", "disable")
	v.SetDefault("postgres_max_conns", 25)
	v.SetDefault("postgres_min_conns", 5)

	// ClickHouse defaults
	v.SetDefault("clickhouse_host", "localhost")
	v.SetDefault("clickhouse_port", 9000)
	v.SetDefault("clickhouse_user", "tradeboard")
	v.SetDefault("clickhouse_password", "tradeboard")
	v.SetDefault("clickhouse_db", "tradeboard")

	// Redis defaults
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", 6379)
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	// MinIO defaults
	v.SetDefault("minio_endpoint", "localhost:9002")
	v.SetDefault("minio_access_key", "tradeboard")
	v.SetDefault("minio_secret_key", "tradeboard123")
	v.SetDefault("minio_use_ssl", false)
	v.SetDefault("minio_bucket", "tradeboard-exports")

	// JWT defaults
	v.SetDefault("jwt_secret", "change-me-in-production")
	v.SetDefault("jwt_expiry_hours", 24)
	v.SetDefault("jwt_refresh_expiry_days", 7)
	v.SetDefault("jwt_issuer", "tradeboard")

	// OpenAI defaults
	v.SetDefault("openai_embedding_model", "text-embedding-3-small")
	v.SetDefault("openai_chat_model", "gpt-4o-mini")

	// RAG defaults
	v.SetDefault("rag_chunk_tokens", 512)
	v.SetDefault("rag_chunk_overlap", 50)
	v.SetDefault("rag_embedding_dims", 1536)
	v.SetDefault("rag_embedding_batch_size", 100)
	v.SetDefault("rag_top_k", 5)
	v.SetDefault("rag_min_similarity", 0.6)
	v.SetDefault("rag_max_context_tokens", 2000)

	// Collector defaults
	v.SetDefault("collector_enabled", true)
	v.SetDefault("collector_crypto_symbols", []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"})
	v.SetDefault("collector_stock_symbols", []string{"SPY", "QQQ", "AAPL"})
	v.SetDefault("collector_request_timeout", 10*time.Second)
	v.SetDefault("collector_provider_cooldown", 30*time.Second)
	v.SetDefault("collector_verification_threshold", 0.01)

	// Service probe defaults
	v.SetDefault("services_base_host", "localhost")
	v.SetDefault("services_probe_timeout", 5*time.Second)

	// Rate limiting defaults
	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("rate_limit_requests_per_minute", 60)

	// Worker defaults
	v.SetDefault("worker_concurrency", 10)
	v.SetDefault("worker_queue_critical", "critical")
	v.SetDefault("worker_queue_default", "default")
	v.SetDefault("worker_queue_low", "low")

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	// Retention defaults
	v.SetDefault("retention_days", 90)
	v.SetDefault("retention_worker_enabled", true)

	// Sentry defaults
	v.SetDefault("sentry_sample_rate", 1.0)
}

func validate(cfg *Config) error {
	if cfg.JWT.Secret == "change-me-in-production" && cfg.IsProduction() {
		return fmt.Errorf("JWT secret must be changed in production")
	}
	if cfg.IsProduction() && cfg.Crypto.EncryptionKey == "" {
		return fmt.Errorf("encryption_key is required in production")
	}
	return nil
}

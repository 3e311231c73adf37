package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeboard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tradeboard_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tradeboard_http_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"method"},
	)

	// RAG metrics
	ragQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeboard_rag_query_total",
			Help: "Total number of RAG queries",
		},
		[]string{"status"},
	)

	ragQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tradeboard_rag_query_duration_seconds",
			Help:    "End to end RAG query latency in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	ragConfidenceScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tradeboard_rag_confidence_score",
			Help:    "Confidence score of RAG answers",
			Buckets: []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9, 1},
		},
	)

	ragSourcesUsed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tradeboard_rag_sources_used",
			Help:    "Number of context chunks used per RAG answer",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	// Collector metrics
	collectorRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tradeboard_collector_run_duration_seconds",
			Help:    "Market data collection run duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"asset_type", "provider"},
	)

	collectorPointsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeboard_collector_points_total",
			Help: "Total number of market data points collected",
		},
		[]string{"asset_type", "provider"},
	)

	collectorFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeboard_collector_failures_total",
			Help: "Total number of failed provider fetches",
		},
		[]string{"asset_type", "provider"},
	)

	// Trading metrics
	tradingSignalTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeboard_trading_signal_total",
			Help: "Total number of trading signals recorded",
		},
		[]string{"signal_type", "status"},
	)
)

// MetricsConfig configures the metrics middleware
type MetricsConfig struct {
	// Skip function
	Skip func(*fiber.Ctx) bool
	// PathNormalizer normalizes paths for metrics labels
	PathNormalizer func(string) string
}

// DefaultMetricsConfig returns default metrics config
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Skip:           CombinedSkipper(HealthSkipper, DocsSkipper),
		PathNormalizer: DefaultPathNormalizer,
	}
}

// DefaultPathNormalizer normalizes paths by replacing IDs with placeholders
func DefaultPathNormalizer(path string) string {
	return path
}

// MetricsMiddleware creates a Prometheus metrics middleware
type MetricsMiddleware struct {
	config MetricsConfig
}

// NewMetricsMiddleware creates a new metrics middleware
func NewMetricsMiddleware(config MetricsConfig) *MetricsMiddleware {
	return &MetricsMiddleware{
		config: config,
	}
}

// Handler returns the metrics handler
func (m *MetricsMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Skip if configured
		if m.config.Skip != nil && m.config.Skip(c) {
			return c.Next()
		}

		start := time.Now()
		method := c.Method()
		path := m.config.PathNormalizer(c.Path())

		// Track active requests
		httpActiveRequests.WithLabelValues(method).Inc()
		defer httpActiveRequests.WithLabelValues(method).Dec()

		// Process request
		err := c.Next()

		// Record metrics
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// RecordRAGQuery records a completed RAG query
func RecordRAGQuery(status string, duration time.Duration, confidence float64, sources int) {
	ragQueryTotal.WithLabelValues(status).Inc()
	ragQueryDuration.Observe(duration.Seconds())
	if status == "success" {
		ragConfidenceScore.Observe(confidence)
		ragSourcesUsed.Observe(float64(sources))
	}
}

// RecordCollectorRun records a market data collection run
func RecordCollectorRun(assetType, provider string, points int, duration time.Duration) {
	collectorRunDuration.WithLabelValues(assetType, provider).Observe(duration.Seconds())
	collectorPointsTotal.WithLabelValues(assetType, provider).Add(float64(points))
}

// RecordCollectorFailure records a failed provider fetch
func RecordCollectorFailure(assetType, provider string) {
	collectorFailuresTotal.WithLabelValues(assetType, provider).Inc()
}

// RecordTradingSignal records a trading signal delivery
func RecordTradingSignal(signalType string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	tradingSignalTotal.WithLabelValues(signalType, status).Inc()
}

// SimpleMetrics creates a simple metrics middleware
func SimpleMetrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/health" || c.Path() == "/metrics" {
			return c.Next()
		}

		start := time.Now()

		err := c.Next()

		httpRequestsTotal.WithLabelValues(
			c.Method(),
			c.Path(),
			strconv.Itoa(c.Response().StatusCode()),
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Method(),
			c.Path(),
		).Observe(time.Since(start).Seconds())

		return err
	}
}

package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeboard/tradeboard/internal/config"
)

func probeConfig(endpoints ...config.ServiceEndpoint) *config.Config {
	return &config.Config{
		Services: config.ServicesConfig{
			ProbeTimeout: 2 * time.Second,
			Endpoints:    endpoints,
		},
	}
}

func TestProbeService_Probe(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	t.Run("healthy required service", func(t *testing.T) {
		svc := NewProbeService(probeConfig(
			config.ServiceEndpoint{Name: "data", HealthURL: healthy.URL},
		))

		report := svc.Probe(context.Background())

		require.Len(t, report.Services, 1)
		assert.True(t, report.Services[0].Healthy)
		assert.Equal(t, 1, report.Healthy)
		assert.True(t, report.AllUp)
	})

	t.Run("failed required service marks the deployment down", func(t *testing.T) {
		svc := NewProbeService(probeConfig(
			config.ServiceEndpoint{Name: "data", HealthURL: broken.URL},
		))

		report := svc.Probe(context.Background())

		require.Len(t, report.Services, 1)
		assert.False(t, report.Services[0].Healthy)
		assert.NotEmpty(t, report.Services[0].Error)
		assert.False(t, report.AllUp)
	})

	t.Run("failed optional service does not", func(t *testing.T) {
		svc := NewProbeService(probeConfig(
			config.ServiceEndpoint{Name: "data", HealthURL: healthy.URL},
			config.ServiceEndpoint{Name: "ai", HealthURL: broken.URL, Optional: true},
		))

		report := svc.Probe(context.Background())

		require.Len(t, report.Services, 2)
		assert.True(t, report.AllUp)
		assert.Equal(t, 1, report.Healthy)
		assert.Equal(t, 2, report.Total)
	})

	t.Run("unreachable service reports the error", func(t *testing.T) {
		svc := NewProbeService(probeConfig(
			config.ServiceEndpoint{Name: "gone", HealthURL: "http://127.0.0.1:1/health"},
		))

		report := svc.Probe(context.Background())

		require.Len(t, report.Services, 1)
		assert.False(t, report.Services[0].Healthy)
		assert.NotEmpty(t, report.Services[0].Error)
	})
}

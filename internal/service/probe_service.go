package service

import (
	"context"
	"sync"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/tradeboard/tradeboard/internal/config"
	"github.com/tradeboard/tradeboard/internal/domain"
)

// ProbeService checks the health endpoints of the sibling services in
// the deployment. Probes run concurrently; a failed optional service
// does not mark the deployment degraded.
type ProbeService struct {
	cfg    *config.Config
	client *fasthttp.Client
}

// NewProbeService creates a new probe service
func NewProbeService(cfg *config.Config) *ProbeService {
	return &ProbeService{
		cfg: cfg,
		client: &fasthttp.Client{
			ReadTimeout:  cfg.Services.ProbeTimeout,
			WriteTimeout: cfg.Services.ProbeTimeout,
		},
	}
}

// Probe checks every registered service and aggregates the results
func (s *ProbeService) Probe(ctx context.Context) *domain.ServiceReport {
	endpoints := s.cfg.Services.Endpoints
	report := &domain.ServiceReport{
		Services:  make([]domain.ServiceStatus, len(endpoints)),
		Total:     len(endpoints),
		CheckedAt: time.Now(),
	}

	var wg sync.WaitGroup
	for i, ep := range endpoints {
		wg.Add(1)
		go func(i int, ep config.ServiceEndpoint) {
			defer wg.Done()
			report.Services[i] = s.probeOne(ctx, ep)
		}(i, ep)
	}
	wg.Wait()

	report.AllUp = true
	for _, st := range report.Services {
		if st.Healthy {
			report.Healthy++
		} else if !st.Optional {
			report.AllUp = false
		}
	}

	return report
}

func (s *ProbeService) probeOne(ctx context.Context, ep config.ServiceEndpoint) domain.ServiceStatus {
	status := domain.ServiceStatus{
		Name:     ep.Name,
		URL:      ep.HealthURL,
		Optional: ep.Optional,
	}

	if err := ctx.Err(); err != nil {
		status.Error = err.Error()
		return status
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(ep.HealthURL)
	req.Header.SetMethod(fasthttp.MethodGet)

	start := time.Now()
	err := s.client.DoTimeout(req, resp, s.cfg.Services.ProbeTimeout)
	status.LatencyMs = time.Since(start).Milliseconds()

	switch {
	case err != nil:
		status.Error = err.Error()
	case resp.StatusCode() != fasthttp.StatusOK:
		status.Error = fasthttp.StatusMessage(resp.StatusCode())
	default:
		status.Healthy = true
	}

	return status
}

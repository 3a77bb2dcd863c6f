package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/tair/orderflow/api-gateway/config"
	"github.com/tair/orderflow/pkg/logger"
)

// UpstreamHealth represents the health status of one backend
type UpstreamHealth struct {
	Name      string        `json:"name"`
	Status    string        `json:"status"` // healthy, unhealthy
	URL       string        `json:"url"`
	Latency   time.Duration `json:"latency_ms"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// GatewayHealth represents the overall gateway health
type GatewayHealth struct {
	Gateway   string                    `json:"gateway"`
	Status    string                    `json:"status"` // healthy, degraded, unhealthy
	Upstreams map[string]UpstreamHealth `json:"upstreams"`
	Uptime    time.Duration             `json:"uptime_seconds"`
}

// HealthChecker probes the configured upstream backends
type HealthChecker struct {
	config    *config.GatewayConfig
	client    *http.Client
	startTime time.Time
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(cfg *config.GatewayConfig) *HealthChecker {
	return &HealthChecker{
		config: cfg,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		startTime: time.Now(),
	}
}

// CheckUpstream checks health of a single backend
func (h *HealthChecker) CheckUpstream(ctx context.Context, name string, upstream config.UpstreamConfig) UpstreamHealth {
	start := time.Now()

	result := UpstreamHealth{
		Name:      name,
		URL:       upstream.BaseURL,
		Timestamp: time.Now(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, upstream.BaseURL+upstream.HealthCheck, nil)
	if err != nil {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("Failed to create request: %v", err)
		result.Latency = time.Since(start)
		return result
	}

	resp, err := h.client.Do(req)
	if err != nil {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("Failed to reach backend: %v", err)
		result.Latency = time.Since(start)
		return result
	}
	defer resp.Body.Close()

	result.Latency = time.Since(start)

	if resp.StatusCode == http.StatusOK {
		result.Status = "healthy"
	} else {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("Unexpected status code: %d", resp.StatusCode)
	}

	return result
}

// CheckAll probes all upstreams concurrently
func (h *HealthChecker) CheckAll(ctx context.Context) GatewayHealth {
	upstreams := make(map[string]UpstreamHealth)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, upstream := range h.config.Upstreams {
		wg.Add(1)
		go func(n string, u config.UpstreamConfig) {
			defer wg.Done()
			status := h.CheckUpstream(ctx, n, u)

			mu.Lock()
			upstreams[n] = status
			mu.Unlock()

			if status.Status != "healthy" {
				logger.Logger.Warn().
					Str("upstream", n).
					Str("error", status.Error).
					Msg("Upstream health check failed")
			}
		}(name, upstream)
	}

	wg.Wait()

	return GatewayHealth{
		Gateway:   "api-gateway",
		Status:    overallStatus(upstreams),
		Upstreams: upstreams,
		Uptime:    time.Since(h.startTime),
	}
}

func overallStatus(upstreams map[string]UpstreamHealth) string {
	healthy := 0
	for _, u := range upstreams {
		if u.Status == "healthy" {
			healthy++
		}
	}

	switch {
	case healthy == len(upstreams):
		return "healthy"
	case healthy > 0:
		return "degraded"
	default:
		return "unhealthy"
	}
}

// QuickCheck reports the gateway's own liveness without probing backends
func (h *HealthChecker) QuickCheck() map[string]interface{} {
	return map[string]interface{}{
		"status":    "healthy",
		"gateway":   "api-gateway",
		"uptime":    time.Since(h.startTime).Seconds(),
		"timestamp": time.Now(),
	}
}

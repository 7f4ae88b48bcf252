package health

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Pinger is anything that answers a connectivity probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker wraps a Pinger (Redis cache) as a health check.
type PingChecker struct {
	name     string
	pinger   Pinger
	critical bool
}

func NewPingChecker(name string, p Pinger, critical bool) *PingChecker {
	return &PingChecker{name: name, pinger: p, critical: critical}
}

func (c *PingChecker) Name() string           { return c.name }
func (c *PingChecker) IsCritical() bool       { return c.critical }
func (c *PingChecker) Timeout() time.Duration { return 5 * time.Second }

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	result := CheckResult{
		Component: c.name,
		Critical:  c.critical,
		Timestamp: start,
	}
	if err := c.pinger.Ping(ctx); err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	} else {
		result.Status = StatusHealthy
	}
	result.Duration = time.Since(start)
	return result
}

// VectorStoreChecker probes the vector store's health endpoint.
type VectorStoreChecker struct {
	healthz func(ctx context.Context) error
}

// NewVectorStoreChecker wraps the store client's Healthz method. The
// store is critical: without it every retrieval degrades to placeholders.
func NewVectorStoreChecker(healthz func(ctx context.Context) error) *VectorStoreChecker {
	return &VectorStoreChecker{healthz: healthz}
}

func (c *VectorStoreChecker) Name() string           { return "vectordb" }
func (c *VectorStoreChecker) IsCritical() bool       { return true }
func (c *VectorStoreChecker) Timeout() time.Duration { return 5 * time.Second }

func (c *VectorStoreChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	result := CheckResult{
		Component: "vectordb",
		Critical:  true,
		Timestamp: start,
	}
	if err := c.healthz(ctx); err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	} else {
		result.Status = StatusHealthy
	}
	result.Duration = time.Since(start)
	return result
}

// HTTPChecker probes an HTTP dependency (embedding or LLM service) by
// expecting a 2xx from its base health URL.
type HTTPChecker struct {
	name     string
	url      string
	client   *http.Client
	critical bool
}

func NewHTTPChecker(name, url string, critical bool) *HTTPChecker {
	return &HTTPChecker{
		name:     name,
		url:      url,
		client:   &http.Client{Timeout: 5 * time.Second},
		critical: critical,
	}
}

func (c *HTTPChecker) Name() string           { return c.name }
func (c *HTTPChecker) IsCritical() bool       { return c.critical }
func (c *HTTPChecker) Timeout() time.Duration { return 5 * time.Second }

func (c *HTTPChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	result := CheckResult{
		Component: c.name,
		Critical:  c.critical,
		Timestamp: start,
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result
	}
	resp, err := c.client.Do(req)
	result.Duration = time.Since(start)
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result.Status = StatusUnhealthy
		result.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		return result
	}
	result.Status = StatusHealthy
	return result
}

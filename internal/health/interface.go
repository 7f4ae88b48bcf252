package health

import (
	"context"
	"time"
)

// CheckStatus represents the result of a health check
type CheckStatus int

const (
	StatusHealthy CheckStatus = iota
	StatusDegraded
	StatusUnhealthy
	StatusUnknown
)

func (s CheckStatus) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// CheckResult contains the result of a single component check
type CheckResult struct {
	Component string        `json:"component"`
	Status    CheckStatus   `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
	Critical  bool          `json:"critical"`
}

// Checker defines the interface for health checks
type Checker interface {
	// Name returns the unique name of this health check
	Name() string

	// Check performs the health check and returns the result
	Check(ctx context.Context) CheckResult

	// IsCritical returns true if this check's failure should mark the service unhealthy
	IsCritical() bool

	// Timeout returns the maximum duration this check should take
	Timeout() time.Duration
}

// Overall is the aggregated service health across all registered checks.
type Overall struct {
	Status     CheckStatus            `json:"status"`
	Ready      bool                   `json:"ready"`
	Components map[string]CheckResult `json:"components"`
	Timestamp  time.Time              `json:"timestamp"`
}

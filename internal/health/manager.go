package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager holds the registered checkers and evaluates them on demand.
// Checks run per-request rather than on a background ticker: the probe
// surface is small and Kubernetes probes already provide the cadence.
type Manager struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	logger   *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		checkers: make(map[string]Checker),
		logger:   logger,
	}
}

// Register adds a checker. Registering the same name twice is a wiring bug.
func (m *Manager) Register(c Checker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.checkers[c.Name()]; exists {
		return fmt.Errorf("health checker %q already registered", c.Name())
	}
	m.checkers[c.Name()] = c
	return nil
}

// Evaluate runs every registered check with its own timeout and folds the
// results into the overall status. A failed critical check makes the
// service unhealthy and not ready; a failed non-critical check only
// degrades it.
func (m *Manager) Evaluate(ctx context.Context) Overall {
	m.mu.RLock()
	checkers := make([]Checker, 0, len(m.checkers))
	for _, c := range m.checkers {
		checkers = append(checkers, c)
	}
	m.mu.RUnlock()

	overall := Overall{
		Status:     StatusHealthy,
		Ready:      true,
		Components: make(map[string]CheckResult, len(checkers)),
		Timestamp:  time.Now(),
	}

	for _, c := range checkers {
		cctx, cancel := context.WithTimeout(ctx, c.Timeout())
		res := c.Check(cctx)
		cancel()

		overall.Components[c.Name()] = res
		if res.Status == StatusHealthy {
			continue
		}
		m.logger.Warn("Health check failed",
			zap.String("component", c.Name()),
			zap.String("status", res.Status.String()),
			zap.String("error", res.Error))
		if c.IsCritical() {
			overall.Status = StatusUnhealthy
			overall.Ready = false
		} else if overall.Status == StatusHealthy {
			overall.Status = StatusDegraded
		}
	}
	return overall
}

package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticChecker struct {
	name     string
	critical bool
	err      error
}

func (s staticChecker) Name() string           { return s.name }
func (s staticChecker) IsCritical() bool       { return s.critical }
func (s staticChecker) Timeout() time.Duration { return time.Second }
func (s staticChecker) Check(context.Context) CheckResult {
	res := CheckResult{Component: s.name, Critical: s.critical, Timestamp: time.Now()}
	if s.err != nil {
		res.Status = StatusUnhealthy
		res.Error = s.err.Error()
	} else {
		res.Status = StatusHealthy
	}
	return res
}

func TestEvaluateAllHealthy(t *testing.T) {
	m := NewManager(zap.NewNop())
	require.NoError(t, m.Register(staticChecker{name: "a", critical: true}))
	require.NoError(t, m.Register(staticChecker{name: "b"}))

	overall := m.Evaluate(context.Background())
	assert.Equal(t, StatusHealthy, overall.Status)
	assert.True(t, overall.Ready)
	assert.Len(t, overall.Components, 2)
}

func TestEvaluateCriticalFailureMakesUnready(t *testing.T) {
	m := NewManager(zap.NewNop())
	require.NoError(t, m.Register(staticChecker{name: "vectordb", critical: true, err: errors.New("down")}))

	overall := m.Evaluate(context.Background())
	assert.Equal(t, StatusUnhealthy, overall.Status)
	assert.False(t, overall.Ready)
}

func TestEvaluateNonCriticalFailureDegrades(t *testing.T) {
	m := NewManager(zap.NewNop())
	require.NoError(t, m.Register(staticChecker{name: "redis", err: errors.New("down")}))

	overall := m.Evaluate(context.Background())
	assert.Equal(t, StatusDegraded, overall.Status)
	assert.True(t, overall.Ready, "non-critical failures must not gate readiness")
}

func TestRegisterDuplicateName(t *testing.T) {
	m := NewManager(zap.NewNop())
	require.NoError(t, m.Register(staticChecker{name: "a"}))
	assert.Error(t, m.Register(staticChecker{name: "a"}))
}

func TestHTTPCheckerStatusCodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	ok := NewHTTPChecker("llm", srv.URL+"/", true).Check(context.Background())
	assert.Equal(t, StatusHealthy, ok.Status)

	bad := NewHTTPChecker("llm", srv.URL+"/bad", true).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, bad.Status)
	assert.Contains(t, bad.Error, "502")
}

func TestHealthEndpoints(t *testing.T) {
	m := NewManager(zap.NewNop())
	require.NoError(t, m.Register(staticChecker{name: "vectordb", critical: true, err: errors.New("down")}))
	mux := http.NewServeMux()
	NewHandler(m).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")
}

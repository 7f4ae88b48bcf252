package health

import (
	"encoding/json"
	"net/http"
)

// Handler exposes health endpoints backed by a Manager.
type Handler struct {
	mgr *Manager
}

func NewHandler(mgr *Manager) *Handler {
	return &Handler{mgr: mgr}
}

// RegisterRoutes registers the probe endpoints on the provided mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/health/live", h.handleLive)
	mux.HandleFunc("/health/ready", h.handleReady)
}

// handleHealth returns the full component breakdown.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	overall := h.mgr.Evaluate(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if overall.Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(struct {
		Overall
		StatusText string `json:"status_text"`
	}{Overall: overall, StatusText: overall.Status.String()})
}

// handleLive answers liveness probes. The process serving the request is
// alive by definition; dependencies do not matter here.
func (h *Handler) handleLive(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// handleReady answers readiness probes based on critical checks only.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	overall := h.mgr.Evaluate(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if !overall.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ready":  overall.Ready,
		"status": overall.Status.String(),
	})
}

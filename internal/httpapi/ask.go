package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/archivium-lab/chorus/internal/workflows"
	"go.uber.org/zap"
)

// AskHandler serves the question endpoint: one POST runs the full persona
// pipeline and returns the synthesis with the complete agent log.
type AskHandler struct {
	orch   *workflows.Orchestrator
	logger *zap.Logger
}

func NewAskHandler(orch *workflows.Orchestrator, logger *zap.Logger) *AskHandler {
	return &AskHandler{orch: orch, logger: logger}
}

// RegisterRoutes registers the ask route on the provided mux.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ask", h.handleAsk)
}

type askRequest struct {
	Question string `json:"question"`
}

// handleAsk runs the pipeline synchronously.
// POST /ask {"question": "..."}
func (h *AskHandler) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	result := h.orch.Run(r.Context(), req.Question)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Warn("Failed to encode ask response",
			zap.String("run_id", result.RunID),
			zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

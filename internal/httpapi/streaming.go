package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/archivium-lab/chorus/internal/streaming"
	"go.uber.org/zap"
)

// StreamingHandler serves SSE and WebSocket endpoints for run events.
type StreamingHandler struct {
	mgr    *streaming.Manager
	logger *zap.Logger
}

func NewStreamingHandler(mgr *streaming.Manager, logger *zap.Logger) *StreamingHandler {
	return &StreamingHandler{mgr: mgr, logger: logger}
}

// RegisterRoutes registers streaming routes on the provided mux.
func (h *StreamingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/stream/sse", h.handleSSE)
	h.RegisterWebSocket(mux)
}

// parseTypeFilter reads the optional comma-separated "types" query param.
func parseTypeFilter(r *http.Request) map[string]struct{} {
	filter := map[string]struct{}{}
	if s := r.URL.Query().Get("types"); s != "" {
		for _, t := range strings.Split(s, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				filter[t] = struct{}{}
			}
		}
	}
	return filter
}

func parseLastEventID(r *http.Request) uint64 {
	if lei := r.Header.Get("Last-Event-ID"); lei != "" {
		if n, err := strconv.ParseUint(lei, 10, 64); err == nil {
			return n
		}
	}
	if q := r.URL.Query().Get("last_event_id"); q != "" {
		if n, err := strconv.ParseUint(q, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func writeSSEEvent(w http.ResponseWriter, ev streaming.Event) {
	if ev.Seq > 0 {
		fmt.Fprintf(w, "id: %d\n", ev.Seq)
	}
	if ev.Type != "" {
		fmt.Fprintf(w, "event: %s\n", ev.Type)
	}
	fmt.Fprintf(w, "data: %s\n\n", string(ev.Marshal()))
}

// handleSSE streams events for a run via Server-Sent Events.
// GET /stream/sse?run_id=<id>
func (h *StreamingHandler) handleSSE(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		http.Error(w, `{"error":"run_id required"}`, http.StatusBadRequest)
		return
	}
	typeFilter := parseTypeFilter(r)
	lastID := parseLastEventID(r)

	// CORS (dev-friendly)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	ch := h.mgr.Subscribe(runID, 256)
	defer h.mgr.Unsubscribe(runID, ch)

	// Initial comment establishes the stream before any event arrives
	fmt.Fprintf(w, ": connected to run %s\n\n", runID)
	flusher.Flush()

	// Replay backlog since lastID (best-effort)
	if lastID > 0 {
		for _, ev := range h.mgr.ReplaySince(runID, lastID) {
			if len(typeFilter) > 0 {
				if _, ok := typeFilter[ev.Type]; !ok {
					continue
				}
			}
			writeSSEEvent(w, ev)
		}
		flusher.Flush()
	}

	// Heartbeat keeps connections alive through proxies
	hb := time.NewTicker(15 * time.Second)
	defer hb.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("SSE client disconnected", zap.String("run_id", runID))
			return
		case evt := <-ch:
			if len(typeFilter) > 0 {
				if _, ok := typeFilter[evt.Type]; !ok {
					continue
				}
			}
			writeSSEEvent(w, evt)
			flusher.Flush()
		case <-hb.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

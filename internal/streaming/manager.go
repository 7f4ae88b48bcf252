package streaming

import (
	"encoding/json"
	"sync"
	"time"
)

// Event is a minimal streaming event used by SSE and WebSocket consumers.
type Event struct {
	RunID     string    `json:"run_id"`
	Type      string    `json:"type"`
	AgentID   string    `json:"agent_id,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Seq       uint64    `json:"seq"`
}

// Event types emitted over a run's lifetime.
const (
	EventRunStarted       = "RUN_STARTED"
	EventAgentStarted     = "AGENT_STARTED"
	EventAgentCompleted   = "AGENT_COMPLETED"
	EventSynthesisStarted = "SYNTHESIS_STARTED"
	EventRunCompleted     = "RUN_COMPLETED"
)

// Manager provides in-memory pub/sub for run events.
type Manager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	// per-run ring buffer for replay and Last-Event-ID support
	history  map[string]*ring
	capacity int
}

const defaultCapacity = 256

// NewManager constructs a manager whose per-run replay rings hold up to
// capacity events. capacity <= 0 selects the default.
func NewManager(capacity int) *Manager {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Manager{
		subscribers: make(map[string]map[chan Event]struct{}),
		history:     make(map[string]*ring),
		capacity:    capacity,
	}
}

// Subscribe adds a subscriber channel for a runID; caller must drain and call Unsubscribe.
func (m *Manager) Subscribe(runID string, buffer int) chan Event {
	ch := make(chan Event, buffer)
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.subscribers[runID]
	if subs == nil {
		subs = make(map[chan Event]struct{})
		m.subscribers[runID] = subs
	}
	subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes the subscriber channel and closes it.
func (m *Manager) Unsubscribe(runID string, ch chan Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if subs, ok := m.subscribers[runID]; ok {
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(m.subscribers, runID)
		}
	}
}

// Publish sends an event to all subscribers of runID (non-blocking).
// Sends happen under the lock: they cannot block, and Unsubscribe closes
// channels under the same lock, so a send never races a close.
func (m *Manager) Publish(runID string, evt Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rg := m.history[runID]
	if rg == nil {
		rg = newRing(m.capacity)
		m.history[runID] = rg
	}
	evt.RunID = runID
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	evt.Seq = rg.nextSeq
	rg.nextSeq++
	rg.push(evt)
	for ch := range m.subscribers[runID] {
		select {
		case ch <- evt:
		default:
			// Drop if subscriber is slow
		}
	}
}

// Marshal returns JSON for event payloads in SSE or logs.
func (e Event) Marshal() []byte {
	b, _ := json.Marshal(e)
	return b
}

// ReplaySince returns events with Seq > since (best-effort within ring capacity).
func (m *Manager) ReplaySince(runID string, since uint64) []Event {
	m.mu.RLock()
	rg := m.history[runID]
	m.mu.RUnlock()
	if rg == nil {
		return nil
	}
	return rg.since(since)
}

// ring is a fixed-capacity ring buffer of events
type ring struct {
	buf     []Event
	start   int
	count   int
	nextSeq uint64
}

func newRing(capacity int) *ring { return &ring{buf: make([]Event, capacity)} }

func (r *ring) push(e Event) {
	if len(r.buf) == 0 {
		return
	}
	if r.count < len(r.buf) {
		r.buf[(r.start+r.count)%len(r.buf)] = e
		r.count++
		return
	}
	// overwrite oldest
	r.buf[r.start] = e
	r.start = (r.start + 1) % len(r.buf)
}

func (r *ring) since(seq uint64) []Event {
	if r.count == 0 {
		return nil
	}
	out := make([]Event, 0, r.count)
	for i := 0; i < r.count; i++ {
		idx := (r.start + i) % len(r.buf)
		ev := r.buf[idx]
		if ev.Seq > seq {
			out = append(out, ev)
		}
	}
	return out
}

package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/archivium-lab/chorus/internal/agents"
	"github.com/archivium-lab/chorus/internal/llm"
	ometrics "github.com/archivium-lab/chorus/internal/metrics"
	"github.com/archivium-lab/chorus/internal/personas"
	"github.com/archivium-lab/chorus/internal/streaming"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State names a stage of the run state machine. Transitions are
// unconditional: every run visits every persona state once, in registry
// order, then synthesizes. Agent failures change the content of the log,
// never the path through the machine.
type State string

const (
	StateIdle         State = "IDLE"
	StateSynthesizing State = "SYNTHESIZING"
	StateDone         State = "DONE"
)

// PersonaState names the stage in which the given persona speaks.
func PersonaState(id string) State {
	return State("PERSONA_" + id)
}

// RunResult is the full outcome of one orchestration run.
type RunResult struct {
	RunID     string          `json:"run_id"`
	Question  string          `json:"question"`
	Log       []agents.Result `json:"logs"`
	Synthesis string          `json:"synthesis"`
}

// Orchestrator drives the fixed persona sequence for each question.
// Personas run sequentially so a single upstream rate limit bounds the
// whole run.
type Orchestrator struct {
	store    *personas.Store
	executor *agents.Executor
	gen      llm.Provider
	stream   *streaming.Manager
	logger   *zap.Logger
}

// NewOrchestrator wires the run state machine over injected capabilities.
// stream may be nil when no event consumers exist (tests, batch tools).
func NewOrchestrator(store *personas.Store, executor *agents.Executor, gen llm.Provider, stream *streaming.Manager, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:    store,
		executor: executor,
		gen:      gen,
		stream:   stream,
		logger:   logger,
	}
}

// Run executes the full pipeline for one question: every persona in
// registry order, then the synthesizer over the accumulated log. The
// persona registry is snapshotted once at the start, so a concurrent
// config reload never changes the cast mid-run.
func (o *Orchestrator) Run(ctx context.Context, question string) RunResult {
	runID := uuid.NewString()
	start := time.Now()
	state := StateIdle

	reg := o.store.Registry()
	log := make([]agents.Result, 0, reg.Len())

	ometrics.RunsStarted.Inc()
	o.publish(runID, streaming.Event{Type: streaming.EventRunStarted, Message: question})
	o.logger.Info("Run started",
		zap.String("run_id", runID),
		zap.String("state", string(state)),
		zap.Int("personas", reg.Len()))

	for _, profile := range reg.Ordered() {
		state = PersonaState(profile.ID)
		o.logger.Debug("Run transition",
			zap.String("run_id", runID),
			zap.String("state", string(state)))
		o.publish(runID, streaming.Event{Type: streaming.EventAgentStarted, AgentID: profile.ID})

		res := o.executor.Run(ctx, profile, question)
		log = append(log, res)

		o.publish(runID, streaming.Event{
			Type:    streaming.EventAgentCompleted,
			AgentID: profile.ID,
			Message: res.Thought,
		})
	}

	state = StateSynthesizing
	o.logger.Debug("Run transition",
		zap.String("run_id", runID),
		zap.String("state", string(state)))
	o.publish(runID, streaming.Event{Type: streaming.EventSynthesisStarted})

	synthesis, synthErr := o.synthesize(ctx, reg.Synthesizer(), question, log)

	state = StateDone
	o.publish(runID, streaming.Event{Type: streaming.EventRunCompleted, Message: synthesis})

	status := "ok"
	if synthErr != nil {
		status = "degraded"
	}
	ometrics.RunsCompleted.WithLabelValues(status).Inc()
	ometrics.RunDuration.Observe(time.Since(start).Seconds())
	o.logger.Info("Run completed",
		zap.String("run_id", runID),
		zap.String("state", string(state)),
		zap.String("status", status),
		zap.Duration("duration", time.Since(start)))

	return RunResult{
		RunID:     runID,
		Question:  question,
		Log:       log,
		Synthesis: synthesis,
	}
}

// synthesize produces the final narrative. A generation failure degrades
// to an error-text synthesis; the run still completes with its full log.
func (o *Orchestrator) synthesize(ctx context.Context, syn *personas.SynthesizerProfile, question string, log []agents.Result) (string, error) {
	prompt := BuildSynthesisPrompt(syn, question, log)
	raw, err := o.gen.Generate(ctx, llm.Request{
		Prompt:  prompt,
		AgentID: syn.ID,
	})
	if err != nil {
		o.logger.Warn("Synthesis failed, degrading to error text", zap.Error(err))
		return fmt.Sprintf("(synthesis error: %v)", err), err
	}
	return agents.StripLeadingLabels(raw, agents.SynthesisLabels), nil
}

func (o *Orchestrator) publish(runID string, evt streaming.Event) {
	if o.stream == nil {
		return
	}
	o.stream.Publish(runID, evt)
}

package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/archivium-lab/chorus/internal/llm"
	ometrics "github.com/archivium-lab/chorus/internal/metrics"
	"github.com/archivium-lab/chorus/internal/personas"
	"github.com/archivium-lab/chorus/internal/retrieval"
	"go.uber.org/zap"
)

// Result is one log entry: what a persona thought and what it read.
// Immutable after creation; owned by the run that produced it.
type Result struct {
	Agent       string   `json:"agent"`
	Thought     string   `json:"thought"`
	ContextUsed []string `json:"context_used"`
}

// Executor runs one persona's retrieve-generate-clean cycle
type Executor struct {
	retriever *retrieval.Retriever
	gen       llm.Provider
	logger    *zap.Logger
}

// NewExecutor constructs an executor over the injected capabilities
func NewExecutor(retriever *retrieval.Retriever, gen llm.Provider, logger *zap.Logger) *Executor {
	return &Executor{retriever: retriever, gen: gen, logger: logger}
}

// Run executes one persona against the question. It never returns an
// error: retrieval and generation failures are folded into the Result so
// the orchestration state machine takes only unconditional transitions.
func (e *Executor) Run(ctx context.Context, profile *personas.Profile, question string) Result {
	start := time.Now()

	searchTerm := retrieval.AugmentQuery(question, profile.Keywords)
	docs := e.retriever.Retrieve(ctx, searchTerm, profile.SourceTag, e.retriever.DesiredCount())

	prompt := BuildAgentPrompt(profile, docs, question)

	raw, err := e.gen.Generate(ctx, llm.Request{
		Prompt:  prompt,
		AgentID: profile.ID,
	})

	result := Result{
		Agent:       profile.Name,
		ContextUsed: docs,
	}
	if err != nil {
		e.logger.Warn("Agent generation failed, degrading to error thought",
			zap.String("agent_id", profile.ID),
			zap.Error(err))
		result.Thought = fmt.Sprintf("(agent error: %v)", err)
		ometrics.AgentExecutions.WithLabelValues(profile.ID, "error").Inc()
	} else {
		result.Thought = StripLeadingLabels(raw, ThoughtLabels)
		ometrics.AgentExecutions.WithLabelValues(profile.ID, "ok").Inc()
	}

	ometrics.AgentExecutionDuration.WithLabelValues(profile.ID).
		Observe(float64(time.Since(start).Milliseconds()))

	return result
}

package workflows

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/archivium-lab/chorus/internal/agents"
	"github.com/archivium-lab/chorus/internal/llm"
	"github.com/archivium-lab/chorus/internal/personas"
	"github.com/archivium-lab/chorus/internal/retrieval"
	"github.com/archivium-lab/chorus/internal/streaming"
	"github.com/archivium-lab/chorus/internal/vectordb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEmbedder struct{ err error }

func (f fakeEmbedder) GenerateEmbedding(context.Context, string, string) ([]float32, error) {
	return []float32{0.5}, f.err
}

type fakeSearcher struct {
	err error
}

func (f *fakeSearcher) SearchByTag(_ context.Context, _ []float32, tag string, _ int) ([]vectordb.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []vectordb.Document{{Content: "doc for " + tag, SourceTag: tag}}, nil
}

// scriptedProvider answers per agent_id and records every prompt it saw.
type scriptedProvider struct {
	responses map[string]string
	err       error
	prompts   map[string]string
}

func (s *scriptedProvider) Name() string { return "scripted" }
func (s *scriptedProvider) Generate(_ context.Context, req llm.Request) (string, error) {
	if s.prompts == nil {
		s.prompts = make(map[string]string)
	}
	s.prompts[req.AgentID] = req.Prompt
	if s.err != nil {
		return "", s.err
	}
	if resp, ok := s.responses[req.AgentID]; ok {
		return resp, nil
	}
	return "default response", nil
}

func testStore(t *testing.T) *personas.Store {
	t.Helper()
	cfg := &personas.Config{
		Personas: map[string]*personas.Profile{
			"survivor": {
				ID: "survivor", Name: "Survivor",
				Role: "A cautious survivor.", Style: "Fearful, precise.",
				SourceTag: "survivor_context", Keywords: []string{"pandemic"},
			},
			"speculator": {
				ID: "speculator", Name: "Speculator",
				Role: "A market speculator.", Style: "Cynical, opportunistic.",
				SourceTag: "speculator_context", Keywords: []string{"market"},
			},
			"auteur": {
				ID: "auteur", Name: "Auteur",
				Role: "A film auteur.", Style: "Lyrical, visual.",
				SourceTag: "auteur_context", Keywords: []string{"cinema"},
			},
		},
		Order: []string{"survivor", "speculator", "auteur"},
		Synthesizer: &personas.SynthesizerProfile{
			ID: "synthesizer", Role: "A historian.", Style: "Measured, narrative.",
		},
	}
	require.NoError(t, cfg.Validate())
	return personas.NewStore(personas.NewRegistry(cfg), "", zap.NewNop())
}

func newOrchestrator(store *personas.Store, search *fakeSearcher, gen llm.Provider, stream *streaming.Manager) *Orchestrator {
	r := retrieval.NewRetriever(fakeEmbedder{}, search, retrieval.Config{}, zap.NewNop())
	exec := agents.NewExecutor(r, gen, zap.NewNop())
	return NewOrchestrator(store, exec, gen, stream, zap.NewNop())
}

func TestRunVisitsEveryPersonaInOrder(t *testing.T) {
	gen := &scriptedProvider{responses: map[string]string{
		"survivor":    "Thought: We never stopped counting cases.",
		"speculator":  "Opinion: Panic is just mispriced information.",
		"auteur":      "Every empty street is a frame waiting for light.",
		"synthesizer": "Síntesis Narrativa: Three voices, one fracture.",
	}}
	o := newOrchestrator(testStore(t), &fakeSearcher{}, gen, nil)

	res := o.Run(context.Background(), "How did the city change?")

	require.Len(t, res.Log, 3)
	assert.Equal(t, "Survivor", res.Log[0].Agent)
	assert.Equal(t, "Speculator", res.Log[1].Agent)
	assert.Equal(t, "Auteur", res.Log[2].Agent)
	assert.Equal(t, "We never stopped counting cases.", res.Log[0].Thought)
	assert.Equal(t, "Panic is just mispriced information.", res.Log[1].Thought)
	assert.Equal(t, "Three voices, one fracture.", res.Synthesis)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "How did the city change?", res.Question)
}

func TestRunSynthesisPromptCarriesFullLog(t *testing.T) {
	gen := &scriptedProvider{responses: map[string]string{
		"survivor":   "thought one",
		"speculator": "thought two",
		"auteur":     "thought three",
	}}
	o := newOrchestrator(testStore(t), &fakeSearcher{}, gen, nil)

	o.Run(context.Background(), "q")

	prompt := gen.prompts["synthesizer"]
	require.NotEmpty(t, prompt)
	s1 := strings.Index(prompt, "AGENT Survivor: thought one")
	s2 := strings.Index(prompt, "AGENT Speculator: thought two")
	s3 := strings.Index(prompt, "AGENT Auteur: thought three")
	require.True(t, s1 >= 0 && s2 >= 0 && s3 >= 0, "every voice must be rendered: %s", prompt)
	assert.True(t, s1 < s2 && s2 < s3, "log lines must keep execution order")
}

func TestRunCompletesWhenEverythingFails(t *testing.T) {
	gen := &scriptedProvider{err: errors.New("model offline")}
	o := newOrchestrator(testStore(t), &fakeSearcher{err: errors.New("store down")}, gen, nil)

	res := o.Run(context.Background(), "q")

	require.Len(t, res.Log, 3, "failures must not shorten the log")
	for i, entry := range res.Log {
		assert.Contains(t, entry.Thought, "agent error", "entry %d", i)
		assert.Equal(t, []string{retrieval.ContextUnavailable}, entry.ContextUsed)
	}
	assert.Contains(t, res.Synthesis, "synthesis error")
	assert.Contains(t, res.Synthesis, "model offline")
}

func TestRunPublishesLifecycleEvents(t *testing.T) {
	gen := &scriptedProvider{responses: map[string]string{}}
	stream := streaming.NewManager(64)
	o := newOrchestrator(testStore(t), &fakeSearcher{}, gen, stream)

	res := o.Run(context.Background(), "q")

	events := stream.ReplaySince(res.RunID, 0)
	var types []string
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{
		streaming.EventRunStarted,
		streaming.EventAgentStarted, streaming.EventAgentCompleted,
		streaming.EventAgentStarted, streaming.EventAgentCompleted,
		streaming.EventAgentStarted, streaming.EventAgentCompleted,
		streaming.EventSynthesisStarted,
		streaming.EventRunCompleted,
	}, types)
	assert.Equal(t, "survivor", events[1].AgentID)
	assert.Equal(t, "auteur", events[5].AgentID)
}

func TestBuildSynthesisPromptFixedInstructions(t *testing.T) {
	syn := &personas.SynthesizerProfile{ID: "synthesizer", Role: "A historian.", Style: "Measured."}
	prompt := BuildSynthesisPrompt(syn, "q", []agents.Result{{Agent: "Survivor", Thought: "a"}})

	// Instructions live in the template, not the profile: a style edit
	// must not lose them.
	assert.Contains(t, prompt, "120")
	assert.Contains(t, prompt, "closing reflective statement")
	assert.Contains(t, prompt, "A historian.")
}

func TestRenderLogEmpty(t *testing.T) {
	assert.Equal(t, "", RenderLog(nil))
}

func TestRenderLogFormat(t *testing.T) {
	log := []agents.Result{
		{Agent: "Survivor", Thought: "a"},
		{Agent: "Auteur", Thought: "b"},
	}
	assert.Equal(t, "AGENT Survivor: a\nAGENT Auteur: b", RenderLog(log))
}

func TestPersonaState(t *testing.T) {
	assert.Equal(t, State("PERSONA_survivor"), PersonaState("survivor"))
	assert.Equal(t, "DONE", string(StateDone))
}

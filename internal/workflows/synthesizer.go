package workflows

import (
	"fmt"
	"strings"

	"github.com/archivium-lab/chorus/internal/agents"
	"github.com/archivium-lab/chorus/internal/personas"
)

const synthesisPromptTemplate = `You are %s.
Your narrative style is: %s.

Several analysts have examined the same question from different angles.
Their raw notes, in the order they spoke:

%s

The question under discussion: "%s"

Weave their perspectives into a single coherent narrative of at most 120
words. Reconcile agreements and tensions between them instead of listing
each voice separately, and end with one closing reflective statement.
Respond with the narrative only, without headings or labels.`

// RenderLog flattens the accumulated agent results into the transcript
// block the synthesizer reads, one "AGENT <name>: <thought>" line per
// entry, in execution order.
func RenderLog(log []agents.Result) string {
	lines := make([]string, 0, len(log))
	for _, entry := range log {
		lines = append(lines, fmt.Sprintf("AGENT %s: %s", entry.Agent, entry.Thought))
	}
	return strings.Join(lines, "\n")
}

// BuildSynthesisPrompt assembles the final-stage prompt from the
// synthesizer profile, the question and every accumulated thought.
func BuildSynthesisPrompt(syn *personas.SynthesizerProfile, question string, log []agents.Result) string {
	return fmt.Sprintf(synthesisPromptTemplate, syn.Role, syn.Style, RenderLog(log), question)
}

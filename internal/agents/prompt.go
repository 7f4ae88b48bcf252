package agents

import (
	"fmt"
	"strings"

	"github.com/archivium-lab/chorus/internal/personas"
)

const agentPromptTemplate = `You are the agent: %s.
Your role: %s
Your style: %s

Context retrieved from your archives:
%s

User question: %q

Instructions:
1. Stay in character. Analyze the question using ONLY the retrieved context and your persona's style.
2. Produce a short reaction: at most 80 words and 5 sentences.
3. Do not add meta-labels (such as "Thought:") or introductory parentheses. Answer with the reaction text only.`

// BuildAgentPrompt assembles the generation request for one persona.
// Each context document is prefixed for visual separation; an empty
// context set is stated explicitly so the model does not invent sources.
func BuildAgentPrompt(p *personas.Profile, docs []string, question string) string {
	context := "(no context found)"
	if len(docs) > 0 {
		lines := make([]string, len(docs))
		for i, d := range docs {
			lines[i] = "- " + d
		}
		context = strings.Join(lines, "\n")
	}
	return fmt.Sprintf(agentPromptTemplate, p.Name, p.Role, p.Style, context, question)
}

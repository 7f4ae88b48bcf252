package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripLeadingLabels(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "The data smells like quarantine.", "The data smells like quarantine."},
		{"thought label", "Thought: The data smells like quarantine.", "The data smells like quarantine."},
		{"case insensitive", "THOUGHT: fear again", "fear again"},
		{"parenthesized label", "(Internal thought) profits first", "profits first"},
		{"stacked labels", "Thought: Opinion: buy the dip", "buy the dip"},
		{"leading whitespace", "   Response: strands connect us", "strands connect us"},
		{"label only mid-string kept", "My thought: it matters", "My thought: it matters"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripLeadingLabels(tc.in, ThoughtLabels))
		})
	}
}

func TestStripLeadingLabelsIdempotent(t *testing.T) {
	in := "Thought: (Internal thought) fear evolved into routine."
	once := StripLeadingLabels(in, ThoughtLabels)
	twice := StripLeadingLabels(once, ThoughtLabels)
	assert.Equal(t, once, twice)
}

func TestStripSynthesisLabels(t *testing.T) {
	assert.Equal(t, "Three voices, one archive.",
		StripLeadingLabels("Síntesis Narrativa: Three voices, one archive.", SynthesisLabels))
	assert.Equal(t, "Three voices, one archive.",
		StripLeadingLabels("Final synthesis: Three voices, one archive.", SynthesisLabels))
}

package agents

import "strings"

// The generation capability is unreliable about format: despite explicit
// instructions it sometimes prefixes output with a meta-label, and
// occasionally stacks more than one. Stripping is a mandatory compensating
// control, enumerated here rather than extended ad hoc.
var (
	// ThoughtLabels are disallowed prefixes on agent thoughts
	ThoughtLabels = []string{
		"thought:",
		"(internal thought)",
		"opinion:",
		"reaction:",
		"response:",
	}

	// SynthesisLabels are disallowed prefixes on the final synthesis
	SynthesisLabels = []string{
		"síntesis narrativa:",
		"synthesis:",
		"final synthesis:",
		"conclusion:",
	}
)

// StripLeadingLabels removes any leading disallowed label, case-insensitively,
// repeating until none matches. Idempotent: a clean string passes through
// unchanged.
func StripLeadingLabels(s string, labels []string) string {
	for {
		t := strings.TrimSpace(s)
		matched := false
		for _, label := range labels {
			if len(t) >= len(label) && strings.EqualFold(t[:len(label)], label) {
				s = t[len(label):]
				matched = true
				break
			}
		}
		if !matched {
			return t
		}
	}
}

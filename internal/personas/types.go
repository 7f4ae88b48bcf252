package personas

// Profile defines one analysis persona: who it is, how it speaks, and
// which slice of the archive it reads. Profiles are immutable after load.
type Profile struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Role      string   `yaml:"role" json:"role"`
	Style     string   `yaml:"style" json:"style"`
	SourceTag string   `yaml:"source_tag" json:"source_tag"`
	Keywords  []string `yaml:"keywords" json:"keywords"`
}

// SynthesizerProfile is the singular terminal persona. It has no source
// tag and no keywords: its context is the accumulated run log.
type SynthesizerProfile struct {
	ID    string `yaml:"id" json:"id"`
	Role  string `yaml:"role" json:"role"`
	Style string `yaml:"style" json:"style"`
}

// Config holds the complete personas configuration as loaded from YAML
type Config struct {
	Personas    map[string]*Profile `yaml:"personas"`
	Order       []string            `yaml:"order"`
	Synthesizer *SynthesizerProfile `yaml:"synthesizer"`
}

// Registry is the read-only view the orchestration core works with.
// The execution order is explicit configuration data, not control flow.
type Registry struct {
	profiles    map[string]*Profile
	order       []string
	synthesizer *SynthesizerProfile
}

// NewRegistry builds a registry from validated configuration
func NewRegistry(cfg *Config) *Registry {
	return &Registry{
		profiles:    cfg.Personas,
		order:       cfg.Order,
		synthesizer: cfg.Synthesizer,
	}
}

// Get returns the profile for id. A miss is a configuration error and is
// reported to the caller rather than swallowed.
func (r *Registry) Get(id string) (*Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, NewConfigError("", "personas", id, ErrPersonaNotFound)
	}
	return p, nil
}

// Ordered returns the profiles in the configured execution order
func (r *Registry) Ordered() []*Profile {
	out := make([]*Profile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.profiles[id])
	}
	return out
}

// Synthesizer returns the terminal synthesis profile
func (r *Registry) Synthesizer() *SynthesizerProfile { return r.synthesizer }

// Len returns the number of analysis personas in the execution order
func (r *Registry) Len() int { return len(r.order) }

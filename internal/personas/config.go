package personas

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads and validates the personas configuration from a YAML file.
// Any validation failure here is fatal by design: a mis-keyed registry is a
// programming/config error, not a runtime data condition.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(path, "", "", fmt.Errorf("failed to read config file: %w", err))
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, NewConfigError(path, "", "", fmt.Errorf("failed to parse YAML: %w", err))
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Personas) == 0 {
		return NewConfigError("", "personas", "", fmt.Errorf("no personas defined"))
	}

	seenTags := make(map[string]string, len(c.Personas))
	for id, persona := range c.Personas {
		if err := c.validatePersona(id, persona); err != nil {
			return err
		}
		if prev, dup := seenTags[persona.SourceTag]; dup {
			return NewConfigError("", "personas", id+".source_tag",
				fmt.Errorf("source tag %q already used by persona %q", persona.SourceTag, prev))
		}
		seenTags[persona.SourceTag] = id
	}

	if len(c.Order) == 0 {
		return NewConfigError("", "order", "", fmt.Errorf("execution order is empty"))
	}
	seenOrder := make(map[string]bool, len(c.Order))
	for _, id := range c.Order {
		if _, ok := c.Personas[id]; !ok {
			return NewConfigError("", "order", id, fmt.Errorf("order references unknown persona"))
		}
		if seenOrder[id] {
			return NewConfigError("", "order", id, fmt.Errorf("persona listed twice in execution order"))
		}
		seenOrder[id] = true
	}

	if c.Synthesizer == nil {
		return NewConfigError("", "synthesizer", "", fmt.Errorf("synthesizer profile is required"))
	}
	if c.Synthesizer.Role == "" {
		return NewConfigError("", "synthesizer", "role", fmt.Errorf("role is required"))
	}
	if c.Synthesizer.ID == "" {
		c.Synthesizer.ID = "synthesizer"
	}

	return nil
}

func (c *Config) validatePersona(id string, persona *Profile) error {
	if persona == nil {
		return NewConfigError("", "personas", id, fmt.Errorf("persona entry is empty"))
	}
	if persona.ID == "" {
		persona.ID = id
	}
	if persona.ID != id {
		return NewConfigError("", "personas", id, fmt.Errorf("persona ID mismatch: %s != %s", persona.ID, id))
	}
	if persona.Name == "" {
		persona.Name = persona.ID
	}
	if persona.Role == "" {
		return NewConfigError("", "personas", id+".role", fmt.Errorf("role is required"))
	}
	if persona.Style == "" {
		return NewConfigError("", "personas", id+".style", fmt.Errorf("style is required"))
	}
	if persona.SourceTag == "" {
		return NewConfigError("", "personas", id+".source_tag", fmt.Errorf("source_tag is required"))
	}
	return nil
}

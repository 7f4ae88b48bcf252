package personas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
personas:
  survivor:
    name: Survivor
    role: "A paranoid, cautious survivor of a global pandemic."
    style: "Analytical, fearful, focused on health and safety."
    source_tag: survivor_context
    keywords: [pandemic, quarantine, safety]
  speculator:
    name: Speculator
    role: "An aggressive crypto and stock investor."
    style: "Opportunistic, cynical."
    source_tag: speculator_context
    keywords: [market, crash, profit]
order: [survivor, speculator]
synthesizer:
  id: historian
  role: "A digital historian synthesizing a debate between AIs."
  style: "Narrative and epic."
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "personas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigValid(t *testing.T) {
	cfg, err := LoadConfig(writeTemp(t, validYAML))
	require.NoError(t, err)

	reg := NewRegistry(cfg)
	assert.Equal(t, 2, reg.Len())

	ordered := reg.Ordered()
	require.Len(t, ordered, 2)
	assert.Equal(t, "survivor", ordered[0].ID)
	assert.Equal(t, "speculator", ordered[1].ID)

	p, err := reg.Get("survivor")
	require.NoError(t, err)
	assert.Equal(t, "survivor_context", p.SourceTag)
	assert.Equal(t, "Survivor", p.Name)

	require.NotNil(t, reg.Synthesizer())
	assert.Equal(t, "historian", reg.Synthesizer().ID)
}

func TestLoadConfigMissingRole(t *testing.T) {
	bad := `
personas:
  survivor:
    style: "Fearful."
    source_tag: survivor_context
order: [survivor]
synthesizer:
  role: "Historian."
`
	_, err := LoadConfig(writeTemp(t, bad))
	require.Error(t, err)
	var ce *ConfigError
	assert.True(t, errors.As(err, &ce))
}

func TestLoadConfigUnknownOrderEntry(t *testing.T) {
	bad := `
personas:
  survivor:
    role: "Survivor."
    style: "Fearful."
    source_tag: survivor_context
order: [survivor, ghost]
synthesizer:
  role: "Historian."
`
	_, err := LoadConfig(writeTemp(t, bad))
	require.Error(t, err)
}

func TestLoadConfigDuplicateSourceTag(t *testing.T) {
	bad := `
personas:
  a:
    role: "A."
    style: "A."
    source_tag: shared_context
  b:
    role: "B."
    style: "B."
    source_tag: shared_context
order: [a, b]
synthesizer:
  role: "Historian."
`
	_, err := LoadConfig(writeTemp(t, bad))
	require.Error(t, err)
}

func TestRegistryMissLookup(t *testing.T) {
	cfg, err := LoadConfig(writeTemp(t, validYAML))
	require.NoError(t, err)
	reg := NewRegistry(cfg)

	_, err = reg.Get("nobody")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersonaNotFound))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: 9000
vectordb:
  host: localhost
  collection: project_archive
llm:
  provider: openai
  model: gpt-4o-mini
retrieval:
  desired_count: 5
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "features.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesFileOverDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleConfig))

	f, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, f.Server.Port)
	assert.Equal(t, "localhost", f.VectorDB.Host)
	assert.Equal(t, "openai", f.LLM.Provider)
	assert.Equal(t, 5, f.Retrieval.DesiredCount)
	// Untouched sections keep defaults.
	assert.Equal(t, 8081, f.Server.HealthPort)
	assert.Equal(t, 6333, f.VectorDB.Port)
	assert.Equal(t, "all-MiniLM-L6-v2", f.Embeddings.Model)
	assert.Equal(t, "./config/personas.yaml", f.PersonasPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleConfig))
	t.Setenv("VECTOR_HOST", "qdrant.internal")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("LLM_SERVICE_URL", "http://models:9000")

	f, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "qdrant.internal", f.VectorDB.Host)
	assert.Equal(t, "redis:6379", f.Embeddings.RedisAddr)
	assert.True(t, f.Embeddings.EnableRedis)
	assert.Equal(t, "http://models:9000", f.LLM.BaseURL)
	assert.Equal(t, "http://models:9000", f.Embeddings.BaseURL)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/features.yaml")
	_, err := Load()
	assert.Error(t, err)
}

func TestTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, Timeout(5000, time.Second))
	assert.Equal(t, time.Second, Timeout(0, time.Second))
}

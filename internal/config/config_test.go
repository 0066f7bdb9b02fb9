package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[server]
port = "9090"

[neo4j]
uri = "bolt://graph:7687"
user = "neo4j"
password = "secret"

[llm]
provider = "openai"
model = "gpt-4o-mini"

[viewer]
tick_ms = 150
settle_ms = 100
default_depth = 3
default_direction = "both"

[intent]
answer = "Answer the question using the context."
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "bolt://graph:7687", cfg.Neo4j.URI)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 150, cfg.Viewer.TickMS)
	assert.Equal(t, "both", cfg.Viewer.DefaultDirection)
	assert.Equal(t, "Answer the question using the context.", cfg.Intent.Answer)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, 300, cfg.Viewer.TickMS)
	assert.Equal(t, 200, cfg.Viewer.SettleMS)
	assert.Equal(t, "outgoing", cfg.Viewer.DefaultDirection)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadBadTOML(t *testing.T) {
	path := writeConfig(t, "[server\nport=")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("NEO4J_URI", "bolt://other:7687")
	t.Setenv("LLM_PROVIDER", "claude")
	t.Setenv("LLM_API_KEY", "sk-test")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "bolt://other:7687", cfg.Neo4j.URI)
	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
}

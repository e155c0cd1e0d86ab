package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-prep-bot/internal/interview"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "interview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Guest", cfg.GetUserName())

	sc, err := cfg.SessionConfig()
	require.NoError(t, err)
	assert.Equal(t, interview.SoftwareEngineer, sc.Role)
	assert.Equal(t, interview.Technical, sc.Mode)
	assert.Equal(t, "frontend", sc.Domain)
}

func TestLoad_ParsesPreferences(t *testing.T) {
	path := writeFile(t, `
user_name: Alice
interview:
  role: Data Analyst
  domain: SQL
  mode: faang
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Alice", cfg.GetUserName())

	sc, err := cfg.SessionConfig()
	require.NoError(t, err)
	assert.Equal(t, interview.DataAnalyst, sc.Role)
	assert.Equal(t, interview.FAANGTechnical, sc.Mode)
	assert.Equal(t, "SQL", sc.Domain)
}

func TestLoad_RejectsUnknownRole(t *testing.T) {
	path := writeFile(t, `
interview:
  role: Astronaut
  mode: Technical
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ошибка валидации")
}

func TestLoad_RejectsBrokenYAML(t *testing.T) {
	path := writeFile(t, "interview: [")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YAML")
}

func TestAppConfig_Validate(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	cfg := LoadAppConfig()
	assert.Error(t, cfg.Validate())

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg = LoadAppConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 500, cfg.OpenAI.MaxTokens)

	t.Setenv("LLM_PROVIDER", "mystery")
	cfg = LoadAppConfig()
	assert.Error(t, cfg.Validate())
}

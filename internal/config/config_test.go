package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Run from an empty dir so no config.yaml is picked up.
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Batch.MaxConcurrentLeads)
	assert.Equal(t, "https://api.hunter.io/v2", cfg.Hunter.BaseURL)
	assert.Equal(t, "https://company.clearbit.com/v2", cfg.Clearbit.BaseURL)
	assert.Equal(t, "https://api.builtwith.com/v20", cfg.BuiltWith.BaseURL)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, int64(1024), cfg.Anthropic.MaxTokens)
	assert.Equal(t, 5, cfg.Pipeline.SourceTimeoutSecs)
	assert.Equal(t, 10, cfg.Pipeline.DraftTimeoutSecs)
	assert.Equal(t, 20, cfg.Pipeline.SourcePenalty)
	assert.Equal(t, 5, cfg.Pipeline.FieldPenalty)
	assert.Equal(t, DefaultFactorWeights(), cfg.Pipeline.Weights)
	assert.Equal(t, 100, cfg.Pipeline.Weights.Sum())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  port: 9090
pipeline:
  source_penalty: 10
  weights:
    company_size: 30
    revenue: 20
    data_quality: 20
    industry_fit: 10
    tech_stack: 10
    recent_activity: 10
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Pipeline.SourcePenalty)
	assert.Equal(t, 30, cfg.Pipeline.Weights.CompanySize)
	// Untouched keys keep their defaults.
	assert.Equal(t, 5, cfg.Pipeline.FieldPenalty)
}

func TestLoadWeightsMustSumTo100(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
pipeline:
  weights:
    company_size: 50
    revenue: 50
    data_quality: 50
    industry_fit: 0
    tech_stack: 0
    recent_activity: 0
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	// Invalid weights fall back to the defaults.
	assert.Equal(t, DefaultFactorWeights(), cfg.Pipeline.Weights)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENRICH_HUNTER_KEY", "hk_test")
	t.Setenv("ENRICH_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "hk_test", cfg.Hunter.Key)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestFactorWeightsSum(t *testing.T) {
	assert.Equal(t, 100, DefaultFactorWeights().Sum())
	assert.Equal(t, 0, FactorWeights{}.Sum())
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope"}))
}

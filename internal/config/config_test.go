package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexrag/internal/domain"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
chunker:
  chunk_size: 400
  chunk_overlap: 50
retriever:
  algorithm: BM25
  threshold: 0.2
llm:
  type: openai
`), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Chunker.ChunkSize)
	assert.Equal(t, 50, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, "BM25", cfg.Retriever.Algorithm)
	assert.Equal(t, 0.2, cfg.Retriever.Threshold)
	assert.Equal(t, 4, cfg.Retriever.K)
	assert.Equal(t, 10, cfg.Retriever.FetchMultiplier)
	assert.Equal(t, ModeStandard, cfg.Retriever.Mode)
	require.NotNil(t, cfg.LLM.OpenAI)
	assert.Equal(t, "OPENAI_API_KEY", cfg.LLM.OpenAI.APIKeyEnv)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.OpenAI.BaseURL)
	assert.Equal(t, 30, cfg.LLM.OpenAI.TimeoutSecs)
	assert.Equal(t, "frequency", cfg.Summarizer.Type)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunker:\n  chunk_size: 100\n  chunk_overlap: 100\n"), 0o644))

	_, err := Load(path)

	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunker: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		target error
	}{
		{"negative overlap", func(c *AppConfig) { c.Chunker.ChunkOverlap = -1 }, domain.ErrInvalidConfig},
		{"zero size", func(c *AppConfig) { c.Chunker.ChunkSize = 0 }, domain.ErrInvalidConfig},
		{"unknown algorithm", func(c *AppConfig) { c.Retriever.Algorithm = "manhattan" }, domain.ErrUnknownAlgorithm},
		{"fetch multiplier", func(c *AppConfig) { c.Retriever.FetchMultiplier = 0 }, domain.ErrInvalidConfig},
		{"negative weight", func(c *AppConfig) { c.Retriever.KeywordWeight = -0.1 }, domain.ErrInvalidConfig},
		{"mode", func(c *AppConfig) { c.Retriever.Mode = "fancy" }, domain.ErrInvalidConfig},
		{"llm type", func(c *AppConfig) { c.LLM.Type = "local" }, domain.ErrInvalidConfig},
		{"summarizer", func(c *AppConfig) { c.Summarizer.Type = "lsa" }, domain.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.True(t, errors.Is(cfg.Validate(), tt.target))
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Retriever.Algorithm = "jaccard"
	cfg.Retriever.CorpusBM25 = true

	require.NoError(t, Save(path, cfg))
	got, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadDefault_WritesUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, path, err := LoadDefault()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "lexrag", "config.yaml"), path)
	assert.Equal(t, Default(), cfg)
	assert.FileExists(t, path)
}

func TestOpenAITimeout(t *testing.T) {
	c := &OpenAILLMConfig{TimeoutSecs: 3}
	assert.Equal(t, "3s", c.Timeout().String())
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"lexrag/internal/chunker"
	"lexrag/internal/domain"
	"lexrag/internal/retriever"
	"lexrag/internal/similarity"
)

// Retrieval modes accepted by RetrieverConfig.Mode.
const (
	ModeStandard    = "standard"
	ModeMultiQuery  = "multi_query"
	ModeCompression = "compression"
	ModeHybrid      = "hybrid"
)

// OpenAILLMConfig holds configuration for the OpenAI-compatible chat model.
type OpenAILLMConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Timeout returns TimeoutSecs as a duration.
func (c *OpenAILLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// LLMConfig selects the completion model used for multi-query, compression
// and answers. Type "none" disables those features.
type LLMConfig struct {
	Type   string           `yaml:"type"`
	OpenAI *OpenAILLMConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// RetrieverConfig configures ranking.
type RetrieverConfig struct {
	Algorithm       string  `yaml:"algorithm"`
	K               int     `yaml:"k"`
	Threshold       float64 `yaml:"threshold"`
	FetchMultiplier int     `yaml:"fetch_multiplier"`
	NumQueries      int     `yaml:"num_queries"`
	Mode            string  `yaml:"mode"`
	KeywordWeight   float64 `yaml:"keyword_weight"`
	SemanticWeight  float64 `yaml:"semantic_weight"`
	// CorpusBM25 replaces the single-document BM25 with one calibrated on
	// the ingested chunks.
	CorpusBM25 bool `yaml:"corpus_bm25"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type         string `yaml:"type"`
	MaxSentences int    `yaml:"max_sentences"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Retriever  RetrieverConfig  `yaml:"retriever"`
	LLM        LLMConfig        `yaml:"llm"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Log        LogConfig        `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/lexrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/lexrag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := DefaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultUserConfigPath returns ~/.config/lexrag/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "lexrag", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{
		Chunker: ChunkerConfig{
			ChunkSize:    chunker.DefaultChunkSize,
			ChunkOverlap: chunker.DefaultChunkOverlap,
		},
		Retriever: RetrieverConfig{
			Algorithm:       string(similarity.AlgorithmCosine),
			K:               retriever.DefaultK,
			FetchMultiplier: retriever.DefaultFetchMultiplier,
			NumQueries:      retriever.DefaultNumQueries,
			Mode:            ModeStandard,
			KeywordWeight:   0.5,
			SemanticWeight:  0.5,
		},
		LLM:        LLMConfig{Type: "none"},
		Summarizer: SummarizerConfig{Type: "frequency", MaxSentences: 5},
		Log:        LogConfig{Level: "info", Format: "text"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = def.Chunker.ChunkSize
		if cfg.Chunker.ChunkOverlap == 0 {
			cfg.Chunker.ChunkOverlap = def.Chunker.ChunkOverlap
		}
	}
	r := &cfg.Retriever
	if r.Algorithm == "" {
		r.Algorithm = def.Retriever.Algorithm
	}
	if r.K == 0 {
		r.K = def.Retriever.K
	}
	if r.FetchMultiplier == 0 {
		r.FetchMultiplier = def.Retriever.FetchMultiplier
	}
	if r.NumQueries == 0 {
		r.NumQueries = def.Retriever.NumQueries
	}
	if r.Mode == "" {
		r.Mode = def.Retriever.Mode
	}
	if cfg.LLM.Type == "" {
		cfg.LLM.Type = def.LLM.Type
	}
	if cfg.LLM.Type == "openai" {
		if cfg.LLM.OpenAI == nil {
			cfg.LLM.OpenAI = &OpenAILLMConfig{}
		}
		if cfg.LLM.OpenAI.BaseURL == "" {
			cfg.LLM.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.LLM.OpenAI.APIKeyEnv == "" {
			cfg.LLM.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.LLM.OpenAI.Model == "" {
			cfg.LLM.OpenAI.Model = "gpt-4o-mini"
		}
		if cfg.LLM.OpenAI.TimeoutSecs == 0 {
			cfg.LLM.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = def.Summarizer.Type
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = def.Summarizer.MaxSentences
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
}

// Validate reports the first out-of-range setting, wrapped in
// domain.ErrInvalidConfig or domain.ErrUnknownAlgorithm.
func (c *AppConfig) Validate() error {
	if c.Chunker.ChunkSize <= 0 || c.Chunker.ChunkOverlap < 0 || c.Chunker.ChunkOverlap >= c.Chunker.ChunkSize {
		return fmt.Errorf("%w: chunker: need 0 <= chunk_overlap < chunk_size, got overlap %d size %d",
			domain.ErrInvalidConfig, c.Chunker.ChunkOverlap, c.Chunker.ChunkSize)
	}
	if _, err := similarity.ParseAlgorithm(c.Retriever.Algorithm); err != nil {
		return fmt.Errorf("retriever: %w", err)
	}
	r := c.Retriever
	switch {
	case r.K < 0:
		return fmt.Errorf("%w: retriever: k must not be negative", domain.ErrInvalidConfig)
	case r.FetchMultiplier < 1:
		return fmt.Errorf("%w: retriever: fetch_multiplier must be at least 1", domain.ErrInvalidConfig)
	case r.NumQueries < 0:
		return fmt.Errorf("%w: retriever: num_queries must not be negative", domain.ErrInvalidConfig)
	case r.KeywordWeight < 0 || r.SemanticWeight < 0:
		return fmt.Errorf("%w: retriever: hybrid weights must not be negative", domain.ErrInvalidConfig)
	}
	switch r.Mode {
	case ModeStandard, ModeMultiQuery, ModeCompression, ModeHybrid:
	default:
		return fmt.Errorf("%w: retriever: unknown mode %q", domain.ErrInvalidConfig, r.Mode)
	}
	switch c.LLM.Type {
	case "none", "openai":
	default:
		return fmt.Errorf("%w: llm: unknown type %q", domain.ErrInvalidConfig, c.LLM.Type)
	}
	if c.Summarizer.Type != "frequency" {
		return fmt.Errorf("%w: summarizer: unknown type %q", domain.ErrInvalidConfig, c.Summarizer.Type)
	}
	return nil
}

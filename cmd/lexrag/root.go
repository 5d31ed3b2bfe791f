package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"lexrag/internal/chunker"
	"lexrag/internal/config"
	"lexrag/internal/domain"
	"lexrag/internal/llm/openai"
	"lexrag/internal/logging"
	"lexrag/internal/service"
	"lexrag/internal/summarizer"
	"lexrag/internal/vectorstore/memory"
)

var (
	cfgPath  string
	logLevel string

	cfg        *config.AppConfig
	cfgSource  string
	logger     *logrus.Logger
	newLLMFunc = newLLM
)

var rootCmd = &cobra.Command{
	Use:   "lexrag",
	Short: "Lexical retrieval over local text files",
	Long: `lexrag splits text files into sentence-aligned chunks, indexes them in
memory and ranks them with lexical similarity (cosine, Jaccard, Euclidean
or BM25). An optional OpenAI-compatible model adds multi-query expansion,
contextual compression and question answering.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (default ./config.yaml or ~/.config/lexrag/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	var err error
	if cfgPath == "" {
		cfg, cfgSource, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
		cfgSource = cfgPath
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger, err = logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger.WithField("config", cfgSource).Debug("configuration loaded")
	return nil
}

// newLLM builds the configured completion model, or nil when disabled.
func newLLM(c config.LLMConfig) (domain.LLM, error) {
	switch c.Type {
	case "none", "":
		return nil, nil
	case "openai":
		if c.OpenAI == nil {
			return nil, fmt.Errorf("%w: openai llm config missing", domain.ErrInvalidConfig)
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   c.OpenAI.BaseURL,
			APIKeyEnv: c.OpenAI.APIKeyEnv,
			Model:     c.OpenAI.Model,
			Timeout:   c.OpenAI.Timeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("openai llm init failed: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: unknown llm: %s", domain.ErrInvalidConfig, c.Type)
	}
}

// buildService assembles the service from the loaded config and ingests paths.
func buildService(paths []string) (*service.RAGServiceImpl, string, error) {
	splitter, err := chunker.NewTextSplitter(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)
	if err != nil {
		return nil, "", err
	}
	model, err := newLLMFunc(cfg.LLM)
	if err != nil {
		return nil, "", err
	}
	if model == nil {
		logger.Debug("no llm configured; multi-query and compression fall back to plain search")
	}
	store := memory.NewStore(memory.WithLogger(logger))
	svc, err := service.NewRAGService(splitter, store, model, summarizer.NewFrequencySummarizer(), service.Options{
		Retriever:           cfg.Retriever,
		SummaryMaxSentences: cfg.Summarizer.MaxSentences,
		Logger:              logger,
	})
	if err != nil {
		return nil, "", err
	}
	summary, err := svc.IngestDocuments(paths)
	if err != nil {
		return nil, "", fmt.Errorf("ingest failed: %w", err)
	}
	return svc, summary, nil
}

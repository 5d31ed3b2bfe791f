package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"lexrag/internal/config"
	"lexrag/internal/domain"
	"lexrag/internal/loader"
	"lexrag/internal/logging"
	"lexrag/internal/retriever"
	"lexrag/internal/similarity"
	"lexrag/internal/vectorstore"
)

// AnswerContextSize is the number of chunks placed in an answer prompt.
const AnswerContextSize = 4

// Options configures RAGServiceImpl.
type Options struct {
	Retriever           config.RetrieverConfig
	SummaryMaxSentences int
	Logger              logrus.FieldLogger
}

type RAGServiceImpl struct {
	splitter            domain.Splitter
	store               vectorstore.Storage
	llm                 domain.LLM
	summarizer          domain.Summarizer
	retriever           *retriever.Retriever
	settings            config.RetrieverConfig
	algorithm           similarity.Algorithm
	summaryMaxSentences int
	log                 logrus.FieldLogger
}

var _ domain.RAGService = (*RAGServiceImpl)(nil)

// NewRAGService wires the retrievers over store. llm may be nil; features
// that need it then degrade or report domain.ErrLLMUnavailable.
func NewRAGService(splitter domain.Splitter, store vectorstore.Storage, llm domain.LLM, summarizer domain.Summarizer, opts Options) (*RAGServiceImpl, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	settings := opts.Retriever
	if settings.Algorithm == "" {
		settings = config.Default().Retriever
	}
	algo, err := similarity.ParseAlgorithm(settings.Algorithm)
	if err != nil {
		return nil, err
	}
	if settings.FetchMultiplier == 0 {
		settings.FetchMultiplier = retriever.DefaultFetchMultiplier
	}
	if settings.Mode == "" {
		settings.Mode = config.ModeStandard
	}

	base, err := retriever.New(store,
		retriever.WithAlgorithm(algo),
		retriever.WithFetchMultiplier(settings.FetchMultiplier),
		retriever.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	return &RAGServiceImpl{
		splitter:            splitter,
		store:               store,
		llm:                 llm,
		summarizer:          summarizer,
		retriever:           base,
		settings:            settings,
		algorithm:           algo,
		summaryMaxSentences: opts.SummaryMaxSentences,
		log:                 log,
	}, nil
}

// Retriever exposes the underlying retriever, e.g. to switch algorithms.
func (s *RAGServiceImpl) Retriever() *retriever.Retriever { return s.retriever }

// IngestDocuments loads paths, replaces any chunks previously ingested from
// the same sources, indexes the new chunks and returns a summary of the text.
func (s *RAGServiceImpl) IngestDocuments(paths []string) (string, error) {
	documents, err := loader.LoadPaths(paths)
	if err != nil {
		return "", err
	}
	if len(documents) == 0 {
		return "", fmt.Errorf("%w in %s", domain.ErrNoDocuments, strings.Join(paths, ", "))
	}

	s.dropSources(documents)
	chunks := s.splitter.SplitDocuments(documents)
	s.store.Add(chunks)

	if s.corpusBM25() {
		if err := s.calibrateBM25(); err != nil {
			return "", err
		}
	}

	var allText strings.Builder
	for _, d := range documents {
		allText.WriteString("\n")
		allText.WriteString(d.Content)
	}
	s.log.WithFields(logrus.Fields{
		"documents": len(documents),
		"chunks":    len(chunks),
		"stored":    s.store.Len(),
	}).Info("documents ingested")

	summary, err := s.summarizer.Summarize(allText.String(), s.summaryMaxSentences)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return summary, nil
}

// dropSources deletes stored chunks that came from the sources about to be
// ingested again.
func (s *RAGServiceImpl) dropSources(documents []domain.Document) {
	sources := make(map[string]struct{}, len(documents))
	for _, d := range documents {
		sources[d.Metadata[domain.MetadataSource]] = struct{}{}
	}
	var stale []string
	for _, d := range s.store.Documents() {
		if _, ok := sources[d.Metadata[domain.MetadataSource]]; ok {
			stale = append(stale, d.ID)
		}
	}
	if len(stale) > 0 {
		s.log.WithField("chunks", len(stale)).Debug("replacing previously ingested chunks")
		s.store.Delete(stale)
	}
}

func (s *RAGServiceImpl) corpusBM25() bool {
	return s.settings.CorpusBM25 && s.algorithm == similarity.AlgorithmBM25
}

// calibrateBM25 rebuilds the corpus BM25 scorer from the stored chunks. A
// store without tokens keeps plain BM25.
func (s *RAGServiceImpl) calibrateBM25() error {
	docs := s.store.Documents()
	corpus := make([]string, len(docs))
	for i, d := range docs {
		corpus[i] = d.Content
	}
	scorer, err := similarity.NewCorpusBM25(corpus)
	if errors.Is(err, similarity.ErrEmptyCorpus) {
		s.log.Debug("no tokens to calibrate bm25 on, using fixed average length")
		return s.retriever.SetAlgorithm(similarity.AlgorithmBM25)
	}
	if err != nil {
		return fmt.Errorf("calibrate bm25: %w", err)
	}
	s.retriever.SetScorer(scorer)
	return nil
}

// Query runs a standard search with the configured threshold.
func (s *RAGServiceImpl) Query(query string, topK int) ([]domain.ScoredDocument, error) {
	return s.QueryWithFilters(query, topK, nil)
}

// QueryWithFilters is Query restricted to documents whose metadata matches
// every filter.
func (s *RAGServiceImpl) QueryWithFilters(query string, topK int, filters map[string]string) ([]domain.ScoredDocument, error) {
	if topK <= 0 {
		topK = s.settings.K
	}
	return s.retriever.SearchWithScores(query, retriever.SearchOptions{
		K:         topK,
		Filters:   filters,
		Threshold: s.settings.Threshold,
	}), nil
}

// Retrieve searches with the given mode; an empty mode uses the configured one.
func (s *RAGServiceImpl) Retrieve(ctx context.Context, query, mode string, topK int) ([]domain.Document, error) {
	return s.RetrieveWithFilters(ctx, query, mode, topK, nil)
}

// RetrieveWithFilters is Retrieve restricted to documents whose metadata
// matches every filter. The configured threshold applies in every mode.
func (s *RAGServiceImpl) RetrieveWithFilters(ctx context.Context, query, mode string, topK int, filters map[string]string) ([]domain.Document, error) {
	if mode == "" {
		mode = s.settings.Mode
	}
	if topK <= 0 {
		topK = s.settings.K
	}
	scope := retriever.SearchOptions{K: topK, Filters: filters, Threshold: s.settings.Threshold}
	switch mode {
	case config.ModeStandard:
		res, err := s.QueryWithFilters(query, topK, filters)
		if err != nil {
			return nil, err
		}
		docs := make([]domain.Document, len(res))
		for i, r := range res {
			docs[i] = r.Document
		}
		return docs, nil
	case config.ModeMultiQuery:
		multi, err := retriever.NewMultiQuery(s.retriever.Scoped(scope), s.llm, s.settings.NumQueries, retriever.WithLogger(s.log))
		if err != nil {
			return nil, err
		}
		return multi.Retrieve(ctx, query, topK), nil
	case config.ModeCompression:
		compression, err := retriever.NewCompression(s.retriever.Scoped(scope), s.llm, retriever.WithLogger(s.log))
		if err != nil {
			return nil, err
		}
		return compression.Retrieve(ctx, query, topK), nil
	case config.ModeHybrid:
		return s.retriever.HybridSearch(query, retriever.HybridOptions{
			SearchOptions:  scope,
			KeywordWeight:  s.settings.KeywordWeight,
			SemanticWeight: s.settings.SemanticWeight,
		})
	default:
		return nil, fmt.Errorf("%w: unknown retrieval mode %q", domain.ErrInvalidConfig, mode)
	}
}

// Answer retrieves context for question and asks the LLM to answer from it.
func (s *RAGServiceImpl) Answer(ctx context.Context, question string) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	docs := s.retriever.Search(question, retriever.SearchOptions{K: AnswerContextSize})

	var sb strings.Builder
	for _, d := range docs {
		sb.WriteString(d.Content)
		sb.WriteString("\n\n")
	}
	prompt := "Use the following context to answer the question at the end. " +
		"If you don't know the answer, just say that you don't know, " +
		"don't try to make up an answer.\n\n" +
		"Context:\n" + sb.String() +
		"Question: " + question + "\n" +
		"Answer:"

	answer, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// SetAlgorithm switches the ranking algorithm. A corpus calibrated BM25 is
// rebuilt from the stored chunks when selected.
func (s *RAGServiceImpl) SetAlgorithm(a similarity.Algorithm) error {
	if err := s.retriever.SetAlgorithm(a); err != nil {
		return err
	}
	s.algorithm = a
	if s.corpusBM25() {
		return s.calibrateBM25()
	}
	return nil
}

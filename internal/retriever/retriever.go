// Package retriever ranks documents from a store with a configurable scorer,
// and layers multi-query expansion and LLM compression on top.
package retriever

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"lexrag/internal/domain"
	"lexrag/internal/logging"
	"lexrag/internal/similarity"
)

const (
	// DefaultK is the number of results returned when a search asks for none.
	DefaultK = 4
	// DefaultFetchMultiplier controls how many coarse candidates are pulled
	// from the store per requested result.
	DefaultFetchMultiplier = 10
)

// Searcher is anything that returns the top k documents for a query.
type Searcher interface {
	SimilaritySearch(query string, k int) []domain.Document
}

type options struct {
	scorer          similarity.Scorer
	fetchMultiplier int
	log             logrus.FieldLogger
	err             error
}

// Option configures the retrievers in this package.
type Option func(*options)

// WithScorer sets the scoring strategy.
func WithScorer(s similarity.Scorer) Option {
	return func(o *options) { o.scorer = s }
}

// WithAlgorithm selects a built-in scorer by algorithm.
func WithAlgorithm(a similarity.Algorithm) Option {
	return func(o *options) {
		s, err := similarity.New(a)
		if err != nil {
			o.err = err
			return
		}
		o.scorer = s
	}
}

// WithFetchMultiplier sets how many store candidates are fetched per result.
// Candidate recall is heuristic: filtered-out or low-ranked documents beyond
// k*multiplier are never considered.
func WithFetchMultiplier(m int) Option {
	return func(o *options) { o.fetchMultiplier = m }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) (options, error) {
	o := options{
		scorer:          similarity.Cosine{},
		fetchMultiplier: DefaultFetchMultiplier,
		log:             logging.Discard(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.err != nil {
		return o, o.err
	}
	if o.fetchMultiplier < 1 {
		return o, fmt.Errorf("%w: fetch multiplier must be at least 1, got %d", domain.ErrInvalidConfig, o.fetchMultiplier)
	}
	return o, nil
}

// SearchOptions narrows and bounds a search.
type SearchOptions struct {
	// K is the maximum number of results; DefaultK when not positive.
	K int
	// Filters must all match metadata exactly.
	Filters map[string]string
	// Threshold drops results scoring below it.
	Threshold float64
}

func (o SearchOptions) k() int {
	if o.K <= 0 {
		return DefaultK
	}
	return o.K
}

// HybridOptions weights the coarse keyword overlap against the scorer.
type HybridOptions struct {
	SearchOptions
	KeywordWeight  float64
	SemanticWeight float64
}

// Retriever re-ranks coarse store candidates with a Scorer.
type Retriever struct {
	store           domain.VectorStore
	scorer          similarity.Scorer
	custom          similarity.Func
	fetchMultiplier int
	log             logrus.FieldLogger
}

var _ Searcher = (*Retriever)(nil)

// New returns a Retriever over store. The default scorer is cosine.
func New(store domain.VectorStore, opts ...Option) (*Retriever, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Retriever{
		store:           store,
		scorer:          o.scorer,
		fetchMultiplier: o.fetchMultiplier,
		log:             o.log,
	}, nil
}

// SetScorer replaces the scoring strategy.
func (r *Retriever) SetScorer(s similarity.Scorer) { r.scorer = s }

// SetAlgorithm switches to a built-in scorer.
func (r *Retriever) SetAlgorithm(a similarity.Algorithm) error {
	s, err := similarity.New(a)
	if err != nil {
		return err
	}
	r.scorer = s
	return nil
}

// SetCustomFunc installs a scoring function that takes precedence over the
// configured scorer. A nil fn restores the scorer.
func (r *Retriever) SetCustomFunc(fn func(query, text string) float64) {
	r.custom = fn
}

// Scorer returns the strategy currently used for ranking.
func (r *Retriever) Scorer() similarity.Scorer {
	if r.custom != nil {
		return r.custom
	}
	return r.scorer
}

// Search returns the documents of SearchWithScores.
func (r *Retriever) Search(query string, opts SearchOptions) []domain.Document {
	return documentsOf(r.SearchWithScores(query, opts))
}

// SearchWithScores fetches coarse candidates, applies metadata filters, scores
// them, drops those under the threshold and returns the best K.
func (r *Retriever) SearchWithScores(query string, opts SearchOptions) []domain.ScoredDocument {
	scorer := r.Scorer()
	return r.rank(query, opts, scorer.Score, scorer.Name())
}

// SimilaritySearch searches with default options bounded to k.
func (r *Retriever) SimilaritySearch(query string, k int) []domain.Document {
	return r.Search(query, SearchOptions{K: k})
}

// Scoped returns a Searcher that applies the filters and threshold of opts
// to every search. The k of each call replaces opts.K.
func (r *Retriever) Scoped(opts SearchOptions) Searcher {
	return scopedSearcher{r: r, opts: opts}
}

type scopedSearcher struct {
	r    *Retriever
	opts SearchOptions
}

func (s scopedSearcher) SimilaritySearch(query string, k int) []domain.Document {
	opts := s.opts
	opts.K = k
	return s.r.Search(query, opts)
}

// HybridSearch returns the documents of HybridSearchWithScores.
func (r *Retriever) HybridSearch(query string, opts HybridOptions) ([]domain.Document, error) {
	res, err := r.HybridSearchWithScores(query, opts)
	if err != nil {
		return nil, err
	}
	return documentsOf(res), nil
}

// HybridSearchWithScores scores candidates with
// KeywordWeight*Overlap + SemanticWeight*scorer. Two zero weights mean an
// even blend.
func (r *Retriever) HybridSearchWithScores(query string, opts HybridOptions) ([]domain.ScoredDocument, error) {
	kw, sw := opts.KeywordWeight, opts.SemanticWeight
	if kw < 0 || sw < 0 {
		return nil, fmt.Errorf("%w: hybrid weights must not be negative (keyword %v, semantic %v)", domain.ErrInvalidConfig, kw, sw)
	}
	if kw == 0 && sw == 0 {
		kw, sw = 0.5, 0.5
	}
	scorer := r.Scorer()
	score := func(q, text string) float64 {
		return kw*similarity.Overlap(q, text) + sw*scorer.Score(q, text)
	}
	return r.rank(query, opts.SearchOptions, score, "hybrid+"+scorer.Name()), nil
}

func (r *Retriever) rank(query string, opts SearchOptions, score func(q, text string) float64, name string) []domain.ScoredDocument {
	k := opts.k()
	candidates := r.store.SimilaritySearch(query, k*r.fetchMultiplier)

	results := make([]domain.ScoredDocument, 0, len(candidates))
	for _, doc := range candidates {
		if !matches(doc.Metadata, opts.Filters) {
			continue
		}
		s := score(query, doc.Content)
		if s < opts.Threshold {
			continue
		}
		results = append(results, domain.ScoredDocument{Document: doc, Score: s})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}

	r.log.WithFields(logrus.Fields{
		"scorer":     name,
		"candidates": len(candidates),
		"results":    len(results),
	}).Debug("search complete")
	return results
}

// matches reports whether every filter key is present in metadata with the
// same value.
func matches(metadata, filters map[string]string) bool {
	for k, want := range filters {
		got, ok := metadata[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

func documentsOf(scored []domain.ScoredDocument) []domain.Document {
	out := make([]domain.Document, len(scored))
	for i, s := range scored {
		out[i] = s.Document
	}
	return out
}

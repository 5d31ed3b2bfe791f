package retriever

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"lexrag/internal/domain"
)

// DefaultNumQueries is the number of paraphrases requested when none is set.
const DefaultNumQueries = 3

// MultiQueryRetriever searches with the original query plus LLM paraphrases
// and ranks documents by how many of those searches returned them.
type MultiQueryRetriever struct {
	searcher   Searcher
	llm        domain.LLM
	numQueries int
	log        logrus.FieldLogger
}

// NewMultiQuery returns a MultiQueryRetriever. llm may be nil, in which case
// only the original query is searched.
func NewMultiQuery(searcher Searcher, llm domain.LLM, numQueries int, opts ...Option) (*MultiQueryRetriever, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	if numQueries <= 0 {
		numQueries = DefaultNumQueries
	}
	return &MultiQueryRetriever{searcher: searcher, llm: llm, numQueries: numQueries, log: o.log}, nil
}

// GenerateQueries asks the LLM for paraphrases of query, one per line. It
// returns at most numQueries non-empty lines and nothing when the LLM is
// missing or fails.
func (m *MultiQueryRetriever) GenerateQueries(ctx context.Context, query string) []string {
	if m.llm == nil {
		return nil
	}
	prompt := fmt.Sprintf("Generate %d different ways to ask the following question:\n%s\n\n"+
		"Provide each question on a separate line without any numbering or bullet points.", m.numQueries, query)
	reply, err := m.llm.Generate(ctx, prompt)
	if err != nil {
		m.log.WithError(err).Warn("query generation failed, searching the original query only")
		return nil
	}

	var out []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == m.numQueries {
			break
		}
	}
	return out
}

// Retrieve returns the k documents found by the most query variants. Ties
// keep the order in which documents were first seen.
func (m *MultiQueryRetriever) Retrieve(ctx context.Context, query string, k int) []domain.Document {
	if k <= 0 {
		k = DefaultK
	}
	queries := append([]string{query}, m.GenerateQueries(ctx, query)...)

	type hit struct {
		doc   domain.Document
		count int
	}
	var hits []*hit
	byID := make(map[string]*hit)
	for _, q := range queries {
		for _, doc := range m.searcher.SimilaritySearch(q, k) {
			if h, ok := byID[doc.ID]; ok {
				h.count++
				continue
			}
			h := &hit{doc: doc, count: 1}
			byID[doc.ID] = h
			hits = append(hits, h)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].count > hits[j].count })

	m.log.WithFields(logrus.Fields{"queries": len(queries), "unique": len(hits)}).Debug("multi-query search complete")

	if len(hits) > k {
		hits = hits[:k]
	}
	out := make([]domain.Document, len(hits))
	for i, h := range hits {
		out[i] = h.doc
	}
	return out
}

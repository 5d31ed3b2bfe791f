package retriever

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"lexrag/internal/domain"
)

// NoRelevantInfo is the reply marker an LLM uses to reject a document.
const NoRelevantInfo = "NO_RELEVANT_INFO"

// CompressionRetriever asks an LLM to reduce each candidate to the passages
// relevant to the query, dropping candidates it rejects.
type CompressionRetriever struct {
	searcher Searcher
	llm      domain.LLM
	log      logrus.FieldLogger
}

// NewCompression returns a CompressionRetriever. With a nil llm documents are
// passed through unchanged.
func NewCompression(searcher Searcher, llm domain.LLM, opts ...Option) (*CompressionRetriever, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return &CompressionRetriever{searcher: searcher, llm: llm, log: o.log}, nil
}

// Retrieve fetches 2k candidates and returns up to k compressed documents.
func (c *CompressionRetriever) Retrieve(ctx context.Context, query string, k int) []domain.Document {
	if k <= 0 {
		k = DefaultK
	}
	var out []domain.Document
	for _, doc := range c.searcher.SimilaritySearch(query, k*2) {
		compressed, ok := c.CompressDocument(ctx, doc, query)
		if !ok {
			continue
		}
		out = append(out, compressed)
		if len(out) >= k {
			break
		}
	}
	return out
}

// CompressDocument returns the relevant extract of doc and whether it should
// be kept. Without a working LLM the document is kept as is.
func (c *CompressionRetriever) CompressDocument(ctx context.Context, doc domain.Document, query string) (domain.Document, bool) {
	if c.llm == nil {
		return doc, true
	}
	prompt := "Given the following document and query, extract only the information " +
		"that is relevant to answering the query. If no relevant information is found, " +
		"return '" + NoRelevantInfo + "'.\n\n" +
		"Document:\n" + doc.Content + "\n\n" +
		"Query:\n" + query + "\n\n" +
		"Relevant information:"

	reply, err := c.llm.Generate(ctx, prompt)
	if err != nil {
		c.log.WithError(err).WithField("id", doc.ID).Warn("compression failed, keeping original document")
		return doc, true
	}
	if strings.Contains(reply, NoRelevantInfo) || strings.TrimSpace(reply) == "" {
		return domain.Document{}, false
	}

	out := doc.Clone()
	out.Content = reply
	if out.Metadata == nil {
		out.Metadata = make(map[string]string, 1)
	}
	out.Metadata[domain.MetadataCompressed] = "true"
	return out, true
}

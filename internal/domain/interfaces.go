package domain

import "context"

// Metadata keys written by the splitter, loader and compression retriever.
const (
	MetadataChunkIndex  = "chunk_index"
	MetadataTotalChunks = "total_chunks"
	MetadataCompressed  = "compressed"
	MetadataSource      = "source"
	MetadataType        = "type"
)

// Document is a unit of text with string metadata. Chunks produced by the
// splitter are Documents too; they point back at their parent only through
// metadata.
type Document struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Clone returns a copy whose metadata map is not shared with d.
func (d Document) Clone() Document {
	out := Document{ID: d.ID, Content: d.Content}
	if d.Metadata != nil {
		out.Metadata = make(map[string]string, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// ScoredDocument pairs a document with a relevance score.
type ScoredDocument struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// LLM is the single external collaborator of the retrieval core: a blocking
// text completion call.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Splitter splits text and documents into overlapping chunks.
type Splitter interface {
	SplitText(text string) []string
	SplitDocument(doc Document) []Document
	SplitDocuments(docs []Document) []Document
}

// VectorStore holds documents and offers coarse similarity search over them.
type VectorStore interface {
	Add(docs []Document) []string
	SimilaritySearch(query string, k int) []Document
	SimilaritySearchWithScore(query string, k int) []ScoredDocument
	Delete(ids []string)
	GetByIDs(ids []string) []Document
}

// IDGenerator produces identifiers for documents added without one.
type IDGenerator interface {
	NewID() string
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// RAGService defines the operations exposed by the application core.
type RAGService interface {
	IngestDocuments(paths []string) (summary string, err error)
	Query(query string, topK int) ([]ScoredDocument, error)
}

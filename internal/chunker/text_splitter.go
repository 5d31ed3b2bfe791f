// Package chunker splits text into overlapping chunks that prefer to end on
// sentence boundaries.
package chunker

import (
	"fmt"
	"strconv"

	"lexrag/internal/domain"
)

const (
	// DefaultChunkSize is the default maximum chunk length in bytes.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the default overlap between chunks in bytes.
	DefaultChunkOverlap = 200
)

// TextSplitter implements domain.Splitter with sentence boundary snapping.
type TextSplitter struct {
	chunkSize    int
	chunkOverlap int
}

var _ domain.Splitter = (*TextSplitter)(nil)

// NewTextSplitter validates the sizes and returns a splitter.
func NewTextSplitter(chunkSize, chunkOverlap int) (*TextSplitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfig, chunkSize)
	}
	if chunkOverlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must not be negative, got %d", domain.ErrInvalidConfig, chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d", domain.ErrInvalidConfig, chunkOverlap, chunkSize)
	}
	return &TextSplitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}, nil
}

// ChunkSize returns the configured maximum chunk length.
func (s *TextSplitter) ChunkSize() int { return s.chunkSize }

// ChunkOverlap returns the configured overlap.
func (s *TextSplitter) ChunkOverlap() int { return s.chunkOverlap }

// SplitText cuts text into chunks of at most chunkSize bytes. A window that
// contains no sentence boundary is cut at the raw size.
func (s *TextSplitter) SplitText(text string) []string {
	if text == "" {
		return nil
	}
	boundaries := SentenceBoundaries(text)
	n := len(text)

	var chunks []string
	start := 0
	for start < n {
		end := min(start+s.chunkSize, n)
		if b, ok := lastBoundaryIn(boundaries, start, end); ok {
			end = b
		} else {
			end = alignCut(text, start, end)
		}
		chunks = append(chunks, text[start:end])
		if end == n {
			break
		}

		next := end - min(s.chunkOverlap, s.chunkSize)
		if b, ok := firstBoundaryIn(boundaries, next, end); ok {
			next = b
		} else {
			next = alignBack(text, next)
		}
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// SplitDocument splits doc.Content and tags every chunk with lineage metadata.
func (s *TextSplitter) SplitDocument(doc domain.Document) []domain.Document {
	chunks := s.SplitText(doc.Content)
	out := make([]domain.Document, 0, len(chunks))
	total := strconv.Itoa(len(chunks))
	for i, text := range chunks {
		chunk := doc.Clone()
		chunk.Content = text
		if doc.ID != "" {
			chunk.ID = doc.ID + "_chunk_" + strconv.Itoa(i)
		}
		if chunk.Metadata == nil {
			chunk.Metadata = make(map[string]string, 2)
		}
		chunk.Metadata[domain.MetadataChunkIndex] = strconv.Itoa(i)
		chunk.Metadata[domain.MetadataTotalChunks] = total
		out = append(out, chunk)
	}
	return out
}

// SplitDocuments splits each document in order and concatenates the chunks.
func (s *TextSplitter) SplitDocuments(docs []domain.Document) []domain.Document {
	var out []domain.Document
	for _, d := range docs {
		out = append(out, s.SplitDocument(d)...)
	}
	return out
}

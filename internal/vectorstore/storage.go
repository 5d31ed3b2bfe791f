// Package vectorstore defines the document store contract used by the
// retriever and the service.
package vectorstore

import "lexrag/internal/domain"

// Storage holds documents and supports coarse lexical search. It extends the
// domain contract with enumeration, which ingestion needs to calibrate
// corpus-level scorers.
type Storage interface {
	domain.VectorStore
	Documents() []domain.Document
	Len() int
}

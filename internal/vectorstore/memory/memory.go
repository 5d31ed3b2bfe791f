package memory

import (
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"lexrag/internal/domain"
	"lexrag/internal/idgen"
	"lexrag/internal/logging"
	"lexrag/internal/similarity"
	"lexrag/internal/vectorstore"
)

// maxIDAttempts bounds how often Add asks the generator for a fresh ID.
const maxIDAttempts = 100

// Store is an in-memory document store searched by brute-force token overlap.
// ids and documents are parallel slices in insertion order. Store does no
// locking; callers serialize access.
type Store struct {
	ids       []string
	documents []domain.Document
	idGen     domain.IDGenerator
	log       logrus.FieldLogger
}

var _ vectorstore.Storage = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator sets the generator used for documents added without an ID.
func WithIDGenerator(g domain.IDGenerator) Option {
	return func(s *Store) { s.idGen = g }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore returns an empty store. Without options it generates random IDs
// and logs nothing.
func NewStore(opts ...Option) *Store {
	s := &Store{idGen: idgen.NewRandom(), log: logging.Discard()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Add stores copies of docs and returns their IDs in input order. An empty ID
// is generated; a supplied ID that is already stored replaces that entry.
func (s *Store) Add(docs []domain.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		id := d.ID
		if id == "" {
			id = s.newID()
		} else if i := s.indexOf(id); i >= 0 {
			s.log.WithField("id", id).Debug("replacing stored document")
			s.removeAt(i)
		}
		doc := d.Clone()
		doc.ID = id
		s.ids = append(s.ids, id)
		s.documents = append(s.documents, doc)
		out = append(out, id)
	}
	s.log.WithField("count", len(docs)).Debug("documents added")
	return out
}

// newID asks the generator for an unused ID. After maxIDAttempts collisions
// it appends a counter to the last candidate until the result is unused.
func (s *Store) newID() string {
	id := s.idGen.NewID()
	for attempt := 1; s.indexOf(id) >= 0; attempt++ {
		if attempt >= maxIDAttempts {
			s.log.WithField("id", id).Warn("id generator keeps colliding, suffixing id")
			base := id
			for n := 1; s.indexOf(id) >= 0; n++ {
				id = base + "_" + strconv.Itoa(n)
			}
			break
		}
		id = s.idGen.NewID()
	}
	return id
}

// SimilaritySearch returns the k documents with the highest token overlap.
func (s *Store) SimilaritySearch(query string, k int) []domain.Document {
	scored := s.SimilaritySearchWithScore(query, k)
	out := make([]domain.Document, len(scored))
	for i, sd := range scored {
		out[i] = sd.Document
	}
	return out
}

// SimilaritySearchWithScore scores every document with similarity.Overlap and
// returns the top k, ties kept in insertion order.
func (s *Store) SimilaritySearchWithScore(query string, k int) []domain.ScoredDocument {
	if k <= 0 || len(s.documents) == 0 {
		return []domain.ScoredDocument{}
	}
	scored := make([]domain.ScoredDocument, len(s.documents))
	for i, d := range s.documents {
		scored[i] = domain.ScoredDocument{Document: d.Clone(), Score: similarity.Overlap(query, d.Content)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k < len(scored) {
		scored = scored[:k]
	}
	return scored
}

// Delete removes the documents with the given IDs. Unknown IDs are ignored.
func (s *Store) Delete(ids []string) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	keptIDs := s.ids[:0]
	keptDocs := s.documents[:0]
	for i, id := range s.ids {
		if _, ok := drop[id]; ok {
			continue
		}
		keptIDs = append(keptIDs, id)
		keptDocs = append(keptDocs, s.documents[i])
	}
	clear(s.documents[len(keptDocs):])
	s.ids, s.documents = keptIDs, keptDocs
}

// GetByIDs returns the documents for ids in request order, skipping unknown IDs.
func (s *Store) GetByIDs(ids []string) []domain.Document {
	out := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		if i := s.indexOf(id); i >= 0 {
			out = append(out, s.documents[i].Clone())
		}
	}
	return out
}

// Documents returns copies of all documents in insertion order.
func (s *Store) Documents() []domain.Document {
	out := make([]domain.Document, len(s.documents))
	for i, d := range s.documents {
		out[i] = d.Clone()
	}
	return out
}

// Len returns the number of stored documents.
func (s *Store) Len() int { return len(s.ids) }

func (s *Store) indexOf(id string) int {
	for i, v := range s.ids {
		if v == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(i int) {
	s.ids = append(s.ids[:i], s.ids[i+1:]...)
	s.documents = append(s.documents[:i], s.documents[i+1:]...)
}

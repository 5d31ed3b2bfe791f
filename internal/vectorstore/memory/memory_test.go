package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexrag/internal/domain"
	"lexrag/internal/idgen"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(WithIDGenerator(idgen.NewSequence("doc")))
	s.Add([]domain.Document{
		{Content: "Python is great", Metadata: map[string]string{"category": "programming"}},
		{Content: "Dogs are loyal", Metadata: map[string]string{"category": "animals"}},
		{Content: "Go is great for servers", Metadata: map[string]string{"category": "programming"}},
	})
	return s
}

func contents(docs []domain.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Content
	}
	return out
}

func TestAdd_GeneratesAndPreservesIDs(t *testing.T) {
	s := NewStore(WithIDGenerator(idgen.NewSequence("doc")))

	ids := s.Add([]domain.Document{{Content: "one"}, {ID: "custom", Content: "two"}, {Content: "three"}})

	assert.Equal(t, []string{"doc0000000000001", "custom", "doc0000000000002"}, ids)
	assert.Equal(t, 3, s.Len())
}

func TestAdd_RandomIDs(t *testing.T) {
	s := NewStore()
	ids := s.Add([]domain.Document{{Content: "a"}, {Content: "b"}})
	require.Len(t, ids, 2)
	for _, id := range ids {
		assert.Regexp(t, `^[0-9A-Za-z]{16}$`, id)
	}
	assert.NotEqual(t, ids[0], ids[1])
}

type fixedIDs struct {
	ids []string
	n   int
}

func (f *fixedIDs) NewID() string {
	id := f.ids[f.n]
	f.n++
	return id
}

func TestAdd_RegeneratesOnCollision(t *testing.T) {
	s := NewStore(WithIDGenerator(&fixedIDs{ids: []string{"taken", "taken", "fresh"}}))
	s.Add([]domain.Document{{Content: "first"}})

	ids := s.Add([]domain.Document{{Content: "second"}})

	assert.Equal(t, []string{"fresh"}, ids)
	assert.Equal(t, 2, s.Len())
}

type constantID string

func (c constantID) NewID() string { return string(c) }

func TestAdd_RepeatingGeneratorTerminates(t *testing.T) {
	s := NewStore(WithIDGenerator(constantID("same")))

	ids := s.Add([]domain.Document{{Content: "a"}, {Content: "b"}, {Content: "c"}})

	assert.Equal(t, []string{"same", "same_1", "same_2"}, ids)
	assert.Equal(t, 3, s.Len())
}

func TestAdd_DuplicateIDReplaces(t *testing.T) {
	s := NewStore()
	s.Add([]domain.Document{{ID: "a", Content: "old"}, {ID: "b", Content: "other"}})

	s.Add([]domain.Document{{ID: "a", Content: "new"}})

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"other", "new"}, contents(s.Documents()))
}

func TestAdd_CopiesDocuments(t *testing.T) {
	s := NewStore()
	doc := domain.Document{ID: "a", Content: "text", Metadata: map[string]string{"k": "v"}}
	s.Add([]domain.Document{doc})

	doc.Metadata["k"] = "changed"
	got := s.GetByIDs([]string{"a"})
	require.Len(t, got, 1)
	assert.Equal(t, "v", got[0].Metadata["k"])

	got[0].Metadata["k"] = "mutated"
	assert.Equal(t, "v", s.GetByIDs([]string{"a"})[0].Metadata["k"])
}

func TestGetByIDs_RoundTrip(t *testing.T) {
	s := NewStore()
	docs := []domain.Document{
		{Content: "alpha", Metadata: map[string]string{"n": "1"}},
		{Content: "beta"},
		{ID: "gamma", Content: "gamma"},
	}
	ids := s.Add(docs)

	got := s.GetByIDs(ids)

	require.Len(t, got, len(docs))
	for i := range docs {
		assert.Equal(t, ids[i], got[i].ID)
		assert.Equal(t, docs[i].Content, got[i].Content)
		assert.Equal(t, docs[i].Metadata, got[i].Metadata)
	}
}

func TestGetByIDs_RequestOrderSkipsUnknown(t *testing.T) {
	s := seededStore(t)
	got := s.GetByIDs([]string{"doc0000000000003", "missing", "doc0000000000001"})
	assert.Equal(t, []string{"Go is great for servers", "Python is great"}, contents(got))
}

func TestSimilaritySearchWithScore(t *testing.T) {
	s := seededStore(t)

	res := s.SimilaritySearchWithScore("python is great", 3)

	require.Len(t, res, 3)
	assert.Equal(t, "Python is great", res[0].Document.Content)
	assert.Equal(t, 1.0, res[0].Score)
	assert.Equal(t, "Go is great for servers", res[1].Document.Content)
	assert.InDelta(t, 2.0/5.0, res[1].Score, 1e-9)
	assert.Zero(t, res[2].Score)
}

func TestSimilaritySearch_StableTiesAndTruncation(t *testing.T) {
	s := NewStore()
	s.Add([]domain.Document{{ID: "1", Content: "x"}, {ID: "2", Content: "y"}, {ID: "3", Content: "z"}})

	got := s.SimilaritySearch("unrelated", 2)

	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
}

func TestSimilaritySearch_NonPositiveK(t *testing.T) {
	s := seededStore(t)
	assert.Empty(t, s.SimilaritySearch("python", 0))
	assert.Empty(t, s.SimilaritySearchWithScore("python", -1))
	assert.Empty(t, NewStore().SimilaritySearch("python", 3))
}

func TestDelete(t *testing.T) {
	s := seededStore(t)

	s.Delete([]string{"doc0000000000001", "unknown"})

	assert.Equal(t, 2, s.Len())
	for _, d := range s.SimilaritySearch("python is great", 10) {
		assert.NotEqual(t, "doc0000000000001", d.ID)
	}
	assert.Empty(t, s.GetByIDs([]string{"doc0000000000001"}))
	assert.Equal(t, []string{"Dogs are loyal", "Go is great for servers"}, contents(s.Documents()))

	s.Delete(nil)
	assert.Equal(t, 2, s.Len())
}

package retriever

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexrag/internal/domain"
	"lexrag/internal/llm"
)

// fakeSearcher returns canned results per query and records requested sizes.
type fakeSearcher struct {
	results map[string][]domain.Document
	asked   []int
}

func (f *fakeSearcher) SimilaritySearch(query string, k int) []domain.Document {
	f.asked = append(f.asked, k)
	docs := f.results[query]
	if len(docs) > k {
		docs = docs[:k]
	}
	return docs
}

func doc(id, content string) domain.Document {
	return domain.Document{ID: id, Content: content, Metadata: map[string]string{"source": id + ".txt"}}
}

func failingLLM() llm.Func {
	return func(context.Context, string) (string, error) { return "", errors.New("upstream unavailable") }
}

func idsOf(docs []domain.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestGenerateQueries(t *testing.T) {
	var prompt string
	model := llm.Func(func(_ context.Context, p string) (string, error) {
		prompt = p
		return "python tips\n\n   dogs and cats  \nextra line\n", nil
	})
	m, err := NewMultiQuery(&fakeSearcher{}, model, 2)
	require.NoError(t, err)

	got := m.GenerateQueries(context.Background(), "what about python?")

	assert.Equal(t, []string{"python tips", "dogs and cats"}, got)
	assert.Contains(t, prompt, "Generate 2 different ways")
	assert.Contains(t, prompt, "what about python?")
}

func TestGenerateQueries_NoLLMOrFailure(t *testing.T) {
	m, err := NewMultiQuery(&fakeSearcher{}, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, m.GenerateQueries(context.Background(), "q"))

	m, err = NewMultiQuery(&fakeSearcher{}, failingLLM(), 3)
	require.NoError(t, err)
	assert.Empty(t, m.GenerateQueries(context.Background(), "q"))
}

func TestMultiQueryRetrieve_RanksByHitCount(t *testing.T) {
	a, b, c := doc("a", "alpha"), doc("b", "beta"), doc("c", "gamma")
	searcher := &fakeSearcher{results: map[string][]domain.Document{
		"q":  {a, b},
		"p1": {b, c},
		"p2": {b, a},
	}}
	m, err := NewMultiQuery(searcher, llm.Static("p1\np2"), 2)
	require.NoError(t, err)

	got := m.Retrieve(context.Background(), "q", 2)

	assert.Equal(t, []string{"b", "a"}, idsOf(got))
	assert.Equal(t, []int{2, 2, 2}, searcher.asked)
}

func TestMultiQueryRetrieve_TiesKeepFirstAppearance(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]domain.Document{
		"q": {doc("a", "alpha"), doc("b", "beta"), doc("c", "gamma")},
	}}
	m, err := NewMultiQuery(searcher, failingLLM(), 3)
	require.NoError(t, err)

	got := m.Retrieve(context.Background(), "q", 3)

	assert.Equal(t, []string{"a", "b", "c"}, idsOf(got))
}

func TestCompressionRetrieve_NoLLMPassesThrough(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]domain.Document{
		"q": {doc("a", "alpha"), doc("b", "beta"), doc("c", "gamma"), doc("d", "delta")},
	}}
	c, err := NewCompression(searcher, nil)
	require.NoError(t, err)

	got := c.Retrieve(context.Background(), "q", 2)

	assert.Equal(t, []int{4}, searcher.asked)
	assert.Equal(t, []string{"a", "b"}, idsOf(got))
	assert.Equal(t, "alpha", got[0].Content)
	assert.NotContains(t, got[0].Metadata, domain.MetadataCompressed)
}

func TestCompressionRetrieve_DropsRejected(t *testing.T) {
	original := doc("a", "Python is great. Weather was sunny.")
	searcher := &fakeSearcher{results: map[string][]domain.Document{
		"python": {doc("dogs", "Dogs are loyal"), original, doc("empty", "Nothing here")},
	}}
	model := llm.Func(func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "Dogs are loyal"):
			return "Sorry. NO_RELEVANT_INFO", nil
		case strings.Contains(prompt, "Nothing here"):
			return "  ", nil
		default:
			return "Python is great.", nil
		}
	})
	c, err := NewCompression(searcher, model)
	require.NoError(t, err)

	got := c.Retrieve(context.Background(), "python", 2)

	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "Python is great.", got[0].Content)
	assert.Equal(t, "true", got[0].Metadata[domain.MetadataCompressed])
	assert.Equal(t, "a.txt", got[0].Metadata["source"])
	assert.NotContains(t, original.Metadata, domain.MetadataCompressed)
}

func TestCompressionRetrieve_StopsAtK(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]domain.Document{
		"q": {doc("a", "alpha"), doc("b", "beta"), doc("c", "gamma")},
	}}
	c, err := NewCompression(searcher, llm.Static("extract"))
	require.NoError(t, err)

	got := c.Retrieve(context.Background(), "q", 1)

	assert.Equal(t, []string{"a"}, idsOf(got))
}

func TestCompressDocument_LLMErrorKeepsOriginal(t *testing.T) {
	c, err := NewCompression(&fakeSearcher{}, failingLLM())
	require.NoError(t, err)
	in := doc("a", "alpha")

	out, ok := c.CompressDocument(context.Background(), in, "q")

	assert.True(t, ok)
	assert.Equal(t, in, out)
}

package similarity

import (
	"errors"
	"math"
)

// ErrEmptyCorpus is returned by Prepare when the corpus holds no tokens.
var ErrEmptyCorpus = errors.New("no tokens found in corpus")

// CorpusBM25 is Okapi BM25 calibrated on a corpus: document frequencies and
// average document length are measured at Prepare time. Terms unseen in the
// corpus score as if they appeared in a single document.
type CorpusBM25 struct {
	K1 float64
	B  float64

	df       map[string]int
	docs     int
	avgLen   float64
	prepared bool
}

// NewCorpusBM25 prepares a scorer from corpus.
func NewCorpusBM25(corpus []string) (*CorpusBM25, error) {
	s := &CorpusBM25{K1: 1.5, B: 0.75}
	if err := s.Prepare(corpus); err != nil {
		return nil, err
	}
	return s, nil
}

// Prepare rebuilds document frequencies and the average length from corpus.
func (s *CorpusBM25) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return ErrEmptyCorpus
	}
	df := make(map[string]int)
	totalLen := 0
	for _, text := range corpus {
		tokens := Tokenize(text)
		totalLen += len(tokens)
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return ErrEmptyCorpus
	}
	s.df = df
	s.docs = len(corpus)
	s.avgLen = float64(totalLen) / float64(len(corpus))
	s.prepared = true
	return nil
}

// Prepared reports whether corpus statistics are available.
func (s *CorpusBM25) Prepared() bool { return s.prepared }

func (s *CorpusBM25) Name() string { return "bm25-corpus" }

// Score falls back to the single-document approximation until prepared.
func (s *CorpusBM25) Score(query, text string) float64 {
	if !s.prepared {
		return BM25{K1: s.K1, B: s.B, AvgDocLength: 100}.Score(query, text)
	}
	q := termFrequencies(query)
	d := termFrequencies(text)
	dl := 0
	for _, n := range d {
		dl += n
	}
	norm := s.K1 * (1 - s.B + s.B*float64(dl)/s.avgLen)

	var score float64
	for term, qf := range q {
		n, ok := d[term]
		if !ok {
			continue
		}
		tf := float64(n)
		score += s.idf(term) * float64(qf) * tf * (s.K1 + 1) / (tf + norm)
	}
	return score
}

// idf is the non-negative variant ln(1 + (N-df+0.5)/(df+0.5)).
func (s *CorpusBM25) idf(term string) float64 {
	df := s.df[term]
	if df == 0 {
		df = 1
	}
	n := float64(s.docs)
	return math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))
}

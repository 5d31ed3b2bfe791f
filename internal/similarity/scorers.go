package similarity

import "math"

// Cosine compares term frequency vectors by the cosine of their angle.
type Cosine struct{}

func (Cosine) Name() string { return string(AlgorithmCosine) }

func (Cosine) Score(query, text string) float64 {
	a, b := termFrequencies(query), termFrequencies(text)
	var dot, magA, magB float64
	for term, fa := range a {
		dot += float64(fa * b[term])
		magA += float64(fa * fa)
	}
	for _, fb := range b {
		magB += float64(fb * fb)
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Jaccard is the size of the shared vocabulary over the combined vocabulary.
type Jaccard struct{}

func (Jaccard) Name() string { return string(AlgorithmJaccard) }

func (Jaccard) Score(query, text string) float64 {
	a, b := termFrequencies(query), termFrequencies(text)
	shared := 0
	for term := range a {
		if _, ok := b[term]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// Euclidean maps the distance between term frequency vectors into (0, 1].
type Euclidean struct{}

func (Euclidean) Name() string { return string(AlgorithmEuclidean) }

func (Euclidean) Score(query, text string) float64 {
	a, b := termFrequencies(query), termFrequencies(text)
	var sum float64
	for term, fa := range a {
		d := float64(fa - b[term])
		sum += d * d
	}
	for term, fb := range b {
		if _, ok := a[term]; !ok {
			sum += float64(fb * fb)
		}
	}
	return 1 / (1 + math.Sqrt(sum))
}

// BM25 is a single-document approximation of Okapi BM25. It has no corpus
// statistics, so IDF is derived from the candidate's own term frequency and
// the average document length is a fixed assumption. Document length is the
// number of distinct terms in the candidate.
type BM25 struct {
	K1           float64
	B            float64
	AvgDocLength float64
}

// NewBM25 returns BM25 with k1=1.5, b=0.75 and an assumed average length of 100.
func NewBM25() BM25 {
	return BM25{K1: 1.5, B: 0.75, AvgDocLength: 100}
}

func (BM25) Name() string { return string(AlgorithmBM25) }

func (s BM25) Score(query, text string) float64 {
	q, d := termFrequencies(query), termFrequencies(text)
	avg := s.AvgDocLength
	if avg <= 0 {
		avg = 1
	}
	norm := s.K1 * (1 - s.B + s.B*float64(len(d))/avg)

	var score float64
	for term, qf := range q {
		n, ok := d[term]
		if !ok {
			continue
		}
		tf := float64(n)
		idf := math.Log(1 + 1/(1+tf))
		score += idf * float64(qf) * tf * (s.K1 + 1) / (tf + norm)
	}
	return score
}

// Func adapts a caller supplied scoring function.
type Func func(query, text string) float64

func (Func) Name() string { return "custom" }

func (f Func) Score(query, text string) float64 { return f(query, text) }

// Overlap is the coarse score used for candidate retrieval: the number of
// query tokens found in text divided by the longer token count. Repeated
// query tokens count once per occurrence.
func Overlap(query, text string) float64 {
	q := Tokenize(query)
	d := termFrequencies(text)
	total := 0
	for _, n := range d {
		total += n
	}
	if len(q) == 0 || total == 0 {
		return 0
	}
	hits := 0
	for _, tok := range q {
		if _, ok := d[tok]; ok {
			hits++
		}
	}
	return float64(hits) / float64(max(len(q), total))
}

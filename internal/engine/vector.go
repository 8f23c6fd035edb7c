package engine

import (
	"context"
	"math"

	"github.com/veritext/veritext/internal/index"
)

// idfEpsilon keeps the log argument strictly positive when a term's
// document frequency is large relative to the corpus size.
const idfEpsilon = 1e-9

// Vector is a sparse TF-IDF weight vector. Absent terms weight 0.
// Weights can be negative under the IDF formula used here; cosine
// similarity handles the sign correctly.
type Vector map[string]float64

// Dot returns the dot product of two sparse vectors.
func (v Vector) Dot(other Vector) float64 {
	// Iterate the smaller support.
	if len(other) < len(v) {
		v, other = other, v
	}
	dot := 0.0
	for term, w := range v {
		dot += w * other[term]
	}
	return dot
}

// Magnitude returns the L2 norm of the vector.
func (v Vector) Magnitude() float64 {
	sum := 0.0
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Equals reports near-equality of two sparse vectors within tol.
func (v Vector) Equals(other Vector, tol float64) bool {
	for term, w := range v {
		if math.Abs(w-other[term]) > tol {
			return false
		}
	}
	for term, w := range other {
		if math.Abs(w-v[term]) > tol {
			return false
		}
	}
	return true
}

// CosineSimilarity is the normalized dot product of two vectors.
// Zero-magnitude vectors similarity is 0, never an error.
func CosineSimilarity(a, b Vector) float64 {
	magA := a.Magnitude()
	magB := b.Magnitude()
	if magA == 0 || magB == 0 {
		return 0
	}
	return a.Dot(b) / (magA * magB)
}

// Vectorizer builds sparse TF-IDF vectors from the statistics of an
// injected index. It holds no state of its own.
type Vectorizer struct {
	idx index.Index
}

func NewVectorizer(idx index.Index) *Vectorizer {
	return &Vectorizer{idx: idx}
}

// IDF computes log10(N / (1 + df) + eps) for a term. The formula can
// go negative when df is large relative to N; callers accept the raw
// value.
func (v *Vectorizer) IDF(ctx context.Context, term string) (float64, error) {
	total, err := v.idx.DocumentCount(ctx)
	if err != nil {
		return 0, err
	}
	df, err := v.idx.DocumentFrequency(ctx, term)
	if err != nil {
		return 0, err
	}
	return math.Log10(float64(total)/float64(1+df) + idfEpsilon), nil
}

// VectorizeTokens builds the TF-IDF vector of a token sequence.
// An empty sequence yields an empty vector.
func (v *Vectorizer) VectorizeTokens(ctx context.Context, tokens []string) (Vector, error) {
	return v.VectorizeCounts(ctx, index.TermCounts(tokens), len(tokens))
}

// VectorizeCounts builds the TF-IDF vector from a precomputed term
// frequency table and the total token count.
func (v *Vectorizer) VectorizeCounts(ctx context.Context, counts map[string]int, length int) (Vector, error) {
	if length == 0 {
		return Vector{}, nil
	}

	vec := make(Vector, len(counts))
	for term, freq := range counts {
		idf, err := v.IDF(ctx, term)
		if err != nil {
			return nil, err
		}
		tf := float64(freq) / float64(length)
		vec[term] = tf * idf
	}
	return vec, nil
}

// VectorizeDocument builds the TF-IDF vector of an indexed document
// from its stored postings. Unknown documents yield an empty vector.
func (v *Vectorizer) VectorizeDocument(ctx context.Context, docID string) (Vector, error) {
	length, err := v.idx.TokenCount(ctx, docID)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return Vector{}, nil
	}

	counts, err := v.idx.DocumentPostings(ctx, docID)
	if err != nil {
		return nil, err
	}
	return v.VectorizeCounts(ctx, counts, length)
}

// Package embedding holds vector helpers shared by the embedders in its
// subpackages (tfidf, openai). The Embedder contract lives in domain.
package embedding

import "math"

// Normalize scales v to unit length in place. Zero vectors are left as is.
func Normalize(v []float64) []float64 {
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range v {
			v[i] /= norm
		}
	}
	return v
}

// IsZero reports whether every component of v is zero. A zero query vector
// means the embedder knew none of the query's terms.
func IsZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

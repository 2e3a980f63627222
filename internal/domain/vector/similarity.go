package vector

import "math"

// SimilarityFloor is the lowest similarity the engine reports for a vector-scored candidate.
// Weak or degenerate matches stay visible in the ranking instead of scoring 0.
const SimilarityFloor = 0.1

// Cosine returns dot(a,b) / (|a|*|b|) over the common prefix of a and b.
// A zero norm on either side yields 0.
func Cosine(a, b []float64) float64 {
	a, b = Align(a, b)

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Similarity scores a candidate against the query and applies the floor.
func Similarity(query, candidate []float64) float64 {
	return Floor(Cosine(query, candidate))
}

// Floor clamps NaN and anything below SimilarityFloor up to SimilarityFloor.
func Floor(score float64) float64 {
	if math.IsNaN(score) || score < SimilarityFloor {
		return SimilarityFloor
	}
	return score
}

// FromDistance converts an index cosine distance into a similarity in [0, 1].
func FromDistance(distance float64) float64 {
	return math.Max(0, 1-distance)
}

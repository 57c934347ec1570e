// Package vecmath provides the small set of vector operations the engine
// needs. All functions are total: incompatible or degenerate inputs produce
// neutral results (0.0) rather than errors.
package vecmath

import "math"

// Cosine computes the cosine similarity between two float64 vectors.
// Returns a value between -1.0 and 1.0. Returns 0.0 if either vector is
// empty, the vectors have different lengths, or either has zero magnitude.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	magA = math.Sqrt(magA)
	magB = math.Sqrt(magB)

	if magA == 0 || magB == 0 {
		return 0.0
	}

	return dot / (magA * magB)
}

// Norm returns the L2 norm of a vector. Returns 0.0 for an empty vector.
func Norm(a []float64) float64 {
	var sum float64
	for _, v := range a {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Normalize performs in-place L2 normalization. Zero vectors are left
// unchanged.
func Normalize(vec []float64) {
	n := Norm(vec)
	if n == 0 {
		return
	}
	for i := range vec {
		vec[i] /= n
	}
}

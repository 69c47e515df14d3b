package vectorindex

import (
	"fmt"
	"math"

	"github.com/contextforge/ragchat/internal/model"
)

// Cosine returns the cosine similarity of a and b.
//
// Comparing vectors of different lengths is a programming error and returns
// model.ErrDimensionMismatch. A zero-magnitude vector has no direction; its
// similarity to anything is defined as 0 rather than NaN.
func Cosine(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", model.ErrDimensionMismatch, len(a), len(b))
	}
	var dot, magA, magB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		magA += av * av
		magB += bv * bv
	}
	if magA == 0 || magB == 0 {
		return 0, nil
	}
	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB))), nil
}

package embeddings

import (
	"context"
	"math"
)

// Deterministic derives embeddings from a text hash instead of a model.
// The same text always maps to the same unit-norm vector, which is what the
// fallback path and the tests rely on. Its vectors carry no semantics beyond
// that reproducibility.
type Deterministic struct {
	dim int
}

// NewDeterministic returns a provider emitting vectors of the given dimension.
func NewDeterministic(dim int) *Deterministic {
	return &Deterministic{dim: dim}
}

func (d *Deterministic) Embed(_ context.Context, text string) ([]float32, error) {
	seed := hashText(text)
	vec := make([]float32, d.dim)
	var sumSq float64
	for i := range vec {
		x := math.Sin(float64(seed)) * 10000
		seed++
		v := (x-math.Floor(x))*2 - 1 // [-1, 1)
		vec[i] = float32(v)
		sumSq += v * v
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return vec, nil
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}

// hashText is the standard polynomial rolling hash (h = h*31 + ch) wrapped to
// a 32-bit signed integer.
func hashText(s string) int32 {
	var h int32
	for _, ch := range s {
		h = h*31 + ch
	}
	return h
}

package vectorindex

import (
	"errors"
	"math"
	"testing"

	"github.com/contextforge/ragchat/internal/model"
)

func TestCosine_Identity(t *testing.T) {
	v := []float32{0.3, -0.5, 0.8}
	got, err := Cosine(v, v)
	if err != nil {
		t.Fatalf("Cosine: %v", err)
	}
	if math.Abs(float64(got)-1) > 1e-6 {
		t.Fatalf("Cosine(v, v) = %v, want 1", got)
	}
}

func TestCosine_Symmetry(t *testing.T) {
	pairs := [][2][]float32{
		{{1, 0, 0}, {0, 1, 0}},
		{{0.2, 0.4, 0.6}, {0.9, 0.1, 0.5}},
		{{-1, 2, -3}, {4, -5, 6}},
	}
	for _, p := range pairs {
		ab, err := Cosine(p[0], p[1])
		if err != nil {
			t.Fatalf("Cosine: %v", err)
		}
		ba, err := Cosine(p[1], p[0])
		if err != nil {
			t.Fatalf("Cosine: %v", err)
		}
		if ab != ba {
			t.Fatalf("Cosine not symmetric: %v vs %v", ab, ba)
		}
	}
}

func TestCosine_ZeroVector(t *testing.T) {
	zero := []float32{0, 0, 0}
	got, err := Cosine(zero, []float32{1, 2, 3})
	if err != nil {
		t.Fatalf("Cosine: %v", err)
	}
	if got != 0 {
		t.Fatalf("Cosine(zero, v) = %v, want 0", got)
	}
	if math.IsNaN(float64(got)) {
		t.Fatal("Cosine returned NaN for zero vector")
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
	if !errors.Is(err, model.ErrDimensionMismatch) {
		t.Fatalf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	got, err := Cosine([]float32{1, 0}, []float32{0, 1})
	if err != nil {
		t.Fatalf("Cosine: %v", err)
	}
	if math.Abs(float64(got)) > 1e-6 {
		t.Fatalf("orthogonal similarity = %v, want 0", got)
	}
}

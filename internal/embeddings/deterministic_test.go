package embeddings

import (
	"context"
	"math"
	"testing"
)

func TestDeterministic_Reproducible(t *testing.T) {
	p := NewDeterministic(128)
	a, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(a) != 128 || len(b) != 128 {
		t.Fatalf("dimension = %d/%d, want 128", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestDeterministic_UnitNorm(t *testing.T) {
	p := NewDeterministic(384)
	vec, err := p.Embed(context.Background(), "the quick brown fox")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if norm := math.Sqrt(sumSq); math.Abs(norm-1) > 1e-5 {
		t.Fatalf("L2 norm = %v, want 1", norm)
	}
}

func TestDeterministic_DistinctTexts(t *testing.T) {
	p := NewDeterministic(64)
	a, _ := p.Embed(context.Background(), "alpha")
	b, _ := p.Embed(context.Background(), "omega")
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different texts produced identical vectors")
	}
}

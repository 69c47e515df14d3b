package embeddings

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type failingProvider struct{ calls int }

func (f *failingProvider) Embed(context.Context, string) ([]float32, error) {
	f.calls++
	return nil, errors.New("backend down")
}

type fixedProvider struct{ vec []float32 }

func (f *fixedProvider) Embed(context.Context, string) ([]float32, error) {
	return f.vec, nil
}

func TestResilient_FallsBackOnBackendFailure(t *testing.T) {
	backend := &failingProvider{}
	r := NewResilient(backend, 32, zerolog.Nop())

	vec, err := r.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed must never propagate backend failure, got %v", err)
	}
	if len(vec) != 32 {
		t.Fatalf("fallback dimension = %d, want 32", len(vec))
	}
	if backend.calls != 1 {
		t.Fatalf("backend calls = %d, want 1", backend.calls)
	}

	// Fallback output matches the deterministic provider for the same text.
	want, _ := NewDeterministic(32).Embed(context.Background(), "hello")
	for i := range vec {
		if vec[i] != want[i] {
			t.Fatalf("fallback vector differs from deterministic at %d", i)
		}
	}
}

func TestResilient_PrefersBackend(t *testing.T) {
	want := []float32{0.5, 0.5}
	r := NewResilient(&fixedProvider{vec: want}, 32, zerolog.Nop())
	vec, err := r.Embed(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.5 {
		t.Fatalf("expected backend vector, got %v", vec)
	}
}

package embeddings

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/contextforge/ragchat/internal/health"
)

// Resilient delegates to a backend provider and degrades to the
// deterministic strategy when the backend fails. Callers never see a backend
// error from Embed.
type Resilient struct {
	backend  Provider
	fallback *Deterministic
	log      zerolog.Logger
}

func NewResilient(backend Provider, dim int, log zerolog.Logger) *Resilient {
	return &Resilient{backend: backend, fallback: NewDeterministic(dim), log: log}
}

func (r *Resilient) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := r.backend.Embed(ctx, text)
	if err == nil && len(vec) > 0 {
		return vec, nil
	}
	r.log.Warn().Err(err).Msg("embedding backend failed; using deterministic fallback")
	return r.fallback.Embed(ctx, text)
}

// HealthPing reports the real backend's health so operators can see backend
// outages even while Embed keeps serving degraded vectors.
func (r *Resilient) HealthPing(ctx context.Context) error {
	if p, ok := r.backend.(health.HealthPinger); ok {
		return p.HealthPing(ctx)
	}
	_, err := r.backend.Embed(ctx, "health-check")
	return err
}

// Package factory constructs the service's pluggable backends from config.
package factory

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/contextforge/ragchat/internal/config"
	emb "github.com/contextforge/ragchat/internal/embeddings"
	"github.com/contextforge/ragchat/internal/embeddings/ollama"
)

// NewEmbeddingProvider creates the embedding provider from config. Real
// backends are wrapped so embedding failures degrade to a deterministic
// local fallback instead of surfacing errors. Launches optional async
// warmup; returns the provider immediately for fast startup.
func NewEmbeddingProvider(ctx context.Context, cfg *config.Config, log zerolog.Logger) emb.Provider {
	var backend emb.Provider

	switch cfg.EmbedProvider {
	case "mock", "deterministic":
		return emb.NewDeterministic(cfg.EmbedDimension)
	case "", "ollama":
		backend = ollama.New(cfg.OllamaURL, cfg.EmbedModel)
	default:
		log.Warn().Str("provider", cfg.EmbedProvider).Msg("unknown embedding provider; using ollama")
		backend = ollama.New(cfg.OllamaURL, cfg.EmbedModel)
	}

	// Async warmup with configurable timeout; don't block startup.
	go func() {
		warmupTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
		warmupCtx, cancel := context.WithTimeout(ctx, warmupTimeout)
		defer cancel()

		if vec, err := backend.Embed(warmupCtx, "factory-warmup-check"); err != nil || len(vec) == 0 {
			log.Warn().Err(err).Int("vec_len", len(vec)).
				Str("provider", cfg.EmbedProvider).Str("model", cfg.EmbedModel).
				Msg("embedding provider warmup failed")
		} else {
			log.Debug().Str("provider", cfg.EmbedProvider).Str("model", cfg.EmbedModel).
				Msg("embedding provider warmup completed")
		}
	}()

	return emb.NewResilient(backend, cfg.EmbedDimension, log)
}

package factory

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/contextforge/ragchat/internal/config"
	emb "github.com/contextforge/ragchat/internal/embeddings"
	"github.com/contextforge/ragchat/internal/vectorindex"
)

// NewVectorIndex creates the document index from config. The Weaviate
// backend launches async schema bootstrap with a short timeout and returns
// immediately for fast startup.
func NewVectorIndex(ctx context.Context, cfg *config.Config, provider emb.Provider, log zerolog.Logger) (vectorindex.Index, error) {
	if cfg.VectorStore != "weaviate" {
		return vectorindex.NewMemoryIndex(provider, log), nil
	}

	idx, err := vectorindex.NewWeaviateIndex(cfg.WeaviateURL, provider, log)
	if err != nil {
		return nil, err
	}

	go func() {
		bootstrapTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
		bootstrapCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
		defer cancel()

		if err := vectorindex.BootstrapWeaviate(bootstrapCtx, cfg.WeaviateURL); err != nil {
			log.Warn().Err(err).Str("url", cfg.WeaviateURL).Msg("vector index bootstrap failed")
		} else {
			log.Debug().Str("url", cfg.WeaviateURL).Msg("vector index bootstrap completed")
		}
	}()

	return idx, nil
}

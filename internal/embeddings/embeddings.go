// Package embeddings produces vector representations for text.
package embeddings

import "context"

// Provider produces a fixed-dimension embedding for a piece of text.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbedBatch embeds each text with p in order, failing on the first error.
// None of the current backends expose a native batch endpoint, so this is the
// shared path for callers that embed many chunks at once.
func EmbedBatch(ctx context.Context, p Provider, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vec, err := p.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

// Package genai abstracts the text generation backend consumed by the chat
// orchestrator.
package genai

import (
	"context"

	"github.com/contextforge/ragchat/internal/model"
)

// Service generates assistant replies from ordered conversation history plus
// optional retrieved context. Implementations must keep retrieved context in
// a distinct system block ahead of the dialogue turns; context is never
// folded into user or assistant messages.
type Service interface {
	Generate(ctx context.Context, messages []model.Message, results []model.RetrievalResult) (string, error)
	// GenerateStream starts an incremental generation. The returned Stream is
	// finite, forward-only and not restartable. Errors establishing the
	// stream are returned here; errors mid-stream surface through Recv.
	GenerateStream(ctx context.Context, messages []model.Message, results []model.RetrievalResult) (*Stream, error)
}

package genai

import (
	"context"
	"strings"

	"github.com/contextforge/ragchat/internal/model"
)

// Mock is a development and test Service that echoes the user message and
// retrieved context instead of calling a model. Wired in when
// RAGCHAT_CHAT_PROVIDER=mock so the full chat flow runs without a backend.
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

func (m *Mock) Generate(_ context.Context, messages []model.Message, results []model.RetrievalResult) (string, error) {
	var last string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == model.RoleUser {
			last = messages[i].Content
			break
		}
	}

	var b strings.Builder
	b.WriteString("I received your message: \"")
	b.WriteString(last)
	b.WriteString("\". ")
	if len(results) > 0 {
		b.WriteString("Based on the retrieved information: ")
		for i, r := range results {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(r.Content)
		}
	} else {
		b.WriteString("I don't have any specific information about that.")
	}
	return b.String(), nil
}

func (m *Mock) GenerateStream(ctx context.Context, messages []model.Message, results []model.RetrievalResult) (*Stream, error) {
	full, err := m.Generate(ctx, messages, results)
	if err != nil {
		return nil, err
	}
	stream, writer := NewPipe()
	go func() {
		for _, word := range strings.SplitAfter(full, " ") {
			if !writer.Send(word) {
				return
			}
		}
		writer.CloseSend()
	}()
	return stream, nil
}

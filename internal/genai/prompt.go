package genai

import (
	"fmt"
	"strings"

	"github.com/contextforge/ragchat/internal/model"
)

// wireMessage is the role/content pair sent to a chat completion backend.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const contextPreamble = "Use the following retrieved context to answer the user. " +
	"If the context is not relevant, say so instead of guessing."

// buildWireMessages renders retrieved context as a leading system block and
// maps dialogue turns to wire roles, in order. The context block always
// precedes history so the model sees grounding before the conversation.
func buildWireMessages(history []model.Message, results []model.RetrievalResult) []wireMessage {
	out := make([]wireMessage, 0, len(history)+1)
	if len(results) > 0 {
		var b strings.Builder
		b.WriteString(contextPreamble)
		b.WriteString("\n\nContext:\n")
		for _, r := range results {
			fmt.Fprintf(&b, "- %s (relevance %.2f)\n", r.Content, r.Score)
		}
		out = append(out, wireMessage{Role: string(model.RoleSystem), Content: b.String()})
	}
	for _, m := range history {
		out = append(out, wireMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

package genai

import (
	"strings"
	"testing"

	"github.com/contextforge/ragchat/internal/model"
)

func TestBuildWireMessages_ContextPrecedesHistory(t *testing.T) {
	history := []model.Message{
		{Role: model.RoleUser, Content: "What is AI?"},
		{Role: model.RoleAssistant, Content: "A field of computer science."},
		{Role: model.RoleUser, Content: "Tell me more."},
	}
	results := []model.RetrievalResult{
		{Content: "AI studies intelligent agents.", Score: 0.91},
		{Content: "Machine learning is a subfield.", Score: 0.84},
	}

	got := buildWireMessages(history, results)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[0].Role != "system" {
		t.Fatalf("first message role = %q, want system", got[0].Role)
	}
	if !strings.Contains(got[0].Content, "AI studies intelligent agents.") {
		t.Fatalf("context block missing first result: %q", got[0].Content)
	}
	if !strings.Contains(got[0].Content, "Machine learning is a subfield.") {
		t.Fatalf("context block missing second result: %q", got[0].Content)
	}
	for i, m := range history {
		if got[i+1].Role != string(m.Role) || got[i+1].Content != m.Content {
			t.Fatalf("history[%d] mapped to %+v", i, got[i+1])
		}
	}
}

func TestBuildWireMessages_NoContextNoSystemBlock(t *testing.T) {
	history := []model.Message{{Role: model.RoleUser, Content: "hi"}}
	got := buildWireMessages(history, nil)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Role != "user" {
		t.Fatalf("role = %q", got[0].Role)
	}
}

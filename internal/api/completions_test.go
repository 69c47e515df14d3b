package api

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/contextforge/ragchat/internal/model"
	"github.com/contextforge/ragchat/internal/stream"
)

func TestBlockingCompletionReturnsAssistantMessage(t *testing.T) {
	r := newTestRouter(t)
	conv := createConversation(t, r, "t")

	rr := doJSON(t, r, "POST", "/api/conversations/"+conv.ID+"/completions", map[string]string{"content": "what is mycelium?"})
	require.Equal(t, http.StatusOK, rr.Code)

	var msg model.Message
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &msg))
	require.Equal(t, model.RoleAssistant, msg.Role)
	require.Contains(t, msg.Content, "I received your message")
}

func TestCompletionUnknownConversation(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, "POST", "/api/conversations/nope/completions", map[string]string{"content": "hi"})
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCompletionRejectsBlankContent(t *testing.T) {
	r := newTestRouter(t)
	conv := createConversation(t, r, "t")

	rr := doJSON(t, r, "POST", "/api/conversations/"+conv.ID+"/completions", map[string]string{"content": "  "})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStreamingCompletionEmitsOrderedEvents(t *testing.T) {
	r := newTestRouter(t)
	conv := createConversation(t, r, "t")

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]string{"content": "stream it"}))
	req := httptest.NewRequest("POST", "/api/conversations/"+conv.ID+"/completions", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))

	var events []stream.Event
	scanner := bufio.NewScanner(rr.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev stream.Event
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		events = append(events, ev)
	}
	require.NoError(t, scanner.Err())
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	require.True(t, last.Done)
	require.Empty(t, last.Content)
	require.Empty(t, last.Error)

	var full strings.Builder
	for _, ev := range events[:len(events)-1] {
		require.False(t, ev.Done)
		require.Equal(t, last.MessageID, ev.MessageID)
		full.WriteString(ev.Content)
	}
	require.Contains(t, full.String(), "I received your message")

	// The persisted transcript matches what was streamed.
	rr2 := doJSON(t, r, "GET", "/api/conversations/"+conv.ID+"/messages", nil)
	require.Equal(t, http.StatusOK, rr2.Code)
	var resp struct {
		Messages []model.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rr2.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	require.Equal(t, full.String(), resp.Messages[1].Content)
}

package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/contextforge/ragchat/internal/api/respond"
	"github.com/contextforge/ragchat/internal/services"
)

// CompletionHandler serves chat completions, blocking or streamed over SSE
// depending on the Accept header.
type CompletionHandler struct {
	svc *services.ChatService
	log zerolog.Logger
}

func NewCompletionHandler(svc *services.ChatService, log zerolog.Logger) *CompletionHandler {
	return &CompletionHandler{svc: svc, log: log}
}

// CreateCompletion POST /api/conversations/{conversationId}/completions
func (h *CompletionHandler) CreateCompletion(w http.ResponseWriter, r *http.Request) {
	conversationID := mux.Vars(r)["conversationId"]
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	if wantsEventStream(r) {
		h.streamCompletion(w, r, conversationID, req.Content)
		return
	}

	msg, err := h.svc.GenerateChatResponse(r.Context(), conversationID, req.Content)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, msg)
}

func (h *CompletionHandler) streamCompletion(w http.ResponseWriter, r *http.Request, conversationID, content string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respond.WriteInternalError(w, "streaming unsupported")
		return
	}

	turn, err := h.svc.StreamChatResponse(r.Context(), conversationID, content)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range turn.Events() {
		payload, err := json.Marshal(ev)
		if err != nil {
			h.log.Error().Err(err).Msg("event marshal failed")
			return
		}
		if _, err := w.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
			// Client went away; the request context cancellation tears down
			// the turn.
			h.log.Debug().Err(err).Str("conversationId", conversationID).Msg("client disconnected mid-stream")
			return
		}
		flusher.Flush()
	}
}

func wantsEventStream(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

// Package api exposes the chat service over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/gorilla/mux"

	"github.com/contextforge/ragchat/internal/api/respond"
	"github.com/contextforge/ragchat/internal/chatstore"
	"github.com/contextforge/ragchat/internal/model"
	"github.com/contextforge/ragchat/internal/services"
)

const maxTitleLength = 256

// ConversationHandler serves the conversation CRUD and transcript routes.
type ConversationHandler struct {
	svc *services.ChatService
}

func NewConversationHandler(svc *services.ChatService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// CreateConversation POST /api/conversations
func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if utf8.RuneCountInString(req.Title) > maxTitleLength {
		respond.WriteBadRequest(w, "title too long")
		return
	}
	conv, err := h.svc.CreateConversation(r.Context(), req.Title)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, conv)
}

// ListConversations GET /api/conversations?limit=n
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respond.WriteBadRequest(w, "invalid limit")
			return
		}
		limit = n
	}
	convs, err := h.svc.ListConversations(r.Context(), limit)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"conversations": convs,
		"count":         len(convs),
	})
}

// GetConversation GET /api/conversations/{conversationId}
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["conversationId"]
	conv, err := h.svc.GetConversation(r.Context(), id)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, conv)
}

// UpdateConversation PATCH /api/conversations/{conversationId}
func (h *ConversationHandler) UpdateConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["conversationId"]
	var req struct {
		Title    *string         `json:"title,omitempty"`
		Messages []model.Message `json:"messages,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.Title != nil && utf8.RuneCountInString(*req.Title) > maxTitleLength {
		respond.WriteBadRequest(w, "title too long")
		return
	}
	conv, err := h.svc.UpdateConversation(r.Context(), id, chatstore.UpdateRequest{Title: req.Title, Messages: req.Messages})
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, conv)
}

// DeleteConversation DELETE /api/conversations/{conversationId}
func (h *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["conversationId"]
	if err := h.svc.DeleteConversation(r.Context(), id); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetMessages GET /api/conversations/{conversationId}/messages
func (h *ConversationHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["conversationId"]
	msgs, err := h.svc.GetMessages(r.Context(), id)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"messages": msgs,
		"count":    len(msgs),
	})
}

// AddMessage POST /api/conversations/{conversationId}/messages
//
// Appends a message without triggering generation; role defaults to user.
func (h *ConversationHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["conversationId"]
	var req struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	role := model.Role(req.Role)
	if req.Role == "" {
		role = model.RoleUser
	}
	msg, err := h.svc.AddMessage(r.Context(), id, role, req.Content)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, msg)
}

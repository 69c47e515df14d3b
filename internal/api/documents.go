package api

import (
	"encoding/json"
	"net/http"

	"github.com/contextforge/ragchat/internal/api/respond"
	"github.com/contextforge/ragchat/internal/services"
	"github.com/contextforge/ragchat/internal/vectorindex"
)

// DocumentHandler serves the retrieval corpus routes: document ingestion and
// raw similarity search.
type DocumentHandler struct {
	svc *services.ChatService
}

func NewDocumentHandler(svc *services.ChatService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// AddDocument POST /api/documents
func (h *DocumentHandler) AddDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content  string                 `json:"content"`
		Metadata map[string]interface{} `json:"metadata,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	id, err := h.svc.AddDocument(r.Context(), req.Content, req.Metadata)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]string{"documentId": id})
}

// Search POST /api/search
func (h *DocumentHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string  `json:"query"`
		Limit     int     `json:"limit,omitempty"`
		Threshold float32 `json:"threshold,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.Limit < 0 || req.Threshold < 0 || req.Threshold >= 1 {
		respond.WriteBadRequest(w, "limit must be >= 0 and threshold in [0,1)")
		return
	}
	results, err := h.svc.SearchDocuments(r.Context(), req.Query, vectorindex.SearchOptions{Limit: req.Limit, Threshold: req.Threshold})
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

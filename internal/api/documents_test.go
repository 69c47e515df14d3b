package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/contextforge/ragchat/internal/model"
)

func TestAddDocumentAndSearch(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, "POST", "/api/documents", map[string]interface{}{
		"content":  "Go channels coordinate goroutines",
		"metadata": map[string]interface{}{"source": "notes"},
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	var created struct {
		DocumentID string `json:"documentId"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotEmpty(t, created.DocumentID)

	rr = doJSON(t, r, "POST", "/api/search", map[string]interface{}{
		"query": "Go channels coordinate goroutines",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Results []model.RetrievalResult `json:"results"`
		Count   int                     `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	require.Equal(t, created.DocumentID, resp.Results[0].ID)
	require.Equal(t, "notes", resp.Results[0].Metadata["source"])
}

func TestAddDocumentValidation(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, "POST", "/api/documents", map[string]string{"content": ""})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSearchValidation(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, "POST", "/api/search", map[string]interface{}{"query": "x", "threshold": 1.5})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, r, "POST", "/api/search", map[string]string{"query": ""})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

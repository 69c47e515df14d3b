// Package vectorindex stores documents and retrieves the most semantically
// similar ones for a query.
package vectorindex

import (
	"context"

	"github.com/contextforge/ragchat/internal/model"
)

// Defaults applied when SearchOptions fields are unset.
const (
	DefaultLimit     = 5
	DefaultThreshold = 0.7
)

// SearchOptions tune a similarity search. Zero values take the defaults
// above; a caller that genuinely wants threshold 0 passes a small negative
// epsilon through config instead.
type SearchOptions struct {
	Limit     int
	Threshold float32
}

func (o SearchOptions) withDefaults() SearchOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	return o
}

// Index is the vector store capability consumed by the chat orchestrator.
//
// Search returns results ranked by descending score; documents scoring at or
// below the threshold are excluded. An empty store or a query nothing matches
// yields an empty slice, not an error. Add always assigns a fresh id.
type Index interface {
	Add(ctx context.Context, content string, metadata map[string]interface{}) (string, error)
	Search(ctx context.Context, query string, opts SearchOptions) ([]model.RetrievalResult, error)
}

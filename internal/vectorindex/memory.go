package vectorindex

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/contextforge/ragchat/internal/embeddings"
	"github.com/contextforge/ragchat/internal/model"
)

// MemoryIndex is an in-memory Index using brute-force cosine similarity.
// It serves as the fallback when no external vector database is configured
// and as the store of choice in tests. Chunk entries are kept in insertion
// order so that equal-score search results tie-break deterministically.
type MemoryIndex struct {
	mu   sync.RWMutex
	emb  embeddings.Provider
	docs []model.Document
	vecs map[string][]float32
	log  zerolog.Logger
}

func NewMemoryIndex(emb embeddings.Provider, log zerolog.Logger) *MemoryIndex {
	return &MemoryIndex{emb: emb, vecs: make(map[string][]float32), log: log}
}

// Add splits content into chunks and stores one entry per chunk under a
// fresh document id. A document that fits in a single chunk is stored under
// the document id itself; larger documents store a fresh id per chunk, and
// every entry carries the parent id in its metadata. Chunk embeddings are
// computed eagerly and cached; a failure here is tolerated and retried
// lazily at search time.
func (ix *MemoryIndex) Add(ctx context.Context, content string, metadata map[string]interface{}) (string, error) {
	docID := uuid.NewString()
	chunks := splitText(content, defaultChunkSize, defaultChunkOverlap)
	if len(chunks) == 0 {
		chunks = []string{content}
	}

	vecs, err := embeddings.EmbedBatch(ctx, ix.emb, chunks)
	if err != nil {
		ix.log.Warn().Err(err).Str("documentId", docID).Msg("chunk embedding failed at add; deferring to search")
		vecs = nil
	}

	md := withDocumentID(metadata, docID)
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for i, chunk := range chunks {
		chunkID := docID
		if len(chunks) > 1 {
			chunkID = uuid.NewString()
		}
		ix.docs = append(ix.docs, model.Document{ID: chunkID, Content: chunk, Metadata: md})
		if vecs != nil {
			ix.vecs[chunkID] = vecs[i]
		}
	}
	return docID, nil
}

// withDocumentID copies metadata with the parent document id added.
func withDocumentID(metadata map[string]interface{}, docID string) map[string]interface{} {
	md := make(map[string]interface{}, len(metadata)+1)
	for k, v := range metadata {
		md[k] = v
	}
	md["documentId"] = docID
	return md
}

// Search embeds the query once, scores every stored chunk, keeps scores
// strictly above the threshold, sorts descending and truncates to the limit.
// Embedding failures degrade to an empty result set; retrieval problems must
// never abort a chat turn.
func (ix *MemoryIndex) Search(ctx context.Context, query string, opts SearchOptions) ([]model.RetrievalResult, error) {
	opts = opts.withDefaults()

	docs, vecs := ix.snapshot()
	if len(docs) == 0 {
		return []model.RetrievalResult{}, nil
	}

	queryVec, err := ix.emb.Embed(ctx, query)
	if err != nil {
		ix.log.Warn().Err(err).Msg("query embedding failed; returning no retrieval results")
		return []model.RetrievalResult{}, nil
	}

	results := make([]model.RetrievalResult, 0, len(docs))
	for _, doc := range docs {
		docVec, ok := vecs[doc.ID]
		if !ok {
			docVec, err = ix.emb.Embed(ctx, doc.Content)
			if err != nil {
				ix.log.Warn().Err(err).Str("documentId", doc.ID).Msg("document embedding failed; returning no retrieval results")
				return []model.RetrievalResult{}, nil
			}
		}
		score, err := Cosine(queryVec, docVec)
		if err != nil {
			return nil, err
		}
		if score > opts.Threshold {
			results = append(results, model.RetrievalResult{
				ID:       doc.ID,
				Content:  doc.Content,
				Metadata: doc.Metadata,
				Score:    score,
			})
		}
	}

	// Stable sort over insertion order keeps equal scores deterministic.
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// snapshot copies the document list and embedding cache so scoring can run
// without holding the lock across embedding calls.
func (ix *MemoryIndex) snapshot() ([]model.Document, map[string][]float32) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	docs := make([]model.Document, len(ix.docs))
	copy(docs, ix.docs)
	vecs := make(map[string][]float32, len(ix.vecs))
	for k, v := range ix.vecs {
		vecs[k] = v
	}
	return docs, vecs
}

// Len reports the number of stored chunk entries.
func (ix *MemoryIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// HealthPing always succeeds; the in-memory index has no external dependency.
func (ix *MemoryIndex) HealthPing(ctx context.Context) error { return nil }

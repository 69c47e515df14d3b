package vectorindex

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	gql "github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/contextforge/ragchat/internal/embeddings"
	"github.com/contextforge/ragchat/internal/model"
)

// DocumentClass is the Weaviate class holding retrievable documents.
const DocumentClass = "RagDocument"

// WeaviateIndex is an Index backed by a Weaviate instance. Vectors come from
// the injected embeddings provider; the class is configured with vectorizer
// "none". Weaviate certainty maps directly onto the [0,1] relevance score.
type WeaviateIndex struct {
	client *weaviate.Client
	emb    embeddings.Provider
	log    zerolog.Logger
}

// NewWeaviateIndex connects to Weaviate at baseURL (host:port, no scheme).
func NewWeaviateIndex(baseURL string, emb embeddings.Provider, log zerolog.Logger) (*WeaviateIndex, error) {
	cl, err := weaviate.NewClient(weaviate.Config{Scheme: "http", Host: baseURL})
	if err != nil {
		return nil, err
	}
	return &WeaviateIndex{client: cl, emb: emb, log: log}, nil
}

// Add splits content into chunks, embeds each chunk and batch-inserts one
// object per chunk. The returned document id doubles as the object id when
// the document fits in a single chunk; larger documents get a fresh id per
// chunk, with the parent id carried inside metadataJson.
func (w *WeaviateIndex) Add(ctx context.Context, content string, metadata map[string]interface{}) (string, error) {
	docID := uuid.NewString()
	chunks := splitText(content, defaultChunkSize, defaultChunkOverlap)
	if len(chunks) == 0 {
		chunks = []string{content}
	}

	vecs, err := embeddings.EmbedBatch(ctx, w.emb, chunks)
	if err != nil {
		return "", fmt.Errorf("embed chunks: %w", err)
	}

	var metadataJSON string
	if data, err := json.Marshal(withDocumentID(metadata, docID)); err != nil {
		w.log.Warn().Err(err).Msg("metadata marshal failed; storing document without metadata")
	} else {
		metadataJSON = string(data)
	}

	objs := make([]*models.Object, 0, len(chunks))
	for i, chunk := range chunks {
		chunkID := docID
		if len(chunks) > 1 {
			chunkID = uuid.NewString()
		}
		props := map[string]interface{}{"content": chunk}
		if metadataJSON != "" {
			props["metadataJson"] = metadataJSON
		}
		objs = append(objs, &models.Object{
			Class:      DocumentClass,
			ID:         strfmt.UUID(chunkID),
			Properties: props,
			Vector:     vecs[i],
		})
	}
	if _, err := w.client.Batch().ObjectsBatcher().WithObjects(objs...).Do(ctx); err != nil {
		return "", fmt.Errorf("weaviate insert: %w", err)
	}
	return docID, nil
}

func (w *WeaviateIndex) Search(ctx context.Context, query string, opts SearchOptions) ([]model.RetrievalResult, error) {
	opts = opts.withDefaults()

	vec, err := w.emb.Embed(ctx, query)
	if err != nil {
		w.log.Warn().Err(err).Msg("query embedding failed; returning no retrieval results")
		return []model.RetrievalResult{}, nil
	}

	near := w.client.GraphQL().NearVectorArgBuilder().
		WithVector(vec).
		WithCertainty(opts.Threshold)

	resp, err := w.client.GraphQL().Get().
		WithClassName(DocumentClass).
		WithNearVector(near).
		WithLimit(opts.Limit).
		WithFields(
			gql.Field{Name: "content"},
			gql.Field{Name: "metadataJson"},
			gql.Field{Name: "_additional", Fields: []gql.Field{{Name: "id"}, {Name: "certainty"}}},
		).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate search: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate graphql: %s", resp.Errors[0].Message)
	}

	getData, ok := resp.Data["Get"].(map[string]interface{})
	if !ok {
		return []model.RetrievalResult{}, nil
	}
	raw, ok := getData[DocumentClass].([]interface{})
	if !ok {
		return []model.RetrievalResult{}, nil
	}

	out := make([]model.RetrievalResult, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		res := model.RetrievalResult{}
		res.Content, _ = m["content"].(string)
		if add, ok := m["_additional"].(map[string]interface{}); ok {
			res.ID, _ = add["id"].(string)
			if c, ok := add["certainty"].(float64); ok {
				res.Score = float32(c)
			}
		}
		if s, ok := m["metadataJson"].(string); ok && s != "" {
			var md map[string]interface{}
			if err := json.Unmarshal([]byte(s), &md); err == nil {
				res.Metadata = md
			}
		}
		out = append(out, res)
	}
	return out, nil
}

// HealthPing reports whether the Weaviate instance answers its ready check.
func (w *WeaviateIndex) HealthPing(ctx context.Context) error {
	ready, err := w.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return err
	}
	if !ready {
		return fmt.Errorf("weaviate not ready")
	}
	return nil
}

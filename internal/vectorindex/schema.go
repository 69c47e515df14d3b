package vectorindex

import (
	"context"
	"fmt"
	"time"

	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// BootstrapWeaviate ensures the document class exists. Vectors are supplied
// by the service, so the class disables Weaviate-side vectorization.
func BootstrapWeaviate(ctx context.Context, baseURL string) error {
	cl, err := weaviate.NewClient(weaviate.Config{Scheme: "http", Host: baseURL})
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	desired := &models.Class{
		Class:      DocumentClass,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "metadataJson", DataType: []string{"text"}},
		},
	}

	exists, err := cl.Schema().ClassExistenceChecker().WithClassName(DocumentClass).Do(cctx)
	if err != nil {
		return fmt.Errorf("check class %s: %w", DocumentClass, err)
	}
	if exists {
		return nil
	}
	if err := cl.Schema().ClassCreator().WithClass(desired).Do(cctx); err != nil {
		return fmt.Errorf("create class %s: %w", DocumentClass, err)
	}
	return nil
}

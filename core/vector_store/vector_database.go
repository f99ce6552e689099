package vector_store

import (
	"context"
	"sync"

	"github.com/Malowking/bigo/core/errors"
	"github.com/gogf/gf/v2/frame/g"
)

var (
	once         sync.Once
	vectorClient VectorStore
	initError    error
)

// GetVectorStore returns the singleton vector database client
func GetVectorStore(ctx context.Context) (VectorStore, error) {
	once.Do(func() {
		vectorClient, initError = initializeVectorStore(ctx)
	})
	return vectorClient, initError
}

// initializeVectorStore determines which client to use based on configuration
func initializeVectorStore(ctx context.Context) (VectorStore, error) {
	dbType := g.Cfg().MustGet(ctx, "vectorStore.type", string(VectorStoreTypeMilvus)).String()

	g.Log().Infof(ctx, "Initializing vector store with type: %s", dbType)

	switch VectorStoreType(dbType) {
	case VectorStoreTypeMilvus:
		store, err := InitializeMilvusStore(ctx)
		if err != nil {
			return nil, errors.Newf(errors.ErrVectorStoreInit, "failed to initialize Milvus vector store: %v", err)
		}
		g.Log().Info(ctx, "Milvus vector store initialized successfully")
		return store, nil
	default:
		return nil, errors.Newf(errors.ErrInvalidParameter, "unsupported vector database type: %s. Supported types: milvus", dbType)
	}
}

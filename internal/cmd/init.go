package cmd

import (
	"context"

	"github.com/Malowking/bigo/core/cache"
	"github.com/Malowking/bigo/core/config"
	"github.com/Malowking/bigo/core/vector_store"
	"github.com/Malowking/bigo/internal/dao"
	"github.com/Malowking/bigo/internal/service"
	"github.com/gogf/gf/v2/frame/g"
)

// InitAll initializes all components of the application
func init() {
	ctx := context.Background()

	// Validate configuration before initializing components
	g.Log().Info(ctx, "Validating application configuration...")
	err := config.ValidateConfiguration(ctx)
	if err != nil {
		g.Log().Fatalf(ctx, "Configuration validation failed:\n%v", err)
	}

	// Initialize conversation store
	err = dao.InitDB()
	if err != nil {
		g.Log().Fatalf(ctx, "Database connection initialization failed: %v", err)
	}

	// Initialize vector database
	_, err = vector_store.GetVectorStore(ctx)
	if err != nil {
		g.Log().Fatalf(ctx, "Vector store initialization failed: %v", err)
	}

	// Redis is optional, feedback runs without the idempotency guard when it is down
	if err = cache.InitRedis(ctx); err != nil {
		g.Log().Warningf(ctx, "Redis initialization failed, feedback guard disabled: %v", err)
	}

	// Assistant configuration is built once and passed by value
	conf := config.LoadAssistantConfig(ctx)
	if err = service.InitAssistant(ctx, conf); err != nil {
		g.Log().Fatalf(ctx, "Assistant initialization failed: %v", err)
	}

	g.Log().Info(ctx, "✓ All components initialized successfully")
}

package service

import (
	"context"
	"sync"

	"github.com/Malowking/bigo/core/cache"
	"github.com/Malowking/bigo/core/config"
	"github.com/Malowking/bigo/core/errors"
	"github.com/Malowking/bigo/core/file_store"
	"github.com/Malowking/bigo/core/model"
	"github.com/Malowking/bigo/core/vector_store"
	"github.com/Malowking/bigo/internal/dao"
	"github.com/Malowking/bigo/nl2sql/datasource"
	"github.com/Malowking/bigo/nl2sql/feedback"
	"github.com/Malowking/bigo/nl2sql/pipeline"
	"github.com/gogf/gf/v2/frame/g"
)

var (
	mu        sync.RWMutex
	assistant *pipeline.Pipeline
	feedbacks *feedback.Service
	executor  *datasource.Executor
)

// InitAssistant 组装问答流水线与反馈服务，需在数据库、向量库初始化之后调用
func InitAssistant(ctx context.Context, conf config.AssistantConfig) error {
	store, err := vector_store.GetVectorStore(ctx)
	if err != nil {
		return err
	}

	models := model.NewModelService(model.ModelServiceConfig{
		ChatAPIKey:         g.Cfg().MustGet(ctx, "chat.apiKey").String(),
		ChatBaseURL:        g.Cfg().MustGet(ctx, "chat.baseURL").String(),
		ChatModel:          g.Cfg().MustGet(ctx, "chat.model").String(),
		EmbeddingAPIKey:    g.Cfg().MustGet(ctx, "embedding.apiKey").String(),
		EmbeddingBaseURL:   g.Cfg().MustGet(ctx, "embedding.baseURL").String(),
		EmbeddingModel:     g.Cfg().MustGet(ctx, "embedding.model").String(),
		EmbeddingDimension: g.Cfg().MustGet(ctx, "embedding.dimension", config.DefaultEmbeddingDimension).Int(),
	}, nil)

	exec, err := datasource.Open(ctx, conf.Executor)
	if err != nil {
		return err
	}

	p, err := pipeline.New(pipeline.Deps{
		Config:    conf,
		Completer: models,
		Embedder:  models,
		Searcher:  store,
		Fetcher:   exec,
		Turns:     pipeline.NewAnalyticsStore(dao.Analytics),
		Sink:      pipeline.NewAnalyticsStore(dao.Analytics),
	})
	if err != nil {
		_ = exec.Close()
		return err
	}

	book, err := file_store.InitExampleBook(ctx)
	if err != nil {
		_ = exec.Close()
		return errors.Wrap(errors.ErrExampleBookWrite, err, "example book initialization failed")
	}

	guard := cache.NewFeedbackGuard(cache.GetRedisClient(), g.Cfg().MustGet(ctx, "redis.feedbackTTL", cache.DefaultFeedbackTTL).Duration())
	fb := feedback.NewService(models, store, book, guard, conf.Collections.Examples)

	mu.Lock()
	defer mu.Unlock()
	assistant, feedbacks, executor = p, fb, exec

	g.Log().Infof(ctx, "Assistant initialized - dialect: %s, example book: %s, feedback guard: %v",
		conf.DialectKey, book.Type(), guard.Enabled())
	return nil
}

// Assistant 问答流水线
func Assistant() *pipeline.Pipeline {
	mu.RLock()
	defer mu.RUnlock()
	return assistant
}

// Feedback 反馈服务
func Feedback() *feedback.Service {
	mu.RLock()
	defer mu.RUnlock()
	return feedbacks
}

// Shutdown 释放 OLAP 连接池
func Shutdown(ctx context.Context) {
	mu.Lock()
	defer mu.Unlock()
	if executor != nil {
		if err := executor.Close(); err != nil {
			g.Log().Warningf(ctx, "Close OLAP executor failed: %v", err)
		}
		executor = nil
	}
}

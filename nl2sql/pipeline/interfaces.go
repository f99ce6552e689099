package pipeline

import (
	"context"

	"github.com/Malowking/bigo/core/model"
	"github.com/Malowking/bigo/nl2sql/datasource"
	"github.com/Malowking/bigo/nl2sql/prompt"
	"github.com/Malowking/bigo/nl2sql/vector"
	"github.com/cloudwego/eino/schema"
)

// Completer 对话补全
type Completer interface {
	Complete(ctx context.Context, messages []*schema.Message, opts model.CompleteOptions) (*model.Completion, error)
}

// Embedder 文本向量化
type Embedder interface {
	Embed(ctx context.Context, text string) (*model.Embedding, error)
}

// VectorSearcher 向量检索
type VectorSearcher = vector.Searcher

// QueryFetcher 执行只读查询
type QueryFetcher interface {
	Fetch(ctx context.Context, query string) (*datasource.ResultSet, error)
}

// TurnStore 读取最近的对话轮次，按时间正序
type TurnStore interface {
	RecentTurns(ctx context.Context, userID, sessionID string, limit int) ([]prompt.Turn, error)
}

// RecordSink 持久化分析记录与检索日志
type RecordSink interface {
	Persist(ctx context.Context, record *AnalyticsRecord, log *RetrievalLog) error
}

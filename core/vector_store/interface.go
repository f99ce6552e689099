package vector_store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Malowking/bigo/core/common"
)

// VectorStoreType 向量数据库类型
type VectorStoreType string

const (
	VectorStoreTypeMilvus VectorStoreType = "milvus"
)

// VectorStoreConfig 向量数据库配置
type VectorStoreConfig struct {
	Type     VectorStoreType // 向量数据库类型
	Client   interface{}     // 客户端实例
	Database string          // 数据库名称
	// 距离度量类型（如 L2, COSINE, IP），检索集合按 COSINE 建索引
	MetricType string
}

// SearchRequest 一次 top-K 近邻检索
type SearchRequest struct {
	Collection   string
	VectorField  string
	Vector       []float32
	TopK         int
	Filter       string // Milvus 布尔表达式，为空表示不过滤
	OutputFields []string
}

// SearchHit 检索命中的实体
type SearchHit struct {
	Fields map[string]any
	Score  float32 // COSINE 下越大越相近
}

// String 读取字符串字段
func (h SearchHit) String(field string) string {
	v, ok := h.Fields[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// SQLExample 写入示例集合的一条记录
type SQLExample struct {
	TenantID string
	Question string
	SQLQuery string
	Vector   []float32
}

// InsertResult 插入结果
type InsertResult struct {
	InsertCount int64
	IDs         []string
}

// VectorStore 向量数据库接口
type VectorStore interface {
	// Search top-K 近邻检索，可带过滤表达式
	Search(ctx context.Context, req SearchRequest) ([]SearchHit, error)

	// InsertSQLExamples 写入SQL示例
	InsertSQLExamples(ctx context.Context, collectionName string, examples []SQLExample) (*InsertResult, error)

	// EnsureExampleCollection 示例集合不存在时创建
	EnsureExampleCollection(ctx context.Context, collectionName string, dim int) error

	// CollectionExists 检查集合是否存在
	CollectionExists(ctx context.Context, collectionName string) (bool, error)

	// Close 关闭客户端
	Close(ctx context.Context) error
}

// InFilter 构建 `field in ["a","b"]` 表达式
func InFilter(field string, values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, fmt.Sprintf(`"%s"`, common.SanitizeMilvusString(v)))
	}
	return fmt.Sprintf("%s in [%s]", field, strings.Join(quoted, ","))
}

// EqFilter 构建 `field == "value"` 表达式
func EqFilter(field, value string) string {
	return fmt.Sprintf(`%s == "%s"`, field, common.SanitizeMilvusString(value))
}

package vector_store

import (
	"context"
	"fmt"
	"strconv"
	"unicode/utf8"

	milvusModel "github.com/Malowking/bigo/internal/model/milvus"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
)

// MilvusStore Milvus向量数据库实现
type MilvusStore struct {
	client   *milvusclient.Client
	database string
}

// InitializeMilvusStore 按配置连接 Milvus
func InitializeMilvusStore(ctx context.Context) (*MilvusStore, error) {
	address := g.Cfg().MustGet(ctx, "milvus.address", "").String()
	database := g.Cfg().MustGet(ctx, "milvus.database", "default").String()

	if address == "" {
		return nil, fmt.Errorf("milvus.address is required but not found in config file. Please check your config.yaml file and ensure milvus.address is properly set")
	}

	g.Log().Infof(ctx, "Connecting to Milvus at: %s, database: %s", address, database)

	client, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address: address,
		DBName:  database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client (address: %s, database: %s): %w", address, database, err)
	}

	return NewMilvusStore(&VectorStoreConfig{
		Type:     VectorStoreTypeMilvus,
		Client:   client,
		Database: database,
	})
}

// NewMilvusStore 创建Milvus向量存储实例
func NewMilvusStore(config *VectorStoreConfig) (*MilvusStore, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	client, ok := config.Client.(*milvusclient.Client)
	if !ok {
		return nil, fmt.Errorf("client must be *milvusclient.Client")
	}

	if config.Database == "" {
		return nil, fmt.Errorf("database name cannot be empty")
	}

	return &MilvusStore{
		client:   client,
		database: config.Database,
	}, nil
}

// Search top-K 近邻检索
func (m *MilvusStore) Search(ctx context.Context, req SearchRequest) ([]SearchHit, error) {
	if req.Collection == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}
	if len(req.Vector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}
	if req.TopK <= 0 {
		return []SearchHit{}, nil
	}

	searchOpt := milvusclient.NewSearchOption(req.Collection, req.TopK, []entity.Vector{entity.FloatVector(req.Vector)}).
		WithANNSField(req.VectorField).
		WithOutputFields(req.OutputFields...).
		WithConsistencyLevel(entity.ClBounded)

	if req.Filter != "" {
		searchOpt = searchOpt.WithFilter(req.Filter)
	}

	results, err := m.client.Search(ctx, searchOpt)
	if err != nil {
		return nil, fmt.Errorf("search collection %s failed: %w", req.Collection, err)
	}
	if len(results) == 0 {
		return []SearchHit{}, nil
	}

	return convertResultSet(results[0].Fields, results[0].Scores)
}

// convertResultSet 将列式结果转换为逐行命中
func convertResultSet(columns []column.Column, scores []float32) ([]SearchHit, error) {
	n := len(scores)
	for _, col := range columns {
		if col.Len() > n {
			n = col.Len()
		}
	}

	hits := make([]SearchHit, n)
	for i := range hits {
		hits[i].Fields = make(map[string]any, len(columns))
		if i < len(scores) {
			hits[i].Score = scores[i]
		}
	}

	for _, col := range columns {
		for i := 0; i < col.Len(); i++ {
			val, err := col.Get(i)
			if err != nil {
				return nil, fmt.Errorf("failed to read field %s at row %d: %w", col.Name(), i, err)
			}
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			hits[i].Fields[col.Name()] = val
		}
	}

	return hits, nil
}

// EnsureExampleCollection 示例集合不存在时创建并加载
func (m *MilvusStore) EnsureExampleCollection(ctx context.Context, collectionName string, dim int) error {
	exists, err := m.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	schema := &entity.Schema{
		CollectionName: collectionName,
		Description:    "存储问题与正确SQL的示例及问题向量",
		AutoID:         true,
		Fields:         milvusModel.SQLExampleCollectionSchema{}.GetFields(strconv.Itoa(dim)),
	}

	err = m.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(collectionName, schema).WithIndexOptions(
		milvusclient.NewCreateIndexOption(collectionName, milvusModel.FieldExampleVector, index.NewHNSWIndex(entity.COSINE, 64, 128))))
	if err != nil {
		return fmt.Errorf("failed to create Milvus collection: %w", err)
	}

	_, err = m.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(collectionName))
	if err != nil {
		return fmt.Errorf("failed to load Milvus collection: %w", err)
	}

	g.Log().Infof(ctx, "Collection '%s' created with dimension %d, index built and loaded", collectionName, dim)
	return nil
}

// CollectionExists 检查集合是否存在
func (m *MilvusStore) CollectionExists(ctx context.Context, collectionName string) (bool, error) {
	has, err := m.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(collectionName))
	if err != nil {
		return false, fmt.Errorf("failed to check if collection exists: %w", err)
	}
	return has, nil
}

// InsertSQLExamples 写入SQL示例
func (m *MilvusStore) InsertSQLExamples(ctx context.Context, collectionName string, examples []SQLExample) (*InsertResult, error) {
	if len(examples) == 0 {
		return &InsertResult{}, nil
	}

	dim := len(examples[0].Vector)
	tenants := make([]string, len(examples))
	questions := make([]string, len(examples))
	sqls := make([]string, len(examples))
	vectors := make([][]float32, len(examples))

	for i, ex := range examples {
		if len(ex.Vector) != dim {
			return nil, fmt.Errorf("vector dimension mismatch at %d: %d vs %d", i, len(ex.Vector), dim)
		}
		tenants[i] = ex.TenantID
		questions[i] = truncateString(ex.Question, 8192)
		sqls[i] = truncateString(ex.SQLQuery, 65535)
		vectors[i] = ex.Vector
	}

	columns := []column.Column{
		column.NewColumnVarChar(milvusModel.FieldExampleTenantID, tenants),
		column.NewColumnVarChar(milvusModel.FieldExampleQuestion, questions),
		column.NewColumnVarChar(milvusModel.FieldExampleSQL, sqls),
		column.NewColumnFloatVector(milvusModel.FieldExampleVector, dim, vectors),
	}

	result, err := m.client.Insert(ctx, milvusclient.NewColumnBasedInsertOption(collectionName, columns...))
	if err != nil {
		return nil, fmt.Errorf("failed to insert examples: %w", err)
	}

	ids := make([]string, 0, int(result.InsertCount))
	if result.IDs != nil {
		for i := 0; i < result.IDs.Len(); i++ {
			id, err := result.IDs.Get(i)
			if err != nil {
				continue
			}
			ids = append(ids, fmt.Sprint(id))
		}
	}

	g.Log().Infof(ctx, "Successfully inserted %d examples into collection '%s'", result.InsertCount, collectionName)
	return &InsertResult{InsertCount: result.InsertCount, IDs: ids}, nil
}

// Close 关闭客户端
func (m *MilvusStore) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Close(ctx)
}

// truncateString 按字节截断，保证不截断多字节字符
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	s = s[:maxLen]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

package vector_store

import (
	"context"
	"testing"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMilvusStoreCreation 测试 Milvus 存储实例创建
func TestMilvusStoreCreation(t *testing.T) {
	t.Run("配置为nil", func(t *testing.T) {
		store, err := NewMilvusStore(nil)
		assert.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "config cannot be nil")
	})

	t.Run("客户端类型错误", func(t *testing.T) {
		config := &VectorStoreConfig{
			Type:     VectorStoreTypeMilvus,
			Client:   "invalid_client", // 错误的类型
			Database: "test",
		}

		store, err := NewMilvusStore(config)
		assert.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "must be *milvusclient.Client")
	})

	t.Run("数据库名为空", func(t *testing.T) {
		ctx := context.Background()
		client, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
			Address: "localhost:19530",
		})
		if err != nil {
			t.Skip("Milvus 未运行，跳过测试")
		}
		defer client.Close(ctx)

		store, err := NewMilvusStore(&VectorStoreConfig{
			Type:     VectorStoreTypeMilvus,
			Client:   client,
			Database: "",
		})
		assert.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "database name cannot be empty")
	})
}

// TestMilvusSearchValidation 测试检索参数校验
func TestMilvusSearchValidation(t *testing.T) {
	store := &MilvusStore{database: "test"}
	ctx := context.Background()

	t.Run("集合名为空", func(t *testing.T) {
		_, err := store.Search(ctx, SearchRequest{Vector: []float32{0.1}, TopK: 3})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "collection name cannot be empty")
	})

	t.Run("向量为空", func(t *testing.T) {
		_, err := store.Search(ctx, SearchRequest{Collection: "bi_tables", TopK: 3})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "query vector cannot be empty")
	})

	t.Run("TopK为0直接返回空结果", func(t *testing.T) {
		hits, err := store.Search(ctx, SearchRequest{Collection: "bi_tables", Vector: []float32{0.1}})
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

// TestFilterBuilders 测试过滤表达式构建
func TestFilterBuilders(t *testing.T) {
	t.Run("in过滤", func(t *testing.T) {
		got := InFilter("tableName", []string{"orders", "customers"})
		assert.Equal(t, `tableName in ["orders","customers"]`, got)
	})

	t.Run("in过滤转义引号", func(t *testing.T) {
		got := InFilter("tableName", []string{`a"b`})
		assert.Equal(t, `tableName in ["a\"b"]`, got)
	})

	t.Run("等值过滤", func(t *testing.T) {
		assert.Equal(t, `tenantID == "T1"`, EqFilter("tenantID", "T1"))
	})
}

// TestConvertResultSet 测试列式结果转换
func TestConvertResultSet(t *testing.T) {
	columns := []column.Column{
		column.NewColumnVarChar("tableName", []string{"orders", "customers"}),
		column.NewColumnVarChar("tableDescription", []string{"订单表", "客户表"}),
	}

	hits, err := convertResultSet(columns, []float32{0.91, 0.72})
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "orders", hits[0].String("tableName"))
	assert.Equal(t, "客户表", hits[1].String("tableDescription"))
	assert.InDelta(t, 0.72, float64(hits[1].Score), 0.0001)
	assert.Equal(t, "", hits[0].String("missing"))
}

// TestMilvusHelperFunctions 测试 Milvus 辅助函数
func TestMilvusHelperFunctions(t *testing.T) {
	t.Run("truncateString", func(t *testing.T) {
		tests := []struct {
			name     string
			input    string
			maxLen   int
			expected string
		}{
			{"短字符串", "hello", 10, "hello"},
			{"长字符串", "hello world", 5, "hello"},
			{"空字符串", "", 10, ""},
			{"恰好最大长度", "hello", 5, "hello"},
			{"不截断多字节字符", "订单", 4, "订"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				result := truncateString(tt.input, tt.maxLen)
				assert.Equal(t, tt.expected, result)
			})
		}
	})
}

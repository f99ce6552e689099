package vector

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Malowking/bigo/core/config"
	"github.com/Malowking/bigo/core/errors"
	"github.com/Malowking/bigo/core/vector_store"
	milvusModel "github.com/Malowking/bigo/internal/model/milvus"
	"github.com/Malowking/bigo/nl2sql/prompt"
)

// Searcher 向量检索接口，由 vector_store.VectorStore 实现
type Searcher interface {
	Search(ctx context.Context, req vector_store.SearchRequest) ([]vector_store.SearchHit, error)
}

// Column 检索到的字段
type Column struct {
	Table       string
	Name        string
	DataType    string
	Description string
	SampleValue string
	Score       float32
}

// Retriever 表、字段、示例三段检索
type Retriever struct {
	store Searcher
	conf  config.AssistantConfig
}

// NewRetriever 创建检索器
func NewRetriever(store Searcher, conf config.AssistantConfig) *Retriever {
	return &Retriever{store: store, conf: conf}
}

// SearchTables 检索相关表，按相似度顺序返回表名
func (r *Retriever) SearchTables(ctx context.Context, vector []float32, tenantID string) ([]string, error) {
	req := vector_store.SearchRequest{
		Collection:   r.conf.Collections.Tables,
		VectorField:  milvusModel.FieldTableVector,
		Vector:       vector,
		TopK:         r.conf.TableTopK,
		OutputFields: milvusModel.TableReturnFields,
	}
	if r.conf.TableTenantFilter {
		req.Filter = vector_store.EqFilter(milvusModel.FieldTableTenantID, tenantID)
	}

	hits, err := r.store.Search(ctx, req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrVectorSearch, err, "table search failed")
	}

	tables := make([]string, 0, len(hits))
	for _, hit := range hits {
		name := hit.String(milvusModel.FieldTableName)
		if name == "" || slices.Contains(tables, name) {
			continue
		}
		tables = append(tables, name)
	}
	return tables, nil
}

// SearchColumns 在候选表内检索字段，只保留得分严格大于阈值的命中
func (r *Retriever) SearchColumns(ctx context.Context, vector []float32, tables []string) ([]Column, error) {
	if len(tables) == 0 {
		return []Column{}, nil
	}

	hits, err := r.store.Search(ctx, vector_store.SearchRequest{
		Collection:   r.conf.Collections.Columns,
		VectorField:  milvusModel.FieldColumnVector,
		Vector:       vector,
		TopK:         r.conf.TableTopK * len(tables),
		Filter:       vector_store.InFilter(milvusModel.FieldTableName, tables),
		OutputFields: milvusModel.ColumnReturnFields,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrVectorSearch, err, "column search failed")
	}

	columns := make([]Column, 0, len(hits))
	for _, hit := range hits {
		if float64(hit.Score) <= r.conf.ColumnScoreThreshold {
			continue
		}
		columns = append(columns, Column{
			Table:       hit.String(milvusModel.FieldTableName),
			Name:        hit.String(milvusModel.FieldColumnName),
			DataType:    hit.String(milvusModel.FieldColumnDataType),
			Description: hit.String(milvusModel.FieldColumnDescription),
			SampleValue: hit.String(milvusModel.FieldColumnSampleValue),
			Score:       hit.Score,
		})
	}
	return columns, nil
}

// SearchExamples 检索相似问题的示例SQL
func (r *Retriever) SearchExamples(ctx context.Context, vector []float32, tenantID string) ([]prompt.Example, error) {
	req := vector_store.SearchRequest{
		Collection:   r.conf.Collections.Examples,
		VectorField:  milvusModel.FieldExampleVector,
		Vector:       vector,
		TopK:         r.conf.ExampleTopK,
		OutputFields: milvusModel.ExampleReturnFields,
	}
	if r.conf.ExampleTenantFilter {
		req.Filter = vector_store.EqFilter(milvusModel.FieldExampleTenantID, tenantID)
	}

	hits, err := r.store.Search(ctx, req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrVectorSearch, err, "example search failed")
	}

	examples := make([]prompt.Example, 0, len(hits))
	for _, hit := range hits {
		examples = append(examples, prompt.Example{
			Question: hit.String(milvusModel.FieldExampleQuestion),
			SQLQuery: hit.String(milvusModel.FieldExampleSQL),
		})
	}
	if r.conf.ReverseExamples {
		slices.Reverse(examples)
	}
	return examples, nil
}

// FormatSchemaBlock 按表检索顺序分组渲染字段，没有字段的表不输出
//
//	Table: <name>
//	- <column> (<type>): <description>. Sample: <value>
func FormatSchemaBlock(tables []string, columns []Column) string {
	grouped := make(map[string][]Column, len(tables))
	for _, col := range columns {
		grouped[col.Table] = append(grouped[col.Table], col)
	}

	blocks := make([]string, 0, len(tables))
	for _, table := range tables {
		cols := grouped[table]
		if len(cols) == 0 {
			continue
		}
		var sb strings.Builder
		sb.WriteString("Table: " + table)
		for _, col := range cols {
			sb.WriteString(fmt.Sprintf("\n- %s (%s): %s. Sample: %s",
				col.Name, col.DataType, strings.TrimSuffix(strings.TrimSpace(col.Description), "."), col.SampleValue))
		}
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n\n")
}

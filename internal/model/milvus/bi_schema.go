package milvus

import (
	"github.com/milvus-io/milvus/client/v2/entity"
)

// 表集合字段
const (
	FieldTableName         = "tableName"
	FieldTableDescription  = "tableDescription"
	FieldTableDDL          = "tableDDL"
	FieldTableCluster      = "tableCluster"
	FieldTableSampleValues = "tableSampleValues"
	FieldTableTenantID     = "tenantID"
	FieldTableVector       = "embeddings"
)

// 字段集合字段
const (
	FieldColumnName        = "columnName"
	FieldColumnDescription = "columnDescription"
	FieldColumnDataType    = "columnDataType"
	FieldColumnSampleValue = "columnSampleValue"
	FieldColumnIsPrimary   = "columnIsPrimaryKey"
	FieldColumnVector      = "embeddings"
)

// SQL示例集合字段
const (
	FieldExampleID       = "id"
	FieldExampleTenantID = "tenantID"
	FieldExampleQuestion = "question"
	FieldExampleSQL      = "sqlQuery"
	FieldExampleVector   = "questionEmbeddings"
)

// TableReturnFields 表检索返回字段
var TableReturnFields = []string{FieldTableName, FieldTableDescription}

// ColumnReturnFields 字段检索返回字段
var ColumnReturnFields = []string{
	FieldTableName,
	FieldColumnName,
	FieldColumnDescription,
	FieldColumnDataType,
	FieldColumnSampleValue,
}

// ExampleReturnFields 示例检索返回字段
var ExampleReturnFields = []string{FieldExampleQuestion, FieldExampleSQL}

// SQLExampleCollectionSchema SQL示例集合（用户反馈写入）
type SQLExampleCollectionSchema struct {
	// Id 自增主键
	Id int64 `milvus:"id,int64,primary_key,auto_id"`

	// TenantID 租户ID，检索时作为过滤条件
	TenantID string `milvus:"tenantID,varchar,128"`

	// Question 自然语言问题
	Question string `milvus:"question,varchar,8192"`

	// SQLQuery 对应的正确SQL
	SQLQuery string `milvus:"sqlQuery,varchar,65535"`

	// QuestionEmbeddings 问题向量
	QuestionEmbeddings []float32 `milvus:"questionEmbeddings,float_vector"`
}

// GetFields returns the Milvus field definitions for the SQL example collection
func (SQLExampleCollectionSchema) GetFields(dim string) []*entity.Field {
	return []*entity.Field{
		{
			Name:        FieldExampleID,
			DataType:    entity.FieldTypeInt64,
			PrimaryKey:  true,
			AutoID:      true,
			Description: "Auto generated primary key",
		},
		{
			Name:        FieldExampleTenantID,
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": "128"},
			Description: "Tenant ID (for filtering)",
		},
		{
			Name:        FieldExampleQuestion,
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": "8192"},
			Description: "Natural language question",
		},
		{
			Name:        FieldExampleSQL,
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": "65535"},
			Description: "Verified SQL for the question",
		},
		{
			Name:        FieldExampleVector,
			DataType:    entity.FieldTypeFloatVector,
			TypeParams:  map[string]string{"dim": dim},
			Description: "Question embedding vector",
		},
	}
}

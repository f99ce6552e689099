package gorm

import (
	"time"

	"gorm.io/datatypes"
)

// ConversationAnalytics 一次问答的完整分析记录，同时作为历史对话的读取来源
type ConversationAnalytics struct {
	ID               string `gorm:"size:64;primaryKey" json:"id"` // 随机串 + "_" + YYYYMMDD
	EmailID          string `gorm:"size:255" json:"emailID"`
	ClientName       string `gorm:"size:255" json:"clientName"`
	TenantID         string `gorm:"column:tenant_id;size:128;index" json:"tenantId"`
	UserID           string `gorm:"column:user_id;size:128;index:idx_analytics_user_session,priority:1" json:"userID"`
	SessionID        string `gorm:"column:session_id;size:128;index:idx_analytics_user_session,priority:2" json:"sessionID"`
	ConversationID   string `gorm:"column:conversation_id;size:128" json:"conversationID"`
	UserText         string `gorm:"type:text" json:"userText"`
	Date             string `gorm:"size:32" json:"date"` // 请求携带的客户端时间
	UserFeedbackFlag bool   `json:"userFeedbackFlag"`
	UserFeedback     string `gorm:"type:text" json:"userFeedback"`
	PreviousSQLQuery string `gorm:"column:previous_sql_query;type:text" json:"previousSqlQuery"`

	UserTextRephrased                          string  `gorm:"type:text" json:"userTextRephrased"`
	UserTextRephrasedChatCompletionInputToken  int     `json:"userTextRephrasedChatCompletionInputToken"`
	UserTextRephrasedChatCompletionOutputToken int     `json:"userTextRephrasedChatCompletionOutputToken"`
	UserTextRephrasedChatCompletionTime        float64 `json:"userTextRephrasedChatCompletionTime"`

	UserTextEmbeddingTokens         int     `json:"userTextEmbeddingTokens"`
	UserTextEmbeddingGenerationTime float64 `json:"userTextEmbeddingGenerationTime"`

	TableVectorSearchTime      float64 `json:"tableVectorSearchTime"`
	ColumnVectorSearchTime     float64 `json:"columnVectorSearchTime"`
	SQLExampleVectorSearchTime float64 `gorm:"column:sql_example_vector_search_time" json:"sqlExampleVectorSearchTime"`

	SQLQuery                          string         `gorm:"column:sql_query;type:text" json:"sqlQuery"`
	SQLQueryChatCompletionInputToken  int            `gorm:"column:sql_query_chat_completion_input_token" json:"sqlQueryChatCompletionInputToken"`
	SQLQueryChatCompletionOutputToken int            `gorm:"column:sql_query_chat_completion_output_token" json:"sqlQueryChatCompletionOutputToken"`
	SQLQueryChatCompletionTime        float64        `gorm:"column:sql_query_chat_completion_time" json:"sqlQueryChatCompletionTime"`
	SQLQueryExecutionTime             float64        `gorm:"column:sql_query_execution_time" json:"sqlQueryExecutionTime"`
	SQLQueryResponse                  datatypes.JSON `gorm:"column:sql_query_response" json:"sqlQueryResponse"`

	Answer                          string  `gorm:"type:text" json:"answer"`
	AnswerChatCompletionInputToken  int     `json:"answerChatCompletionInputToken"`
	AnswerChatCompletionOutputToken int     `json:"answerChatCompletionOutputToken"`
	AnswerChatCompletionTime        float64 `json:"answerChatCompletionTime"`

	GraphChatCompletionInputToken  int     `json:"graphChatCompletionInputToken"`
	GraphChatCompletionOutputToken int     `json:"graphChatCompletionOutputToken"`
	GraphChatCompletionTime        float64 `json:"graphChatCompletionTime"`
	GraphGenerationCode            string  `gorm:"type:text" json:"graphGenerationCode"`
	GraphFigureJSON                string  `gorm:"column:graph_figure_json;type:text" json:"graphFigureJson"`

	TotalAdaCalls            int `json:"totalAdaCalls"`
	TotalChatCompletionCalls int `json:"totalChatCompletionCalls"`

	Error        string  `gorm:"type:text" json:"error"`
	ResponseTime float64 `json:"responseTime"`

	// CreateTime 服务端写入时间，历史对话按此排序
	CreateTime time.Time `gorm:"column:create_time;index" json:"createTime"`
}

// TableName specifies table name
func (ConversationAnalytics) TableName() string {
	return "conversation_analytics"
}

// RetrievalLog 检索阶段命中的表、字段与示例
type RetrievalLog struct {
	ID                      uint64         `gorm:"primaryKey;autoIncrement" json:"-"`
	ConversationAnalyticsID string         `gorm:"column:conversation_analytics_id;size:64;uniqueIndex" json:"conversationAnalyticsId"`
	TenantID                string         `gorm:"column:tenant_id;size:128" json:"tenantId"`
	EmailID                 string         `gorm:"size:255" json:"emailID"`
	UserID                  string         `gorm:"column:user_id;size:128" json:"userID"`
	SessionID               string         `gorm:"column:session_id;size:128" json:"sessionID"`
	ConversationID          string         `gorm:"column:conversation_id;size:128" json:"conversationID"`
	Date                    string         `gorm:"size:32" json:"date"`
	RelevantTables          datatypes.JSON `json:"relevantTables"`
	RelevantColumns         string         `gorm:"type:text" json:"relevantColumns"`
	RelevantSQLExamples     datatypes.JSON `gorm:"column:relevant_sql_examples" json:"relevantSqlExamples"`
	CreateTime              time.Time      `gorm:"column:create_time;autoCreateTime" json:"createTime"`
}

// TableName specifies table name
func (RetrievalLog) TableName() string {
	return "retrieval_logs"
}

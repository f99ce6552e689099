package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/Malowking/bigo/core/model"
	gormModel "github.com/Malowking/bigo/internal/model/gorm"
	"github.com/Malowking/bigo/nl2sql/prompt"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// tokenUsage 一个阶段累计的 token 与耗时
type tokenUsage struct {
	input   int
	output  int
	seconds float64
}

func (u *tokenUsage) add(usage model.Usage, elapsed time.Duration) {
	u.input += max(usage.PromptTokens, 0)
	u.output += max(usage.CompletionTokens, 0)
	u.seconds += max(elapsed.Seconds(), 0)
}

// AnalyticsRecord 单次请求的分析记录
// token、耗时与调用次数只能通过 Add* 方法累加，不会减少
type AnalyticsRecord struct {
	ID               string
	EmailID          string
	ClientName       string
	TenantID         string
	UserID           string
	SessionID        string
	ConversationID   string
	UserText         string
	Date             string
	UserFeedbackFlag bool
	UserFeedback     string
	PreviousSQLQuery string

	UserTextRephrased   string
	SQLQuery            string
	SQLQueryResponse    string // 按行的 JSON 数组
	Answer              string
	GraphGenerationCode string
	GraphFigureJSON     string
	Error               string

	mu sync.Mutex

	rephrase tokenUsage
	sql      tokenUsage
	answer   tokenUsage
	graph    tokenUsage

	embeddingTokens   int
	embeddingSeconds  float64
	tableSearchTime   float64
	columnSearchTime  float64
	exampleSearchTime float64
	executionTime     float64

	totalAdaCalls            int
	totalChatCompletionCalls int

	createdAt    time.Time
	responseTime float64
	persisted    bool
}

// NewAnalyticsRecord 由请求创建记录，ID 为随机串加请求日期
func NewAnalyticsRecord(req *Request, now time.Time) *AnalyticsRecord {
	rec := &AnalyticsRecord{
		ID:             fmt.Sprintf("%s_%s", uuid.New().String(), req.ParsedDate().Format("20060102")),
		EmailID:        req.EmailID,
		ClientName:     req.ClientName,
		TenantID:       req.TenantID,
		UserID:         req.UserID,
		SessionID:      req.SessionID,
		ConversationID: req.ConversationID,
		UserText:       req.UserText,
		Date:           req.Date,
		createdAt:      now,
	}
	if req.UserFeedback != nil {
		rec.UserFeedbackFlag = true
		rec.UserFeedback = req.UserFeedback.Feedback
		rec.PreviousSQLQuery = req.UserFeedback.PreviousSQLQuery
	}
	return rec
}

// AddRephraseUsage 追问改写调用
func (r *AnalyticsRecord) AddRephraseUsage(usage model.Usage, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rephrase.add(usage, elapsed)
	r.totalChatCompletionCalls++
}

// AddEmbeddingUsage 向量化调用
func (r *AnalyticsRecord) AddEmbeddingUsage(usage model.Usage, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embeddingTokens += max(usage.TotalTokens, 0)
	r.embeddingSeconds += max(elapsed.Seconds(), 0)
	r.totalAdaCalls++
}

// AddSQLUsage SQL生成调用
func (r *AnalyticsRecord) AddSQLUsage(usage model.Usage, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sql.add(usage, elapsed)
	r.totalChatCompletionCalls++
}

// AddAnswerUsage 结果叙述调用
func (r *AnalyticsRecord) AddAnswerUsage(usage model.Usage, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answer.add(usage, elapsed)
	r.totalChatCompletionCalls++
}

// AddGraphUsage 图表生成调用
func (r *AnalyticsRecord) AddGraphUsage(usage model.Usage, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.graph.add(usage, elapsed)
	r.totalChatCompletionCalls++
}

// AddTableSearchTime 表检索耗时
func (r *AnalyticsRecord) AddTableSearchTime(elapsed time.Duration) {
	r.addSeconds(&r.tableSearchTime, elapsed)
}

// AddColumnSearchTime 字段检索耗时
func (r *AnalyticsRecord) AddColumnSearchTime(elapsed time.Duration) {
	r.addSeconds(&r.columnSearchTime, elapsed)
}

// AddExampleSearchTime 示例检索耗时
func (r *AnalyticsRecord) AddExampleSearchTime(elapsed time.Duration) {
	r.addSeconds(&r.exampleSearchTime, elapsed)
}

// AddExecutionTime SQL执行耗时
func (r *AnalyticsRecord) AddExecutionTime(elapsed time.Duration) {
	r.addSeconds(&r.executionTime, elapsed)
}

func (r *AnalyticsRecord) addSeconds(field *float64, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*field += max(elapsed.Seconds(), 0)
}

// Counters 调用次数
func (r *AnalyticsRecord) Counters() (adaCalls, chatCompletionCalls int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalAdaCalls, r.totalChatCompletionCalls
}

// Finalize 计算响应耗时并标记为已持久化，只有第一次调用返回 true
func (r *AnalyticsRecord) Finalize(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.persisted {
		return false
	}
	r.responseTime = max(now.Sub(r.createdAt).Seconds(), 0)
	r.persisted = true
	return true
}

// Persisted 是否已完成持久化
func (r *AnalyticsRecord) Persisted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.persisted
}

// ToModel 转为数据库模型
func (r *AnalyticsRecord) ToModel() *gormModel.ConversationAnalytics {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := &gormModel.ConversationAnalytics{
		ID:               r.ID,
		EmailID:          r.EmailID,
		ClientName:       r.ClientName,
		TenantID:         r.TenantID,
		UserID:           r.UserID,
		SessionID:        r.SessionID,
		ConversationID:   r.ConversationID,
		UserText:         r.UserText,
		Date:             r.Date,
		UserFeedbackFlag: r.UserFeedbackFlag,
		UserFeedback:     r.UserFeedback,
		PreviousSQLQuery: r.PreviousSQLQuery,

		UserTextRephrased:                          r.UserTextRephrased,
		UserTextRephrasedChatCompletionInputToken:  r.rephrase.input,
		UserTextRephrasedChatCompletionOutputToken: r.rephrase.output,
		UserTextRephrasedChatCompletionTime:        r.rephrase.seconds,

		UserTextEmbeddingTokens:         r.embeddingTokens,
		UserTextEmbeddingGenerationTime: r.embeddingSeconds,

		TableVectorSearchTime:      r.tableSearchTime,
		ColumnVectorSearchTime:     r.columnSearchTime,
		SQLExampleVectorSearchTime: r.exampleSearchTime,

		SQLQuery:                          r.SQLQuery,
		SQLQueryChatCompletionInputToken:  r.sql.input,
		SQLQueryChatCompletionOutputToken: r.sql.output,
		SQLQueryChatCompletionTime:        r.sql.seconds,
		SQLQueryExecutionTime:             r.executionTime,

		Answer:                          r.Answer,
		AnswerChatCompletionInputToken:  r.answer.input,
		AnswerChatCompletionOutputToken: r.answer.output,
		AnswerChatCompletionTime:        r.answer.seconds,

		GraphChatCompletionInputToken:  r.graph.input,
		GraphChatCompletionOutputToken: r.graph.output,
		GraphChatCompletionTime:        r.graph.seconds,
		GraphGenerationCode:            r.GraphGenerationCode,
		GraphFigureJSON:                r.GraphFigureJSON,

		TotalAdaCalls:            r.totalAdaCalls,
		TotalChatCompletionCalls: r.totalChatCompletionCalls,

		Error:        r.Error,
		ResponseTime: r.responseTime,
		CreateTime:   r.createdAt,
	}
	if r.SQLQueryResponse != "" {
		m.SQLQueryResponse = datatypes.JSON(r.SQLQueryResponse)
	}
	return m
}

// Flatten 转为响应中的扁平 map，列表与对象字段序列化为 JSON 字符串
func (r *AnalyticsRecord) Flatten() (map[string]any, error) {
	return FlattenModel(r.ToModel())
}

// FlattenModel 扁平化数据库模型
func FlattenModel(m *gormModel.ConversationAnalytics) (map[string]any, error) {
	data, err := sonic.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal analytics record: %w", err)
	}
	var flat map[string]any
	if err := sonic.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("unmarshal analytics record: %w", err)
	}
	for k, v := range flat {
		switch v.(type) {
		case []any, map[string]any:
			s, err := sonic.MarshalString(v)
			if err != nil {
				return nil, fmt.Errorf("marshal field %s: %w", k, err)
			}
			flat[k] = s
		}
	}
	if flat["sqlQueryResponse"] == nil {
		flat["sqlQueryResponse"] = ""
	}
	return flat, nil
}

// RetrievalLog 检索阶段的命中记录
type RetrievalLog struct {
	ConversationAnalyticsID string
	TenantID                string
	EmailID                 string
	UserID                  string
	SessionID               string
	ConversationID          string
	Date                    string
	RelevantTables          []string
	RelevantColumns         string
	RelevantSQLExamples     []prompt.Example
}

// NewRetrievalLog 与分析记录共用标识字段
func NewRetrievalLog(rec *AnalyticsRecord) *RetrievalLog {
	return &RetrievalLog{
		ConversationAnalyticsID: rec.ID,
		TenantID:                rec.TenantID,
		EmailID:                 rec.EmailID,
		UserID:                  rec.UserID,
		SessionID:               rec.SessionID,
		ConversationID:          rec.ConversationID,
		Date:                    rec.Date,
		RelevantTables:          []string{},
		RelevantSQLExamples:     []prompt.Example{},
	}
}

// ToModel 转为数据库模型
func (l *RetrievalLog) ToModel() (*gormModel.RetrievalLog, error) {
	tables, err := sonic.Marshal(l.RelevantTables)
	if err != nil {
		return nil, fmt.Errorf("marshal relevant tables: %w", err)
	}
	examples, err := sonic.Marshal(l.RelevantSQLExamples)
	if err != nil {
		return nil, fmt.Errorf("marshal relevant examples: %w", err)
	}
	return &gormModel.RetrievalLog{
		ConversationAnalyticsID: l.ConversationAnalyticsID,
		TenantID:                l.TenantID,
		EmailID:                 l.EmailID,
		UserID:                  l.UserID,
		SessionID:               l.SessionID,
		ConversationID:          l.ConversationID,
		Date:                    l.Date,
		RelevantTables:          datatypes.JSON(tables),
		RelevantColumns:         l.RelevantColumns,
		RelevantSQLExamples:     datatypes.JSON(examples),
	}, nil
}

package prompt

import (
	"context"
	"fmt"
	"time"

	"github.com/Malowking/bigo/core/config"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// SQLInput SQL生成提示词的输入
type SQLInput struct {
	Question    string
	TenantID    string
	Tables      []string // 检索到的表，用于筛选表关系
	SchemaBlock string
	Examples    []Example
}

// ChartInput 图表提示词的输入
type ChartInput struct {
	Question string
	SQLQuery string
	Columns  []string
	Dtypes   map[string]string
}

// Builder 按配置渲染各阶段的提示词
type Builder struct {
	conf config.AssistantConfig
	now  func() time.Time

	sqlTemplate      prompt.ChatTemplate
	rephraseTemplate prompt.ChatTemplate
	answerTemplate   prompt.ChatTemplate
	chartTemplate    prompt.ChatTemplate
}

// NewBuilder 创建提示词构建器
func NewBuilder(conf config.AssistantConfig) *Builder {
	return &Builder{
		conf: conf,
		now:  time.Now,
		sqlTemplate: prompt.FromMessages(schema.FString,
			schema.SystemMessage(sqlSystemTemplate),
			schema.UserMessage("{question}"),
		),
		rephraseTemplate: prompt.FromMessages(schema.FString,
			schema.SystemMessage(rephraseSystemTemplate),
			schema.UserMessage(rephraseUserTemplate),
		),
		answerTemplate: prompt.FromMessages(schema.FString,
			schema.SystemMessage(answerSystemTemplate),
		),
		chartTemplate: prompt.FromMessages(schema.FString,
			schema.SystemMessage(chartSystemTemplate),
			schema.UserMessage(chartUserTemplate),
		),
	}
}

// WithClock 替换时间来源
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Rephrase 追问改写提示词
func (b *Builder) Rephrase(ctx context.Context, question string, turns []Turn) ([]*schema.Message, error) {
	return b.format(ctx, b.rephraseTemplate, "rephrase", map[string]any{
		"previous_conversation": BuildTranscript(b.conf.QueryKey(), turns),
		"query":                 question,
	})
}

// SQL SQL生成提示词，系统消息携带方言说明、租户条件、当前时间、表结构、表关系与示例
func (b *Builder) SQL(ctx context.Context, in SQLInput) ([]*schema.Message, error) {
	now := b.now().UTC()

	relationships := b.conf.RelationshipDiagram
	if relationships == "" {
		relationships = FormatRelationships(in.Tables, b.conf.TableRelationships, b.conf.RelationshipDescriptions)
	}

	return b.format(ctx, b.sqlTemplate, "sql", map[string]any{
		"dialect":              b.conf.DialectName,
		"guidelines":           b.conf.Guidelines,
		"tenant_info":          fmt.Sprintf("tenantId='%s'", in.TenantID),
		"current_datetime":     now.Format("2006-01-02T15:04:05.000000"),
		"current_timestamp":    fmt.Sprintf("%d.%06d", now.Unix(), now.Nanosecond()/1000),
		"database_info":        in.SchemaBlock,
		"relationship_diagram": relationships,
		"examples":             FormatExamples(DialectLabel(b.conf.DialectKey), in.Examples),
		"query_key":            b.conf.QueryKey(),
		"question":             in.Question,
	})
}

// Answer 结果叙述提示词
func (b *Builder) Answer(ctx context.Context, question, sqlQuery, result string) ([]*schema.Message, error) {
	return b.format(ctx, b.answerTemplate, "answer", map[string]any{
		"query":         question,
		"dialect_label": DialectLabel(b.conf.DialectKey),
		"sql_query":     sqlQuery,
		"result":        result,
	})
}

// Chart 图表表达式生成提示词
func (b *Builder) Chart(ctx context.Context, in ChartInput) ([]*schema.Message, error) {
	return b.format(ctx, b.chartTemplate, "chart", map[string]any{
		"query":      in.Question,
		"sql_query":  in.SQLQuery,
		"data_types": FormatDtypes(in.Columns, in.Dtypes),
	})
}

func (b *Builder) format(ctx context.Context, tpl prompt.ChatTemplate, name string, data map[string]any) ([]*schema.Message, error) {
	messages, err := tpl.Format(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("format %s prompt failed: %w", name, err)
	}
	return messages, nil
}

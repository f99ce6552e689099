package prompt

import (
	"context"
	"testing"
	"time"

	"github.com/Malowking/bigo/core/config"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTranscript(t *testing.T) {
	t.Run("出错的轮次回答记为NONE", func(t *testing.T) {
		turns := []Turn{
			{UserText: "total sales last month", Answer: "Sales were 1200."},
			{UserText: "and by region?", Answer: "partial", Error: "upstream: timeout"},
		}
		got := BuildTranscript("apache_pinot_query", turns)
		assert.Equal(t,
			"User Query 1: total sales last month\napache_pinot_query: Sales were 1200.\n\n"+
				"User Query 2: and by region?\napache_pinot_query: NONE",
			got)
	})

	t.Run("使用用户原始问题而非改写结果", func(t *testing.T) {
		turns := []Turn{
			{UserText: "and by region?", Answer: "ok"},
			{UserText: "what about users", Answer: "42"},
		}
		got := BuildTranscript("sql_query", turns)
		assert.Contains(t, got, "User Query 1: and by region?\n")
		assert.Contains(t, got, "User Query 2: what about users\n")
	})

	t.Run("没有历史时为空", func(t *testing.T) {
		assert.Equal(t, "", BuildTranscript("sql_query", nil))
	})
}

func TestFormatExamples(t *testing.T) {
	got := FormatExamples("Apache Pinot", []Example{
		{Question: "q1", SQLQuery: "SELECT 1 FROM a;"},
		{Question: "q2", SQLQuery: "SELECT 2 FROM b;"},
	})
	assert.Equal(t, "User Question: q1\nApache Pinot Query: SELECT 1 FROM a;\n\nUser Question: q2\nApache Pinot Query: SELECT 2 FROM b;", got)
	assert.Equal(t, "", FormatExamples("SQL", nil))
}

func TestFormatRelationships(t *testing.T) {
	relationships := map[string]map[string]string{
		"workitems": {"projectId": "projects.id", "assigneeId": "users.id"},
		"projects":  {"workspaceId": "workspaces.id"},
	}
	descriptions := map[string]string{
		"workitems": "a project has many workitems",
		"projects":  "a project has many workitems",
		"users":     "a user is assigned workitems",
	}

	t.Run("只保留检索到的表之间的关系", func(t *testing.T) {
		got := FormatRelationships([]string{"workitems", "projects"}, relationships, descriptions)
		assert.Equal(t,
			"Table 1: workitems\n"+
				"  - workitems.projectId -> projects.id\n\n"+
				"1. a project has many workitems",
			got)
	})

	t.Run("按检索顺序编号", func(t *testing.T) {
		got := FormatRelationships([]string{"users", "workitems", "projects"}, relationships, descriptions)
		assert.Equal(t,
			"Table 1: workitems\n"+
				"  - workitems.assigneeId -> users.id\n"+
				"  - workitems.projectId -> projects.id\n\n"+
				"1. a user is assigned workitems\n"+
				"2. a project has many workitems",
			got)
	})

	t.Run("无关系时为None", func(t *testing.T) {
		assert.Equal(t, "None", FormatRelationships(nil, relationships, nil))
		assert.Equal(t, "None", FormatRelationships([]string{"sales"}, nil, nil))
	})
}

func TestDialectLabel(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"apache_pinot", "Apache Pinot"},
		{"sql", "SQL"},
		{"postgres", "Postgres"},
		{"", "SQL"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, DialectLabel(tt.key))
		})
	}
}

func TestBuilder_SQL(t *testing.T) {
	conf := config.DefaultAssistantConfig()
	conf.RelationshipDiagram = "orders.customerId -> customers.id"
	clock := time.Date(2024, 3, 1, 8, 30, 15, 123456000, time.UTC)
	b := NewBuilder(conf).WithClock(func() time.Time { return clock })

	messages, err := b.SQL(context.Background(), SQLInput{
		Question:    "total orders per customer",
		TenantID:    "T1",
		SchemaBlock: "Table: orders\n- amount (DOUBLE): order amount. Sample: 10.5",
		Examples:    []Example{{Question: "count orders", SQLQuery: "SELECT COUNT(*) FROM orders;"}},
	})
	require.NoError(t, err)
	require.Len(t, messages, 2)

	system := messages[0]
	assert.Equal(t, schema.System, system.Role)
	assert.Contains(t, system.Content, "tenantId='T1'")
	assert.Contains(t, system.Content, "2024-03-01T08:30:15.123456")
	assert.Contains(t, system.Content, "1709281815.123456")
	assert.Contains(t, system.Content, "```\nTable: orders\n- amount (DOUBLE): order amount. Sample: 10.5\n```")
	assert.Contains(t, system.Content, "orders.customerId -> customers.id")
	assert.Contains(t, system.Content, "User Question: count orders\nApache Pinot Query: SELECT COUNT(*) FROM orders;")
	assert.Contains(t, system.Content, "apache_pinot_query:")
	assert.Contains(t, system.Content, config.DefaultDialectName)

	assert.Equal(t, schema.User, messages[1].Role)
	assert.Equal(t, "total orders per customer", messages[1].Content)
}

func TestBuilder_SQLRelationshipsFromConfig(t *testing.T) {
	conf := config.DefaultAssistantConfig()
	conf.TableRelationships = map[string]map[string]string{"orders": {"customerId": "customers.id"}}
	b := NewBuilder(conf)

	messages, err := b.SQL(context.Background(), SQLInput{Question: "q", TenantID: "T1", Tables: []string{"orders", "customers"}})
	require.NoError(t, err)
	assert.Contains(t, messages[0].Content, "Table 1: orders\n  - orders.customerId -> customers.id")

	messages, err = b.SQL(context.Background(), SQLInput{Question: "q", TenantID: "T1", Tables: []string{"orders"}})
	require.NoError(t, err)
	assert.NotContains(t, messages[0].Content, "customers.id")
}

func TestBuilder_Rephrase(t *testing.T) {
	b := NewBuilder(config.DefaultAssistantConfig())

	messages, err := b.Rephrase(context.Background(), "and last week?", []Turn{
		{UserText: "total sales yesterday", Answer: "1200"},
	})
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0].Content, "'''\nUser Query 1: total sales yesterday\napache_pinot_query: 1200\n'''")
	assert.Contains(t, messages[0].Content, "'Not a follow-up question'")
	assert.Contains(t, messages[0].Content, "rephrased_query")
	assert.Equal(t, "Query: and last week?", messages[1].Content)
}

func TestBuilder_Answer(t *testing.T) {
	b := NewBuilder(config.DefaultAssistantConfig())

	messages, err := b.Answer(context.Background(), "total sales", "SELECT SUM(amount) FROM sales;", "|total|\n|---|\n|1200|")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, schema.System, messages[0].Role)
	assert.Contains(t, messages[0].Content, "**Question**: total sales")
	assert.Contains(t, messages[0].Content, "**Apache Pinot Query**: SELECT SUM(amount) FROM sales;")
	assert.Contains(t, messages[0].Content, "|1200|")
	assert.Contains(t, messages[0].Content, `"answer"`)
}

func TestBuilder_Chart(t *testing.T) {
	b := NewBuilder(config.DefaultAssistantConfig())

	messages, err := b.Chart(context.Background(), ChartInput{
		Question: "sales by region",
		SQLQuery: "SELECT region, SUM(amount) AS total FROM sales GROUP BY region;",
		Columns:  []string{"region", "total"},
		Dtypes:   map[string]string{"region": "string", "total": "float"},
	})
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0].Content, "region    string\ntotal    float")
	// 转义后的花括号还原为字面量
	assert.Contains(t, messages[0].Content, `{"type": "bar"`)
	assert.Contains(t, messages[1].Content, "just the code")
}

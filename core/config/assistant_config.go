package config

import (
	"context"
	"time"

	"github.com/gogf/gf/v2/frame/g"
)

const (
	DefaultDialectKey          = "apache_pinot"
	DefaultDialectName         = "Apache Pinot SQL (MYSQL_ANSI dialect)"
	DefaultOptimizedHint       = "SET useMultistageEngine=true;"
	DefaultTurnWindow          = 2
	DefaultTableTopK           = 5
	DefaultExampleTopK         = 5
	DefaultColumnThreshold     = 0.7
	DefaultChartTimeout        = 2 * time.Second
	DefaultTablesCollection    = "bi_tables"
	DefaultColumnsCollection   = "bi_columns"
	DefaultExamplesCollection  = "bi_sql_examples"
	DefaultCompletionTemp      = 0
	DefaultEmbeddingDimension  = 1536
	DefaultExecutorMaxOpen     = 5
	DefaultExecutorMaxIdle     = 5
	DefaultExecutorMaxLifetime = 1500 * time.Second
)

// DefaultGuidelines Apache Pinot 方言的生成约束
const DefaultGuidelines = `Apache Pinot is a real-time distributed OLAP datastore. Its SQL is close to standard SQL with a few differences:
1. Double quotes (") force string identifiers such as column names; single quotes (') enclose string literals.
   WHERE a='b' compares column a with the literal 'b'; WHERE a="b" compares column a with column b.
2. User defined functions cannot be injected; use only built-in functions.
3. Use now() to get the current time as epoch millis.
4. Use DATETIMECONVERT to convert a timestamp column into another time unit and bucket granularity.
5. Use DATETRUNC to truncate a value to a granularity in a given timezone.
6. Only the plain-ASCII operators >= and <= are accepted.`

// CollectionsConfig 向量集合名称
type CollectionsConfig struct {
	Tables   string
	Columns  string
	Examples string
}

// ExecutorConfig OLAP 执行器配置
type ExecutorConfig struct {
	Driver          string
	DSN             string
	OptimizedHint   string
	EnableFallback  bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AssistantConfig BI助手的不可变配置
// 进程启动时构建一次，按值注入到各组件
type AssistantConfig struct {
	DialectKey          string // 输出 JSON 的键前缀，如 apache_pinot -> apache_pinot_query
	DialectName         string // 提示词中展示的方言名
	Guidelines          string
	RelationshipDiagram string
	// TableRelationships table -> parentColumn -> "otherTable.column"
	TableRelationships       map[string]map[string]string
	RelationshipDescriptions map[string]string

	TurnWindow           int
	TableTopK            int
	ExampleTopK          int
	ColumnScoreThreshold float64
	ReverseExamples      bool
	ExampleTenantFilter  bool
	TableTenantFilter    bool
	Temperature          float32
	ChartTimeout         time.Duration

	Collections CollectionsConfig
	Executor    ExecutorConfig
}

// QueryKey SQL生成结果的 JSON 键
func (c AssistantConfig) QueryKey() string {
	return c.DialectKey + "_query"
}

// DefaultAssistantConfig 默认配置
func DefaultAssistantConfig() AssistantConfig {
	return AssistantConfig{
		DialectKey:           DefaultDialectKey,
		DialectName:          DefaultDialectName,
		Guidelines:           DefaultGuidelines,
		TurnWindow:           DefaultTurnWindow,
		TableTopK:            DefaultTableTopK,
		ExampleTopK:          DefaultExampleTopK,
		ColumnScoreThreshold: DefaultColumnThreshold,
		ReverseExamples:      true,
		ExampleTenantFilter:  true,
		Temperature:          DefaultCompletionTemp,
		ChartTimeout:         DefaultChartTimeout,
		Collections: CollectionsConfig{
			Tables:   DefaultTablesCollection,
			Columns:  DefaultColumnsCollection,
			Examples: DefaultExamplesCollection,
		},
		Executor: ExecutorConfig{
			OptimizedHint:   DefaultOptimizedHint,
			EnableFallback:  true,
			MaxOpenConns:    DefaultExecutorMaxOpen,
			MaxIdleConns:    DefaultExecutorMaxIdle,
			ConnMaxLifetime: DefaultExecutorMaxLifetime,
		},
	}
}

// LoadAssistantConfig 从 config.yaml 读取助手配置
func LoadAssistantConfig(ctx context.Context) AssistantConfig {
	def := DefaultAssistantConfig()
	cfg := g.Cfg()

	conf := AssistantConfig{
		DialectKey:           cfg.MustGet(ctx, "assistant.dialect", def.DialectKey).String(),
		DialectName:          cfg.MustGet(ctx, "assistant.dialectName", def.DialectName).String(),
		Guidelines:           cfg.MustGet(ctx, "assistant.guidelines", def.Guidelines).String(),
		RelationshipDiagram:  cfg.MustGet(ctx, "assistant.relationshipDiagram", "").String(),
		TurnWindow:           cfg.MustGet(ctx, "assistant.turnWindow", def.TurnWindow).Int(),
		TableTopK:            cfg.MustGet(ctx, "assistant.tableTopK", def.TableTopK).Int(),
		ExampleTopK:          cfg.MustGet(ctx, "assistant.exampleTopK", def.ExampleTopK).Int(),
		ColumnScoreThreshold: cfg.MustGet(ctx, "assistant.columnScoreThreshold", def.ColumnScoreThreshold).Float64(),
		ReverseExamples:      cfg.MustGet(ctx, "assistant.reverseExamples", def.ReverseExamples).Bool(),
		ExampleTenantFilter:  cfg.MustGet(ctx, "assistant.exampleTenantFilter", def.ExampleTenantFilter).Bool(),
		TableTenantFilter:    cfg.MustGet(ctx, "assistant.tableTenantFilter", def.TableTenantFilter).Bool(),
		Temperature:          cfg.MustGet(ctx, "chat.temperature", def.Temperature).Float32(),
		ChartTimeout:         cfg.MustGet(ctx, "assistant.chartTimeout", def.ChartTimeout).Duration(),
		Collections: CollectionsConfig{
			Tables:   cfg.MustGet(ctx, "collections.tables", def.Collections.Tables).String(),
			Columns:  cfg.MustGet(ctx, "collections.columns", def.Collections.Columns).String(),
			Examples: cfg.MustGet(ctx, "collections.examples", def.Collections.Examples).String(),
		},
		Executor: ExecutorConfig{
			Driver:          cfg.MustGet(ctx, "olap.driver", "").String(),
			DSN:             cfg.MustGet(ctx, "olap.dsn", "").String(),
			OptimizedHint:   cfg.MustGet(ctx, "olap.optimizedHint", def.Executor.OptimizedHint).String(),
			EnableFallback:  cfg.MustGet(ctx, "olap.enableFallback", def.Executor.EnableFallback).Bool(),
			MaxOpenConns:    cfg.MustGet(ctx, "olap.maxOpenConns", def.Executor.MaxOpenConns).Int(),
			MaxIdleConns:    cfg.MustGet(ctx, "olap.maxIdleConns", def.Executor.MaxIdleConns).Int(),
			ConnMaxLifetime: cfg.MustGet(ctx, "olap.connMaxLifetime", def.Executor.ConnMaxLifetime).Duration(),
		},
	}

	if rel := cfg.MustGet(ctx, "assistant.tableRelationships"); !rel.IsNil() {
		conf.TableRelationships = make(map[string]map[string]string)
		for table, cols := range rel.MapStrVar() {
			conf.TableRelationships[table] = cols.MapStrStr()
		}
	}
	if desc := cfg.MustGet(ctx, "assistant.relationshipDescriptions"); !desc.IsNil() {
		conf.RelationshipDescriptions = desc.MapStrStr()
	}

	if conf.TurnWindow < 0 {
		conf.TurnWindow = def.TurnWindow
	}
	if conf.TableTopK <= 0 {
		conf.TableTopK = def.TableTopK
	}
	if conf.ExampleTopK <= 0 {
		conf.ExampleTopK = def.ExampleTopK
	}
	if conf.ChartTimeout <= 0 {
		conf.ChartTimeout = def.ChartTimeout
	}

	g.Log().Infof(ctx, "Assistant config loaded - Dialect: %s, TurnWindow: %d, TableTopK: %d, ExampleTopK: %d, ColumnThreshold: %.2f, Fallback: %v",
		conf.DialectKey, conf.TurnWindow, conf.TableTopK, conf.ExampleTopK, conf.ColumnScoreThreshold, conf.Executor.EnableFallback)

	return conf
}

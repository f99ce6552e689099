package dao

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gormModel "github.com/Malowking/bigo/internal/model/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

func newTestDAO(t *testing.T) *AnalyticsDAO {
	t.Helper()
	gdb, err := Open(sqlite.Open(filepath.Join(t.TempDir(), "bigo_test.db")), logger.Silent)
	require.NoError(t, err)
	return NewAnalyticsDAO(gdb)
}

func TestAnalyticsDAO_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	d := newTestDAO(t)

	record := &gormModel.ConversationAnalytics{
		ID:               "abc123_20240501",
		TenantID:         "T1",
		UserID:           "u1",
		SessionID:        "s1",
		UserText:         "total sales",
		SQLQuery:         "SELECT SUM(amount) FROM sales;",
		SQLQueryResponse: datatypes.JSON(`[{"total":10}]`),
		TotalAdaCalls:    1,
		CreateTime:       time.Now().UTC(),
	}
	log := &gormModel.RetrievalLog{
		TenantID:            "T1",
		UserID:              "u1",
		RelevantTables:      datatypes.JSON(`["sales"]`),
		RelevantColumns:     "Table: sales",
		RelevantSQLExamples: datatypes.JSON(`[]`),
	}

	t.Run("写入分析记录与检索日志", func(t *testing.T) {
		require.NoError(t, d.CreateWithRetrievalLog(ctx, record, log))
		assert.Equal(t, record.ID, log.ConversationAnalyticsID)
	})

	t.Run("按ID读取", func(t *testing.T) {
		got, gotLog, err := d.GetByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, "SELECT SUM(amount) FROM sales;", got.SQLQuery)
		assert.JSONEq(t, `[{"total":10}]`, string(got.SQLQueryResponse))
		require.NotNil(t, gotLog)
		assert.JSONEq(t, `["sales"]`, string(gotLog.RelevantTables))
	})

	t.Run("重复ID写入失败且不留下检索日志", func(t *testing.T) {
		dup := *record
		err := d.CreateWithRetrievalLog(ctx, &dup, &gormModel.RetrievalLog{TenantID: "T1"})
		assert.Error(t, err)
	})

	t.Run("记录不存在", func(t *testing.T) {
		_, _, err := d.GetByID(ctx, "missing")
		assert.True(t, IsNotFound(err))
	})
}

func TestAnalyticsDAO_RecentTurns(t *testing.T) {
	ctx := context.Background()
	d := newTestDAO(t)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, text := range []string{"q1", "q2", "q3"} {
		require.NoError(t, d.CreateWithRetrievalLog(ctx, &gormModel.ConversationAnalytics{
			ID:         text + "_20240501",
			UserID:     "u1",
			SessionID:  "s1",
			UserText:   text,
			CreateTime: base.Add(time.Duration(i) * time.Minute),
		}, nil))
	}
	require.NoError(t, d.CreateWithRetrievalLog(ctx, &gormModel.ConversationAnalytics{
		ID:         "other_20240501",
		UserID:     "u1",
		SessionID:  "s2",
		UserText:   "other session",
		CreateTime: base.Add(time.Hour),
	}, nil))

	t.Run("最近两条按时间正序", func(t *testing.T) {
		turns, err := d.RecentTurns(ctx, "u1", "s1", 2)
		require.NoError(t, err)
		require.Len(t, turns, 2)
		assert.Equal(t, "q2", turns[0].UserText)
		assert.Equal(t, "q3", turns[1].UserText)
	})

	t.Run("窗口为0返回空", func(t *testing.T) {
		turns, err := d.RecentTurns(ctx, "u1", "s1", 0)
		require.NoError(t, err)
		assert.Empty(t, turns)
	})

	t.Run("新会话没有历史", func(t *testing.T) {
		turns, err := d.RecentTurns(ctx, "u1", "s9", 2)
		require.NoError(t, err)
		assert.Empty(t, turns)
	})
}

func TestBuildDSN(t *testing.T) {
	t.Run("mysql", func(t *testing.T) {
		dsn, err := buildDSN(&DBConfig{Type: "mysql", User: "root", Pass: "p", Host: "127.0.0.1", Port: "3306", Name: "bigo"})
		require.NoError(t, err)
		assert.Equal(t, "root:p@tcp(127.0.0.1:3306)/bigo?charset=utf8mb4&parseTime=True&loc=UTC", dsn)
	})

	t.Run("pgsql", func(t *testing.T) {
		dsn, err := buildDSN(&DBConfig{Type: "pgsql", User: "u", Pass: "p", Host: "db", Port: "5432", Name: "bigo"})
		require.NoError(t, err)
		assert.Contains(t, dsn, "dbname=bigo")
	})

	t.Run("sqlite缺少文件名", func(t *testing.T) {
		_, err := buildDSN(&DBConfig{Type: "sqlite"})
		assert.Error(t, err)
	})

	t.Run("不支持的类型", func(t *testing.T) {
		_, err := buildDSN(&DBConfig{Type: "oracle"})
		assert.Error(t, err)
	})
}

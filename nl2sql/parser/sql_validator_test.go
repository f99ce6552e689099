package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStatement(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"补齐分号", "SELECT 1 FROM t", "SELECT 1 FROM t;"},
		{"保留单个分号", "SELECT 1 FROM t;", "SELECT 1 FROM t;"},
		{"多条语句只保留第一条", "SELECT 1 FROM t; DROP TABLE t;", "SELECT 1 FROM t;"},
		{"去掉首尾空白", "  SELECT 1 FROM t  ;  ", "SELECT 1 FROM t;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStatement(tt.input))
		})
	}
}

func TestSQLValidator_ValidateSelect(t *testing.T) {
	v := NewSQLValidator()

	valid := []struct {
		name string
		sql  string
	}{
		{"简单查询", "SELECT SUM(amount) FROM sales WHERE tenantId='T1' LIMIT 10;"},
		{"分组排序", "SELECT region, COUNT(*) AS cnt FROM sales GROUP BY region ORDER BY cnt DESC LIMIT 5"},
		{"子查询", "SELECT * FROM (SELECT region FROM sales) AS s"},
		{"UNION", "SELECT a FROM t UNION SELECT b FROM u"},
		{"列名包含关键字", "SELECT created_at, last_updated FROM orders"},
		{"字符串中包含关键字", "SELECT * FROM logs WHERE msg = 'DELETE requested'"},
		{"引擎专有语法", "SELECT DATETRUNC('DAY', ts) AS day, COUNT(*) FILTER (WHERE status = 'ok') FROM events GROUP BY day"},
		{"WITH子句", "WITH t AS (SELECT a FROM x) SELECT a FROM t"},
	}
	for _, tt := range valid {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, v.ValidateSelect(tt.sql))
			assert.True(t, v.IsSelect(tt.sql))
		})
	}

	invalid := []struct {
		name string
		sql  string
		want error
	}{
		{"删除", "DELETE FROM sales", ErrUnsafeKeywords},
		{"更新", "UPDATE sales SET amount = 0", ErrUnsafeKeywords},
		{"建表", "CREATE TABLE x (a int)", ErrUnsafeKeywords},
		{"多条语句", "SELECT a FROM t; SELECT b FROM u", ErrInvalidSQL},
		{"空语句", ";", ErrEmptySQL},
		{"SHOW语句", "SHOW TABLES", ErrNotReadOnly},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSelect(tt.sql)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSQLValidator_ExtractTables(t *testing.T) {
	v := NewSQLValidator()
	tables, err := v.ExtractTables("SELECT s.amount FROM sales s JOIN customers c ON s.cid = c.id;")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sales", "customers"}, tables)
}

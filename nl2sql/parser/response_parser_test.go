package parser

import (
	"testing"

	"github.com/Malowking/bigo/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLParser_Parse(t *testing.T) {
	p := NewSQLParser("apache_pinot_query")

	tests := []struct {
		name   string
		raw    string
		wantOK bool
		want   string
	}{
		{
			name:   "合法查询",
			raw:    `{"apache_pinot_query": "SELECT SUM(amount) FROM sales WHERE tenantId='T1' LIMIT 10;"}`,
			wantOK: true,
			want:   "SELECT SUM(amount) FROM sales WHERE tenantId='T1' LIMIT 10;",
		},
		{
			name:   "缺少分号时补齐",
			raw:    `{"apache_pinot_query": "SELECT city FROM sales"}`,
			wantOK: true,
			want:   "SELECT city FROM sales;",
		},
		{
			name:   "两条语句只保留第一条",
			raw:    `{"apache_pinot_query": "SELECT a FROM t; SELECT b FROM u;"}`,
			wantOK: true,
			want:   "SELECT a FROM t;",
		},
		{
			name:   "error字段作为失败原因",
			raw:    `{"error": "insufficient schema"}`,
			wantOK: false,
			want:   "insufficient schema",
		},
		{
			name:   "其他字符串字段作为失败原因",
			raw:    `{"apache_pinot_query": null, "message": "I can't find a sales table"}`,
			wantOK: false,
			want:   "I can't find a sales table",
		},
		{
			name:   "带撇号的说明优先于error字段",
			raw:    `{"reason": "There's no revenue column", "error": "insufficient schema"}`,
			wantOK: false,
			want:   "There's no revenue column",
		},
		{
			name:   "多个说明时取第一个",
			raw:    `{"error": "insufficient schema", "hint": "Don't know the table", "note": "It's ambiguous"}`,
			wantOK: false,
			want:   "Don't know the table",
		},
		{
			name:   "不带撇号的其他字段不作为原因",
			raw:    `{"apache_pinot_query": null, "message": "no table matches"}`,
			wantOK: false,
			want:   DefaultSQLError,
		},
		{
			name:   "代码块中的JSON同样提取说明",
			raw:    "```json\n{\"message\": \"I can't answer that\"}\n```",
			wantOK: false,
			want:   "I can't answer that",
		},
		{
			name:   "没有任何原因时使用默认提示",
			raw:    `{"apache_pinot_query": ""}`,
			wantOK: false,
			want:   DefaultSQLError,
		},
		{
			name:   "非查询语句不通过校验",
			raw:    `{"apache_pinot_query": "DELETE FROM sales"}`,
			wantOK: false,
			want:   "DELETE FROM sales;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, text, err := p.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestSQLParser_TruncatesToFirstStatement(t *testing.T) {
	p := NewSQLParser("sql_query")

	ok, sql, err := p.Parse(`{"sql_query": "SELECT SUM(amount) FROM sales;  DROP TABLE sales;"}`)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "SELECT SUM(amount) FROM sales;", sql)
	assert.Equal(t, 1, countSemicolons(sql))
}

func TestSQLParser_Idempotent(t *testing.T) {
	p := NewSQLParser("sql_query")
	payload := `{"sql_query": "SELECT region, SUM(amount) FROM sales GROUP BY region"}`

	ok1, sql1, err1 := p.Parse(payload)
	ok2, sql2, err2 := p.Parse(payload)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, sql1, sql2)

	failure := `{"sql_query": null, "reason": "a", "detail": "b"}`
	_, text1, _ := p.Parse(failure)
	_, text2, _ := p.Parse(failure)
	assert.Equal(t, text1, text2)
}

func TestSQLParser_NotJSON(t *testing.T) {
	p := NewSQLParser("sql_query")
	_, _, err := p.Parse("sorry, no idea")
	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrParseFailed, appErr.Code)
}

func TestParseRephrase(t *testing.T) {
	t.Run("正常改写", func(t *testing.T) {
		got, err := ParseRephrase(`{"rephrased_query": "What were total sales in March?"}`)
		require.NoError(t, err)
		assert.Equal(t, "What were total sales in March?", got)
		assert.True(t, IsFollowUp(got))
	})

	t.Run("独立问题标记不区分大小写", func(t *testing.T) {
		got, err := ParseRephrase(`{"rephrased_query": "Not A Follow-Up Question"}`)
		require.NoError(t, err)
		assert.False(t, IsFollowUp(got))
	})

	t.Run("字段缺失为解析失败", func(t *testing.T) {
		_, err := ParseRephrase(`{"query": "x"}`)
		require.Error(t, err)
		assert.Equal(t, errors.ErrParseFailed, errors.GetAppError(err).Code)
	})

	t.Run("字段类型错误为解析失败", func(t *testing.T) {
		_, err := ParseRephrase(`{"rephrased_query": 3}`)
		assert.Error(t, err)
	})
}

func TestParseAnswer(t *testing.T) {
	got, err := ParseAnswer(`{"answer": "Total sales were 1,200."}`)
	require.NoError(t, err)
	assert.Equal(t, "Total sales were 1,200.", got)

	_, err = ParseAnswer("plain text")
	assert.Error(t, err)
}

func countSemicolons(s string) int {
	n := 0
	for _, c := range s {
		if c == ';' {
			n++
		}
	}
	return n
}

package datasource

import (
	"math"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultSet_Markdown(t *testing.T) {
	t.Run("管道符两侧无空白", func(t *testing.T) {
		rs := &ResultSet{
			Columns:     []string{"region", "total"},
			ColumnTypes: []string{DtypeString, DtypeFloat},
			Rows:        [][]any{{"north", 120.5}, {"south", 80.0}},
		}
		assert.Equal(t, "|region|total|\n|:---|---:|\n|north|120.5|\n|south|80|", rs.Markdown())
	})

	t.Run("单元格中的换行与管道符被清洗", func(t *testing.T) {
		rs := &ResultSet{
			Columns: []string{"name"},
			Rows:    [][]any{{"a|b\nc"}, {nil}},
		}
		assert.Equal(t, "|name|\n|:---|\n|a\\|b c|\n||", rs.Markdown())
	})

	t.Run("时间戳列转为可读时间", func(t *testing.T) {
		rs := &ResultSet{
			Columns:     []string{"createdTime", "count"},
			ColumnTypes: []string{DtypeInt, DtypeInt},
			Rows:        [][]any{{int64(1709281815000), int64(3)}, {int64(1709281815), int64(4)}},
		}
		md := rs.Markdown()
		assert.Contains(t, md, "|2024-03-01 08:30:15 UTC|3|")
		assert.Contains(t, md, "|2024-03-01 08:30:15 UTC|4|")
	})

	t.Run("不在范围内的时间列保持原值", func(t *testing.T) {
		rs := &ResultSet{
			Columns:     []string{"responseTime"},
			ColumnTypes: []string{DtypeInt},
			Rows:        [][]any{{int64(250)}},
		}
		assert.Contains(t, rs.Markdown(), "|250|")
	})

	t.Run("没有列时为空", func(t *testing.T) {
		assert.Equal(t, "", (&ResultSet{}).Markdown())
	})
}

func TestResultSet_Records(t *testing.T) {
	ts := time.Date(2024, 3, 1, 8, 30, 15, 0, time.UTC)
	rs := &ResultSet{
		Columns: []string{"day", "total"},
		Rows:    [][]any{{ts, 10.5}},
	}
	records := rs.Records()
	assert.Len(t, records, 1)
	assert.Equal(t, "2024-03-01T08:30:15.000Z", records[0]["day"])
	assert.Equal(t, 10.5, records[0]["total"])

	var empty *ResultSet
	assert.Empty(t, empty.Records())
}

func TestResultSet_NonFiniteFloats(t *testing.T) {
	rs := &ResultSet{
		Columns:     []string{"region", "avgAmount"},
		ColumnTypes: []string{DtypeString, DtypeFloat},
		Rows: [][]any{
			{"north", math.NaN()},
			{"south", math.Inf(1)},
			{"east", float32(math.Inf(-1))},
			{"west", 2.5},
		},
	}

	t.Run("记录中输出为null", func(t *testing.T) {
		data, err := sonic.MarshalString(rs.Records())
		require.NoError(t, err)
		assert.JSONEq(t, `[
			{"region":"north","avgAmount":null},
			{"region":"south","avgAmount":null},
			{"region":"east","avgAmount":null},
			{"region":"west","avgAmount":2.5}
		]`, data)
	})

	t.Run("按列转换", func(t *testing.T) {
		assert.Equal(t, []any{nil, nil, nil, 2.5}, JSONValues(rs.Column(1)))
		assert.Nil(t, JSONValues(nil))
	})

	t.Run("表格中保留原值", func(t *testing.T) {
		assert.Contains(t, rs.Markdown(), "|north|NaN|")
	})
}

func TestToFloat_UnsignedOverflow(t *testing.T) {
	_, ok := toInt64(uint64(math.MaxUint64))
	assert.False(t, ok)

	f, ok := ToFloat(uint64(math.MaxUint64))
	assert.True(t, ok)
	assert.Equal(t, float64(math.MaxUint64), f)

	n, ok := toInt64(uint64(42))
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)
}

func TestResultSet_Dtypes(t *testing.T) {
	rs := &ResultSet{
		Columns: []string{"a", "b", "c", "d", "e"},
		Rows: [][]any{
			{int64(1), 1.5, "x", true, nil},
			{int64(2), int64(2), "y", false, nil},
		},
	}
	assert.Equal(t, map[string]string{
		"a": DtypeInt,
		"b": DtypeFloat,
		"c": DtypeString,
		"d": DtypeBool,
		"e": DtypeString,
	}, rs.Dtypes())
	assert.Equal(t, []int{0, 1}, rs.NumericColumns())
}

func TestConvertValue(t *testing.T) {
	tests := []struct {
		name  string
		raw   any
		dtype string
		want  any
	}{
		{"整数字节", []byte("42"), DtypeInt, int64(42)},
		{"浮点字节", []byte("1.25"), DtypeFloat, 1.25},
		{"布尔字符串", "true", DtypeBool, true},
		{"无法解析时保留字符串", "n/a", DtypeInt, "n/a"},
		{"空值", nil, DtypeInt, nil},
		{"非字符串原样返回", int64(7), DtypeString, int64(7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, convertValue(tt.raw, tt.dtype))
		})
	}
}

func TestDtypeFromDatabase(t *testing.T) {
	assert.Equal(t, DtypeInt, dtypeFromDatabase("bigint"))
	assert.Equal(t, DtypeFloat, dtypeFromDatabase("DOUBLE"))
	assert.Equal(t, DtypeDatetime, dtypeFromDatabase("TIMESTAMP"))
	assert.Equal(t, DtypeString, dtypeFromDatabase("VARCHAR"))
	assert.Equal(t, "", dtypeFromDatabase(""))
}

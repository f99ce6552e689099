package datasource

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Malowking/bigo/core/common"
)

// 列类型
const (
	DtypeInt      = "int"
	DtypeFloat    = "float"
	DtypeBool     = "bool"
	DtypeDatetime = "datetime"
	DtypeString   = "string"
)

// epoch 取值范围：秒级与毫秒级，约为 2001 至 2286 年
const (
	epochSecondsMin = int64(1_000_000_000)
	epochSecondsMax = int64(9_999_999_999)
	epochMillisMin  = epochSecondsMin * 1000
	epochMillisMax  = epochSecondsMax*1000 + 999
)

// 以这些后缀结尾的整数列视为时间戳
var epochColumnSuffixes = []string{"timestamp", "epoch", "time", "ts"}

// ResultSet 查询结果，按列保存类型
type ResultSet struct {
	Columns     []string
	ColumnTypes []string
	Rows        [][]any
}

// Len 行数
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Empty 是否没有数据
func (r *ResultSet) Empty() bool {
	return r.Len() == 0
}

// Records 转为按行的 map 列表，用于 JSON 序列化
func (r *ResultSet) Records() []map[string]any {
	records := make([]map[string]any, 0, r.Len())
	if r == nil {
		return records
	}
	for _, row := range r.Rows {
		rec := make(map[string]any, len(r.Columns))
		for i, col := range r.Columns {
			if i < len(row) {
				rec[col] = jsonValue(row[i])
			}
		}
		records = append(records, rec)
	}
	return records
}

// Dtypes 列名到类型的映射
func (r *ResultSet) Dtypes() map[string]string {
	dtypes := make(map[string]string, len(r.Columns))
	for i, col := range r.Columns {
		dtypes[col] = r.dtype(i)
	}
	return dtypes
}

// IsNumeric 第 i 列是否为数值列
func (r *ResultSet) IsNumeric(i int) bool {
	switch r.dtype(i) {
	case DtypeInt, DtypeFloat:
		return true
	}
	return false
}

// NumericColumns 数值列的下标
func (r *ResultSet) NumericColumns() []int {
	var idx []int
	for i := range r.Columns {
		if r.IsNumeric(i) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Column 取第 i 列的全部值
func (r *ResultSet) Column(i int) []any {
	values := make([]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		if i < len(row) {
			values = append(values, row[i])
		} else {
			values = append(values, nil)
		}
	}
	return values
}

// Markdown 渲染为管道表格，管道符两侧无空白
// 时间戳列会被转为可读的 UTC 时间
func (r *ResultSet) Markdown() string {
	if r == nil || len(r.Columns) == 0 {
		return ""
	}

	epochCols := make(map[int]bool)
	for i := range r.Columns {
		if r.isEpochColumn(i) {
			epochCols[i] = true
		}
	}

	var sb strings.Builder
	header := make([]string, len(r.Columns))
	sep := make([]string, len(r.Columns))
	for i, col := range r.Columns {
		header[i] = common.CleanCell(col)
		if r.IsNumeric(i) {
			sep[i] = "---:"
		} else {
			sep[i] = ":---"
		}
	}
	sb.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sb.WriteString("| " + strings.Join(sep, " | ") + " |")

	for _, row := range r.Rows {
		cells := make([]string, len(r.Columns))
		for i := range r.Columns {
			var v any
			if i < len(row) {
				v = row[i]
			}
			if epochCols[i] {
				cells[i] = humanizeEpoch(v)
			} else {
				cells[i] = common.CleanCell(formatValue(v))
			}
		}
		sb.WriteString("\n| " + strings.Join(cells, " | ") + " |")
	}

	return common.CleanTableString(sb.String())
}

func (r *ResultSet) dtype(i int) string {
	if i < len(r.ColumnTypes) && r.ColumnTypes[i] != "" {
		return r.ColumnTypes[i]
	}
	return inferDtype(r.Column(i))
}

// isEpochColumn 整数列，列名以时间后缀结尾，且非空值都在 epoch 范围内
func (r *ResultSet) isEpochColumn(i int) bool {
	if r.dtype(i) != DtypeInt || !hasEpochSuffix(r.Columns[i]) {
		return false
	}
	seen := false
	for _, v := range r.Column(i) {
		if v == nil {
			continue
		}
		n, ok := toInt64(v)
		if !ok || !inEpochRange(n) {
			return false
		}
		seen = true
	}
	return seen
}

func hasEpochSuffix(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range epochColumnSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func inEpochRange(n int64) bool {
	return (n >= epochSecondsMin && n <= epochSecondsMax) || (n >= epochMillisMin && n <= epochMillisMax)
}

// humanizeEpoch epoch 秒或毫秒转为 YYYY-MM-DD HH:MM:SS UTC
func humanizeEpoch(v any) string {
	n, ok := toInt64(v)
	if !ok {
		return common.CleanCell(formatValue(v))
	}
	var t time.Time
	if n >= epochMillisMin {
		t = time.UnixMilli(n)
	} else {
		t = time.Unix(n, 0)
	}
	return t.UTC().Format("2006-01-02 15:04:05") + " UTC"
}

// inferDtype 按非空值推断列类型，混合整数与浮点视为 float
func inferDtype(values []any) string {
	dtype := ""
	for _, v := range values {
		if v == nil {
			continue
		}
		var cur string
		switch v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			cur = DtypeInt
		case float32, float64:
			cur = DtypeFloat
		case bool:
			cur = DtypeBool
		case time.Time:
			cur = DtypeDatetime
		default:
			return DtypeString
		}
		switch {
		case dtype == "":
			dtype = cur
		case dtype == cur:
		case (dtype == DtypeInt && cur == DtypeFloat) || (dtype == DtypeFloat && cur == DtypeInt):
			dtype = DtypeFloat
		default:
			return DtypeString
		}
	}
	if dtype == "" {
		return DtypeString
	}
	return dtype
}

// dtypeFromDatabase 由驱动上报的类型名得到列类型，未知返回空
func dtypeFromDatabase(name string) string {
	upper := strings.ToUpper(name)
	switch upper {
	case "INT", "INT2", "INT4", "INT8", "INTEGER", "BIGINT", "SMALLINT", "TINYINT", "MEDIUMINT", "LONG",
		"UNSIGNED INT", "UNSIGNED BIGINT", "UNSIGNED SMALLINT", "UNSIGNED TINYINT", "YEAR":
		return DtypeInt
	case "FLOAT", "FLOAT4", "FLOAT8", "DOUBLE", "REAL", "DECIMAL", "NUMERIC", "BIG_DECIMAL":
		return DtypeFloat
	case "BOOL", "BOOLEAN":
		return DtypeBool
	case "DATE", "DATETIME", "TIMESTAMP", "TIMESTAMPTZ", "TIME":
		return DtypeDatetime
	case "":
		return ""
	default:
		return DtypeString
	}
}

// convertValue 把驱动返回的原始值转为与列类型一致的 Go 值
func convertValue(raw any, dtype string) any {
	if raw == nil {
		return nil
	}
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}
	s, isString := raw.(string)
	if !isString {
		return raw
	}
	switch dtype {
	case DtypeInt:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case DtypeFloat:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case DtypeBool:
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return s
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// ToFloat 数值转 float64，非数值返回 false
func ToFloat(v any) (float64, bool) {
	if n, ok := toInt64(v); ok {
		return float64(n), true
	}
	switch f := v.(type) {
	case uint:
		return float64(f), true
	case uint64:
		return float64(f), true
	case float32:
		return float64(f), true
	case float64:
		return f, true
	}
	return 0, false
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

// JSONValues 逐个转换为可序列化的值
func JSONValues(values []any) []any {
	if values == nil {
		return nil
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = jsonValue(v)
	}
	return out
}

// jsonValue NaN 与 ±Inf 输出为 null，时间输出为 UTC 毫秒字符串
func jsonValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format("2006-01-02T15:04:05.000Z")
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
	case float32:
		if f := float64(val); math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
	}
	return v
}

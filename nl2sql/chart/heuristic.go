package chart

import (
	"fmt"

	"github.com/Malowking/bigo/nl2sql/datasource"
)

// pieMaxUniques 单个分类列少于该数量的取值时用饼图
const pieMaxUniques = 10

// Heuristic 按列类型选择图表
//   - 两个及以上数值列：前两个数值列的散点图
//   - 一个数值列加分类列：柱状图
//   - 分类列取值少于 10 个：按取值计数的饼图
//   - 其他：第一个数值列对行号的折线图
func Heuristic(rs *datasource.ResultSet) Spec {
	numeric := rs.NumericColumns()
	dtypes := rs.Dtypes()
	var categorical []int
	for i, col := range rs.Columns {
		if dtypes[col] == datasource.DtypeString {
			categorical = append(categorical, i)
		}
	}

	switch {
	case len(numeric) >= 2:
		x, y := numeric[0], numeric[1]
		return Spec{
			Type:   TypeScatter,
			X:      rs.Column(x),
			Y:      rs.Column(y),
			Title:  fmt.Sprintf("%s vs %s", rs.Columns[y], rs.Columns[x]),
			XLabel: rs.Columns[x],
			YLabel: rs.Columns[y],
		}
	case len(numeric) == 1 && len(categorical) >= 1:
		x, y := categorical[0], numeric[0]
		return Spec{
			Type:   TypeBar,
			X:      rs.Column(x),
			Y:      rs.Column(y),
			Title:  fmt.Sprintf("%s by %s", rs.Columns[y], rs.Columns[x]),
			XLabel: rs.Columns[x],
			YLabel: rs.Columns[y],
		}
	case len(categorical) >= 1:
		if names, values := countValues(rs.Column(categorical[0])); len(names) < pieMaxUniques {
			return Spec{
				Type:   TypePie,
				Names:  names,
				Values: values,
				Title:  rs.Columns[categorical[0]],
			}
		}
	}

	spec := Spec{Type: TypeLine, Title: "Query result"}
	if len(numeric) > 0 {
		spec.Y = rs.Column(numeric[0])
		spec.YLabel = rs.Columns[numeric[0]]
		spec.Title = rs.Columns[numeric[0]]
	}
	spec.X = make([]any, len(spec.Y))
	for i := range spec.Y {
		spec.X[i] = i
	}
	spec.XLabel = "index"
	return spec
}

// countValues 按首次出现顺序统计取值次数
func countValues(values []any) ([]any, []any) {
	var names []any
	counts := make(map[string]int)
	for _, v := range values {
		key := fmt.Sprint(v)
		if _, ok := counts[key]; !ok {
			names = append(names, v)
		}
		counts[key]++
	}
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = counts[fmt.Sprint(n)]
	}
	return names, out
}

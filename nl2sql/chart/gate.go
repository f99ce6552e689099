package chart

import (
	"github.com/Malowking/bigo/nl2sql/datasource"
)

// ShouldChart 多于一行且至少有一个数值列时才生成图表
func ShouldChart(rs *datasource.ResultSet) bool {
	if rs == nil || rs.Len() <= 1 {
		return false
	}
	return len(rs.NumericColumns()) > 0
}

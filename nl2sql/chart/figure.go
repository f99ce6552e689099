package chart

import (
	"fmt"
	"slices"

	"github.com/Malowking/bigo/nl2sql/datasource"
	"github.com/bytedance/sonic"
)

// 支持的图表类型
const (
	TypeBar       = "bar"
	TypeLine      = "line"
	TypeScatter   = "scatter"
	TypePie       = "pie"
	TypeHistogram = "histogram"
)

var supportedTypes = []string{TypeBar, TypeLine, TypeScatter, TypePie, TypeHistogram}

// Spec 图表表达式求值得到的描述
type Spec struct {
	Type   string
	X      []any
	Y      []any
	Names  []any
	Values []any
	Title  string
	XLabel string
	YLabel string
}

// Validate 检查类型与数据是否匹配
func (s Spec) Validate() error {
	if !slices.Contains(supportedTypes, s.Type) {
		return fmt.Errorf("unsupported chart type %q", s.Type)
	}
	switch s.Type {
	case TypeBar, TypeLine, TypeScatter:
		if len(s.X) == 0 || len(s.Y) == 0 {
			return fmt.Errorf("%s chart requires x and y", s.Type)
		}
		if len(s.X) != len(s.Y) {
			return fmt.Errorf("%s chart x and y length mismatch: %d vs %d", s.Type, len(s.X), len(s.Y))
		}
	case TypePie:
		if len(s.Names) == 0 || len(s.Names) != len(s.Values) {
			return fmt.Errorf("pie chart requires names and values of equal length")
		}
	case TypeHistogram:
		if len(s.X) == 0 {
			return fmt.Errorf("histogram requires x")
		}
	}
	return nil
}

// Trace plotly trace
type Trace struct {
	Type   string `json:"type"`
	Mode   string `json:"mode,omitempty"`
	X      []any  `json:"x,omitempty"`
	Y      []any  `json:"y,omitempty"`
	Labels []any  `json:"labels,omitempty"`
	Values []any  `json:"values,omitempty"`
}

// Axis plotly 坐标轴
type Axis struct {
	Title Title `json:"title"`
}

// Title plotly 标题
type Title struct {
	Text string `json:"text"`
}

// Layout plotly layout
type Layout struct {
	Title Title `json:"title"`
	XAxis *Axis `json:"xaxis,omitempty"`
	YAxis *Axis `json:"yaxis,omitempty"`
}

// Figure 与 plotly figure JSON 结构兼容
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// NewFigure 由描述构建 figure
func NewFigure(spec Spec) *Figure {
	spec.X, spec.Y = datasource.JSONValues(spec.X), datasource.JSONValues(spec.Y)
	spec.Names, spec.Values = datasource.JSONValues(spec.Names), datasource.JSONValues(spec.Values)
	trace := Trace{Type: spec.Type}
	switch spec.Type {
	case TypeLine:
		trace.Type = "scatter"
		trace.Mode = "lines"
		trace.X, trace.Y = spec.X, spec.Y
	case TypeScatter:
		trace.Mode = "markers"
		trace.X, trace.Y = spec.X, spec.Y
	case TypePie:
		trace.Labels, trace.Values = spec.Names, spec.Values
	case TypeHistogram:
		trace.X = spec.X
	default:
		trace.X, trace.Y = spec.X, spec.Y
	}

	fig := &Figure{
		Data:   []Trace{trace},
		Layout: Layout{Title: Title{Text: spec.Title}},
	}
	if spec.XLabel != "" {
		fig.Layout.XAxis = &Axis{Title: Title{Text: spec.XLabel}}
	}
	if spec.YLabel != "" {
		fig.Layout.YAxis = &Axis{Title: Title{Text: spec.YLabel}}
	}
	return fig
}

// JSON 序列化为 plotly JSON
func (f *Figure) JSON() (string, error) {
	data, err := sonic.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("marshal figure: %w", err)
	}
	return string(data), nil
}

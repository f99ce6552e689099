package chart

import (
	"context"
	"time"

	"github.com/Malowking/bigo/internal/observability"
	"github.com/Malowking/bigo/nl2sql/datasource"
	"github.com/gogf/gf/v2/frame/g"
)

// Result 一次图表渲染的结果
type Result struct {
	Code       string
	FigureJSON string
	Fallback   bool
}

// Renderer 表达式求值失败时退回启发式图表
type Renderer struct {
	sandbox *Sandbox
}

// NewRenderer 创建渲染器
func NewRenderer(timeout time.Duration) (*Renderer, error) {
	sandbox, err := NewSandbox(timeout)
	if err != nil {
		return nil, err
	}
	return &Renderer{sandbox: sandbox}, nil
}

// Render 从模型输出渲染 figure，不会因表达式错误失败
func (r *Renderer) Render(ctx context.Context, raw string, rs *datasource.ResultSet) (*Result, error) {
	code := ExtractCode(raw)
	result := &Result{Code: code}

	spec, err := r.sandbox.Evaluate(ctx, code, rs)
	if err != nil {
		g.Log().Warningf(ctx, "[Chart] expression evaluation failed, using heuristic chart: %v", err)
		observability.IncrementChartFallback()
		spec = Heuristic(rs)
		result.Fallback = true
	}

	figJSON, err := NewFigure(spec).JSON()
	if err != nil {
		return result, err
	}
	result.FigureJSON = figJSON
	return result, nil
}

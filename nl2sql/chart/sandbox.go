package chart

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Malowking/bigo/core/common"
	"github.com/Malowking/bigo/nl2sql/datasource"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

const (
	// DefaultCostLimit 单次求值的代价上限
	DefaultCostLimit = 1_000_000
	// DefaultTimeout 单次求值的超时
	DefaultTimeout = 2 * time.Second

	interruptCheckFrequency = 100
)

var (
	// 第一个代码块，语言标记可选
	codeFenceRe = regexp.MustCompile("(?s)```[\\w ]*\\n?(.*?)```")
	// 开头的 fig = 赋值
	figBindingRe = regexp.MustCompile(`^\s*fig\s*=\s*`)
)

// ExtractCode 从模型输出中取出图表表达式
// 取第一个代码块，去掉 fig.show() 行和开头的 fig = 赋值
func ExtractCode(raw string) string {
	code := strings.TrimSpace(raw)
	if m := codeFenceRe.FindStringSubmatch(code); m != nil {
		code = m[1]
	}

	lines := strings.Split(code, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.Contains(line, "fig.show()") {
			continue
		}
		kept = append(kept, line)
	}
	code = strings.TrimSpace(strings.Join(kept, "\n"))
	return strings.TrimSpace(figBindingRe.ReplaceAllString(code, ""))
}

// Sandbox 在受限环境中对图表表达式求值
// 只绑定 columns、dtypes、rows 三个变量，只提供 CEL 标准库
type Sandbox struct {
	env       *cel.Env
	costLimit uint64
	timeout   time.Duration
}

// NewSandbox 创建沙箱
func NewSandbox(timeout time.Duration) (*Sandbox, error) {
	env, err := cel.NewEnv(
		cel.Variable("columns", cel.ListType(cel.StringType)),
		cel.Variable("dtypes", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("rows", cel.ListType(cel.MapType(cel.StringType, cel.DynType))),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Sandbox{env: env, costLimit: DefaultCostLimit, timeout: timeout}, nil
}

// Evaluate 编译并求值，结果必须是图表描述 map
func (s *Sandbox) Evaluate(ctx context.Context, code string, rs *datasource.ResultSet) (spec Spec, err error) {
	defer common.RecoverToError(ctx, "chart sandbox", &err)

	if strings.TrimSpace(code) == "" {
		return Spec{}, fmt.Errorf("chart expression is empty")
	}

	ast, iss := s.env.Compile(code)
	if iss != nil && iss.Err() != nil {
		return Spec{}, fmt.Errorf("compile chart expression: %w", iss.Err())
	}

	prg, err := s.env.Program(ast,
		cel.CostLimit(s.costLimit),
		cel.InterruptCheckFrequency(interruptCheckFrequency),
	)
	if err != nil {
		return Spec{}, fmt.Errorf("build chart program: %w", err)
	}

	evalCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, _, err := prg.ContextEval(evalCtx, map[string]any{
		"columns": rs.Columns,
		"dtypes":  rs.Dtypes(),
		"rows":    rs.Records(),
	})
	if err != nil {
		return Spec{}, fmt.Errorf("evaluate chart expression: %w", err)
	}

	native, err := toNative(out)
	if err != nil {
		return Spec{}, err
	}
	fig, ok := native.(map[string]any)
	if !ok {
		return Spec{}, fmt.Errorf("chart expression must evaluate to a map, got %T", native)
	}
	return specFromMap(fig)
}

func specFromMap(m map[string]any) (Spec, error) {
	spec := Spec{}
	var ok bool
	if spec.Type, ok = m["type"].(string); !ok {
		return Spec{}, fmt.Errorf("chart map requires a string type")
	}
	spec.Type = strings.ToLower(spec.Type)
	spec.X = asList(m["x"])
	spec.Y = asList(m["y"])
	spec.Names = asList(m["names"])
	spec.Values = asList(m["values"])
	spec.Title, _ = m["title"].(string)
	spec.XLabel, _ = m["xLabel"].(string)
	spec.YLabel, _ = m["yLabel"].(string)

	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

func asList(v any) []any {
	list, _ := v.([]any)
	return list
}

// toNative 把 CEL 结果递归转为 Go 值
func toNative(v ref.Val) (any, error) {
	if types.IsError(v) {
		return nil, fmt.Errorf("chart expression error: %v", v)
	}

	switch val := v.(type) {
	case traits.Mapper:
		out := make(map[string]any)
		it := val.Iterator()
		for it.HasNext() == types.True {
			key := it.Next()
			k, ok := key.Value().(string)
			if !ok {
				return nil, fmt.Errorf("chart map keys must be strings, got %v", key.Type())
			}
			elem, err := toNative(val.Get(key))
			if err != nil {
				return nil, err
			}
			out[k] = elem
		}
		return out, nil
	case traits.Lister:
		size, ok := val.Size().(types.Int)
		if !ok {
			return nil, fmt.Errorf("invalid list size")
		}
		out := make([]any, 0, int(size))
		for i := types.Int(0); i < size; i++ {
			elem, err := toNative(val.Get(i))
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	}

	if v.Type() == types.NullType {
		return nil, nil
	}
	return v.Value(), nil
}

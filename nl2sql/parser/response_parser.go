package parser

import (
	"strings"

	"github.com/Malowking/bigo/core/errors"
	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"
)

const (
	RephrasedQueryKey = "rephrased_query"
	AnswerKey         = "answer"
	ErrorKey          = "error"

	// NotFollowUpSentinel 改写模型判定为独立问题时返回的标记
	NotFollowUpSentinel = "not a follow-up question"

	// DefaultSQLError SQL生成失败且无法提取原因时的提示
	DefaultSQLError = "Unable to generate SQL query"
)

// ParseRephrase 解析改写结果，缺少字段或类型不对时返回 ErrParseFailed
func ParseRephrase(raw string) (string, error) {
	return parseStringField(raw, RephrasedQueryKey, "rephrased query")
}

// IsFollowUp 改写结果不含独立问题标记（不区分大小写）时视为追问
func IsFollowUp(rephrased string) bool {
	return !strings.Contains(strings.ToLower(rephrased), NotFollowUpSentinel)
}

// ParseAnswer 解析回答，缺少字段或类型不对时返回 ErrParseFailed
func ParseAnswer(raw string) (string, error) {
	return parseStringField(raw, AnswerKey, "answer")
}

func parseStringField(raw, key, what string) (string, error) {
	obj, err := ExtractJSON(raw)
	if err != nil {
		return "", errors.Wrap(errors.ErrParseFailed, err, what+" parsing failed")
	}
	v, ok := obj[key].(string)
	if !ok {
		return "", errors.Newf(errors.ErrParseFailed, "%s parsing failed: field %q missing or not a string", what, key)
	}
	return v, nil
}

// SQLParser SQL生成结果解析器
type SQLParser struct {
	key       string
	validator *SQLValidator
}

// NewSQLParser 创建解析器，key 为模型输出中SQL所在的字段名
func NewSQLParser(key string) *SQLParser {
	return &SQLParser{key: key, validator: NewSQLValidator()}
}

// Parse 返回 (ok, text)：ok 为 true 时 text 是规范化后的只读查询；
// 否则 text 是展示给用户的错误说明（或未通过校验的SQL原文）
// 输出完全不是 JSON 时返回 ErrParseFailed
func (p *SQLParser) Parse(raw string) (bool, string, error) {
	text, obj, err := extractObject(raw)
	if err != nil {
		return false, "", errors.Wrap(errors.ErrParseFailed, err, "sql response parsing failed")
	}

	candidate, ok := obj[p.key].(string)
	if !ok || strings.TrimSpace(candidate) == "" {
		return false, extractErrorText(text, obj, p.key), nil
	}

	sql := NormalizeStatement(candidate)
	if err := p.validator.ValidateSelect(sql); err != nil {
		return false, sql, nil
	}
	return true, sql, nil
}

// extractErrorText 提取模型给出的失败原因
// 优先取按出现顺序第一个带撇号的字符串字段（通常是模型的自然语言说明），其次 error 字段
func extractErrorText(text string, obj map[string]any, sqlKey string) string {
	if s := firstProse(text, sqlKey); s != "" {
		return s
	}
	if s, ok := obj[ErrorKey].(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	return DefaultSQLError
}

// firstProse 按字段顺序查找第一个包含撇号的字符串值
func firstProse(text, sqlKey string) string {
	root, err := sonic.GetFromString(text)
	if err != nil {
		return ""
	}
	found := ""
	_ = root.ForEach(func(path ast.Sequence, node *ast.Node) bool {
		if path.Key == nil || *path.Key == sqlKey || node.TypeSafe() != ast.V_STRING {
			return true
		}
		s, err := node.String()
		if err != nil || !strings.Contains(s, "'") || strings.Contains(s, `"`) {
			return true
		}
		found = strings.TrimSpace(s)
		return found == ""
	})
	return found
}

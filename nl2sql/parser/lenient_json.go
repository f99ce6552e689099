package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bytedance/sonic"
)

var (
	thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)
	jsonFenceRe  = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\\n?(.*?)```")
)

// ParseError 模型输出无法解析为 JSON 对象
type ParseError struct {
	Raw   string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model output as JSON object: %v", e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ExtractJSON 宽松地把模型输出解析为 JSON 对象
// 依次尝试：严格解析、去掉代码块与推理块后解析、截取首尾花括号、补全被截断的对象
func ExtractJSON(raw string) (map[string]any, error) {
	_, obj, err := extractObject(raw)
	return obj, err
}

// extractObject 同 ExtractJSON，额外返回最终解析成功的 JSON 文本
func extractObject(raw string) (string, map[string]any, error) {
	text := strings.TrimSpace(thinkBlockRe.ReplaceAllString(raw, ""))
	if text == "" {
		return "", nil, &ParseError{Raw: raw, Cause: fmt.Errorf("empty content")}
	}

	if obj, err := decodeObject(text); err == nil {
		return text, obj, nil
	}

	if m := jsonFenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
		if obj, err := decodeObject(text); err == nil {
			return text, obj, nil
		}
	}

	start := strings.Index(text, "{")
	if start < 0 {
		return "", nil, &ParseError{Raw: raw, Cause: fmt.Errorf("no JSON object found")}
	}
	text = text[start:]

	if end := strings.LastIndex(text, "}"); end >= 0 {
		if obj, err := decodeObject(text[:end+1]); err == nil {
			return text[:end+1], obj, nil
		}
	}

	repaired, lastMember := closeTruncated(text)
	obj, err := decodeObject(repaired)
	if err == nil {
		return repaired, obj, nil
	}
	if lastMember > 0 {
		// 最后一个成员不完整（如只有键），退回到上一个完整成员
		repaired, _ = closeTruncated(text[:lastMember])
		if obj, err2 := decodeObject(repaired); err2 == nil {
			return repaired, obj, nil
		}
	}
	return "", nil, &ParseError{Raw: raw, Cause: err}
}

// decodeObject 严格解析为对象
func decodeObject(text string) (map[string]any, error) {
	var obj map[string]any
	if err := sonic.UnmarshalString(text, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("JSON value is not an object")
	}
	return obj, nil
}

// closeTruncated 补全被截断的 JSON：闭合字符串、去掉尾部逗号与冒号、按栈补齐括号
// 第二个返回值为最外层对象中最后一个逗号的位置
func closeTruncated(text string) (string, int) {
	var stack []byte
	inStr, esc := false, false
	lastMember := -1

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				return text[:i+1], lastMember
			}
		case ',':
			if len(stack) == 1 {
				lastMember = i
			}
		}
	}

	var b strings.Builder
	out := text
	if esc {
		out = out[:len(out)-1]
	}
	b.WriteString(out)
	if inStr {
		b.WriteByte('"')
	}

	repaired := strings.TrimRight(b.String(), " \t\r\n")
	repaired = strings.TrimSuffix(repaired, ",")
	if strings.HasSuffix(repaired, ":") {
		repaired += "null"
	}

	b.Reset()
	b.WriteString(repaired)
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String(), lastMember
}

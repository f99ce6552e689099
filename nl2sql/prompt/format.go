package prompt

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// NoneAnswer 出错轮次在对话记录中的回答占位
const NoneAnswer = "NONE"

// Turn 历史对话中的一轮，问题为用户原始输入
type Turn struct {
	UserText string
	Answer   string
	Error    string
}

// Example 少样本示例
type Example struct {
	Question string `json:"question"`
	SQLQuery string `json:"sqlQuery"`
}

// BuildTranscript 渲染对话记录，turns 按时间正序
// 每轮两行：User Query N: <问题> / <queryKey>: <回答>，轮次之间空一行
func BuildTranscript(queryKey string, turns []Turn) string {
	blocks := make([]string, 0, len(turns))
	for i, turn := range turns {
		answer := turn.Answer
		if turn.Error != "" {
			answer = NoneAnswer
		}
		blocks = append(blocks, fmt.Sprintf("User Query %d: %s\n%s: %s", i+1, turn.UserText, queryKey, answer))
	}
	return strings.Join(blocks, "\n\n")
}

// FormatExamples 渲染示例：User Question: q / <Dialect> Query: sql
func FormatExamples(dialectLabel string, examples []Example) string {
	var sb strings.Builder
	for _, ex := range examples {
		sb.WriteString(fmt.Sprintf("User Question: %s\n", ex.Question))
		sb.WriteString(fmt.Sprintf("%s Query: %s\n\n", dialectLabel, ex.SQLQuery))
	}
	return strings.TrimSpace(sb.String())
}

// FormatRelationships 只渲染检索到的表之间的关系，表按检索顺序，列按列名排序
// 关系另一端不在 tables 中的不输出；描述按表去重
func FormatRelationships(tables []string, relationships map[string]map[string]string, descriptions map[string]string) string {
	retrieved := make(map[string]bool, len(tables))
	for _, table := range tables {
		retrieved[table] = true
	}

	var sb strings.Builder
	idx := 1
	for _, table := range tables {
		cols := relationships[table]
		var lines []string
		for _, col := range slices.Sorted(maps.Keys(cols)) {
			target := cols[col]
			targetTable, _, _ := strings.Cut(target, ".")
			if retrieved[targetTable] {
				lines = append(lines, fmt.Sprintf("  - %s.%s -> %s", table, col, target))
			}
		}
		if len(lines) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("Table %d: %s\n", idx, table))
		sb.WriteString(strings.Join(lines, "\n"))
		sb.WriteString("\n\n")
		idx++
	}

	seen := make(map[string]bool)
	idx = 1
	for _, table := range tables {
		desc := descriptions[table]
		if desc == "" || seen[desc] {
			continue
		}
		seen[desc] = true
		sb.WriteString(fmt.Sprintf("%d. %s\n", idx, desc))
		idx++
	}

	if out := strings.TrimSpace(sb.String()); out != "" {
		return out
	}
	return "None"
}

// FormatDtypes 渲染列类型，每行 "<列名>    <类型>"
func FormatDtypes(columns []string, dtypes map[string]string) string {
	lines := make([]string, 0, len(columns))
	for _, col := range columns {
		lines = append(lines, fmt.Sprintf("%s    %s", col, dtypes[col]))
	}
	return strings.Join(lines, "\n")
}

// DialectLabel 由方言键得到展示名，如 apache_pinot -> Apache Pinot
func DialectLabel(dialectKey string) string {
	parts := strings.FieldsFunc(dialectKey, func(r rune) bool { return r == '_' || r == '-' })
	for i, p := range parts {
		if len(p) <= 3 {
			// 缩写整体大写，如 sql -> SQL
			parts[i] = strings.ToUpper(p)
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	if len(parts) == 0 {
		return "SQL"
	}
	return strings.Join(parts, " ")
}

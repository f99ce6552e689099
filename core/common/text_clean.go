package common

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// 管道符两侧的空白
	pipeSpaceRe = regexp.MustCompile(`[ \t\f\v]*\|[ \t\f\v]*`)
	// 多个空白合并为一个空格
	spaceRe = regexp.MustCompile(`\s+`)
)

// 零宽字符集合
var zeroWidthRunes = map[rune]bool{
	'\u200B': true, // Zero Width Space
	'\u200C': true, // Zero Width Non-Joiner
	'\u200D': true, // Zero Width Joiner
	'\uFEFF': true, // Zero Width No-Break Space (BOM)
	'\u2060': true, // Word Joiner
}

// CleanTableString 去掉 markdown 表格中管道符两侧的空白，逐行处理
func CleanTableString(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = pipeSpaceRe.ReplaceAllString(line, "|")
	}
	return strings.Join(lines, "\n")
}

// CleanCell 清洗单元格文本，保证不破坏表格结构
func CleanCell(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range norm.NFC.String(s) {
		if zeroWidthRunes[r] {
			continue
		}
		// 控制字符（含换行）替换为空格
		if r < 0x20 || r == 0x7F {
			b.WriteRune(' ')
			continue
		}
		if r == '|' {
			b.WriteString(`\|`)
			continue
		}
		b.WriteRune(r)
	}

	return strings.TrimSpace(spaceRe.ReplaceAllString(b.String(), " "))
}

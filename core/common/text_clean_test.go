package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTableString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"去掉管道符两侧空格", "| a  |   b |", "|a|b|"},
		{"多行分别处理", "| a | b |\n| --- | --- |\n| 1 | 2 |", "|a|b|\n|---|---|\n|1|2|"},
		{"单元格内部空格保留", "| new york | 3 |", "|new york|3|"},
		{"空字符串", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanTableString(tt.input))
		})
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"换行替换为空格", "line1\nline2", "line1 line2"},
		{"零宽字符去除", "a\u200Bb", "ab"},
		{"管道符转义", "a|b", `a\|b`},
		{"多余空白合并", "  a   b  ", "a b"},
		{"中文不受影响", "华东 区域", "华东 区域"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanCell(tt.input))
		})
	}
}

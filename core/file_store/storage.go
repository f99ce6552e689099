package file_store

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// StorageType 存储类型
type StorageType string

const (
	StorageTypeRustFS StorageType = "rustfs"
	StorageTypeLocal  StorageType = "local"
)

// ExamplePrefix 示例库在存储中的目录
const ExamplePrefix = "examples"

// Example 示例库中的一条问题与SQL
type Example struct {
	Question  string    `json:"question"`
	SQLQuery  string    `json:"sqlQuery"`
	Tables    []string  `json:"tables,omitempty"` // SQL 引用的表
	CreatedAt time.Time `json:"createdAt"`
}

// ExampleBook 按租户持久化的 few-shot 示例库，每个租户一个 JSON-lines 对象
type ExampleBook interface {
	// Append 追加一条示例
	Append(ctx context.Context, tenantID string, example Example) error
	// List 按写入顺序列出租户的全部示例
	List(ctx context.Context, tenantID string) ([]Example, error)
	// Type 存储类型
	Type() StorageType
}

// exampleKey 租户示例库的对象路径: examples/<tenant>.jsonl
func exampleKey(tenantID string) string {
	return path.Join(ExamplePrefix, tenantID+".jsonl")
}

// encodeExample 编码为一行 JSON（含换行符）
func encodeExample(example Example) ([]byte, error) {
	if strings.TrimSpace(example.Question) == "" || strings.TrimSpace(example.SQLQuery) == "" {
		return nil, fmt.Errorf("example question and sqlQuery are required")
	}
	if example.CreatedAt.IsZero() {
		example.CreatedAt = time.Now().UTC()
	}
	line, err := sonic.Marshal(example)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal example: %w", err)
	}
	return append(line, '\n'), nil
}

// decodeExamples 逐行解析，空行跳过
func decodeExamples(r io.Reader) ([]Example, error) {
	examples := make([]Example, 0)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var ex Example
		if err := sonic.Unmarshal(line, &ex); err != nil {
			return nil, fmt.Errorf("invalid example at line %d: %w", lineNo, err)
		}
		examples = append(examples, ex)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read examples: %w", err)
	}
	return examples, nil
}

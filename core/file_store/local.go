package file_store

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/Malowking/bigo/core/errors"
	"github.com/gogf/gf/v2/frame/g"
)

// LocalExampleBook 本地文件示例库，路径为 <root>/examples/<tenant>.jsonl
type LocalExampleBook struct {
	root string
	mu   sync.Mutex
}

// NewLocalExampleBook 创建本地示例库，root 为空时使用 upload
func NewLocalExampleBook(root string) (*LocalExampleBook, error) {
	if root == "" {
		root = "upload"
	}
	dir := filepath.Join(root, ExamplePrefix)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Newf(errors.ErrExampleBookWrite, "failed to create directory %s: %v", dir, err)
	}
	return &LocalExampleBook{root: root}, nil
}

// Type 存储类型
func (b *LocalExampleBook) Type() StorageType {
	return StorageTypeLocal
}

// Append 以 O_APPEND 方式追加一行
func (b *LocalExampleBook) Append(ctx context.Context, tenantID string, example Example) error {
	line, err := encodeExample(example)
	if err != nil {
		return errors.Newf(errors.ErrInvalidParameter, "%v", err)
	}

	finalPath := filepath.Join(b.root, filepath.FromSlash(exampleKey(tenantID)))

	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := os.OpenFile(finalPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		g.Log().Errorf(ctx, "Failed to open example book %s: %v", finalPath, err)
		return errors.Newf(errors.ErrExampleBookWrite, "failed to open example book %s: %v", finalPath, err)
	}
	defer f.Close()

	if _, err = f.Write(line); err != nil {
		g.Log().Errorf(ctx, "Failed to write example book %s: %v", finalPath, err)
		return errors.Newf(errors.ErrExampleBookWrite, "failed to write example book %s: %v", finalPath, err)
	}

	g.Log().Infof(ctx, "Example appended to local example book: %s", finalPath)
	return nil
}

// List 读取租户全部示例，文件不存在时返回空列表
func (b *LocalExampleBook) List(ctx context.Context, tenantID string) ([]Example, error) {
	finalPath := filepath.Join(b.root, filepath.FromSlash(exampleKey(tenantID)))

	f, err := os.Open(finalPath)
	if os.IsNotExist(err) {
		return []Example{}, nil
	}
	if err != nil {
		return nil, errors.Newf(errors.ErrFileReadFailed, "failed to open example book %s: %v", finalPath, err)
	}
	defer f.Close()

	examples, err := decodeExamples(f)
	if err != nil {
		g.Log().Errorf(ctx, "Failed to parse example book %s: %v", finalPath, err)
		return nil, errors.Newf(errors.ErrFileReadFailed, "failed to parse example book %s: %v", finalPath, err)
	}
	return examples, nil
}

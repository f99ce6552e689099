package file_store

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/Malowking/bigo/core/errors"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// RustfsConfig RustFS 连接配置
type RustfsConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	SSL        bool
}

// InitRustFS 初始化 RustFS 客户端，bucket 不存在时创建
func InitRustFS(ctx context.Context, conf RustfsConfig) (*minio.Client, error) {
	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.SSL,
	})
	if err != nil {
		return nil, errors.Newf(errors.ErrInternalError, "failed to create MinIO client: %v", err)
	}

	exists, err := client.BucketExists(ctx, conf.BucketName)
	if err != nil {
		return nil, errors.Newf(errors.ErrInternalError, "failed to check if bucket exists: %v", err)
	}

	if exists {
		g.Log().Printf(ctx, "Bucket '%s' already exists, skipping creation.", conf.BucketName)
		return client, nil
	}

	err = client.MakeBucket(ctx, conf.BucketName, minio.MakeBucketOptions{Region: ""})
	if err != nil {
		return nil, errors.Newf(errors.ErrInternalError, "failed to create bucket: %v", err)
	}

	g.Log().Printf(ctx, "Created bucket '%s'", conf.BucketName)
	return client, nil
}

// RustFSExampleBook 对象存储示例库，追加时读出整个对象再写回
type RustFSExampleBook struct {
	client     *minio.Client
	bucketName string
	mu         sync.Mutex
}

// NewRustFSExampleBook 创建对象存储示例库
func NewRustFSExampleBook(client *minio.Client, bucketName string) *RustFSExampleBook {
	return &RustFSExampleBook{client: client, bucketName: bucketName}
}

// Type 存储类型
func (b *RustFSExampleBook) Type() StorageType {
	return StorageTypeRustFS
}

// Append 追加一条示例
func (b *RustFSExampleBook) Append(ctx context.Context, tenantID string, example Example) error {
	line, err := encodeExample(example)
	if err != nil {
		return errors.Newf(errors.ErrInvalidParameter, "%v", err)
	}

	key := exampleKey(tenantID)

	b.mu.Lock()
	defer b.mu.Unlock()

	current, err := b.readObject(ctx, key)
	if err != nil {
		return errors.Newf(errors.ErrExampleBookWrite, "failed to read example book %s: %v", key, err)
	}
	if len(current) > 0 && current[len(current)-1] != '\n' {
		current = append(current, '\n')
	}
	content := append(current, line...)

	_, err = b.client.PutObject(ctx, b.bucketName, key, bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "application/x-ndjson"})
	if err != nil {
		g.Log().Errorf(ctx, "Failed to upload example book to RustFS: %v", err)
		return errors.Newf(errors.ErrExampleBookWrite, "failed to upload example book %s: %v", key, err)
	}

	g.Log().Infof(ctx, "Example appended to RustFS example book: bucket=%s, key=%s", b.bucketName, key)
	return nil
}

// List 读取租户全部示例，对象不存在时返回空列表
func (b *RustFSExampleBook) List(ctx context.Context, tenantID string) ([]Example, error) {
	key := exampleKey(tenantID)
	content, err := b.readObject(ctx, key)
	if err != nil {
		return nil, errors.Newf(errors.ErrFileReadFailed, "failed to read example book %s: %v", key, err)
	}
	examples, err := decodeExamples(bytes.NewReader(content))
	if err != nil {
		return nil, errors.Newf(errors.ErrFileReadFailed, "failed to parse example book %s: %v", key, err)
	}
	return examples, nil
}

// readObject 读取整个对象，不存在时返回 nil
func (b *RustFSExampleBook) readObject(ctx context.Context, key string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, nil
		}
		return nil, err
	}
	defer obj.Close()

	if _, err = obj.Stat(); err != nil {
		if isNoSuchKey(err) {
			return nil, nil
		}
		return nil, err
	}
	return io.ReadAll(obj)
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

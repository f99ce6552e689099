package file_store

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"
)

// InitExampleBook 按 storage.type 初始化示例库
func InitExampleBook(ctx context.Context) (ExampleBook, error) {
	// 获取存储类型配置，默认为 local
	storageTypeStr := g.Cfg().MustGet(ctx, "storage.type", "local").String()
	localRoot := g.Cfg().MustGet(ctx, "storage.localRoot", "upload").String()

	switch StorageType(storageTypeStr) {
	case StorageTypeRustFS:
		conf := RustfsConfig{
			Endpoint:   g.Cfg().MustGet(ctx, "rustfs.endpoint", "").String(),
			AccessKey:  g.Cfg().MustGet(ctx, "rustfs.accessKey").String(),
			SecretKey:  g.Cfg().MustGet(ctx, "rustfs.secretKey").String(),
			BucketName: g.Cfg().MustGet(ctx, "rustfs.bucketName", "bigo").String(),
			SSL:        g.Cfg().MustGet(ctx, "rustfs.ssl", false).Bool(),
		}
		if conf.Endpoint == "" {
			// 如果没有配置rustfs，使用本地存储
			g.Log().Infof(ctx, "RustFS not configured, using local example book")
			return NewLocalExampleBook(localRoot)
		}

		client, err := InitRustFS(ctx, conf)
		if err != nil {
			return nil, err
		}
		g.Log().Infof(ctx, "Using RustFS example book as configured, bucket: %s", conf.BucketName)
		return NewRustFSExampleBook(client, conf.BucketName), nil
	case StorageTypeLocal:
		g.Log().Infof(ctx, "Using local example book as configured, root: %s", localRoot)
		return NewLocalExampleBook(localRoot)
	default:
		g.Log().Warningf(ctx, "Unknown storage type %q, using local example book", storageTypeStr)
		return NewLocalExampleBook(localRoot)
	}
}

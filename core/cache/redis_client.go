package cache

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"
	"github.com/redis/go-redis/v9"
)

var (
	rdb *redis.Client
)

// InitRedis 初始化Redis客户端，redis.enabled 为 false 时跳过
func InitRedis(ctx context.Context) error {
	if !g.Cfg().MustGet(ctx, "redis.enabled", false).Bool() {
		g.Log().Info(ctx, "Redis is not enabled, feedback idempotency guard disabled")
		return nil
	}

	// 从配置文件读取Redis配置
	address := g.Cfg().MustGet(ctx, "redis.address", "localhost:6379").String()
	password := g.Cfg().MustGet(ctx, "redis.password", "").String()
	db := g.Cfg().MustGet(ctx, "redis.db", 0).Int()
	maxRetries := g.Cfg().MustGet(ctx, "redis.maxRetries", 3).Int()
	poolSize := g.Cfg().MustGet(ctx, "redis.poolSize", 10).Int()
	minIdleConns := g.Cfg().MustGet(ctx, "redis.minIdleConns", 2).Int()

	client := redis.NewClient(&redis.Options{
		Addr:         address,
		Password:     password,
		DB:           db,
		MaxRetries:   maxRetries,
		PoolSize:     poolSize,
		MinIdleConns: minIdleConns,
	})

	// 测试连接
	if err := client.Ping(ctx).Err(); err != nil {
		g.Log().Errorf(ctx, "Redis connection failed: %v", err)
		_ = client.Close()
		return err
	}

	rdb = client
	g.Log().Infof(ctx, "Redis initialized successfully: %s, DB: %d", address, db)
	return nil
}

// GetRedisClient 获取Redis客户端，未启用时为 nil
func GetRedisClient() *redis.Client {
	return rdb
}

// CloseRedis 关闭Redis连接
func CloseRedis(ctx context.Context) error {
	if rdb != nil {
		g.Log().Info(ctx, "Closing Redis connection")
		return rdb.Close()
	}
	return nil
}

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gogf/gf/v2/frame/g"
	"github.com/redis/go-redis/v9"
)

const (
	feedbackKeyPrefix  = "bigo:feedback:"
	DefaultFeedbackTTL = 24 * time.Hour
)

// FeedbackGuard 反馈写入的幂等保护，同一租户的同一问题与SQL在 TTL 内只写入一次
// client 为 nil 时不做保护
type FeedbackGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFeedbackGuard 创建反馈幂等保护
func NewFeedbackGuard(client *redis.Client, ttl time.Duration) *FeedbackGuard {
	if ttl <= 0 {
		ttl = DefaultFeedbackTTL
	}
	return &FeedbackGuard{client: client, ttl: ttl}
}

// Enabled 是否启用
func (f *FeedbackGuard) Enabled() bool {
	return f != nil && f.client != nil
}

// Acquire SETNX 占位，返回 false 表示重复提交
func (f *FeedbackGuard) Acquire(ctx context.Context, tenantID, question, sqlQuery string) (bool, error) {
	if !f.Enabled() {
		return true, nil
	}
	ok, err := f.client.SetNX(ctx, FeedbackKey(tenantID, question, sqlQuery), time.Now().UTC().Format(time.RFC3339), f.ttl).Result()
	if err != nil {
		g.Log().Warningf(ctx, "Feedback guard SETNX failed: %v", err)
		return false, err
	}
	return ok, nil
}

// Release 写入失败时释放占位，允许重试
func (f *FeedbackGuard) Release(ctx context.Context, tenantID, question, sqlQuery string) {
	if !f.Enabled() {
		return
	}
	if err := f.client.Del(ctx, FeedbackKey(tenantID, question, sqlQuery)).Err(); err != nil {
		g.Log().Warningf(ctx, "Feedback guard release failed: %v", err)
	}
}

// FeedbackKey 幂等键: bigo:feedback:<tenant>:<sha256(question \x00 sql)>
func FeedbackKey(tenantID, question, sqlQuery string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(question) + "\x00" + strings.TrimSpace(sqlQuery)))
	return feedbackKeyPrefix + tenantID + ":" + hex.EncodeToString(sum[:])
}

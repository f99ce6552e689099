package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackKey(t *testing.T) {
	t.Run("相同输入得到相同的键", func(t *testing.T) {
		a := FeedbackKey("T1", "total sales", "SELECT 1;")
		b := FeedbackKey("T1", "  total sales ", "SELECT 1;\n")
		assert.Equal(t, a, b)
		assert.True(t, strings.HasPrefix(a, "bigo:feedback:T1:"))
	})

	t.Run("租户不同键不同", func(t *testing.T) {
		assert.NotEqual(t, FeedbackKey("T1", "q", "s"), FeedbackKey("T2", "q", "s"))
	})
}

func TestFeedbackGuardDisabled(t *testing.T) {
	guard := NewFeedbackGuard(nil, 0)
	assert.False(t, guard.Enabled())

	ok, err := guard.Acquire(context.Background(), "T1", "q", "s")
	require.NoError(t, err)
	assert.True(t, ok)

	guard.Release(context.Background(), "T1", "q", "s")
}

func TestFeedbackGuardRedis(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis 未运行，跳过测试")
	}

	guard := NewFeedbackGuard(client, time.Minute)
	question := "q-" + uuid.NewString()

	ok, err := guard.Acquire(ctx, "T1", question, "SELECT 1;")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = guard.Acquire(ctx, "T1", question, "SELECT 1;")
	require.NoError(t, err)
	assert.False(t, ok, "重复提交应被拦截")

	guard.Release(ctx, "T1", question, "SELECT 1;")
	ok, err = guard.Acquire(ctx, "T1", question, "SELECT 1;")
	require.NoError(t, err)
	assert.True(t, ok, "释放后可以再次写入")
	guard.Release(ctx, "T1", question, "SELECT 1;")
}

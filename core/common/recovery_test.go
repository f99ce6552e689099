package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverPanic(t *testing.T) {
	ctx := context.Background()

	t.Run("正常执行不会panic", func(t *testing.T) {
		defer RecoverPanic(ctx, "test-normal")
		_ = 1 + 1
	})

	t.Run("捕获panic", func(t *testing.T) {
		recovered := false
		func() {
			defer func() { recovered = true }()
			defer RecoverPanic(ctx, "test-panic")
			panic("test panic")
		}()
		assert.True(t, recovered)
	})
}

func TestRecoverToError(t *testing.T) {
	ctx := context.Background()

	run := func(fn func() error) (err error) {
		defer RecoverToError(ctx, "test-sandbox", &err)
		return fn()
	}

	t.Run("正常返回错误", func(t *testing.T) {
		want := errors.New("boom")
		assert.Equal(t, want, run(func() error { return want }))
	})

	t.Run("panic被转换为错误", func(t *testing.T) {
		err := run(func() error { panic("bad figure") })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panic in task test-sandbox")
		assert.Contains(t, err.Error(), "bad figure")
	})
}

func TestSafeGo(t *testing.T) {
	ctx := context.Background()

	t.Run("正常goroutine执行", func(t *testing.T) {
		done := make(chan bool, 1)
		SafeGo(ctx, "test-normal-goroutine", func() {
			done <- true
		})

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("Goroutine did not complete in time")
		}
	})

	t.Run("goroutine中panic被捕获", func(t *testing.T) {
		done := make(chan bool, 1)
		SafeGo(ctx, "test-panic-goroutine", func() {
			defer func() { done <- true }()
			panic("intentional panic")
		})

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("Goroutine did not complete in time")
		}
	})
}

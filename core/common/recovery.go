package common

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/gogf/gf/v2/frame/g"
)

// RecoverPanic 通用 panic 恢复函数
// 在 defer 中调用，捕获并记录 panic 信息（包含完整堆栈）
func RecoverPanic(ctx context.Context, taskName string) {
	if r := recover(); r != nil {
		g.Log().Criticalf(ctx,
			"[PANIC RECOVERED] Task: %s\nError: %v\nStack Trace:\n%s",
			taskName, r, string(debug.Stack()))
	}
}

// RecoverToError 在 defer 中调用，把 panic 转换为 errp 指向的错误
//
// 使用示例:
//
//	func run() (err error) {
//	    defer RecoverToError(ctx, "chart-sandbox", &err)
//	    ...
//	}
func RecoverToError(ctx context.Context, taskName string, errp *error) {
	if r := recover(); r != nil {
		g.Log().Criticalf(ctx,
			"[PANIC RECOVERED] Task: %s\nError: %v\nStack Trace:\n%s",
			taskName, r, string(debug.Stack()))
		if errp != nil {
			*errp = fmt.Errorf("panic in task %s: %v", taskName, r)
		}
	}
}

// SafeGo 安全启动 goroutine
// 自动捕获 panic 并记录，避免 goroutine 崩溃导致程序不稳定
func SafeGo(ctx context.Context, taskName string, fn func()) {
	go func() {
		defer RecoverPanic(ctx, taskName)
		fn()
	}()
}

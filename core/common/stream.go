package common

import (
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/gogf/gf/v2/net/ghttp"
)

const (
	SSEStart = "[START]"
	SSEDone  = "[DONE]"
)

// EventSink SSE 输出目标，*ghttp.Response 满足该接口
type EventSink interface {
	Writeln(content ...interface{})
	Flush()
}

// SetSSEHeaders 设置 SSE 响应头
func SetSSEHeaders(resp *ghttp.Response) {
	resp.Header().Set("Content-Type", "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.Header().Set("X-Accel-Buffering", "no") // 禁用Nginx缓冲
	resp.Header().Set("Access-Control-Allow-Origin", "*")
}

// SSEWriter 按 `data:<payload>` 逐条写出事件，每条写完立即 flush
type SSEWriter struct {
	mu  sync.Mutex
	out EventSink
}

// NewSSEWriter 创建 SSE 写出器
func NewSSEWriter(out EventSink) *SSEWriter {
	return &SSEWriter{out: out}
}

// Start 写出流开始标记
func (w *SSEWriter) Start() {
	w.writeSSEData(SSEStart)
}

// WriteText 写出纯文本事件
func (w *SSEWriter) WriteText(text string) {
	w.writeSSEData(text)
}

// WriteJSON 写出 JSON 事件
func (w *SSEWriter) WriteJSON(v any) error {
	marshal, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal sse event: %w", err)
	}
	w.writeSSEData(string(marshal))
	return nil
}

// Done 写出流结束标记
func (w *SSEWriter) Done() {
	w.writeSSEData(SSEDone)
}

// writeSSEData 写入SSE事件
func (w *SSEWriter) writeSSEData(data string) {
	if len(data) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.out.Writeln(fmt.Sprintf("data:%s\n", data))
	w.out.Flush()
}

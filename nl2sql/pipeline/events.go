package pipeline

import (
	"context"
)

// EventKind 事件类别
type EventKind int

const (
	EventProgress EventKind = iota // 阶段进度
	EventContent                   // 阶段产出
	EventFinal                     // 最终响应，总是最后一个
)

// 内容事件类型
const (
	ContentUserTextRephrased = "userTextRephrased"
	ContentSQLQuery          = "sqlQuery"
	ContentSQLQueryResponse  = "sqlQueryResponse"
	ContentAnswer            = "answer"
	ContentSQLError          = "sqlError"
	ContentError             = "error"
)

// 进度文本
const (
	ProgressRephrasing       = "Rephrasing user query"
	ProgressVectorization    = "Query Vectorization"
	ProgressTables           = "Searching relevant tables"
	ProgressColumns          = "Searching relevant columns"
	ProgressExamples         = "Searching relevant SQL examples"
	ProgressGeneratingSQL    = "Generating SQL query"
	ProgressParsingSQL       = "Parsing SQL query"
	ProgressExecutingSQL     = "Executing SQL query"
	ProgressSQLExecuted      = "SQL query executed"
	ProgressGeneratingAnswer = "Generating answer"
	ProgressParsingAnswer    = "Parsing answer"
	ProgressGeneratingGraph  = "Generating Graph"
	ProgressGraphCode        = "Graph code generated"
	ProgressGraphFigure      = "Graph figure generated"
)

// Content 内容事件载荷
type Content struct {
	Type    string `json:"type"`
	Content any    `json:"content"`
}

// Envelope 最终响应
type Envelope struct {
	BotResponse []map[string]any `json:"botResponse"`
	Error       string           `json:"error"`
}

// Event 流式事件
type Event struct {
	Kind     EventKind
	Progress string
	Content  *Content
	Final    *Envelope
}

// Text 进度事件的渲染文本
func (e Event) Text() string {
	return "[LOGS] - " + e.Progress
}

// emitter 向消费者发送事件，消费者离开后丢弃
type emitter func(Event)

func (emit emitter) progress(text string) {
	emit(Event{Kind: EventProgress, Progress: text})
}

func (emit emitter) content(typ string, content any) {
	emit(Event{Kind: EventContent, Content: &Content{Type: typ, Content: content}})
}

func discard(Event) {}

// channelEmitter 非阻塞地写入通道，done 关闭后直接丢弃
func channelEmitter(ch chan<- Event, done <-chan struct{}) emitter {
	return func(ev Event) {
		select {
		case <-done:
			return
		default:
		}
		select {
		case ch <- ev:
		case <-done:
		}
	}
}

// doneOf 请求上下文的结束信号
func doneOf(ctx context.Context) <-chan struct{} {
	if done := ctx.Done(); done != nil {
		return done
	}
	return make(chan struct{})
}

package v1

import (
	"github.com/gogf/gf/v2/frame/g"
)

// UserFeedback 用户对上一轮结果的反馈
type UserFeedback struct {
	Feedback         string `json:"feedback"`
	PreviousSQLQuery string `json:"previousSqlQuery"`
}

// AnswerRequest 问答请求体，同步与流式接口共用
type AnswerRequest struct {
	EmailID        string        `json:"emailID"`
	ClientName     string        `json:"clientName"`
	TenantID       string        `json:"tenantId" v:"required"`
	UserID         string        `json:"userID" v:"required"`
	SessionID      string        `json:"sessionID" v:"required"`
	ConversationID string        `json:"conversationID" v:"required"`
	UserText       string        `json:"userText" v:"required"`
	Date           string        `json:"date" v:"required"` // YYYY-MM-DDTHH:MM:SS.sssZ
	UserFeedback   *UserFeedback `json:"userFeedback"`
}

type GetAnswerReq struct {
	g.Meta `path:"/v1/get_answer" method:"post" tags:"assistant" no_wrap_resp:"true"`
	AnswerRequest
}

// GetAnswerRes botResponse 为扁平化的分析记录，出错时为空数组
type GetAnswerRes struct {
	g.Meta      `mime:"application/json"`
	BotResponse []map[string]any `json:"botResponse"`
	Error       string           `json:"error"`
}

type GetAnswerStreamingReq struct {
	g.Meta `path:"/v1/get_answer_streaming" method:"post" tags:"assistant" no_wrap_resp:"true"`
	AnswerRequest
}

// GetAnswerStreamingRes 内容通过 SSE 写出
type GetAnswerStreamingRes struct {
	g.Meta `mime:"text/event-stream"`
}

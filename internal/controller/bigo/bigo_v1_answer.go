package bigo

import (
	"context"

	v1 "github.com/Malowking/bigo/api/bigo/v1"
	"github.com/Malowking/bigo/core/common"
	"github.com/Malowking/bigo/internal/service"
	"github.com/Malowking/bigo/nl2sql/pipeline"
	"github.com/gogf/gf/v2/frame/g"
)

// GetAnswer 同步问答
func (c *ControllerV1) GetAnswer(ctx context.Context, req *v1.GetAnswerReq) (res *v1.GetAnswerRes, err error) {
	g.Log().Infof(ctx, "GetAnswer request received - Tenant: %s, User: %s, Session: %s, Conversation: %s",
		req.TenantID, req.UserID, req.SessionID, req.ConversationID)

	rec, err := service.Assistant().Answer(ctx, toPipelineRequest(&req.AnswerRequest))
	if err != nil {
		return nil, err
	}

	env := pipeline.BuildEnvelope(rec, nil)
	return &v1.GetAnswerRes{BotResponse: env.BotResponse, Error: env.Error}, nil
}

// GetAnswerStreaming 流式问答，按阶段写出 SSE 事件
func (c *ControllerV1) GetAnswerStreaming(ctx context.Context, req *v1.GetAnswerStreamingReq) (res *v1.GetAnswerStreamingRes, err error) {
	g.Log().Infof(ctx, "GetAnswerStreaming request received - Tenant: %s, User: %s, Session: %s, Conversation: %s",
		req.TenantID, req.UserID, req.SessionID, req.ConversationID)

	events, err := service.Assistant().Stream(ctx, toPipelineRequest(&req.AnswerRequest))
	if err != nil {
		return nil, err
	}

	r := g.RequestFromCtx(ctx)
	common.SetSSEHeaders(r.Response)
	writer := common.NewSSEWriter(r.Response)
	writer.Start()
	for ev := range events {
		switch ev.Kind {
		case pipeline.EventProgress:
			writer.WriteText(ev.Text())
		case pipeline.EventContent:
			err = writer.WriteJSON(ev.Content)
		case pipeline.EventFinal:
			err = writer.WriteJSON(ev.Final)
		}
		if err != nil {
			g.Log().Warningf(ctx, "Write stream event failed: %v", err)
		}
	}
	writer.Done()
	return nil, nil
}

func toPipelineRequest(req *v1.AnswerRequest) *pipeline.Request {
	out := &pipeline.Request{
		EmailID:        req.EmailID,
		ClientName:     req.ClientName,
		TenantID:       req.TenantID,
		UserID:         req.UserID,
		SessionID:      req.SessionID,
		ConversationID: req.ConversationID,
		UserText:       req.UserText,
		Date:           req.Date,
	}
	if req.UserFeedback != nil {
		out.UserFeedback = &pipeline.UserFeedback{
			Feedback:         req.UserFeedback.Feedback,
			PreviousSQLQuery: req.UserFeedback.PreviousSQLQuery,
		}
	}
	return out
}

package bigo

import (
	"context"

	v1 "github.com/Malowking/bigo/api/bigo/v1"
	"github.com/Malowking/bigo/internal/service"
	"github.com/Malowking/bigo/nl2sql/feedback"
	"github.com/gogf/gf/v2/frame/g"
)

// InsertFeedback 写入纠正后的问题与SQL
func (c *ControllerV1) InsertFeedback(ctx context.Context, req *v1.InsertFeedbackReq) (res *v1.InsertFeedbackRes, err error) {
	g.Log().Infof(ctx, "InsertFeedback request received - Tenant: %s, Client: %s", req.TenantID, req.ClientName)

	result, err := service.Feedback().Ingest(ctx, &feedback.Request{
		TenantID:        req.TenantID,
		UserText:        req.UserText,
		CorrectSQLQuery: req.CorrectSQLQuery,
		ClientName:      req.ClientName,
	})
	if err != nil {
		return nil, err
	}

	return &v1.InsertFeedbackRes{
		InsertCount:        result.InsertCount,
		IDs:                result.IDs,
		ExampleBookUpdated: result.ExampleBookUpdated,
	}, nil
}

package v1

import (
	"github.com/gogf/gf/v2/frame/g"
)

// InsertFeedbackReq 写入用户纠正的问题与SQL
type InsertFeedbackReq struct {
	g.Meta          `path:"/v1/insert_feedback" method:"post" tags:"feedback" no_wrap_resp:"true"`
	TenantID        string `json:"tenantId" v:"required"`
	UserText        string `json:"userText" v:"required"`
	CorrectSQLQuery string `json:"correctSqlQuery" v:"required"`
	ClientName      string `json:"clientName"`
}

type InsertFeedbackRes struct {
	g.Meta             `mime:"application/json"`
	InsertCount        int64    `json:"insert_count"`
	IDs                []string `json:"ids"`
	ExampleBookUpdated bool     `json:"exampleBookUpdated"`
}

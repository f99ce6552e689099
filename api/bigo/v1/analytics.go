package v1

import (
	gormModel "github.com/Malowking/bigo/internal/model/gorm"
	"github.com/gogf/gf/v2/frame/g"
)

// AnalyticsGetReq 查询一次问答的分析记录
type AnalyticsGetReq struct {
	g.Meta `path:"/v1/analytics/{id}" method:"get" tags:"analytics"`
	ID     string `json:"id" v:"required"`
}

type AnalyticsGetRes struct {
	Record       map[string]any          `json:"record"` // 扁平化的分析记录
	RetrievalLog *gormModel.RetrievalLog `json:"retrievalLog"`
}

type HealthReq struct {
	g.Meta `path:"/v1/health" method:"get" tags:"health" no_wrap_resp:"true"`
}

type HealthRes struct {
	Status string `json:"status"`
}

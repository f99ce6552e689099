package bigo

import (
	"context"

	v1 "github.com/Malowking/bigo/api/bigo/v1"
	"github.com/Malowking/bigo/core/errors"
	"github.com/Malowking/bigo/internal/dao"
	"github.com/Malowking/bigo/nl2sql/pipeline"
	"github.com/gogf/gf/v2/frame/g"
)

// AnalyticsGet 查询分析记录与检索日志
func (c *ControllerV1) AnalyticsGet(ctx context.Context, req *v1.AnalyticsGetReq) (res *v1.AnalyticsGetRes, err error) {
	g.Log().Infof(ctx, "AnalyticsGet request received - ID: %s", req.ID)

	record, log, err := dao.Analytics.GetByID(ctx, req.ID)
	if dao.IsNotFound(err) {
		return nil, errors.Newf(errors.ErrNotFound, "analytics record %s not found", req.ID)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseQuery, err, "query analytics record failed")
	}

	flat, err := pipeline.FlattenModel(record)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternalError, err, "flatten analytics record failed")
	}
	return &v1.AnalyticsGetRes{Record: flat, RetrievalLog: log}, nil
}

// Health 存活检查
func (c *ControllerV1) Health(ctx context.Context, req *v1.HealthReq) (res *v1.HealthRes, err error) {
	return &v1.HealthRes{Status: "ok"}, nil
}

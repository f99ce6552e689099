package pipeline

import (
	"context"

	"github.com/Malowking/bigo/internal/dao"
	"github.com/Malowking/bigo/nl2sql/prompt"
)

// AnalyticsStore 基于 AnalyticsDAO 的对话存储
type AnalyticsStore struct {
	dao *dao.AnalyticsDAO
}

// NewAnalyticsStore 创建对话存储
func NewAnalyticsStore(d *dao.AnalyticsDAO) *AnalyticsStore {
	if d == nil {
		d = dao.Analytics
	}
	return &AnalyticsStore{dao: d}
}

// RecentTurns 最近的对话轮次
func (s *AnalyticsStore) RecentTurns(ctx context.Context, userID, sessionID string, limit int) ([]prompt.Turn, error) {
	records, err := s.dao.RecentTurns(ctx, userID, sessionID, limit)
	if err != nil {
		return nil, err
	}
	turns := make([]prompt.Turn, 0, len(records))
	for _, rec := range records {
		turns = append(turns, prompt.Turn{
			UserText: rec.UserText,
			Answer:   rec.Answer,
			Error:    rec.Error,
		})
	}
	return turns, nil
}

// Persist 在同一事务中写入分析记录与检索日志
func (s *AnalyticsStore) Persist(ctx context.Context, record *AnalyticsRecord, log *RetrievalLog) error {
	logModel, err := log.ToModel()
	if err != nil {
		return err
	}
	return s.dao.CreateWithRetrievalLog(ctx, record.ToModel(), logModel)
}

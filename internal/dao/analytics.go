package dao

import (
	"context"
	"errors"

	gormModel "github.com/Malowking/bigo/internal/model/gorm"
	"github.com/gogf/gf/v2/frame/g"
	"gorm.io/gorm"
)

// AnalyticsDAO 分析记录数据访问对象
type AnalyticsDAO struct {
	db *gorm.DB
}

var Analytics = &AnalyticsDAO{}

// NewAnalyticsDAO 使用指定连接创建DAO，db 为 nil 时使用全局连接
func NewAnalyticsDAO(db *gorm.DB) *AnalyticsDAO {
	return &AnalyticsDAO{db: db}
}

func (d *AnalyticsDAO) conn(ctx context.Context) *gorm.DB {
	if d.db != nil {
		return d.db.WithContext(ctx)
	}
	return GetDB().WithContext(ctx)
}

// RecentTurns 查询用户在会话中的最近 limit 条记录，按时间正序返回（最新的在最后）
func (d *AnalyticsDAO) RecentTurns(ctx context.Context, userID, sessionID string, limit int) ([]*gormModel.ConversationAnalytics, error) {
	if limit <= 0 {
		return []*gormModel.ConversationAnalytics{}, nil
	}

	var records []*gormModel.ConversationAnalytics
	err := d.conn(ctx).
		Select("id", "user_text", "user_text_rephrased", "answer", "sql_query", "error", "create_time").
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("create_time DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		g.Log().Errorf(ctx, "Failed to query recent turns: user=%s, session=%s, err=%v", userID, sessionID, err)
		return nil, err
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// CreateWithRetrievalLog 在同一事务中写入分析记录与检索日志
func (d *AnalyticsDAO) CreateWithRetrievalLog(ctx context.Context, record *gormModel.ConversationAnalytics, log *gormModel.RetrievalLog) error {
	err := d.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		if log == nil {
			return nil
		}
		log.ConversationAnalyticsID = record.ID
		return tx.Create(log).Error
	})
	if err != nil {
		g.Log().Errorf(ctx, "Failed to create conversation analytics %s: %v", record.ID, err)
		return err
	}
	return nil
}

// GetByID 根据ID查询分析记录及其检索日志，检索日志不存在时返回 nil
func (d *AnalyticsDAO) GetByID(ctx context.Context, id string) (*gormModel.ConversationAnalytics, *gormModel.RetrievalLog, error) {
	var record gormModel.ConversationAnalytics
	if err := d.conn(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, nil, err
	}

	var log gormModel.RetrievalLog
	err := d.conn(ctx).Where("conversation_analytics_id = ?", id).First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &record, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &record, &log, nil
}

// IsNotFound 是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

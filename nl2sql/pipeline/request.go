package pipeline

import (
	"regexp"
	"strings"
	"time"

	"github.com/Malowking/bigo/core/common"
	"github.com/Malowking/bigo/core/errors"
)

// DateLayout 请求 date 字段格式，UTC 毫秒精度
const DateLayout = "2006-01-02T15:04:05.000Z"

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`)

// UserFeedback 用户对上一轮结果的反馈
type UserFeedback struct {
	Feedback         string `json:"feedback"`
	PreviousSQLQuery string `json:"previousSqlQuery"`
}

// Request 一次问答请求
type Request struct {
	EmailID        string        `json:"emailID"`
	ClientName     string        `json:"clientName"`
	TenantID       string        `json:"tenantId"`
	UserID         string        `json:"userID"`
	SessionID      string        `json:"sessionID"`
	ConversationID string        `json:"conversationID"`
	UserText       string        `json:"userText"`
	Date           string        `json:"date"`
	UserFeedback   *UserFeedback `json:"userFeedback,omitempty"`
}

// Validate 入口校验，失败时不会创建分析记录
func (r *Request) Validate() error {
	required := map[string]string{
		"tenantId":       r.TenantID,
		"userID":         r.UserID,
		"sessionID":      r.SessionID,
		"conversationID": r.ConversationID,
		"userText":       r.UserText,
		"date":           r.Date,
	}
	for _, name := range []string{"tenantId", "userID", "sessionID", "conversationID", "userText", "date"} {
		if strings.TrimSpace(required[name]) == "" {
			return errors.Newf(errors.ErrRequestValidation, "%s is required", name)
		}
	}

	if !common.ValidateTenantID(r.TenantID) {
		return errors.Newf(errors.ErrRequestValidation, "invalid tenantId: %s", r.TenantID)
	}

	if !dateRe.MatchString(r.Date) {
		return errors.Newf(errors.ErrRequestValidation, "date must match YYYY-MM-DDTHH:MM:SS.sssZ, got %q", r.Date)
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return errors.Newf(errors.ErrRequestValidation, "invalid date %q: %v", r.Date, err)
	}
	return nil
}

// ParsedDate 解析后的请求时间，需先通过 Validate
func (r *Request) ParsedDate() time.Time {
	t, _ := time.Parse(DateLayout, r.Date)
	return t.UTC()
}

package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/Malowking/bigo/core/errors"
	"github.com/Malowking/bigo/core/model"
	"github.com/Malowking/bigo/nl2sql/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr bool
	}{
		{name: "合法请求", mutate: func(r *Request) {}},
		{name: "缺少租户", mutate: func(r *Request) { r.TenantID = "" }, wantErr: true},
		{name: "租户含非法字符", mutate: func(r *Request) { r.TenantID = `T1" || true` }, wantErr: true},
		{name: "缺少会话", mutate: func(r *Request) { r.SessionID = "" }, wantErr: true},
		{name: "日期缺少T与Z", mutate: func(r *Request) { r.Date = "2024-01-01 10:00:00" }, wantErr: true},
		{name: "日期缺少毫秒", mutate: func(r *Request) { r.Date = "2024-01-01T10:00:00Z" }, wantErr: true},
		{name: "日期不存在", mutate: func(r *Request) { r.Date = "2024-02-30T10:00:00.000Z" }, wantErr: true},
		{name: "邮箱可选", mutate: func(r *Request) { r.EmailID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest()
			tt.mutate(req)
			err := req.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, errors.ErrRequestValidation, errors.GetAppError(err).Code)
		})
	}
}

func TestNewAnalyticsRecord(t *testing.T) {
	req := newRequest()
	req.UserFeedback = &UserFeedback{Feedback: "wrong column", PreviousSQLQuery: "SELECT 1 FROM sales;"}

	rec := NewAnalyticsRecord(req, time.Now())
	assert.True(t, strings.HasSuffix(rec.ID, "_20240304"))
	assert.True(t, rec.UserFeedbackFlag)
	assert.Equal(t, "wrong column", rec.UserFeedback)
	assert.Equal(t, "SELECT 1 FROM sales;", rec.PreviousSQLQuery)

	other := NewAnalyticsRecord(newRequest(), time.Now())
	assert.NotEqual(t, rec.ID, other.ID)
	assert.False(t, other.UserFeedbackFlag)
}

func TestAnalyticsRecord_Accumulation(t *testing.T) {
	rec := NewAnalyticsRecord(newRequest(), time.Now())

	rec.AddSQLUsage(model.Usage{PromptTokens: 100, CompletionTokens: 10}, time.Second)
	rec.AddSQLUsage(model.Usage{PromptTokens: -50, CompletionTokens: -5}, -time.Second)
	rec.AddEmbeddingUsage(model.Usage{TotalTokens: 8}, time.Millisecond)
	rec.AddEmbeddingUsage(model.Usage{TotalTokens: -8}, 0)
	rec.AddTableSearchTime(-time.Second)

	m := rec.ToModel()
	assert.Equal(t, 100, m.SQLQueryChatCompletionInputToken)
	assert.Equal(t, 10, m.SQLQueryChatCompletionOutputToken)
	assert.InDelta(t, 1.0, m.SQLQueryChatCompletionTime, 1e-9)
	assert.Equal(t, 8, m.UserTextEmbeddingTokens)
	assert.Zero(t, m.TableVectorSearchTime)

	ada, chat := rec.Counters()
	assert.Equal(t, 2, ada)
	assert.Equal(t, 2, chat)
}

func TestAnalyticsRecord_Finalize(t *testing.T) {
	start := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	rec := NewAnalyticsRecord(newRequest(), start)

	assert.False(t, rec.Persisted())
	assert.True(t, rec.Finalize(start.Add(1500*time.Millisecond)))
	assert.False(t, rec.Finalize(start.Add(time.Hour)))
	assert.True(t, rec.Persisted())
	assert.InDelta(t, 1.5, rec.ToModel().ResponseTime, 1e-9)
}

func TestAnalyticsRecord_Flatten(t *testing.T) {
	rec := NewAnalyticsRecord(newRequest(), time.Now())
	rec.SQLQuery = "SELECT region, total FROM sales;"
	rec.SQLQueryResponse = `[{"region":"north","total":120.5}]`

	flat, err := rec.Flatten()
	require.NoError(t, err)
	assert.Equal(t, rec.ID, flat["id"])
	assert.Equal(t, "T1", flat["tenantId"])
	assert.Equal(t, rec.SQLQuery, flat["sqlQuery"])

	response, ok := flat["sqlQueryResponse"].(string)
	require.True(t, ok)
	assert.JSONEq(t, rec.SQLQueryResponse, response)
}

func TestRetrievalLog_ToModel(t *testing.T) {
	rec := NewAnalyticsRecord(newRequest(), time.Now())
	log := NewRetrievalLog(rec)

	m, err := log.ToModel()
	require.NoError(t, err)
	assert.Equal(t, rec.ID, m.ConversationAnalyticsID)
	assert.JSONEq(t, `[]`, string(m.RelevantTables))
	assert.JSONEq(t, `[]`, string(m.RelevantSQLExamples))

	log.RelevantTables = []string{"sales"}
	log.RelevantSQLExamples = []prompt.Example{{Question: "q", SQLQuery: "SELECT 1 FROM sales;"}}
	m, err = log.ToModel()
	require.NoError(t, err)
	assert.JSONEq(t, `["sales"]`, string(m.RelevantTables))
	assert.JSONEq(t, `[{"question":"q","sqlQuery":"SELECT 1 FROM sales;"}]`, string(m.RelevantSQLExamples))
}

package feedback

import (
	"context"
	"strings"
	"time"

	"github.com/Malowking/bigo/core/common"
	"github.com/Malowking/bigo/core/errors"
	"github.com/Malowking/bigo/core/file_store"
	"github.com/Malowking/bigo/core/model"
	"github.com/Malowking/bigo/core/vector_store"
	"github.com/Malowking/bigo/internal/observability"
	"github.com/Malowking/bigo/nl2sql/parser"
	"github.com/gogf/gf/v2/frame/g"
)

// Request 用户纠正后的问题与SQL
type Request struct {
	TenantID        string `json:"tenantId"`
	UserText        string `json:"userText"`
	CorrectSQLQuery string `json:"correctSqlQuery"`
	ClientName      string `json:"clientName"`
}

// Result 写入结果
type Result struct {
	InsertCount        int64    `json:"insert_count"`
	IDs                []string `json:"ids"`
	ExampleBookUpdated bool     `json:"exampleBookUpdated"`
}

// Embedder 文本向量化
type Embedder interface {
	Embed(ctx context.Context, text string) (*model.Embedding, error)
}

// ExampleWriter 示例集合写入
type ExampleWriter interface {
	EnsureExampleCollection(ctx context.Context, collectionName string, dim int) error
	InsertSQLExamples(ctx context.Context, collectionName string, examples []vector_store.SQLExample) (*vector_store.InsertResult, error)
}

// Guard 重复提交保护
type Guard interface {
	Acquire(ctx context.Context, tenantID, question, sqlQuery string) (bool, error)
	Release(ctx context.Context, tenantID, question, sqlQuery string)
}

// Service 反馈写入：向量集合 + 示例库
type Service struct {
	embedder   Embedder
	writer     ExampleWriter
	book       file_store.ExampleBook
	guard      Guard
	collection string
	validator  *parser.SQLValidator
	now        func() time.Time
}

// NewService 创建反馈服务，guard 可以为 nil
func NewService(embedder Embedder, writer ExampleWriter, book file_store.ExampleBook, guard Guard, collection string) *Service {
	return &Service{
		embedder:   embedder,
		writer:     writer,
		book:       book,
		guard:      guard,
		collection: collection,
		validator:  parser.NewSQLValidator(),
		now:        time.Now,
	}
}

func (r *Request) validate() error {
	switch {
	case strings.TrimSpace(r.TenantID) == "":
		return errors.New(errors.ErrRequestValidation, "tenantId is required")
	case strings.TrimSpace(r.UserText) == "":
		return errors.New(errors.ErrRequestValidation, "userText is required")
	case strings.TrimSpace(r.CorrectSQLQuery) == "":
		return errors.New(errors.ErrRequestValidation, "correctSqlQuery is required")
	}
	if !common.ValidateTenantID(r.TenantID) {
		return errors.Newf(errors.ErrRequestValidation, "invalid tenantId: %s", r.TenantID)
	}
	return nil
}

// Ingest 写入一条纠正示例
// 向量写入失败时不会触碰示例库；示例库写入失败时返回 ErrFeedbackInconsistent 并带上已写入的向量ID
func (s *Service) Ingest(ctx context.Context, req *Request) (res *Result, err error) {
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		observability.ObserveFeedback(outcome)
	}()

	if err := req.validate(); err != nil {
		return nil, err
	}
	question := strings.TrimSpace(req.UserText)
	sqlQuery := parser.NormalizeStatement(req.CorrectSQLQuery)
	if err := s.validator.ValidateSelect(sqlQuery); err != nil {
		return nil, errors.Newf(errors.ErrRequestValidation, "correctSqlQuery is not a read-only query: %v", err)
	}

	if s.guard != nil {
		acquired, gerr := s.guard.Acquire(ctx, req.TenantID, question, sqlQuery)
		switch {
		case gerr != nil:
			g.Log().Warningf(ctx, "[feedback][%s] - Guard unavailable, continuing without it: %v", req.TenantID, gerr)
		case !acquired:
			return nil, errors.New(errors.ErrAlreadyExists, "the same feedback was already submitted")
		}
		defer func() {
			// 向量未写入时释放占位，允许客户端重试
			if err != nil && (res == nil || res.InsertCount == 0) {
				s.guard.Release(context.WithoutCancel(ctx), req.TenantID, question, sqlQuery)
			}
		}()
	}

	embedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrEmbeddingFailed, err, "feedback embedding failed")
	}

	if err := s.writer.EnsureExampleCollection(ctx, s.collection, len(embedding.Vector)); err != nil {
		return nil, errors.Wrap(errors.ErrVectorInsert, err, "ensure example collection failed")
	}
	inserted, err := s.writer.InsertSQLExamples(ctx, s.collection, []vector_store.SQLExample{{
		TenantID: req.TenantID,
		Question: question,
		SQLQuery: sqlQuery,
		Vector:   embedding.Vector,
	}})
	if err != nil {
		return nil, errors.Wrap(errors.ErrVectorInsert, err, "insert feedback example failed")
	}
	res = &Result{InsertCount: inserted.InsertCount, IDs: inserted.IDs}
	g.Log().Infof(ctx, "[feedback][%s] - Example inserted into %s, ids: %v", req.TenantID, s.collection, inserted.IDs)

	err = s.book.Append(ctx, req.TenantID, file_store.Example{
		Question:  question,
		SQLQuery:  sqlQuery,
		Tables:    s.referencedTables(ctx, req.TenantID, sqlQuery),
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		g.Log().Errorf(ctx, "[feedback][%s] - Example book append failed after vector insert, ids: %v, error: %v",
			req.TenantID, inserted.IDs, err)
		return res, errors.Wrap(errors.ErrFeedbackInconsistent, err, "vector store updated but example book write failed").
			WithPayload("vectorIds", inserted.IDs).
			WithPayload("exampleBookUpdated", false)
	}

	res.ExampleBookUpdated = true
	return res, nil
}

// referencedTables 示例SQL引用的表，方言语法无法解析时为空
func (s *Service) referencedTables(ctx context.Context, tenantID, sqlQuery string) []string {
	tables, err := s.validator.ExtractTables(sqlQuery)
	if err != nil {
		g.Log().Debugf(ctx, "[feedback][%s] - Skip table extraction: %v", tenantID, err)
		return nil
	}
	return tables
}

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/Malowking/bigo/core/common"
	"github.com/Malowking/bigo/core/config"
	"github.com/Malowking/bigo/core/errors"
	"github.com/Malowking/bigo/core/model"
	"github.com/Malowking/bigo/internal/observability"
	"github.com/Malowking/bigo/nl2sql/chart"
	"github.com/Malowking/bigo/nl2sql/datasource"
	"github.com/Malowking/bigo/nl2sql/parser"
	"github.com/Malowking/bigo/nl2sql/prompt"
	"github.com/Malowking/bigo/nl2sql/vector"
	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
	"golang.org/x/sync/errgroup"
)

const (
	ModeSync   = "sync"
	ModeStream = "stream"

	streamBufferSize = 16
)

// Deps 问答流水线的依赖
type Deps struct {
	Config    config.AssistantConfig
	Completer Completer
	Embedder  Embedder
	Searcher  VectorSearcher
	Fetcher   QueryFetcher
	Turns     TurnStore
	Sink      RecordSink
}

// Pipeline 问答流水线
// 改写 -> 向量化 -> 表/字段/示例检索 -> SQL生成 -> 执行 -> 叙述 -> 图表 -> 持久化
type Pipeline struct {
	conf      config.AssistantConfig
	completer Completer
	embedder  Embedder
	retriever *vector.Retriever
	fetcher   QueryFetcher
	turns     TurnStore
	sink      RecordSink
	prompts   *prompt.Builder
	sqlParser *parser.SQLParser
	renderer  *chart.Renderer
	now       func() time.Time
}

// New 创建流水线
func New(deps Deps) (*Pipeline, error) {
	if deps.Completer == nil || deps.Embedder == nil || deps.Searcher == nil ||
		deps.Fetcher == nil || deps.Turns == nil || deps.Sink == nil {
		return nil, errors.New(errors.ErrInvalidParameter, "pipeline dependencies are incomplete")
	}

	renderer, err := chart.NewRenderer(deps.Config.ChartTimeout)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternalError, err, "create chart renderer failed")
	}

	return &Pipeline{
		conf:      deps.Config,
		completer: deps.Completer,
		embedder:  deps.Embedder,
		retriever: vector.NewRetriever(deps.Searcher, deps.Config),
		fetcher:   deps.Fetcher,
		turns:     deps.Turns,
		sink:      deps.Sink,
		prompts:   prompt.NewBuilder(deps.Config),
		sqlParser: parser.NewSQLParser(deps.Config.QueryKey()),
		renderer:  renderer,
		now:       time.Now,
	}, nil
}

// Answer 同步问答，返回已持久化的记录
// 校验失败时不创建记录
func (p *Pipeline) Answer(ctx context.Context, req *Request) (*AnalyticsRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return p.execute(context.WithoutCancel(ctx), req, discard, ModeSync)
}

// Stream 流式问答，事件按阶段顺序写入通道，最后一个事件为 EventFinal
// 请求上下文结束后事件被丢弃，流水线继续执行直到持久化完成
func (p *Pipeline) Stream(ctx context.Context, req *Request) (<-chan Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ch := make(chan Event, streamBufferSize)
	emit := channelEmitter(ch, doneOf(ctx))
	runCtx := context.WithoutCancel(ctx)

	go func() {
		defer close(ch)
		defer common.RecoverPanic(runCtx, "answer stream")

		rec, err := p.execute(runCtx, req, emit, ModeStream)
		if err != nil {
			emit.content(ContentError, errors.FromError(err).Summary())
		}
		emit(Event{Kind: EventFinal, Final: BuildEnvelope(rec, err)})
	}()

	return ch, nil
}

// BuildEnvelope 构建最终响应；出错时 botResponse 为空
func BuildEnvelope(rec *AnalyticsRecord, err error) *Envelope {
	if err != nil {
		return &Envelope{BotResponse: []map[string]any{}, Error: errors.FromError(err).Summary()}
	}
	flat, ferr := rec.Flatten()
	if ferr != nil {
		return &Envelope{BotResponse: []map[string]any{}, Error: ferr.Error()}
	}
	return &Envelope{BotResponse: []map[string]any{flat}, Error: ""}
}

func (p *Pipeline) execute(ctx context.Context, req *Request, emit emitter, mode string) (rec *AnalyticsRecord, err error) {
	rec = NewAnalyticsRecord(req, p.now())
	log := NewRetrievalLog(rec)

	g.Log().Infof(ctx, "[biAssistant][%s] - Start, record: %s", rec.ConversationID, rec.ID)

	defer p.finalize(ctx, rec, log, mode, &err)
	defer common.RecoverToError(ctx, "answer pipeline", &err)

	err = p.run(ctx, rec, log, emit)
	return rec, err
}

// finalize 每条路径都会经过这里，记录只会写入一次
func (p *Pipeline) finalize(ctx context.Context, rec *AnalyticsRecord, log *RetrievalLog, mode string, errp *error) {
	ctx = context.WithoutCancel(ctx)

	if *errp != nil {
		appErr := errors.FromError(*errp)
		*errp = appErr
		rec.Error = appErr.Summary()
		g.Log().Errorf(ctx, "[biAssistant][%s] - Failed, record: %s, error: %s", rec.ConversationID, rec.ID, rec.Error)
	}

	if !rec.Finalize(p.now()) {
		return
	}

	if perr := p.sink.Persist(ctx, rec, log); perr != nil {
		g.Log().Errorf(ctx, "[biAssistant][%s] - Persist failed, record: %s, error: %v", rec.ConversationID, rec.ID, perr)
		if *errp == nil {
			*errp = errors.Wrap(errors.ErrDatabaseInsert, perr, "persist analytics record failed")
		}
	}

	outcome := "success"
	if *errp != nil {
		outcome = "error"
	}
	observability.ObserveAnswer(mode, outcome)
	g.Log().Infof(ctx, "[biAssistant][%s] - Done, record: %s, outcome: %s", rec.ConversationID, rec.ID, outcome)
}

func (p *Pipeline) run(ctx context.Context, rec *AnalyticsRecord, log *RetrievalLog, emit emitter) error {
	question := rec.UserText

	if p.conf.TurnWindow > 0 {
		turns, err := p.turns.RecentTurns(ctx, rec.UserID, rec.SessionID, p.conf.TurnWindow)
		if err != nil {
			return errors.Wrap(errors.ErrDatabaseQuery, err, "load recent turns failed")
		}
		if len(turns) > 0 {
			emit.progress(ProgressRephrasing)
			question, err = p.rephrase(ctx, rec, question, turns)
			if err != nil {
				return err
			}
			emit.content(ContentUserTextRephrased, question)
		}
	}

	emit.progress(ProgressVectorization)
	embedding, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return asAppError(err, errors.ErrEmbeddingFailed, "embedding failed")
	}
	rec.AddEmbeddingUsage(embedding.Usage, embedding.Elapsed)
	observability.ObserveStage("embedding", embedding.Elapsed)
	observability.ObserveTokens("embedding", embedding.Usage.TotalTokens, 0)
	g.Log().Infof(ctx, "[biAssistant][%s] - Query embedding generated", rec.ConversationID)

	schemaBlock, examples, err := p.retrieve(ctx, rec, log, embedding.Vector, emit)
	if err != nil {
		return err
	}

	emit.progress(ProgressGeneratingSQL)
	messages, err := p.prompts.SQL(ctx, prompt.SQLInput{
		Question:    question,
		TenantID:    rec.TenantID,
		Tables:      log.RelevantTables,
		SchemaBlock: schemaBlock,
		Examples:    examples,
	})
	if err != nil {
		return errors.Wrap(errors.ErrInternalError, err, "build sql prompt failed")
	}
	completion, err := p.complete(ctx, "sql", messages, model.ResponseJSON)
	if err != nil {
		return err
	}
	rec.AddSQLUsage(completion.Usage, completion.Elapsed)

	emit.progress(ProgressParsingSQL)
	ok, sqlText, err := p.sqlParser.Parse(completion.Content)
	if err != nil {
		g.Log().Warningf(ctx, "[biAssistant][%s] - SQL response is not JSON: %v", rec.ConversationID, err)
		ok, sqlText = false, parser.DefaultSQLError
	}
	if !ok {
		rec.Answer = sqlText
		rec.SQLQuery = ""
		emit.content(ContentSQLError, sqlText)
		g.Log().Infof(ctx, "[biAssistant][%s] - SQL generation declined: %s", rec.ConversationID, sqlText)
		return nil
	}
	rec.SQLQuery = sqlText
	emit.content(ContentSQLQuery, sqlText)
	g.Log().Infof(ctx, "[biAssistant][%s] - SQL query generated", rec.ConversationID)

	emit.progress(ProgressExecutingSQL)
	start := time.Now()
	rs, err := p.fetcher.Fetch(ctx, sqlText)
	elapsed := time.Since(start)
	rec.AddExecutionTime(elapsed)
	observability.ObserveStage("execution", elapsed)
	if err != nil {
		return asAppError(err, errors.ErrQueryExecution, "query execution failed")
	}
	response, err := sonic.MarshalString(rs.Records())
	if err != nil {
		return errors.Wrap(errors.ErrInternalError, err, "encode query result failed")
	}
	rec.SQLQueryResponse = response
	emit.progress(ProgressSQLExecuted)
	emit.content(ContentSQLQueryResponse, response)
	g.Log().Infof(ctx, "[biAssistant][%s] - SQL query executed, rows: %d", rec.ConversationID, rs.Len())

	emit.progress(ProgressGeneratingAnswer)
	messages, err = p.prompts.Answer(ctx, question, sqlText, rs.Markdown())
	if err != nil {
		return errors.Wrap(errors.ErrInternalError, err, "build answer prompt failed")
	}
	completion, err = p.complete(ctx, "answer", messages, model.ResponseJSON)
	if err != nil {
		return err
	}
	rec.AddAnswerUsage(completion.Usage, completion.Elapsed)

	emit.progress(ProgressParsingAnswer)
	answer, err := parser.ParseAnswer(completion.Content)
	if err != nil {
		return err
	}
	rec.Answer = answer
	emit.content(ContentAnswer, answer)
	g.Log().Infof(ctx, "[biAssistant][%s] - Answer generated", rec.ConversationID)

	if chart.ShouldChart(rs) {
		p.renderChart(ctx, rec, question, rs, emit)
	}
	return nil
}

// rephrase 改写追问，返回后续阶段使用的问题
func (p *Pipeline) rephrase(ctx context.Context, rec *AnalyticsRecord, question string, turns []prompt.Turn) (string, error) {
	messages, err := p.prompts.Rephrase(ctx, question, turns)
	if err != nil {
		return "", errors.Wrap(errors.ErrInternalError, err, "build rephrase prompt failed")
	}
	completion, err := p.complete(ctx, "rephrase", messages, model.ResponseJSON)
	if err != nil {
		return "", err
	}
	rec.AddRephraseUsage(completion.Usage, completion.Elapsed)

	rephrased, err := parser.ParseRephrase(completion.Content)
	if err != nil {
		return "", err
	}
	rec.UserTextRephrased = rephrased
	g.Log().Infof(ctx, "[biAssistant][%s] - User query rephrased", rec.ConversationID)

	if parser.IsFollowUp(rephrased) {
		return rephrased, nil
	}
	return question, nil
}

// retrieve 表 -> 字段 串行检索，示例检索并行执行
// 进度事件顺序与串行执行一致；任一阶段失败时已拿到的检索结果仍写入检索日志
func (p *Pipeline) retrieve(ctx context.Context, rec *AnalyticsRecord, log *RetrievalLog, vec []float32, emit emitter) (string, []prompt.Example, error) {
	var (
		eg       errgroup.Group
		examples []prompt.Example
	)
	eg.Go(func() error {
		start := time.Now()
		found, err := p.retriever.SearchExamples(ctx, vec, rec.TenantID)
		elapsed := time.Since(start)
		rec.AddExampleSearchTime(elapsed)
		observability.ObserveStage("example_search", elapsed)
		if err != nil {
			return err
		}
		examples = found
		return nil
	})
	waitExamples := func() error {
		err := eg.Wait()
		if examples != nil {
			log.RelevantSQLExamples = examples
		}
		return err
	}

	emit.progress(ProgressTables)
	start := time.Now()
	tables, err := p.retriever.SearchTables(ctx, vec, rec.TenantID)
	elapsed := time.Since(start)
	rec.AddTableSearchTime(elapsed)
	observability.ObserveStage("table_search", elapsed)
	if err != nil {
		_ = waitExamples()
		return "", nil, err
	}
	log.RelevantTables = tables

	emit.progress(ProgressColumns)
	start = time.Now()
	columns, err := p.retriever.SearchColumns(ctx, vec, tables)
	elapsed = time.Since(start)
	rec.AddColumnSearchTime(elapsed)
	observability.ObserveStage("column_search", elapsed)
	if err != nil {
		_ = waitExamples()
		return "", nil, err
	}
	schemaBlock := vector.FormatSchemaBlock(tables, columns)
	log.RelevantColumns = schemaBlock

	emit.progress(ProgressExamples)
	if err := waitExamples(); err != nil {
		return "", nil, err
	}

	g.Log().Infof(ctx, "[biAssistant][%s] - Retrieved tables: %v, columns: %d, examples: %d",
		rec.ConversationID, tables, len(columns), len(examples))
	return schemaBlock, examples, nil
}

// renderChart 图表阶段的任何错误都只记录日志
func (p *Pipeline) renderChart(ctx context.Context, rec *AnalyticsRecord, question string, rs *datasource.ResultSet, emit emitter) {
	emit.progress(ProgressGeneratingGraph)

	raw := ""
	messages, err := p.prompts.Chart(ctx, prompt.ChartInput{
		Question: question,
		SQLQuery: rec.SQLQuery,
		Columns:  rs.Columns,
		Dtypes:   rs.Dtypes(),
	})
	if err == nil {
		var completion *model.Completion
		completion, err = p.complete(ctx, "graph", messages, model.ResponseText)
		if err == nil {
			rec.AddGraphUsage(completion.Usage, completion.Elapsed)
			raw = completion.Content
		}
	}
	if err != nil {
		g.Log().Warningf(ctx, "[biAssistant][%s] - Graph code generation failed: %v", rec.ConversationID, err)
	}

	result, err := p.renderer.Render(ctx, raw, rs)
	if err != nil {
		g.Log().Warningf(ctx, "[biAssistant][%s] - Graph rendering failed: %v", rec.ConversationID, err)
		return
	}
	rec.GraphGenerationCode = result.Code
	emit.progress(ProgressGraphCode)
	rec.GraphFigureJSON = result.FigureJSON
	emit.progress(ProgressGraphFigure)
}

func (p *Pipeline) complete(ctx context.Context, stage string, messages []*schema.Message, mode model.ResponseMode) (*model.Completion, error) {
	completion, err := p.completer.Complete(ctx, messages, model.CompleteOptions{
		Temperature: p.conf.Temperature,
		Mode:        mode,
	})
	if err != nil {
		return nil, asAppError(err, errors.ErrLLMCallFailed, fmt.Sprintf("%s completion failed", stage))
	}
	observability.ObserveStage(stage, completion.Elapsed)
	observability.ObserveTokens(stage, completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	return completion, nil
}

// asAppError 已是业务错误时原样返回
func asAppError(err error, code errors.ErrCode, message string) error {
	if errors.IsAppError(err) {
		return err
	}
	return errors.Wrap(code, err, message)
}

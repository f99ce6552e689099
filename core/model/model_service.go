package model

import (
	"context"
	"strings"
	"time"

	"github.com/Malowking/bigo/core/client"
	"github.com/Malowking/bigo/core/errors"
	formatterPkg "github.com/Malowking/bigo/core/formatter"
	"github.com/cloudwego/eino/schema"
	"github.com/sashabaranov/go-openai"
)

// ResponseMode 模型输出格式
type ResponseMode string

const (
	ResponseJSON ResponseMode = "json_object"
	ResponseText ResponseMode = "text"
)

// Usage token用量
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completion 一次对话补全的结果
type Completion struct {
	Content string
	Usage   Usage
	Elapsed time.Duration
}

// Embedding 一次向量化的结果
type Embedding struct {
	Vector  []float32
	Usage   Usage
	Elapsed time.Duration
}

// CompleteOptions 补全参数
type CompleteOptions struct {
	Temperature float32
	Mode        ResponseMode
}

// ModelServiceConfig 模型服务配置
type ModelServiceConfig struct {
	ChatAPIKey         string
	ChatBaseURL        string
	ChatModel          string
	EmbeddingAPIKey    string
	EmbeddingBaseURL   string
	EmbeddingModel     string
	EmbeddingDimension int
}

// ModelService 统一的模型服务：对话补全 + 向量化，结果附带耗时与token用量
type ModelService struct {
	chat      *client.OpenAIClient
	embedding *client.OpenAIClient
	formatter formatterPkg.MessageFormatter
	conf      ModelServiceConfig
}

// NewModelService 创建模型服务
func NewModelService(conf ModelServiceConfig, formatter formatterPkg.MessageFormatter) *ModelService {
	// 如果formatter为nil，使用默认的OpenAI formatter
	if formatter == nil {
		formatter = formatterPkg.NewOpenAIFormatter()
	}
	embeddingKey, embeddingURL := conf.EmbeddingAPIKey, conf.EmbeddingBaseURL
	if embeddingKey == "" {
		embeddingKey = conf.ChatAPIKey
	}
	if embeddingURL == "" {
		embeddingURL = conf.ChatBaseURL
	}
	return &ModelService{
		chat:      client.NewOpenAIClient(conf.ChatAPIKey, conf.ChatBaseURL),
		embedding: client.NewOpenAIClient(embeddingKey, embeddingURL),
		formatter: formatter,
		conf:      conf,
	}
}

// Complete 非流式对话补全
func (s *ModelService) Complete(ctx context.Context, messages []*schema.Message, opts CompleteOptions) (*Completion, error) {
	openaiMessages, err := s.formatter.FormatMessages(messages)
	if err != nil {
		return nil, errors.Newf(errors.ErrInvalidParameter, "failed to format messages: %v", err)
	}

	mode := opts.Mode
	if mode == "" {
		mode = ResponseJSON
	}

	req := client.ChatCompletionRequest{
		Model:       s.conf.ChatModel,
		Messages:    openaiMessages,
		Temperature: opts.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatType(mode),
		},
	}

	start := time.Now()
	resp, err := s.chat.ChatCompletion(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		return nil, errors.Wrap(errors.ErrLLMCallFailed, err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New(errors.ErrLLMCallFailed, "chat completion returned no choices")
	}

	return &Completion{
		Content: strings.TrimSpace(resp.Choices[0].Message.Content),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Elapsed: elapsed,
	}, nil
}

// Embed 单条文本向量化
func (s *ModelService) Embed(ctx context.Context, text string) (*Embedding, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.ErrInvalidParameter, "embedding input is empty")
	}

	start := time.Now()
	resp, err := s.embedding.CreateEmbedding(ctx, s.conf.EmbeddingModel, text, s.conf.EmbeddingDimension)
	elapsed := time.Since(start)
	if err != nil {
		return nil, errors.Wrap(errors.ErrEmbeddingFailed, err, "embedding failed")
	}
	if len(resp.Data) == 0 {
		return nil, errors.New(errors.ErrEmbeddingFailed, "embedding returned no data")
	}

	return &Embedding{
		Vector: resp.Data[0].Embedding,
		Usage: Usage{
			PromptTokens: resp.Usage.PromptTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		Elapsed: elapsed,
	}, nil
}

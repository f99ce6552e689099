package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gogf/gf/v2/frame/g"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient 统一的OpenAI API客户端
// 负责对话补全与向量化两类请求
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient 创建OpenAI客户端
func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
	}
}

// ChatCompletionRequest 聊天请求参数
type ChatCompletionRequest struct {
	Model               string
	Messages            []openai.ChatCompletionMessage
	Temperature         float32
	MaxCompletionTokens int
	TopP                float32
	Stop                []string
	ResponseFormat      *openai.ChatCompletionResponseFormat
}

// ChatCompletion 非流式对话
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	openaiReq := openai.ChatCompletionRequest{
		Model:               req.Model,
		Messages:            req.Messages,
		Temperature:         req.Temperature,
		MaxCompletionTokens: req.MaxCompletionTokens,
		TopP:                req.TopP,
		Stop:                req.Stop,
		ResponseFormat:      req.ResponseFormat,
	}

	format := "text"
	if req.ResponseFormat != nil {
		format = string(req.ResponseFormat.Type)
	}
	g.Log().Infof(ctx, "[OpenAI Client] 发送请求 - Model: %s, Messages: %d, Temp: %.2f, Format: %s",
		req.Model, len(req.Messages), req.Temperature, format)

	resp, err := c.client.CreateChatCompletion(ctx, openaiReq)
	if err != nil {
		g.Log().Errorf(ctx, "[OpenAI Client] API调用失败 - Model: %s, Error: %v", req.Model, err)
		if debugJSON, jsonErr := json.MarshalIndent(req.Messages, "", "  "); jsonErr == nil {
			g.Log().Debugf(ctx, "[OpenAI Client] 失败请求的消息:\n%s", string(debugJSON))
		}
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	g.Log().Infof(ctx, "[OpenAI Client] 收到响应 - ID: %s, Model: %s, Choices: %d, Usage: %+v",
		resp.ID, resp.Model, len(resp.Choices), resp.Usage)

	return &resp, nil
}

// CreateEmbedding 单条文本向量化
func (c *OpenAIClient) CreateEmbedding(ctx context.Context, model string, text string, dimensions int) (*openai.EmbeddingResponse, error) {
	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(model),
	}
	if dimensions > 0 {
		req.Dimensions = dimensions
	}

	resp, err := c.client.CreateEmbeddings(ctx, req)
	if err != nil {
		g.Log().Errorf(ctx, "[OpenAI Client] Embedding调用失败 - Model: %s, Error: %v", model, err)
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contains no data")
	}

	g.Log().Debugf(ctx, "[OpenAI Client] Embedding完成 - Model: %s, Dim: %d, Tokens: %d",
		model, len(resp.Data[0].Embedding), resp.Usage.TotalTokens)

	return &resp, nil
}

package formatter

import (
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/sashabaranov/go-openai"
)

// OpenAIFormatter OpenAI标准消息格式适配器
type OpenAIFormatter struct{}

// NewOpenAIFormatter 创建OpenAI格式适配器
func NewOpenAIFormatter() *OpenAIFormatter {
	return &OpenAIFormatter{}
}

// FormatMessages 转换消息格式为OpenAI标准格式
// 只支持纯文本的 system / user / assistant 消息
func (f *OpenAIFormatter) FormatMessages(messages []*schema.Message) ([]openai.ChatCompletionMessage, error) {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))

	for i, msg := range messages {
		if msg == nil {
			continue
		}
		role, err := convertRole(msg.Role)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		result = append(result, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	return result, nil
}

// convertRole 角色映射
func convertRole(role schema.RoleType) (string, error) {
	switch role {
	case schema.System:
		return openai.ChatMessageRoleSystem, nil
	case schema.User:
		return openai.ChatMessageRoleUser, nil
	case schema.Assistant:
		return openai.ChatMessageRoleAssistant, nil
	default:
		return "", fmt.Errorf("unsupported message role: %s", role)
	}
}

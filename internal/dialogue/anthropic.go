package dialogue

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"interview-prep-bot/internal/config"
	"interview-prep-bot/internal/interview"
)

type messagesCreator interface {
	CreateMessages(ctx context.Context, req anthropic.MessagesRequest) (anthropic.MessagesResponse, error)
}

// AnthropicClient ведет диалог через Anthropic Messages API.
// Системные сообщения передаются отдельно от истории.
type AnthropicClient struct {
	api       messagesCreator
	model     string
	maxTokens int
}

func NewAnthropicClient(cfg config.AnthropicConfig) *AnthropicClient {
	return newAnthropicClient(anthropic.NewClient(cfg.APIKey), cfg)
}

func newAnthropicClient(api messagesCreator, cfg config.AnthropicConfig) *AnthropicClient {
	return &AnthropicClient{
		api:       api,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

func (c *AnthropicClient) Complete(ctx context.Context, transcript []interview.Message) (interview.Message, error) {
	var systemParts []anthropic.MessageSystemPart
	var messages []anthropic.Message

	for _, msg := range transcript {
		switch msg.Role {
		case interview.RoleSystem:
			systemParts = append(systemParts, anthropic.MessageSystemPart{
				Type: "text",
				Text: msg.Content,
			})
		case interview.RoleAssistant:
			messages = append(messages, anthropic.Message{
				Role:    anthropic.RoleAssistant,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(msg.Content)},
			})
		default:
			messages = append(messages, anthropic.Message{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(msg.Content)},
			})
		}
	}

	// Messages API требует, чтобы история начиналась с реплики пользователя
	if len(messages) == 0 || messages[0].Role != anthropic.RoleUser {
		messages = append([]anthropic.Message{{
			Role:    anthropic.RoleUser,
			Content: []anthropic.MessageContent{anthropic.NewTextMessageContent("Please begin the interview.")},
		}}, messages...)
	}

	req := anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		Messages:  messages,
		MaxTokens: c.maxTokens,
	}
	if len(systemParts) > 0 {
		req.MultiSystem = systemParts
	}

	resp, err := c.api.CreateMessages(ctx, req)
	if err != nil {
		return interview.Message{}, fmt.Errorf("ошибка запроса к Anthropic: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			text.WriteString(*block.Text)
		}
	}
	if text.Len() == 0 {
		return interview.Message{}, ErrEmptyResponse
	}

	return interview.Message{
		Role:    interview.RoleAssistant,
		Content: strings.TrimSpace(text.String()),
	}, nil
}

package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"interview-prep-bot/internal/config"
	"interview-prep-bot/internal/interview"
)

// ErrEmptyResponse возвращается, когда провайдер не прислал ни одного варианта ответа
var ErrEmptyResponse = errors.New("пустой ответ от модели")

// chatCompleter подмножество клиента go-openai, нужное для диалога
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient ведет диалог через OpenAI Chat Completions API
type OpenAIClient struct {
	api         chatCompleter
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIClient создает клиент по конфигурации OpenAI
func NewOpenAIClient(cfg config.OpenAIConfig) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return newOpenAIClient(openai.NewClientWithConfig(clientCfg), cfg)
}

func newOpenAIClient(api chatCompleter, cfg config.OpenAIConfig) *OpenAIClient {
	return &OpenAIClient{
		api:         api,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
	}
}

// Complete отправляет весь транскрипт как историю и возвращает ответ ассистента
func (c *OpenAIClient) Complete(ctx context.Context, transcript []interview.Message) (interview.Message, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(transcript))
	for _, msg := range transcript {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    toOpenAIRole(msg.Role),
			Content: msg.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return interview.Message{}, fmt.Errorf("ошибка запроса к OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return interview.Message{}, ErrEmptyResponse
	}

	return interview.Message{
		Role:    interview.RoleAssistant,
		Content: strings.TrimSpace(resp.Choices[0].Message.Content),
	}, nil
}

func toOpenAIRole(role interview.Role) string {
	switch role {
	case interview.RoleSystem:
		return openai.ChatMessageRoleSystem
	case interview.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

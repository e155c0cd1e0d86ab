// Package dialogue реализует клиента сервиса диалога поверх LLM провайдеров.
package dialogue

import (
	"fmt"

	"interview-prep-bot/internal/config"
	"interview-prep-bot/internal/interview"
)

// New создает клиента выбранного провайдера
func New(cfg *config.AppConfig) (interview.Completer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg.OpenAI), nil
	case "anthropic":
		return NewAnthropicClient(cfg.Anthropic), nil
	default:
		return nil, fmt.Errorf("неизвестный LLM_PROVIDER: %q", cfg.Provider)
	}
}

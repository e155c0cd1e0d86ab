package config

import (
	"fmt"
)

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	TTSModel    string
	MaxTokens   int
	Temperature float64
}

// LoadOpenAIConfig загружает конфигурацию OpenAI из переменных окружения
func LoadOpenAIConfig() *OpenAIConfig {
	return &OpenAIConfig{
		APIKey:      getEnv("OPENAI_API_KEY", ""),
		BaseURL:     getEnv("OPENAI_BASE_URL", ""),
		Model:       getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		TTSModel:    getEnv("OPENAI_TTS_MODEL", "tts-1"),
		MaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 500),
		Temperature: getEnvAsFloat("OPENAI_TEMPERATURE", 0.7),
	}
}

// ValidateConfig проверяет корректность конфигурации
func (c *OpenAIConfig) ValidateConfig() error {
	if c.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("OPENAI_MAX_TOKENS must be positive")
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("OPENAI_TEMPERATURE must be between 0 and 2")
	}

	return nil
}

// GetModelInfo возвращает информацию о используемой модели
func (c *OpenAIConfig) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"model":       c.Model,
		"max_tokens":  c.MaxTokens,
		"temperature": c.Temperature,
		"provider":    "OpenAI",
	}
}

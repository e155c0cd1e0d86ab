package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type AppConfig struct {
	Provider  string
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	Telegram  TelegramConfig
	Storage   StorageConfig
	Sandbox   SandboxConfig
	Voice     VoiceConfig
	Log       LogConfig
	Server    ServerConfig
}

type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

type TelegramConfig struct {
	Token          string
	RateLimit      float64
	RateBurst      int
	SessionIdleTTL time.Duration
}

type StorageConfig struct {
	Backend       string
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	ReportsDir    string
}

type SandboxConfig struct {
	PythonImage string
	NodeImage   string
	Memory      string
	Timeout     time.Duration
}

type VoiceConfig struct {
	TTSEnabled bool
	TTSVoice   string
	OutputDir  string
}

type LogConfig struct {
	Level string
	File  string
}

type ServerConfig struct {
	MetricsAddr     string
	ShutdownTimeout time.Duration
}

// LoadAppConfig собирает конфигурацию приложения из переменных окружения
func LoadAppConfig() *AppConfig {
	return &AppConfig{
		Provider: getEnv("LLM_PROVIDER", "openai"),
		OpenAI:   *LoadOpenAIConfig(),
		Anthropic: AnthropicConfig{
			APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
			Model:     getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
			MaxTokens: getEnvAsInt("ANTHROPIC_MAX_TOKENS", 1024),
		},
		Telegram: TelegramConfig{
			Token:          getEnv("TELEGRAM_BOT_TOKEN", ""),
			RateLimit:      getEnvAsFloat("TELEGRAM_RATE_LIMIT", 10.0/60.0),
			RateBurst:      getEnvAsInt("TELEGRAM_RATE_BURST", 10),
			SessionIdleTTL: getEnvAsDuration("TELEGRAM_SESSION_TTL", 24*time.Hour),
		},
		Storage: StorageConfig{
			Backend:       getEnv("STORAGE_BACKEND", "memory"),
			Path:          getEnv("STORAGE_PATH", "interview.db"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			RedisPrefix:   getEnv("REDIS_PREFIX", "interview:"),
			ReportsDir:    getEnv("REPORTS_DIR", "results"),
		},
		Sandbox: SandboxConfig{
			PythonImage: getEnv("SANDBOX_IMAGE_PYTHON", "python:3.12-alpine"),
			NodeImage:   getEnv("SANDBOX_IMAGE_NODE", "node:22-alpine"),
			Memory:      getEnv("SANDBOX_MEMORY", "256m"),
			Timeout:     getEnvAsDuration("SANDBOX_TIMEOUT", 10*time.Second),
		},
		Voice: VoiceConfig{
			TTSEnabled: getEnvAsBool("TTS_ENABLED", false),
			TTSVoice:   getEnv("TTS_VOICE", "alloy"),
			OutputDir:  getEnv("TTS_OUTPUT_DIR", os.TempDir()),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Server: ServerConfig{
			MetricsAddr:     getEnv("METRICS_ADDR", ""),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
	}
}

// Validate проверяет, что для выбранного провайдера задан ключ
func (c *AppConfig) Validate() error {
	switch c.Provider {
	case "openai":
		return c.OpenAI.ValidateConfig()
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required")
		}
		if c.Anthropic.MaxTokens <= 0 {
			return fmt.Errorf("ANTHROPIC_MAX_TOKENS must be positive")
		}
		return nil
	default:
		return fmt.Errorf("неизвестный LLM_PROVIDER: %q", c.Provider)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

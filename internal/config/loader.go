package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"interview-prep-bot/internal/interview"
)

// Load загружает конфигурацию из YAML файла.
// Отсутствующий файл не считается ошибкой: возвращаются значения по умолчанию.
func Load(filename string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", filename, err)
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML: %w", err)
	}

	// Валидация конфигурации
	err = validateConfig(config)
	if err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return config, nil
}

// SessionConfig переводит настройки в конфигурацию сессии
func (c *Config) SessionConfig() (interview.SessionConfig, error) {
	role, err := interview.ParseTargetRole(c.Interview.Role)
	if err != nil {
		return interview.SessionConfig{}, err
	}
	mode, err := interview.ParseMode(c.Interview.Mode)
	if err != nil {
		return interview.SessionConfig{}, err
	}
	return interview.SessionConfig{
		Role:   role,
		Domain: c.Interview.Domain,
		Mode:   mode,
	}, nil
}

// validateConfig проверяет корректность конфигурации
func validateConfig(config *Config) error {
	if len(config.UserName) > 64 {
		return fmt.Errorf("user_name не может быть длиннее 64 символов")
	}

	if _, err := config.SessionConfig(); err != nil {
		return err
	}

	return nil
}

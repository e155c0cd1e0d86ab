// Package sandbox выполняет фрагменты кода кандидата в изолированном контейнере.
// Песочница не связана с сессией интервью.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"interview-prep-bot/internal/config"
)

// Language язык фрагмента кода
type Language string

const (
	Python     Language = "Python"
	JavaScript Language = "JavaScript"
)

// ParseLanguage разбирает название языка без учета регистра
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "python", "py":
		return Python, nil
	case "javascript", "js", "node":
		return JavaScript, nil
	default:
		return "", fmt.Errorf("неподдерживаемый язык: %q", s)
	}
}

// Result результат выполнения команды в контейнере
type Result struct {
	Stdout   string
	Stderr   string
	Code     int
	TimedOut bool
}

// Executor запускает команду в образе и возвращает ее вывод
type Executor interface {
	Exec(ctx context.Context, image string, cmd []string, timeout time.Duration) (Result, error)
}

type Sandbox struct {
	exec Executor
	cfg  config.SandboxConfig
}

// New создает песочницу. exec может быть nil, если Docker недоступен:
// тогда каждый запуск возвращает текст ошибки.
func New(exec Executor, cfg config.SandboxConfig) *Sandbox {
	return &Sandbox{exec: exec, cfg: cfg}
}

// Run выполняет код и возвращает вывод программы.
// Любая ошибка возвращается текстом "Error: <причина>", а не значением error.
func (s *Sandbox) Run(ctx context.Context, code string, lang Language) (out string) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("Паника в песочнице", "language", lang, "panic", p)
			out = errorText(fmt.Errorf("%v", p))
		}
	}()

	if strings.TrimSpace(code) == "" {
		return errorText(errors.New("пустой код"))
	}
	if s.exec == nil {
		return errorText(errors.New("песочница недоступна: Docker не подключен"))
	}

	image, cmd, err := s.command(code, lang)
	if err != nil {
		return errorText(err)
	}

	res, err := s.exec.Exec(ctx, image, cmd, s.cfg.Timeout)
	if res.TimedOut {
		return errorText(fmt.Errorf("превышено время выполнения (%s)", s.cfg.Timeout))
	}
	if err != nil {
		slog.Warn("Ошибка запуска кода", "language", lang, "error", err)
		return errorText(err)
	}
	if res.Code != 0 {
		reason := strings.TrimSpace(res.Stderr)
		if reason == "" {
			reason = fmt.Sprintf("код завершения %d", res.Code)
		}
		return errorText(errors.New(reason))
	}

	return strings.TrimRight(res.Stdout, "\n")
}

func (s *Sandbox) command(code string, lang Language) (string, []string, error) {
	switch lang {
	case Python:
		return s.cfg.PythonImage, []string{"python3", "-c", code}, nil
	case JavaScript:
		return s.cfg.NodeImage, []string{"node", "-e", code}, nil
	default:
		return "", nil, fmt.Errorf("неподдерживаемый язык: %q", lang)
	}
}

func errorText(err error) string {
	return "Error: " + err.Error()
}

// Package cli содержит команды Cobra: консольное интервью, Telegram бот и служебные команды.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"interview-prep-bot/internal/config"
	"interview-prep-bot/internal/dialogue"
	"interview-prep-bot/internal/interview"
	"interview-prep-bot/internal/logger"
	"interview-prep-bot/internal/sandbox"
	"interview-prep-bot/internal/storage"
)

var version = "dev" // задается через ldflags при сборке

// app общее состояние команд, заполняется перед запуском подкоманды
type app struct {
	cfg       *config.AppConfig
	prefs     *config.Config
	prefsPath string
	closeLog  func() error
}

// NewRootCmd собирает дерево команд
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "interview-prep-bot",
		Short: "Тренажер собеседований с LLM интервьюером",
		Long: `interview-prep-bot проводит тренировочные собеседования: задает вопросы
под выбранную роль и режим, подводит итоги с оценкой, ведет таблицу лидеров
и историю. Работает в терминале (chat) и как Telegram бот (telegram).`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&a.prefsPath, "config", "config/interview.yaml", "YAML файл с настройками интервью")

	root.AddCommand(newChatCmd(a))
	root.AddCommand(newTelegramCmd(a))
	root.AddCommand(newLeaderboardCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newReportsCmd(a))
	root.AddCommand(newResumeCmd(a))
	root.AddCommand(newRunCmd(a))

	return root
}

// Execute запускает корневую команду. Вызывается из main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func (a *app) init() error {
	a.cfg = config.LoadAppConfig()

	closeLog, err := logger.Init(a.cfg.Log.Level, a.cfg.Log.File)
	if err != nil {
		return err
	}
	a.closeLog = closeLog

	prefs, err := config.Load(a.prefsPath)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации интервью: %w", err)
	}
	a.prefs = prefs

	return nil
}

func (a *app) close() error {
	if a.closeLog == nil {
		return nil
	}
	return a.closeLog()
}

func (a *app) openStore(ctx context.Context) (storage.Store, error) {
	store, err := storage.Open(ctx, a.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия хранилища (%s): %w", a.cfg.Storage.Backend, err)
	}
	slog.Debug("Хранилище открыто", "backend", a.cfg.Storage.Backend)
	return store, nil
}

func (a *app) newCompleter() (interview.Completer, error) {
	client, err := dialogue.New(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации сервиса диалога: %w", err)
	}
	if a.cfg.Provider == "openai" {
		slog.Debug("Сервис диалога", "provider", a.cfg.Provider, "model", a.cfg.OpenAI.GetModelInfo())
	} else {
		slog.Debug("Сервис диалога", "provider", a.cfg.Provider, "model", a.cfg.Anthropic.Model)
	}
	return client, nil
}

// newSandbox подключает Docker. Без Docker песочница отвечает текстом ошибки.
func (a *app) newSandbox(ctx context.Context) (*sandbox.Sandbox, func()) {
	exec, err := sandbox.NewDockerExecutor(ctx, a.cfg.Sandbox)
	if err != nil {
		slog.Warn("Песочница кода отключена", "error", err)
		return sandbox.New(nil, a.cfg.Sandbox), func() {}
	}
	return sandbox.New(exec, a.cfg.Sandbox), func() { _ = exec.Close() }
}

// sessionConfig берет настройки из YAML и перекрывает их флагами
func (a *app) sessionConfig(role, mode, domain string) (interview.SessionConfig, error) {
	cfg, err := a.prefs.SessionConfig()
	if err != nil {
		return cfg, err
	}
	if role != "" {
		if cfg.Role, err = interview.ParseTargetRole(role); err != nil {
			return cfg, err
		}
	}
	if mode != "" {
		if cfg.Mode, err = interview.ParseMode(mode); err != nil {
			return cfg, err
		}
	}
	if domain != "" {
		cfg.Domain = domain
	}
	return cfg, nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"interview-prep-bot/internal/metrics"
	"interview-prep-bot/internal/telegram"
)

func newTelegramCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "telegram",
		Short: "Запустить Telegram бота",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if a.cfg.Telegram.Token == "" {
				return errors.New("TELEGRAM_BOT_TOKEN не установлен")
			}
			defaults, err := a.prefs.SessionConfig()
			if err != nil {
				return err
			}

			client, err := a.newCompleter()
			if err != nil {
				return err
			}
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			bot := telegram.New(a.cfg.Telegram.Token)
			handler := telegram.NewHandler(bot, client, store, defaults, a.cfg.Telegram, a.cfg.Storage.ReportsDir)
			handler.StartSessionCleanup(ctx)

			if a.cfg.Server.MetricsAddr != "" {
				srv := startMetricsServer(a.cfg.Server.MetricsAddr)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
					defer cancel()
					if err := srv.Shutdown(shutdownCtx); err != nil {
						slog.Warn("Ошибка остановки сервера метрик", "error", err)
					}
				}()
			}

			slog.Info("Telegram бот запущен",
				"provider", a.cfg.Provider,
				"storage", a.cfg.Storage.Backend,
				"role", defaults.Role,
				"mode", defaults.Mode)
			fmt.Fprintln(cmd.OutOrStdout(), "🤖 Telegram бот запущен! Найдите бота в Telegram и отправьте /start")

			err = bot.StartPolling(ctx, handler.Enqueue)
			if errors.Is(err, context.Canceled) {
				slog.Info("Бот остановлен")
				return nil
			}
			return err
		},
	}
}

func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		slog.Info("Сервер метрик запущен", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Сервер метрик остановлен с ошибкой", "error", err)
		}
	}()
	return srv
}

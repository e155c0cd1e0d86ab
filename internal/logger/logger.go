// Package logger настраивает глобальный slog.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel переводит строку LOG_LEVEL в уровень, по умолчанию info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init ставит текстовый обработчик по умолчанию. Логи идут в stderr,
// чтобы не смешиваться с диалогом в терминале, и дублируются в logFile, если он задан.
// Возвращенную функцию нужно вызвать при завершении.
func Init(level, logFile string) (func() error, error) {
	return initWith(os.Stderr, level, logFile)
}

func initWith(out io.Writer, level, logFile string) (func() error, error) {
	writers := []io.Writer{out}
	closeFn := func() error { return nil }

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия лог-файла %s: %w", logFile, err)
		}
		writers = append(writers, f)
		closeFn = f.Close
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("time", a.Value.Time().Format("15:04:05"))
			}
			return a
		},
	})
	slog.SetDefault(slog.New(handler))

	return closeFn, nil
}

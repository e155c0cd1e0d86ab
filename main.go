package main

import (
	"log/slog"

	"github.com/joho/godotenv"

	"interview-prep-bot/internal/cli"
)

func main() {
	// Переменные окружения можно задать и без .env файла
	if err := godotenv.Load(); err != nil {
		slog.Debug("Файл .env не загружен", "error", err)
	}

	cli.Execute()
}

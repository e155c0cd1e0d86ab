// Package storage хранит таблицу лидеров и историю итогов.
// Обе структуры только растут: записи не удаляются и не перезаписываются.
package storage

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/redis/go-redis/v9"

	"interview-prep-bot/internal/config"
)

// ErrClosed возвращается при обращении к закрытому хранилищу
var ErrClosed = errors.New("хранилище закрыто")

// Leaderboard набор оценок, упорядочиваемый по убыванию
type Leaderboard interface {
	Record(ctx context.Context, name string, score int) error
	// Ranked возвращает записи по убыванию оценки; равные оценки идут в порядке добавления.
	Ranked(ctx context.Context) ([]ScoreEntry, error)
}

// History архив итогов по пользователям
type History interface {
	Append(ctx context.Context, name, summary string) error
	// ForUser лениво перечисляет записи пользователя в порядке добавления.
	// Имя сравнивается с учетом регистра, повторный обход заново читает хранилище.
	ForUser(ctx context.Context, name string) iter.Seq2[HistoryRecord, error]
}

// Store объединяет таблицу лидеров и историю
type Store interface {
	Leaderboard
	History
	Close() error
}

// Open создает хранилище по конфигурации
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return OpenSQLite(cfg.Path)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return NewRedisStore(client, cfg.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("неизвестный STORAGE_BACKEND: %q", cfg.Backend)
	}
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"sync"

	"github.com/redis/go-redis/v9"
)

const historyPageSize = 50

// RedisStore хранит таблицу лидеров и историю в списках Redis.
// Подходит для нескольких экземпляров бота с общим рейтингом.
type RedisStore struct {
	client *redis.Client
	prefix string
	mu     sync.RWMutex
	closed bool
}

// NewRedisStore создает хранилище поверх готового клиента
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "interview:"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) scoresKey() string {
	return s.prefix + "scores"
}

func (s *RedisStore) historyKey(name string) string {
	return s.prefix + "history:" + name
}

func (s *RedisStore) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *RedisStore) Record(ctx context.Context, name string, score int) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	data, err := json.Marshal(ScoreEntry{Name: name, Score: score})
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	if err := s.client.RPush(ctx, s.scoresKey(), data).Err(); err != nil {
		return fmt.Errorf("push score: %w", err)
	}
	return nil
}

func (s *RedisStore) Ranked(ctx context.Context) ([]ScoreEntry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	raw, err := s.client.LRange(ctx, s.scoresKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}

	ranked := make([]ScoreEntry, 0, len(raw))
	for _, item := range raw {
		var e ScoreEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("unmarshal score: %w", err)
		}
		ranked = append(ranked, e)
	}
	sortRanked(ranked)
	return ranked, nil
}

func (s *RedisStore) Append(ctx context.Context, name, summary string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	data, err := json.Marshal(HistoryRecord{Name: name, Summary: summary})
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := s.client.RPush(ctx, s.historyKey(name), data).Err(); err != nil {
		return fmt.Errorf("push history: %w", err)
	}
	return nil
}

// ForUser читает историю страницами, не загружая весь список сразу
func (s *RedisStore) ForUser(ctx context.Context, name string) iter.Seq2[HistoryRecord, error] {
	return func(yield func(HistoryRecord, error) bool) {
		if err := s.checkOpen(); err != nil {
			yield(HistoryRecord{}, err)
			return
		}

		key := s.historyKey(name)
		for start := int64(0); ; start += historyPageSize {
			page, err := s.client.LRange(ctx, key, start, start+historyPageSize-1).Result()
			if err != nil {
				yield(HistoryRecord{}, fmt.Errorf("load history: %w", err))
				return
			}

			for _, item := range page {
				var r HistoryRecord
				if err := json.Unmarshal([]byte(item), &r); err != nil {
					yield(HistoryRecord{}, fmt.Errorf("unmarshal history: %w", err))
					return
				}
				if !yield(r, nil) {
					return
				}
			}

			if len(page) < historyPageSize {
				return
			}
		}
	}
}

func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}

package storage

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"sync"
)

// MemoryStore хранит данные в памяти процесса
type MemoryStore struct {
	mu      sync.RWMutex
	scores  []ScoreEntry
	records []HistoryRecord
	closed  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Record(_ context.Context, name string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.scores = append(s.scores, ScoreEntry{Name: name, Score: score})
	return nil
}

func (s *MemoryStore) Ranked(_ context.Context) ([]ScoreEntry, error) {
	s.mu.RLock()
	ranked := slices.Clone(s.scores)
	s.mu.RUnlock()

	sortRanked(ranked)
	return ranked, nil
}

func (s *MemoryStore) Append(_ context.Context, name, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.records = append(s.records, HistoryRecord{Name: name, Summary: summary})
	return nil
}

func (s *MemoryStore) ForUser(_ context.Context, name string) iter.Seq2[HistoryRecord, error] {
	return func(yield func(HistoryRecord, error) bool) {
		// Записи только добавляются, поэтому префикс среза неизменен
		s.mu.RLock()
		records := s.records[:len(s.records):len(s.records)]
		s.mu.RUnlock()

		for _, r := range records {
			if r.Name != name {
				continue
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// sortRanked сортирует по убыванию оценки, сохраняя порядок равных
func sortRanked(entries []ScoreEntry) {
	slices.SortStableFunc(entries, func(a, b ScoreEntry) int {
		return cmp.Compare(b.Score, a.Score)
	})
}

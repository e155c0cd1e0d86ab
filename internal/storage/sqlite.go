package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"iter"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore хранит таблицу лидеров и историю в файле SQLite
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite открывает базу и применяет миграции
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		var applied int
		err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", f).Scan(&applied)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", f, err)
		}
		if applied > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + f)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", f, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx for %s: %w", f, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", f, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", f); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", f, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Record(ctx context.Context, name string, score int) error {
	if _, err := s.db.ExecContext(ctx, "INSERT INTO scores (name, score) VALUES (?, ?)", name, score); err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ranked(ctx context.Context) ([]ScoreEntry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, score FROM scores ORDER BY score DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var ranked []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		if err := rows.Scan(&e.Name, &e.Score); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		ranked = append(ranked, e)
	}
	return ranked, rows.Err()
}

func (s *SQLiteStore) Append(ctx context.Context, name, summary string) error {
	if _, err := s.db.ExecContext(ctx, "INSERT INTO history (name, summary) VALUES (?, ?)", name, summary); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ForUser(ctx context.Context, name string) iter.Seq2[HistoryRecord, error] {
	return func(yield func(HistoryRecord, error) bool) {
		rows, err := s.db.QueryContext(ctx, "SELECT name, summary FROM history WHERE name = ? ORDER BY id ASC", name)
		if err != nil {
			yield(HistoryRecord{}, fmt.Errorf("query history: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var r HistoryRecord
			if err := rows.Scan(&r.Name, &r.Summary); err != nil {
				yield(HistoryRecord{}, fmt.Errorf("scan history: %w", err))
				return
			}
			if !yield(r, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(HistoryRecord{}, fmt.Errorf("iterate history: %w", err))
		}
	}
}

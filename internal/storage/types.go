package storage

import (
	"time"

	"interview-prep-bot/internal/interview"
)

// ScoreEntry одна запись таблицы лидеров
type ScoreEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// HistoryRecord итоги завершенной сессии пользователя
type HistoryRecord struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// Report представляет сохраненный отчет об интервью
type Report struct {
	InterviewID string                  `json:"interview_id"`
	User        string                  `json:"user"`
	Timestamp   string                  `json:"timestamp"`
	Config      interview.SessionConfig `json:"config"`
	Transcript  []interview.Message     `json:"transcript"`
	Summary     string                  `json:"summary"`
	Score       *int                    `json:"score,omitempty"`
}

// NewReport собирает отчет из снимка сессии
func NewReport(user string, session interview.Session, score int, hasScore bool) *Report {
	r := &Report{
		InterviewID: session.ID,
		User:        user,
		Timestamp:   time.Now().Format(time.RFC3339),
		Config:      session.Config,
		Transcript:  session.Transcript.Messages(),
		Summary:     session.Summary,
	}
	if hasScore {
		r.Score = &score
	}
	return r
}

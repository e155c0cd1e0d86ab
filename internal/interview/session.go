package interview

import (
	"fmt"
	"strings"
	"time"
)

// TargetRole вакансия, под которую проводится интервью
type TargetRole string

const (
	SoftwareEngineer TargetRole = "Software Engineer"
	DataAnalyst      TargetRole = "Data Analyst"
	ProductManager   TargetRole = "Product Manager"
)

// Mode стиль интервью
type Mode string

const (
	Technical      Mode = "Technical"
	Behavioral     Mode = "Behavioral"
	FAANGTechnical Mode = "FAANG-style Technical"
)

// SessionState представляет состояние сессии
type SessionState string

const (
	StateIdle       SessionState = "idle"
	StateActive     SessionState = "active"
	StateSummarized SessionState = "summarized"
)

const defaultDomain = "general"

// SessionConfig не меняется в течение сессии и однозначно задает системный промпт
type SessionConfig struct {
	Role   TargetRole `json:"role"`
	Domain string     `json:"domain,omitempty"`
	Mode   Mode       `json:"mode"`
}

// DomainOrDefault возвращает домен или "general", если он пуст
func (c SessionConfig) DomainOrDefault() string {
	if d := strings.TrimSpace(c.Domain); d != "" {
		return d
	}
	return defaultDomain
}

// Validate проверяет, что роль и режим входят в допустимые значения
func (c SessionConfig) Validate() error {
	if _, err := ParseTargetRole(string(c.Role)); err != nil {
		return &ValidationError{Field: "role", Reason: err.Error()}
	}
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return &ValidationError{Field: "mode", Reason: err.Error()}
	}
	return nil
}

// Session одна попытка интервью: от старта до необязательного итога
type Session struct {
	ID         string        `json:"id"`
	Config     SessionConfig `json:"config"`
	Transcript Transcript    `json:"-"`
	Summary    string        `json:"summary,omitempty"`
	State      SessionState  `json:"state"`
	StartedAt  time.Time     `json:"started_at"`
	// ScoreRecorded истинно, если оценка из последних итогов попала в таблицу лидеров
	ScoreRecorded bool `json:"score_recorded"`
}

// ParseTargetRole принимает как точные названия, так и сокращения вида "data-analyst" или "pm"
func ParseTargetRole(s string) (TargetRole, error) {
	switch normalize(s) {
	case "softwareengineer", "swe", "engineer":
		return SoftwareEngineer, nil
	case "dataanalyst", "analyst", "da":
		return DataAnalyst, nil
	case "productmanager", "pm":
		return ProductManager, nil
	}
	return "", fmt.Errorf("неизвестная роль %q", s)
}

// ParseMode принимает "technical", "behavioral", "faang" и полные названия режимов
func ParseMode(s string) (Mode, error) {
	switch normalize(s) {
	case "technical", "tech":
		return Technical, nil
	case "behavioral", "behavioural":
		return Behavioral, nil
	case "faangstyletechnical", "faangtechnical", "faang":
		return FAANGTechnical, nil
	}
	return "", fmt.Errorf("неизвестный режим %q", s)
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

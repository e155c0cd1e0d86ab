package interview

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"interview-prep-bot/internal/metrics"
	"interview-prep-bot/internal/scoring"
)

// Completer возвращает следующее сообщение ассистента для переданного транскрипта
type Completer interface {
	Complete(ctx context.Context, transcript []Message) (Message, error)
}

// ScoreRecorder принимает оценку, извлеченную из итогов
type ScoreRecorder interface {
	Record(ctx context.Context, name string, score int) error
}

// SummaryArchive хранит итоги завершенных сессий
type SummaryArchive interface {
	Append(ctx context.Context, name, summary string) error
}

// Speaker озвучивает ответы интервьюера
type Speaker interface {
	Speak(ctx context.Context, text string)
}

// Option настраивает Manager
type Option func(*Manager)

// WithLeaderboard подключает таблицу лидеров
func WithLeaderboard(r ScoreRecorder) Option {
	return func(m *Manager) { m.scores = r }
}

// WithHistory подключает архив итогов
func WithHistory(a SummaryArchive) Option {
	return func(m *Manager) { m.archive = a }
}

// WithSpeaker включает озвучивание ответов
func WithSpeaker(s Speaker) Option {
	return func(m *Manager) { m.speaker = s }
}

// Manager владеет сессией одного пользователя и ее жизненным циклом.
// Все операции сериализуются: в один момент времени к транскрипту
// относится не больше одного вызова сервиса диалога.
type Manager struct {
	user    string
	client  Completer
	scores  ScoreRecorder
	archive SummaryArchive
	speaker Speaker

	mu      sync.Mutex
	session Session
}

// NewManager создает менеджер сессий для пользователя
func NewManager(user string, client Completer, opts ...Option) *Manager {
	if strings.TrimSpace(user) == "" {
		user = "Guest"
	}
	m := &Manager{
		user:    user,
		client:  client,
		session: Session{State: StateIdle},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// User возвращает имя, под которым записываются оценки и история
func (m *Manager) User() string {
	return m.user
}

// State возвращает текущее состояние сессии
func (m *Manager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.State
}

// Transcript возвращает копию транскрипта
func (m *Manager) Transcript() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Transcript.Messages()
}

// Summary возвращает последние итоги или пустую строку
func (m *Manager) Summary() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Summary
}

// Snapshot возвращает копию сессии, не связанную с внутренним состоянием
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session
	s.Transcript = Transcript{messages: m.session.Transcript.Messages()}
	return s
}

// Reset сбрасывает сессию в Idle. Записанные оценки и история не затрагиваются.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = Session{State: StateIdle}
}

// Start начинает новое интервью: очищает прошлый транскрипт и итоги,
// добавляет системное сообщение и запрашивает первый вопрос.
// При ошибке сервиса сессия остается в Idle без системного сообщения.
func (m *Manager) Start(ctx context.Context, cfg SessionConfig) ([]Message, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = Session{
		ID:        uuid.New().String(),
		Config:    cfg,
		State:     StateIdle,
		StartedAt: time.Now(),
	}
	m.session.Transcript.append(Message{Role: RoleSystem, Content: SystemPrompt(cfg)})

	question, err := m.complete(ctx, "start")
	if err != nil {
		m.session = Session{State: StateIdle}
		return nil, err
	}

	m.session.Transcript.append(question)
	m.session.State = StateActive
	metrics.IncrementInterviewsStarted(string(cfg.Role), string(cfg.Mode))
	slog.Info("интервью начато", "user", m.user, "session", m.session.ID, "role", cfg.Role, "mode", cfg.Mode)

	return m.session.Transcript.Messages(), nil
}

// SubmitAnswer добавляет ответ пользователя, получает реакцию интервьюера
// и возвращает ее. Вызов блокирующий: ход завершается только после ответа сервиса.
func (m *Manager) SubmitAnswer(ctx context.Context, text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, &ValidationError{Field: "answer", Reason: "ответ не может быть пустым"}
	}

	reply, err := m.submit(ctx, text)
	if err != nil {
		return Message{}, err
	}

	if m.speaker != nil {
		m.speaker.Speak(ctx, reply.Content)
	}
	return reply, nil
}

func (m *Manager) submit(ctx context.Context, text string) (Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.session.State {
	case StateIdle:
		return Message{}, ErrNoSession
	case StateSummarized:
		return Message{}, ErrSummarized
	}

	mark := m.session.Transcript.Len()
	m.session.Transcript.append(Message{Role: RoleUser, Content: text})

	reply, err := m.complete(ctx, "answer")
	if err != nil {
		m.session.Transcript.truncate(mark)
		return Message{}, err
	}

	m.session.Transcript.append(reply)
	metrics.IncrementAnswers()
	return reply, nil
}

// RequestSummary запрашивает итоговый отчет, переводит сессию в Summarized,
// записывает оценку (если ее удалось извлечь) и сохраняет итоги в историю.
// Повторный вызов добавляет еще один запрос итогов и может дать другой отчет.
func (m *Manager) RequestSummary(ctx context.Context) (string, error) {
	summary, id, err := m.summarize(ctx)
	if err != nil {
		return "", err
	}

	recorded := m.record(ctx, summary)

	m.mu.Lock()
	if m.session.ID == id {
		m.session.ScoreRecorded = recorded
	}
	m.mu.Unlock()

	return summary, nil
}

func (m *Manager) summarize(ctx context.Context) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.State == StateIdle {
		return "", "", ErrNoSession
	}
	if !m.session.Transcript.hasAnswer() {
		return "", "", ErrNoExchange
	}

	mark := m.session.Transcript.Len()
	m.session.Transcript.append(Message{Role: RoleUser, Content: SummaryRequest})

	reply, err := m.complete(ctx, "summary")
	if err != nil {
		m.session.Transcript.truncate(mark)
		return "", "", err
	}

	m.session.Transcript.append(reply)
	m.session.Summary = reply.Content
	m.session.State = StateSummarized
	m.session.ScoreRecorded = false
	metrics.IncrementInterviewsSummarized()

	return reply.Content, m.session.ID, nil
}

// record сохраняет результаты итогов и сообщает, записана ли оценка.
// Ошибки хранилища только логируются: итоги уже получены и возвращаются вызывающему.
func (m *Manager) record(ctx context.Context, summary string) bool {
	recorded := false
	if score, ok := scoring.ExtractScore(summary); ok {
		if m.scores != nil {
			if err := m.scores.Record(ctx, m.user, score); err != nil {
				slog.Warn("не удалось записать оценку", "user", m.user, "score", score, "error", err)
			} else {
				metrics.IncrementScoresRecorded()
				recorded = true
			}
		}
		slog.Info("итоги получены", "user", m.user, "score", score)
	} else {
		slog.Info("итоги получены без оценки", "user", m.user)
	}

	if m.archive != nil {
		if err := m.archive.Append(ctx, m.user, summary); err != nil {
			slog.Warn("не удалось сохранить итоги в историю", "user", m.user, "error", err)
		}
	}
	return recorded
}

// Score возвращает оценку из последних итогов
func (m *Manager) Score() (int, bool) {
	return scoring.ExtractScore(m.Summary())
}

// complete вызывает сервис диалога на текущем транскрипте. Вызывается под m.mu.
func (m *Manager) complete(ctx context.Context, op string) (Message, error) {
	started := time.Now()
	reply, err := m.client.Complete(ctx, m.session.Transcript.Messages())
	metrics.ObserveDialogueCall(err == nil, time.Since(started))
	if err != nil {
		slog.Warn("сервис диалога вернул ошибку", "user", m.user, "op", op, "error", err)
		return Message{}, &ServiceError{Op: op, Err: err}
	}
	reply.Role = RoleAssistant
	return reply, nil
}

package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"interview-prep-bot/internal/config"
	"interview-prep-bot/internal/interview"
	"interview-prep-bot/internal/storage"
)

const (
	leaderboardSize = 10
	userQueueSize   = 32
)

// Sender отправляет сообщения в чат
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMarkdown(ctx context.Context, chatID int64, text string) error
}

// Handler ведет отдельную сессию интервью для каждого пользователя.
// Таблица лидеров и история общие для всех.
type Handler struct {
	bot        Sender
	client     interview.Completer
	store      storage.Store
	defaults   interview.SessionConfig
	reportsDir string

	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	sessions      map[int64]*UserSession
	sessionsMutex sync.RWMutex
}

func NewHandler(bot Sender, client interview.Completer, store storage.Store, defaults interview.SessionConfig, cfg config.TelegramConfig, reportsDir string) *Handler {
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return &Handler{
		bot:        bot,
		client:     client,
		store:      store,
		defaults:   defaults,
		reportsDir: reportsDir,
		limit:      rate.Limit(cfg.RateLimit),
		burst:      burst,
		idleTTL:    cfg.SessionIdleTTL,
		now:        time.Now,
		sessions:   make(map[int64]*UserSession),
	}
}

// StartSessionCleanup раз в час удаляет неактивные сессии, пока не отменен ctx
func (h *Handler) StartSessionCleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := h.cleanupInactiveSessions(); n > 0 {
					slog.Info("Удалены неактивные сессии", "count", n)
				}
			}
		}
	}()
}

func (h *Handler) cleanupInactiveSessions() int {
	if h.idleTTL <= 0 {
		return 0
	}

	h.sessionsMutex.Lock()
	defer h.sessionsMutex.Unlock()

	cutoff := h.now().Add(-h.idleTTL)
	removed := 0
	for uid, sess := range h.sessions {
		if len(sess.queue) > 0 || !sess.mu.TryLock() {
			continue
		}
		if sess.LastActivity.Before(cutoff) {
			delete(h.sessions, uid)
			close(sess.done)
			removed++
		}
		sess.mu.Unlock()
	}
	return removed
}

// Enqueue ставит обновление в очередь пользователя и сразу возвращается.
// Очередь разбирает одна горутина на пользователя, поэтому его сообщения
// обрабатываются в порядке получения, а разные пользователи не ждут друг друга.
func (h *Handler) Enqueue(ctx context.Context, update Update) {
	if !isUserMessage(update) {
		return
	}

	session := h.getOrCreateSession(update.Message.From)
	session.worker.Do(func() { go h.work(ctx, session) })

	select {
	case session.queue <- update:
	case <-ctx.Done():
	}
}

func (h *Handler) work(ctx context.Context, session *UserSession) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-session.done:
			return
		case update := <-session.queue:
			h.HandleUpdate(ctx, update)
		}
	}
}

func isUserMessage(update Update) bool {
	return update.Message != nil && update.Message.From != nil && update.Message.Chat != nil
}

// HandleUpdate синхронно обрабатывает одно входящее сообщение
// под блокировкой сессии пользователя.
func (h *Handler) HandleUpdate(ctx context.Context, update Update) {
	if !isUserMessage(update) {
		return
	}
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	session := h.lockSession(update.Message.From)
	defer session.mu.Unlock()

	if !session.limiter.Allow() {
		h.send(ctx, chatID, "⏳ Слишком много сообщений. Пожалуйста, подождите минуту.")
		return
	}

	if strings.HasPrefix(text, "/") {
		h.handleCommand(ctx, chatID, text, session)
		return
	}
	h.handleUserInput(ctx, chatID, text, session)
}

// handleCommand обрабатывает команды бота
func (h *Handler) handleCommand(ctx context.Context, chatID int64, text string, session *UserSession) {
	fields := strings.Fields(text)
	command, _, _ := strings.Cut(fields[0], "@")
	args := fields[1:]

	switch command {
	case "/start":
		h.handleStartCommand(ctx, chatID, session, args)
	case "/summary":
		h.handleSummaryCommand(ctx, chatID, session)
	case "/leaderboard":
		h.handleLeaderboardCommand(ctx, chatID)
	case "/history":
		h.handleHistoryCommand(ctx, chatID, session)
	case "/status":
		h.handleStatusCommand(ctx, chatID, session)
	case "/stop":
		h.handleStopCommand(ctx, chatID, session)
	case "/help":
		h.handleHelpCommand(ctx, chatID)
	default:
		h.send(ctx, chatID, "Неизвестная команда. Используйте /help для получения списка команд.")
	}
}

// parseStartArgs разбирает "/start [роль] [режим] [домен...]" поверх настроек по умолчанию
func (h *Handler) parseStartArgs(args []string) (interview.SessionConfig, error) {
	cfg := h.defaults
	if len(args) > 0 {
		role, err := interview.ParseTargetRole(args[0])
		if err != nil {
			return cfg, err
		}
		cfg.Role = role
	}
	if len(args) > 1 {
		mode, err := interview.ParseMode(args[1])
		if err != nil {
			return cfg, err
		}
		cfg.Mode = mode
	}
	if len(args) > 2 {
		cfg.Domain = strings.Join(args[2:], " ")
	}
	return cfg, nil
}

// handleStartCommand начинает новое интервью, текущее при этом сбрасывается
func (h *Handler) handleStartCommand(ctx context.Context, chatID int64, session *UserSession, args []string) {
	cfg, err := h.parseStartArgs(args)
	if err != nil {
		h.send(ctx, chatID, "❌ "+err.Error()+"\n\nПример: /start swe technical backend")
		return
	}

	if session.Manager.State() == interview.StateActive {
		h.send(ctx, chatID, "🔄 Текущее интервью сброшено.")
	}
	h.send(ctx, chatID, "⏳ Готовлю первый вопрос...")

	if _, err := session.Manager.Start(ctx, cfg); err != nil {
		h.sendError(ctx, chatID, session, err)
		return
	}

	snapshot := session.Manager.Snapshot()
	welcomeText := fmt.Sprintf(`🎯 *Добро пожаловать на интервью!*

🆔 *ID интервью:* `+"`%s`"+`
👤 *Роль:* %s
📋 *Режим:* %s
🧩 *Домен:* %s

*Правила:*
• Отвечайте на вопросы обычными сообщениями
• /summary подведет итоги и выставит оценку
• /stop остановит интервью`,
		snapshot.ID, cfg.Role, cfg.Mode, cfg.DomainOrDefault())
	h.sendMarkdown(ctx, chatID, welcomeText)

	if question, ok := snapshot.Transcript.Last(); ok {
		h.send(ctx, chatID, question.Content)
	}
}

// handleUserInput передает ответ пользователя интервьюеру
func (h *Handler) handleUserInput(ctx context.Context, chatID int64, text string, session *UserSession) {
	if err := validateUserInput(text); err != nil {
		h.send(ctx, chatID, "❌ "+err.Error())
		return
	}

	reply, err := session.Manager.SubmitAnswer(ctx, text)
	if err != nil {
		h.sendError(ctx, chatID, session, err)
		return
	}
	h.send(ctx, chatID, reply.Content)
}

// handleSummaryCommand подводит итоги и сохраняет отчет
func (h *Handler) handleSummaryCommand(ctx context.Context, chatID int64, session *UserSession) {
	h.send(ctx, chatID, "📝 Подвожу итоги...")

	summary, err := session.Manager.RequestSummary(ctx)
	if err != nil {
		h.sendError(ctx, chatID, session, err)
		return
	}
	h.send(ctx, chatID, summary)

	snapshot := session.Manager.Snapshot()
	score, hasScore := session.Manager.Score()
	switch {
	case hasScore && snapshot.ScoreRecorded:
		h.sendMarkdown(ctx, chatID, fmt.Sprintf("🏆 *Оценка:* %d/10, результат добавлен в таблицу лидеров", score))
	case hasScore:
		h.sendMarkdown(ctx, chatID, fmt.Sprintf("🏆 *Оценка:* %d/10\n⚠️ Не удалось записать результат в таблицу лидеров", score))
	}

	if h.reportsDir == "" {
		return
	}
	report := storage.NewReport(session.Manager.User(), snapshot, score, hasScore)
	if _, err := storage.SaveReport(h.reportsDir, report); err != nil {
		slog.Error("Ошибка сохранения отчета", "user", session.UserID, "error", err)
		return
	}
	h.sendMarkdown(ctx, chatID, "💾 Отчет сохранен, ID: `"+report.InterviewID+"`")
}

// handleLeaderboardCommand показывает лучшие результаты
func (h *Handler) handleLeaderboardCommand(ctx context.Context, chatID int64) {
	entries, err := h.store.Ranked(ctx)
	if err != nil {
		slog.Error("Ошибка чтения таблицы лидеров", "error", err)
		h.send(ctx, chatID, "❌ Не удалось загрузить таблицу лидеров.")
		return
	}
	if len(entries) == 0 {
		h.send(ctx, chatID, "Таблица лидеров пока пуста. Завершите интервью командой /summary, чтобы попасть в нее.")
		return
	}

	var b strings.Builder
	b.WriteString("🏆 Таблица лидеров\n\n")
	for i, entry := range entries {
		if i == leaderboardSize {
			break
		}
		fmt.Fprintf(&b, "%d. %s: %d/10\n", i+1, entry.Name, entry.Score)
	}
	h.send(ctx, chatID, b.String())
}

// handleHistoryCommand показывает итоги прошлых интервью пользователя
func (h *Handler) handleHistoryCommand(ctx context.Context, chatID int64, session *UserSession) {
	var b strings.Builder
	count := 0
	for record, err := range h.store.ForUser(ctx, session.Manager.User()) {
		if err != nil {
			slog.Error("Ошибка чтения истории", "user", session.UserID, "error", err)
			h.send(ctx, chatID, "❌ Не удалось загрузить историю.")
			return
		}
		count++
		fmt.Fprintf(&b, "📄 Интервью %d\n%s\n\n", count, record.Summary)
	}

	if count == 0 {
		h.send(ctx, chatID, "История пуста. Итоги появятся здесь после команды /summary.")
		return
	}
	h.send(ctx, chatID, fmt.Sprintf("📚 История интервью (%d)\n\n%s", count, strings.TrimSpace(b.String())))
}

// handleStatusCommand показывает состояние интервью
func (h *Handler) handleStatusCommand(ctx context.Context, chatID int64, session *UserSession) {
	snapshot := session.Manager.Snapshot()
	switch snapshot.State {
	case interview.StateIdle:
		h.send(ctx, chatID, "Интервью не начато. Используйте /start для начала.")
	default:
		progress := fmt.Sprintf("📊 *Прогресс интервью*\n\n"+
			"🆔 ID: `%s`\n"+
			"👤 Роль: %s (%s)\n"+
			"💬 Сообщений: %d\n"+
			"⏰ Состояние: %s",
			snapshot.ID,
			snapshot.Config.Role, snapshot.Config.Mode,
			snapshot.Transcript.Len(),
			stateDescription(snapshot.State))
		h.sendMarkdown(ctx, chatID, progress)
	}
}

// handleStopCommand останавливает интервью
func (h *Handler) handleStopCommand(ctx context.Context, chatID int64, session *UserSession) {
	if session.Manager.State() == interview.StateIdle {
		h.send(ctx, chatID, "Интервью не запущено.")
		return
	}

	session.Manager.Reset()
	h.send(ctx, chatID, "🛑 Интервью остановлено.")
}

// handleHelpCommand обрабатывает команду /help
func (h *Handler) handleHelpCommand(ctx context.Context, chatID int64) {
	helpText := `🤖 *Тренажер собеседований*

*Команды:*
/start [роль] [режим] [домен] - Начать новое интервью
/summary - Подвести итоги и получить оценку
/status - Проверить прогресс текущего интервью
/leaderboard - Таблица лидеров
/history - Итоги ваших прошлых интервью
/stop - Остановить текущее интервью
/help - Показать это сообщение

*Роли:* swe, analyst, pm
*Режимы:* technical, behavioral, faang

*Пример:* /start analyst technical SQL

По умолчанию: %s, %s, %s.`

	h.sendMarkdown(ctx, chatID, fmt.Sprintf(helpText, h.defaults.Role, h.defaults.Mode, h.defaults.DomainOrDefault()))
}

// sendError переводит ошибку сессии в понятное пользователю сообщение
func (h *Handler) sendError(ctx context.Context, chatID int64, session *UserSession, err error) {
	var validation *interview.ValidationError
	var service *interview.ServiceError

	switch {
	case errors.Is(err, interview.ErrNoSession):
		h.send(ctx, chatID, "Интервью не начато. Используйте /start для начала или /help для помощи.")
	case errors.Is(err, interview.ErrSummarized):
		h.send(ctx, chatID, "✅ Интервью завершено. Используйте /start для нового интервью или /summary для повторных итогов.")
	case errors.Is(err, interview.ErrNoExchange):
		h.send(ctx, chatID, "Ответьте хотя бы на один вопрос, прежде чем подводить итоги.")
	case errors.As(err, &validation):
		h.send(ctx, chatID, "❌ "+validation.Error())
	case errors.As(err, &service):
		slog.Error("Ошибка сервиса диалога", "user", session.UserID, "op", service.Op, "error", service.Err)
		h.send(ctx, chatID, "⚠️ Интервьюер временно недоступен. Попробуйте отправить сообщение еще раз.")
	default:
		slog.Error("Ошибка обработки сообщения", "user", session.UserID, "error", err)
		h.send(ctx, chatID, "❌ Произошла ошибка, попробуйте позже.")
	}
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.bot.SendMessage(ctx, chatID, text); err != nil {
		slog.Error("Ошибка отправки сообщения", "chat", chatID, "error", err)
	}
}

func (h *Handler) sendMarkdown(ctx context.Context, chatID int64, text string) {
	if err := h.bot.SendMarkdown(ctx, chatID, text); err != nil {
		slog.Error("Ошибка отправки сообщения", "chat", chatID, "error", err)
	}
}

// validateUserInput отсекает слишком длинные и спамовые сообщения
func validateUserInput(text string) error {
	if len(text) > 4000 {
		return fmt.Errorf("сообщение слишком длинное (максимум 4000 символов)")
	}

	if len(text) > 10 && strings.Count(text, text[:1]) > len(text)*8/10 {
		return fmt.Errorf("сообщение содержит слишком много повторяющихся символов")
	}

	return nil
}

func (h *Handler) getOrCreateSession(user *User) *UserSession {
	h.sessionsMutex.Lock()
	defer h.sessionsMutex.Unlock()

	if session, exists := h.sessions[user.ID]; exists {
		session.LastActivity = h.now()
		return session
	}

	session := &UserSession{
		UserID: user.ID,
		Manager: interview.NewManager(user.DisplayName(), h.client,
			interview.WithLeaderboard(h.store),
			interview.WithHistory(h.store),
		),
		limiter:      rate.NewLimiter(h.limit, h.burst),
		queue:        make(chan Update, userQueueSize),
		done:         make(chan struct{}),
		LastActivity: h.now(),
	}
	h.sessions[user.ID] = session
	return session
}

// lockSession возвращает захваченную сессию, которая все еще зарегистрирована:
// очистка может удалить сессию между поиском и захватом блокировки
func (h *Handler) lockSession(user *User) *UserSession {
	for {
		session := h.getOrCreateSession(user)
		session.mu.Lock()

		h.sessionsMutex.RLock()
		current := h.sessions[user.ID] == session
		h.sessionsMutex.RUnlock()

		if current {
			return session
		}
		session.mu.Unlock()
	}
}

func stateDescription(state interview.SessionState) string {
	switch state {
	case interview.StateIdle:
		return "Ожидание"
	case interview.StateActive:
		return "Идет интервью"
	case interview.StateSummarized:
		return "Итоги подведены"
	default:
		return "Неизвестно"
	}
}

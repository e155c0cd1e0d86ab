package telegram

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"interview-prep-bot/internal/interview"
)

// Bot клиент Bot API Telegram
type Bot struct {
	token   string
	baseURL string
	client  *http.Client
}

// Update представляет обновление от Telegram
type Update struct {
	UpdateID int      `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message представляет сообщение в Telegram
type Message struct {
	MessageID int    `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      *Chat  `json:"chat"`
	Text      string `json:"text,omitempty"`
}

// User представляет пользователя Telegram
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// DisplayName имя для таблицы лидеров и истории
func (u *User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	return u.FirstName
}

// Chat представляет чат в Telegram
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// SendMessageRequest представляет запрос на отправку сообщения
type SendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// GetUpdatesResponse представляет ответ от getUpdates
type GetUpdatesResponse struct {
	OK          bool     `json:"ok"`
	Result      []Update `json:"result"`
	Description string   `json:"description,omitempty"`
}

// SendMessageResponse представляет ответ от sendMessage
type SendMessageResponse struct {
	OK          bool     `json:"ok"`
	Result      *Message `json:"result,omitempty"`
	Description string   `json:"description,omitempty"`
}

// UserSession интервью одного пользователя Telegram.
// mu сериализует обработку сообщений пользователя, queue хранит их в порядке получения.
// LastActivity меняется только под Handler.sessionsMutex.
type UserSession struct {
	UserID       int64
	Manager      *interview.Manager
	limiter      *rate.Limiter
	mu           sync.Mutex
	queue        chan Update
	done         chan struct{}
	worker       sync.Once
	LastActivity time.Time
}

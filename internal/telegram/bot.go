package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"
)

const (
	apiURL = "https://api.telegram.org"
	// Telegram ограничивает сообщение 4096 символами, оставляем запас
	maxMessageRunes = 4000
	pollTimeout     = 30
)

// New создает новый Telegram бот
func New(token string) *Bot {
	return NewWithBaseURL(token, apiURL)
}

// NewWithBaseURL создает бота для другого адреса Bot API (локальный сервер, тесты)
func NewWithBaseURL(token, base string) *Bot {
	return &Bot{
		token:   token,
		baseURL: fmt.Sprintf("%s/bot%s", base, token),
		client:  &http.Client{Timeout: (pollTimeout + 10) * time.Second},
	}
}

// GetUpdates получает обновления от Telegram (long polling)
func (b *Bot) GetUpdates(ctx context.Context, offset int) ([]Update, error) {
	url := fmt.Sprintf("%s/getUpdates?offset=%d&timeout=%d", b.baseURL, offset, pollTimeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса getUpdates: %w", err)
	}

	var response GetUpdatesResponse
	if err := b.do(req, &response); err != nil {
		return nil, fmt.Errorf("ошибка запроса getUpdates: %w", err)
	}
	if !response.OK {
		return nil, fmt.Errorf("Telegram API вернул ошибку: %s", response.Description)
	}

	return response.Result, nil
}

// SendMessage отправляет текст как есть, длинные сообщения разбиваются на части
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	for _, chunk := range splitMessage(text, maxMessageRunes) {
		if err := b.send(ctx, SendMessageRequest{ChatID: chatID, Text: chunk}); err != nil {
			return err
		}
	}
	return nil
}

// SendMarkdown отправляет сообщение с разметкой Markdown.
// Если Telegram не принял разметку, текст отправляется без нее.
func (b *Bot) SendMarkdown(ctx context.Context, chatID int64, text string) error {
	err := b.send(ctx, SendMessageRequest{ChatID: chatID, Text: text, ParseMode: "Markdown"})
	if err != nil {
		slog.Debug("Markdown отклонен, отправляю без разметки", "chat", chatID, "error", err)
		return b.SendMessage(ctx, chatID, text)
	}
	return nil
}

func (b *Bot) send(ctx context.Context, request SendMessageRequest) error {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/sendMessage", bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var response SendMessageResponse
	if err := b.do(req, &response); err != nil {
		return fmt.Errorf("ошибка отправки сообщения: %w", err)
	}
	if !response.OK {
		return fmt.Errorf("Telegram API вернул ошибку при отправке сообщения: %s", response.Description)
	}

	return nil
}

func (b *Bot) do(req *http.Request, out any) error {
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("ошибка парсинга JSON (HTTP %d): %w", resp.StatusCode, err)
	}
	return nil
}

// StartPolling получает обновления, пока не отменен ctx, и передает их handler
// по одному в порядке update_id. handler не должен надолго блокировать опрос.
func (b *Bot) StartPolling(ctx context.Context, handler func(context.Context, Update)) error {
	offset := 0

	for {
		updates, err := b.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("Ошибка получения обновлений", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			handler(ctx, update)
		}
	}
}

// splitMessage режет текст на части не длиннее limit символов,
// по возможности по переводу строки
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu       sync.Mutex
	requests []SendMessageRequest
	reject   map[string]bool
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/botTOKEN/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("offset"))
		json.NewEncoder(w).Encode(GetUpdatesResponse{OK: true, Result: []Update{
			{UpdateID: 5, Message: &Message{MessageID: 1, Text: "/start", Chat: &Chat{ID: 42}}},
		}})
	})
	mux.HandleFunc("/botTOKEN/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		var req SendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		f.mu.Lock()
		f.requests = append(f.requests, req)
		f.mu.Unlock()

		if f.reject[req.ParseMode] {
			json.NewEncoder(w).Encode(SendMessageResponse{OK: false, Description: "can't parse entities"})
			return
		}
		json.NewEncoder(w).Encode(SendMessageResponse{OK: true})
	})
	return mux
}

func TestBot_GetUpdates(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	updates, err := NewWithBaseURL("TOKEN", srv.URL).GetUpdates(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, "/start", updates[0].Message.Text)
}

func TestBot_SendMarkdownFallsBackToPlain(t *testing.T) {
	api := &fakeAPI{reject: map[string]bool{"Markdown": true}}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	err := NewWithBaseURL("TOKEN", srv.URL).SendMarkdown(context.Background(), 42, "*bold_")
	require.NoError(t, err)

	require.Len(t, api.requests, 2)
	assert.Equal(t, "Markdown", api.requests[0].ParseMode)
	assert.Equal(t, "", api.requests[1].ParseMode)
	assert.Equal(t, int64(42), api.requests[1].ChatID)
}

func TestBot_SendMessageSplitsLongText(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	text := strings.Repeat("строка\n", 1500)
	require.NoError(t, NewWithBaseURL("TOKEN", srv.URL).SendMessage(context.Background(), 1, text))

	require.Greater(t, len(api.requests), 1)
	var joined strings.Builder
	for _, req := range api.requests {
		assert.LessOrEqual(t, utf8.RuneCountInString(req.Text), maxMessageRunes)
		joined.WriteString(req.Text)
	}
	assert.Equal(t, text, joined.String())
}

func TestBot_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(GetUpdatesResponse{OK: false, Description: "Unauthorized"})
	}))
	defer srv.Close()

	_, err := NewWithBaseURL("TOKEN", srv.URL).GetUpdates(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unauthorized")
}

func TestBot_StartPollingStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := NewWithBaseURL("TOKEN", srv.URL).StartPolling(ctx, func(context.Context, Update) {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))
	assert.Equal(t, []string{"abcdefghij", "kl"}, splitMessage("abcdefghijkl", 10))
	assert.Equal(t, []string{"abcdefg\n", "hijkl"}, splitMessage("abcdefg\nhijkl", 10))
}

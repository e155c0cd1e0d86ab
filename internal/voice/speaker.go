// Package voice содержит голосовой ввод по ключевой фразе и озвучку ответов интервьюера.
package voice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	"interview-prep-bot/internal/config"
)

// WriterSpeaker печатает реплики в терминал вместо озвучки
type WriterSpeaker struct {
	w io.Writer
}

func NewWriterSpeaker(w io.Writer) *WriterSpeaker {
	return &WriterSpeaker{w: w}
}

func (s *WriterSpeaker) Speak(_ context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	fmt.Fprintf(s.w, "🔊 %s\n", text)
}

type speechCreator interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// OpenAISpeaker синтезирует речь через OpenAI TTS и сохраняет mp3 в OutputDir
type OpenAISpeaker struct {
	api    speechCreator
	model  string
	voice  string
	outDir string
	notify io.Writer
}

// NewOpenAISpeaker создает озвучку. В notify печатается путь к каждому файлу, может быть nil.
func NewOpenAISpeaker(openaiCfg config.OpenAIConfig, voiceCfg config.VoiceConfig, notify io.Writer) *OpenAISpeaker {
	clientCfg := openai.DefaultConfig(openaiCfg.APIKey)
	if openaiCfg.BaseURL != "" {
		clientCfg.BaseURL = openaiCfg.BaseURL
	}
	return newOpenAISpeaker(openai.NewClientWithConfig(clientCfg), openaiCfg.TTSModel, voiceCfg, notify)
}

func newOpenAISpeaker(api speechCreator, model string, cfg config.VoiceConfig, notify io.Writer) *OpenAISpeaker {
	if model == "" {
		model = string(openai.TTSModel1)
	}
	return &OpenAISpeaker{api: api, model: model, voice: cfg.TTSVoice, outDir: cfg.OutputDir, notify: notify}
}

// Speak не возвращает ошибок: сбой озвучки не влияет на интервью
func (s *OpenAISpeaker) Speak(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	path, err := s.synthesize(ctx, text)
	if err != nil {
		slog.Warn("Не удалось озвучить ответ", "error", err)
		return
	}

	slog.Debug("Озвучка сохранена", "path", path)
	if s.notify != nil {
		fmt.Fprintf(s.notify, "🔊 %s\n", path)
	}
}

func (s *OpenAISpeaker) synthesize(ctx context.Context, text string) (string, error) {
	resp, err := s.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return "", fmt.Errorf("ошибка синтеза речи: %w", err)
	}
	defer resp.Close()

	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return "", fmt.Errorf("ошибка создания директории %s: %w", s.outDir, err)
	}

	path := filepath.Join(s.outDir, fmt.Sprintf("speech_%s.mp3", uuid.New().String()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("ошибка создания файла: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp); err != nil {
		return "", fmt.Errorf("ошибка записи аудио: %w", err)
	}
	return path, nil
}

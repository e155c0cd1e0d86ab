package voice

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
)

const (
	WakePhrase     = "hello jarvis"
	Acknowledgment = "Yes sir, how can I help you today?"
)

// UtteranceSource отдает распознанные фразы по одной
type UtteranceSource interface {
	Next(ctx context.Context) (string, error)
}

// LineSource читает распознанную речь построчно, например из внешнего распознавателя.
// После конца входа Next возвращает io.EOF или ошибку чтения при каждом вызове.
type LineSource struct {
	lines chan string
	err   error
}

func NewLineSource(r io.Reader) *LineSource {
	s := &LineSource{lines: make(chan string)}
	go s.read(r)
	return s
}

func (s *LineSource) read(r io.Reader) {
	defer close(s.lines)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		s.lines <- scanner.Text()
	}
	s.err = scanner.Err()
	if s.err == nil {
		s.err = io.EOF
	}
}

func (s *LineSource) Next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case text, ok := <-s.lines:
		if !ok {
			return "", s.err
		}
		return text, nil
	}
}

type Speaker interface {
	Speak(ctx context.Context, text string)
}

// WakeListener ждет ключевую фразу и возвращает следующую за ней команду
type WakeListener struct {
	src     UtteranceSource
	speaker Speaker
}

func NewWakeListener(src UtteranceSource, speaker Speaker) *WakeListener {
	return &WakeListener{src: src, speaker: speaker}
}

// Listen слушает одну фразу. Если в ней есть "hello jarvis", отвечает
// подтверждением и возвращает следующую фразу. Иначе и при любой ошибке возвращает "".
func (l *WakeListener) Listen(ctx context.Context) string {
	heard, err := l.src.Next(ctx)
	if err != nil {
		logCaptureError(err)
		return ""
	}
	if !strings.Contains(strings.ToLower(heard), WakePhrase) {
		return ""
	}

	if l.speaker != nil {
		l.speaker.Speak(ctx, Acknowledgment)
	}

	command, err := l.src.Next(ctx)
	if err != nil {
		logCaptureError(err)
		return ""
	}
	return strings.TrimSpace(command)
}

func logCaptureError(err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return
	}
	slog.Warn("Ошибка голосового ввода", "error", err)
}

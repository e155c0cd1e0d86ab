package voice

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-prep-bot/internal/config"
)

type recordingSpeaker struct {
	said []string
}

func (r *recordingSpeaker) Speak(_ context.Context, text string) {
	r.said = append(r.said, text)
}

func TestWakeListener(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		wantSaid []string
	}{
		{"wake phrase then command", "Hello Jarvis\n  tell me about goroutines \n", "tell me about goroutines", []string{Acknowledgment}},
		{"phrase inside sentence", "well HELLO JARVIS there\nnext\n", "next", []string{Acknowledgment}},
		{"no wake phrase", "hello world\nignored\n", "", nil},
		{"command missing", "hello jarvis\n", "", []string{Acknowledgment}},
		{"nothing heard", "", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			speaker := &recordingSpeaker{}
			l := NewWakeListener(NewLineSource(strings.NewReader(tt.input)), speaker)

			assert.Equal(t, tt.want, l.Listen(context.Background()))
			assert.Equal(t, tt.wantSaid, speaker.said)
		})
	}
}

func TestWakeListener_Cancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Equal(t, "", NewWakeListener(NewLineSource(r), nil).Listen(ctx))
}

func TestLineSource_EndOfInput(t *testing.T) {
	ctx := context.Background()

	src := NewLineSource(strings.NewReader("first\n"))
	text, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	for range 3 {
		_, err = src.Next(ctx)
		assert.ErrorIs(t, err, io.EOF)
	}

	broken := errors.New("microphone unplugged")
	src = NewLineSource(io.MultiReader(strings.NewReader("hello\n"), iotest.ErrReader(broken)))
	text, err = src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	for range 2 {
		_, err = src.Next(ctx)
		assert.ErrorIs(t, err, broken)
	}
}

func TestWriterSpeaker(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSpeaker(&buf)
	s.Speak(context.Background(), "Tell me about yourself.")
	s.Speak(context.Background(), "   ")
	assert.Equal(t, "🔊 Tell me about yourself.\n", buf.String())
}

type fakeSpeech struct {
	req openai.CreateSpeechRequest
	err error
}

func (f *fakeSpeech) CreateSpeech(_ context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error) {
	f.req = req
	if f.err != nil {
		return openai.RawResponse{}, f.err
	}
	return openai.RawResponse{ReadCloser: io.NopCloser(strings.NewReader("ID3-audio"))}, nil
}

func TestOpenAISpeaker(t *testing.T) {
	dir := t.TempDir()
	api := &fakeSpeech{}
	var notify bytes.Buffer
	s := newOpenAISpeaker(api, "", config.VoiceConfig{TTSVoice: "alloy", OutputDir: dir}, &notify)

	s.Speak(context.Background(), "Welcome to the interview.")

	assert.Equal(t, "Welcome to the interview.", api.req.Input)
	assert.Equal(t, openai.SpeechVoice("alloy"), api.req.Voice)
	assert.Equal(t, openai.TTSModel1, api.req.Model)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".mp3"))
	assert.Contains(t, notify.String(), entries[0].Name())
}

func TestOpenAISpeaker_FailureIsSilent(t *testing.T) {
	dir := t.TempDir()
	s := newOpenAISpeaker(&fakeSpeech{err: errors.New("quota")}, "tts-1", config.VoiceConfig{OutputDir: dir}, nil)

	s.Speak(context.Background(), "hi")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

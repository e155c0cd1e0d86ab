package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-prep-bot/internal/config"
	"interview-prep-bot/internal/interview"
	"interview-prep-bot/internal/resume"
	"interview-prep-bot/internal/sandbox"
	"interview-prep-bot/internal/storage"
	"interview-prep-bot/internal/voice"
)

// scriptedPrompter отдает строки по порядку, затем io.EOF
type scriptedPrompter struct {
	lines []string
}

func (p *scriptedPrompter) Prompt(string) (string, error) {
	if len(p.lines) == 0 {
		return "", io.EOF
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, nil
}

type cannedCompleter struct {
	answers []string
}

func (c *cannedCompleter) Complete(_ context.Context, transcript []interview.Message) (interview.Message, error) {
	last := transcript[len(transcript)-1]
	switch {
	case last.Content == interview.SummaryRequest:
		return interview.Message{Content: "Good structure.\nFinal rating: 7/10"}, nil
	case strings.HasPrefix(last.Content, "Analyze the following resume"):
		return interview.Message{Content: "Quantify your impact."}, nil
	case last.Role == interview.RoleUser:
		c.answers = append(c.answers, last.Content)
		return interview.Message{Content: "Next question"}, nil
	default:
		return interview.Message{Content: "First question"}, nil
	}
}

type echoExecutor struct{}

func (echoExecutor) Exec(_ context.Context, _ string, cmd []string, _ time.Duration) (sandbox.Result, error) {
	return sandbox.Result{Stdout: "ran: " + cmd[len(cmd)-1] + "\n"}, nil
}

func newTestREPL(t *testing.T, lines ...string) (*chatREPL, *bytes.Buffer, *cannedCompleter, storage.Store) {
	t.Helper()
	client := &cannedCompleter{}
	store := storage.NewMemoryStore()
	out := &bytes.Buffer{}
	return &chatREPL{
		manager:    interview.NewManager("alice", client, interview.WithLeaderboard(store), interview.WithHistory(store)),
		store:      store,
		session:    interview.SessionConfig{Role: interview.DataAnalyst, Mode: interview.Technical, Domain: "SQL"},
		analyzer:   resume.NewAnalyzer(client),
		sandbox:    sandbox.New(echoExecutor{}, config.SandboxConfig{PythonImage: "py", NodeImage: "node", Timeout: time.Second}),
		reportsDir: t.TempDir(),
		in:         &scriptedPrompter{lines: lines},
		out:        out,
	}, out, client, store
}

func TestChatREPL_Interview(t *testing.T) {
	repl, out, client, store := newTestREPL(t,
		"I would use a window function",
		"/summary",
		"/save",
		"/leaderboard",
		"/history",
		"/quit",
		"never read",
	)

	require.NoError(t, repl.run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Data Analyst")
	assert.Contains(t, text, "First question")
	assert.Contains(t, text, "Next question")
	assert.Contains(t, text, "Оценка: 7/10")
	assert.Contains(t, text, "Отчет сохранен")
	assert.Contains(t, text, "alice")
	assert.Contains(t, text, "Good structure.")
	assert.Equal(t, []string{"I would use a window function"}, client.answers)

	ranked, err := store.Ranked(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []storage.ScoreEntry{{Name: "alice", Score: 7}}, ranked)

	ids, err := storage.ListReports(repl.reportsDir)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	assert.Len(t, repl.manager.Transcript(), 6)
}

func TestChatREPL_Errors(t *testing.T) {
	repl, out, _, _ := newTestREPL(t, "/summary", "/save", "/dance")

	require.NoError(t, repl.run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "хотя бы на один вопрос")
	assert.Contains(t, text, "Сначала подведите итоги")
	assert.Contains(t, text, "Неизвестная команда")
	assert.Contains(t, text, "До встречи")
}

func TestChatREPL_RunCode(t *testing.T) {
	repl, out, _, _ := newTestREPL(t, "/run js", "console.log(1)", "/end", "/run ruby")

	require.NoError(t, repl.run(context.Background()))

	assert.Contains(t, out.String(), "ran: console.log(1)")
	assert.Contains(t, out.String(), "неподдерживаемый язык")
}

func TestChatREPL_Voice(t *testing.T) {
	repl, out, client, _ := newTestREPL(t, "/voice")
	repl.listener = voice.NewWakeListener(
		voice.NewLineSource(strings.NewReader("Hello Jarvis\nI prefer CTEs for readability\n")),
		voice.NewWriterSpeaker(out),
	)

	require.NoError(t, repl.run(context.Background()))

	assert.Contains(t, out.String(), voice.Acknowledgment)
	assert.Equal(t, []string{"I prefer CTEs for readability"}, client.answers)

	repl2, out2, _, _ := newTestREPL(t, "/voice")
	require.NoError(t, repl2.run(context.Background()))
	assert.Contains(t, out2.String(), "--voice-input")
}

func TestChatREPL_Resume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.docx")
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document xmlns:w="w"><w:body><w:p><w:r><w:t>Go developer</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	repl, out, _, _ := newTestREPL(t, "/resume "+path, "/resume cv.txt", "/resume")
	require.NoError(t, repl.run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Quantify your impact.")
	assert.Contains(t, text, "неподдерживаемый формат")
	assert.Contains(t, text, "Укажите путь")
}

package sandbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-prep-bot/internal/config"
)

type fakeExecutor struct {
	result Result
	err    error
	panic  bool

	image string
	cmd   []string
}

func (f *fakeExecutor) Exec(_ context.Context, image string, cmd []string, _ time.Duration) (Result, error) {
	if f.panic {
		panic("boom")
	}
	f.image, f.cmd = image, cmd
	return f.result, f.err
}

var testConfig = config.SandboxConfig{
	PythonImage: "python:test",
	NodeImage:   "node:test",
	Memory:      "64m",
	Timeout:     time.Second,
}

func TestRun_Success(t *testing.T) {
	exec := &fakeExecutor{result: Result{Stdout: "42\n"}}
	sb := New(exec, testConfig)

	assert.Equal(t, "42", sb.Run(context.Background(), "print(42)", Python))
	assert.Equal(t, "python:test", exec.image)
	assert.Equal(t, []string{"python3", "-c", "print(42)"}, exec.cmd)

	assert.Equal(t, "42", sb.Run(context.Background(), "console.log(42)", JavaScript))
	assert.Equal(t, "node:test", exec.image)
	assert.Equal(t, []string{"node", "-e", "console.log(42)"}, exec.cmd)
}

func TestRun_FailuresBecomeText(t *testing.T) {
	tests := []struct {
		name string
		exec Executor
		code string
		lang Language
		want string
	}{
		{"non-zero exit", &fakeExecutor{result: Result{Code: 1, Stderr: "NameError: x\n"}}, "x", Python, "Error: NameError: x"},
		{"exit without stderr", &fakeExecutor{result: Result{Code: 3}}, "x", Python, "Error: код завершения 3"},
		{"executor error", &fakeExecutor{err: errors.New("daemon gone")}, "x", Python, "Error: daemon gone"},
		{"timeout", &fakeExecutor{result: Result{TimedOut: true}, err: context.DeadlineExceeded}, "x", Python, "Error: превышено время выполнения (1s)"},
		{"panic", &fakeExecutor{panic: true}, "x", Python, "Error: boom"},
		{"no docker", nil, "x", Python, "Error: песочница недоступна: Docker не подключен"},
		{"empty code", &fakeExecutor{}, "  ", Python, "Error: пустой код"},
		{"unknown language", &fakeExecutor{}, "x", Language("Ruby"), `Error: неподдерживаемый язык: "Ruby"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.exec, testConfig).Run(context.Background(), tt.code, tt.lang)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLanguage(t *testing.T) {
	for in, want := range map[string]Language{"python": Python, "PY": Python, "JavaScript": JavaScript, "js": JavaScript, "node": JavaScript} {
		got, err := ParseLanguage(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseLanguage("go")
	assert.Error(t, err)
}

package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-prep-bot/internal/interview"
	"interview-prep-bot/internal/storage"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("STORAGE_PATH", filepath.Join(dir, "interview.db"))
	t.Setenv("REPORTS_DIR", filepath.Join(dir, "results"))
	t.Setenv("LOG_FILE", "")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLeaderboardAndHistoryCommands(t *testing.T) {
	dir := setupEnv(t)
	ctx := context.Background()

	store, err := storage.OpenSQLite(filepath.Join(dir, "interview.db"))
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, "A", 5))
	require.NoError(t, store.Record(ctx, "B", 9))
	require.NoError(t, store.Record(ctx, "C", 9))
	require.NoError(t, store.Append(ctx, "Alice", "first summary"))
	require.NoError(t, store.Append(ctx, "Bob", "bob summary"))
	require.NoError(t, store.Append(ctx, "Alice", "second summary"))
	require.NoError(t, store.Close())

	noConfig := filepath.Join(dir, "missing.yaml")

	out, err := execute(t, "leaderboard", "--config", noConfig)
	require.NoError(t, err)
	assert.Regexp(t, `(?s)1\. B.*2\. C.*3\. A`, out)

	out, err = execute(t, "leaderboard", "-n", "1", "--config", noConfig)
	require.NoError(t, err)
	assert.Contains(t, out, "B")
	assert.NotContains(t, out, "2.")

	out, err = execute(t, "history", "Alice", "--config", noConfig)
	require.NoError(t, err)
	assert.Regexp(t, `(?s)first summary.*second summary`, out)
	assert.NotContains(t, out, "bob summary")

	out, err = execute(t, "history", "--config", noConfig)
	require.NoError(t, err)
	assert.Contains(t, out, "Guest")
}

func TestReportsCommand(t *testing.T) {
	dir := setupEnv(t)
	noConfig := filepath.Join(dir, "missing.yaml")

	out, err := execute(t, "reports", "--config", noConfig)
	require.NoError(t, err)
	assert.Contains(t, out, "нет сохраненных отчетов")

	session := interview.Session{
		ID:      "abc",
		Config:  interview.SessionConfig{Role: interview.ProductManager, Mode: interview.Behavioral},
		Summary: "Clear communicator. Rating: 6/10",
	}
	_, err = storage.SaveReport(filepath.Join(dir, "results"), storage.NewReport("alice", session, 6, true))
	require.NoError(t, err)

	out, err = execute(t, "reports", "--config", noConfig)
	require.NoError(t, err)
	assert.Contains(t, out, "abc")

	out, err = execute(t, "reports", "abc", "--config", noConfig)
	require.NoError(t, err)
	assert.Contains(t, out, "Product Manager")
	assert.Contains(t, out, "6/10")
	assert.Contains(t, out, "Clear communicator.")

	leaked := storage.NewReport("mallory", interview.Session{ID: "leak", Summary: "private notes"}, 0, false)
	_, err = storage.SaveReport(dir, leaked)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "interview_leak.json"))

	out, err = execute(t, "reports", "../../../interview_leak", "--config", noConfig)
	require.ErrorIs(t, err, storage.ErrInvalidReportID)
	assert.NotContains(t, out, "private notes")
}

func TestSessionConfigFlags(t *testing.T) {
	setupEnv(t)
	a := &app{prefsPath: filepath.Join(t.TempDir(), "missing.yaml")}
	require.NoError(t, a.init())
	defer a.close()

	cfg, err := a.sessionConfig("", "", "")
	require.NoError(t, err)
	assert.Equal(t, interview.SoftwareEngineer, cfg.Role)

	cfg, err = a.sessionConfig("pm", "faang", "payments")
	require.NoError(t, err)
	assert.Equal(t, interview.SessionConfig{Role: interview.ProductManager, Mode: interview.FAANGTechnical, Domain: "payments"}, cfg)

	_, err = a.sessionConfig("chef", "", "")
	assert.Error(t, err)
}

func TestRunCommand_WithoutDocker(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("DOCKER_HOST", "unix://"+filepath.Join(dir, "no-docker.sock"))

	_, err := execute(t, "run", "--lang", "cobol", "--config", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

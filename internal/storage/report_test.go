package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-prep-bot/internal/interview"
)

func TestSaveAndLoadReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")

	ids, err := ListReports(dir)
	require.NoError(t, err)
	assert.Empty(t, ids)

	report := &Report{
		InterviewID: "abc-123",
		User:        "Alice",
		Config:      interview.SessionConfig{Role: interview.DataAnalyst, Domain: "SQL", Mode: interview.Technical},
		Transcript: []interview.Message{
			{Role: interview.RoleSystem, Content: "system"},
			{Role: interview.RoleAssistant, Content: "Q1"},
		},
		Summary: "Score: 8/10",
	}
	score := 8
	report.Score = &score

	path, err := SaveReport(dir, report)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "interview_abc-123.json"), path)

	loaded, err := LoadReport(dir, "abc-123")
	require.NoError(t, err)
	assert.Equal(t, report, loaded)

	ids, err = ListReports(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc-123"}, ids)

	_, err = LoadReport(dir, "missing")
	assert.Error(t, err)
}

func TestReport_RejectsPathLikeIDs(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "results")

	outside := &Report{InterviewID: "../secret", User: "Mallory"}
	_, err := SaveReport(dir, outside)
	require.ErrorIs(t, err, ErrInvalidReportID)
	assert.NoFileExists(t, filepath.Join(root, "interview_../secret.json"))

	for _, id := range []string{"", ".", "..", "../x", "a/b", `..\x`, "/etc/passwd"} {
		_, err := LoadReport(dir, id)
		assert.ErrorIs(t, err, ErrInvalidReportID, "id %q", id)
	}
}

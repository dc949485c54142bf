package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erkkaervice/philosophers/internal/ir"
	"github.com/erkkaervice/philosophers/internal/store"
)

func executeRuns(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRunsCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRunsMissingDatabaseFlag(t *testing.T) {
	_, err := executeRuns(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestRunsEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := executeRuns(t, "text", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", out)
}

func TestRunsText(t *testing.T) {
	dbPath := seedDatabase(t, true)

	out, err := executeRuns(t, "text", "--db", dbPath)
	require.NoError(t, err)

	want := "RUN    STARTED               CONFIG           OUTCOME   EVENTS\n" +
		"run-2  2026-03-01T12:01:00Z  3 410 200 200 2  -         0\n" +
		"run-1  2026-03-01T12:00:00Z  2 100 200 50     died (2)  4\n"
	assert.Equal(t, want, out)
}

func TestRunsUnfinished(t *testing.T) {
	dbPath := seedDatabase(t, true)

	out, err := executeRuns(t, "json", "--db", dbPath, "--unfinished")
	require.NoError(t, err)

	var response struct {
		Status string       `json:"status"`
		Data   []RunListing `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
	require.Len(t, response.Data, 1)
	assert.Equal(t, "run-2", response.Data[0].ID)
	assert.Equal(t, ir.Outcome(""), response.Data[0].Outcome)
}

func TestRunsJSON(t *testing.T) {
	dbPath := seedDatabase(t, false)

	out, err := executeRuns(t, "json", "--db", dbPath)
	require.NoError(t, err)

	var response struct {
		Data []RunListing `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	require.Len(t, response.Data, 1)
	assert.Equal(t, ir.OutcomeDied, response.Data[0].Outcome)
	assert.Equal(t, 2, response.Data[0].DeadActor)
	assert.Equal(t, 4, response.Data[0].Events)
	assert.Equal(t, 2, response.Data[0].Config.Actors)
}

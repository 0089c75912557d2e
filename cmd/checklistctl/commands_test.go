// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/safecheck/db"
	"github.com/danielhkuo/safecheck/models"
	"github.com/danielhkuo/safecheck/seed"
	"github.com/danielhkuo/safecheck/testutil"
)

var submittedAt = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

// testDBPath returns a fresh SQLite file path and clears the env fallbacks.
func testDBPath(t *testing.T) string {
	t.Helper()
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("DATABASE_URL", "")
	return filepath.Join(t.TempDir(), "safecheck.db")
}

// executeCmd runs a cobra command against the database at path and
// captures stdout/stderr.
func executeCmd(t *testing.T, path string, args ...string) (string, error) {
	t.Helper()
	app := &App{Now: func() time.Time { return submittedAt.Add(3 * time.Hour) }}
	t.Cleanup(func() { app.close() })
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"--db", path}, args...))
	err := root.Execute()
	return buf.String(), err
}

// seedSampleWithSubmission stores the sample checklist and one submission.
func seedSampleWithSubmission(t *testing.T, path string) *models.Checklist {
	t.Helper()
	conn, err := db.Open(db.DialectSQLite, path)
	require.NoError(t, err)
	defer conn.Close()

	cl := testutil.CreateTestChecklist(t, conn, testutil.SampleChecklist())
	ids := testutil.AllQuestionIDs(cl)
	testutil.SubmitTestAnswers(t, conn, cl.ID, submittedAt, []models.Answer{
		{QuestionID: ids[0], Value: "oui"},
		{QuestionID: ids[1], Value: "N/A"},
	})
	return cl
}

func TestMigrateCmd(t *testing.T) {
	path := testDBPath(t)

	out, err := executeCmd(t, path, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema ready (sqlite)")

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestMigrateCmd_UnknownDatabaseType(t *testing.T) {
	path := testDBPath(t)

	_, err := executeCmd(t, path, "--db-type", "oracle", "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestSeedCmd_Defaults(t *testing.T) {
	path := testDBPath(t)

	out, err := executeCmd(t, path, "seed", "--defaults")
	require.NoError(t, err)
	assert.Contains(t, out, "6 created, 0 skipped")

	out, err = executeCmd(t, path, "seed", "--defaults")
	require.NoError(t, err)
	assert.Contains(t, out, "0 created, 6 skipped")
}

func TestSeedCmd_File(t *testing.T) {
	path := testDBPath(t)

	file := filepath.Join(t.TempDir(), "seed.yaml")
	var buf bytes.Buffer
	conn := testutil.SetupTestDB(t)
	require.NoError(t, seed.Export(&buf, testutil.CreateTestChecklist(t, conn, testutil.SampleChecklist())))
	require.NoError(t, os.WriteFile(file, buf.Bytes(), 0644))

	out, err := executeCmd(t, path, "seed", file)
	require.NoError(t, err)
	assert.Contains(t, out, "created  Bloc opératoire")
}

func TestSeedCmd_RequiresSource(t *testing.T) {
	path := testDBPath(t)

	_, err := executeCmd(t, path, "seed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to seed")
}

func TestSeedCmd_MissingFile(t *testing.T) {
	path := testDBPath(t)

	_, err := executeCmd(t, path, "seed", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestListCmd(t *testing.T) {
	path := testDBPath(t)

	out, err := executeCmd(t, path, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No checklists found.")

	seedSampleWithSubmission(t, path)

	out, err = executeCmd(t, path, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "LABEL")
	assert.Contains(t, out, "Bloc opératoire")
}

func TestExportCmd(t *testing.T) {
	path := testDBPath(t)
	cl := seedSampleWithSubmission(t, path)

	out, err := executeCmd(t, path, "export", strconv.FormatInt(cl.ID, 10))
	require.NoError(t, err)

	back, err := seed.Load(bytes.NewBufferString(out))
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, cl.Label, back[0].Label)
	assert.Len(t, back[0].Steps, len(cl.Steps))
}

func TestExportCmd_Errors(t *testing.T) {
	path := testDBPath(t)

	_, err := executeCmd(t, path, "export", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid checklist id")

	_, err = executeCmd(t, path, "export", "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checklist 42")
}

func TestHistoryCmd(t *testing.T) {
	path := testDBPath(t)
	cl := seedSampleWithSubmission(t, path)

	out, err := executeCmd(t, path, "history", strconv.FormatInt(cl.ID, 10))
	require.NoError(t, err)
	assert.Contains(t, out, "1 submission(s)")
	assert.Contains(t, out, "Identité du patient confirmée")
	assert.Contains(t, out, "Oui")
	assert.Contains(t, out, "TestUser")
	assert.Contains(t, out, "3 hours ago")
}

func TestHistoryCmd_NoAnswers(t *testing.T) {
	path := testDBPath(t)

	conn, err := db.Open(db.DialectSQLite, path)
	require.NoError(t, err)
	cl := testutil.CreateTestChecklist(t, conn, testutil.SampleChecklist())
	require.NoError(t, conn.Close())

	out, err := executeCmd(t, path, "history", strconv.FormatInt(cl.ID, 10))
	require.NoError(t, err)
	assert.Contains(t, out, "No answers yet.")
}

func TestHistoryCmd_RequiresID(t *testing.T) {
	path := testDBPath(t)

	_, err := executeCmd(t, path, "history")
	assert.Error(t, err)
}

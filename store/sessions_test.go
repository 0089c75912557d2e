// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store_test

import (
	"context"
	"testing"

	"github.com/danielhkuo/safecheck/checklist"
	"github.com/danielhkuo/safecheck/store"
	"github.com/danielhkuo/safecheck/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepo_SaveLoadDelete(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := store.NewSessionRepo(conn)
	cl := testutil.CreateTestChecklist(t, conn, testutil.SampleChecklist())
	ids := testutil.AllQuestionIDs(cl)

	s := checklist.NewSession(cl, "bloc-4", true)
	s, err := s.Answer(cl, ids[0], "Oui")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, "tok", s))

	loaded, err := repo.Load(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, cl.ID, loaded.ChecklistID)
	assert.Equal(t, "bloc-4", loaded.SubmittedBy)
	assert.Equal(t, "Oui", loaded.Answers.Value(ids[0]))
	assert.Len(t, loaded.Validated, 3)

	s, err = s.ValidateStep(cl)
	assert.ErrorIs(t, err, checklist.ErrStepIncomplete)
	s, err = s.Answer(cl, ids[1], "Non")
	require.NoError(t, err)
	s, err = s.ValidateStep(cl)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, "tok", s))

	loaded, err = repo.Load(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false}, loaded.Validated)

	require.NoError(t, repo.Delete(ctx, "tok"))
	_, err = repo.Load(ctx, "tok")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, repo.Delete(ctx, "tok"))
}

func TestSessionRepo_DeletedWithChecklist(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	cl := testutil.CreateTestChecklist(t, conn, testutil.SampleChecklist())
	require.NoError(t, store.NewSessionRepo(conn).Save(ctx, "tok", checklist.NewSession(cl, "", true)))

	require.NoError(t, store.NewChecklistRepo(conn).Delete(ctx, cl.ID))
	_, err := store.NewSessionRepo(conn).Load(ctx, "tok")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionRepo_Close(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := store.NewSessionRepo(conn)
	cl := testutil.CreateTestChecklist(t, conn, testutil.SampleChecklist())

	s := checklist.NewSession(cl, "", true)
	require.NoError(t, repo.Save(ctx, "tok", s))

	err := repo.Close(ctx, "tok", s)
	require.Error(t, err, "a session without submission id cannot be closed")

	require.NoError(t, repo.Close(ctx, "tok", s.MarkSubmitted(7)))

	loaded, err := repo.Load(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(7), loaded.SubmissionID)
	assert.Equal(t, checklist.StateSubmitted, loaded.State())

	// A closed session is frozen
	assert.ErrorIs(t, repo.Close(ctx, "tok", s.MarkSubmitted(8)), checklist.ErrSessionClosed)
	assert.ErrorIs(t, repo.Save(ctx, "tok", s), checklist.ErrSessionClosed)

	loaded, err = repo.Load(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(7), loaded.SubmissionID)

	assert.ErrorIs(t, repo.Close(ctx, "missing", s.MarkSubmitted(9)), checklist.ErrSessionClosed)

	// Deleting still works on a closed session
	require.NoError(t, repo.Delete(ctx, "tok"))
	_, err = repo.Load(ctx, "tok")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

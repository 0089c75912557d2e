// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielhkuo/safecheck/checklist"
	"github.com/danielhkuo/safecheck/db"
	"github.com/danielhkuo/safecheck/models"
	"github.com/danielhkuo/safecheck/store"
	"github.com/danielhkuo/safecheck/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t1 = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	t2 = time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC)
)

func TestSubmissionRepo_CreateAndGet(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	cl := testutil.CreateTestChecklist(t, conn, testutil.SampleChecklist())
	ids := testutil.AllQuestionIDs(cl)

	answers := []models.Answer{{QuestionID: ids[1], Value: "N/A"}, {QuestionID: ids[0], Value: "Oui"}}
	sub := testutil.SubmitTestAnswers(t, conn, cl.ID, t1, answers)
	assert.NotZero(t, sub.ID)

	got, err := store.NewSubmissionRepo(conn).Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, cl.ID, got.ChecklistID)
	assert.Equal(t, "TestUser", got.SubmittedBy)
	assert.True(t, t1.Equal(got.SubmittedAt), "got %v", got.SubmittedAt)
	assert.Equal(t, answers, got.Answers)
	assert.Equal(t, models.DecisionGo, got.Decision)

	current, err := store.NewChecklistRepo(conn).CurrentAnswers(ctx, cl.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, answers, current)

	_, err = store.NewSubmissionRepo(conn).Get(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubmissionRepo_RejectsUnknownQuestions(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	cl := testutil.CreateTestChecklist(t, conn, testutil.SampleChecklist())
	ids := testutil.AllQuestionIDs(cl)

	err := db.NewTxRunner(conn).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		_, err := store.NewSubmissionRepo(tx).Create(ctx, models.Submission{
			ChecklistID: cl.ID,
			Answers:     []models.Answer{{QuestionID: ids[0], Value: "Oui"}, {QuestionID: 9999, Value: "Non"}},
		})
		return err
	})
	require.ErrorIs(t, err, store.ErrValidation)
	require.ErrorIs(t, err, checklist.ErrUnknownQuestionIDs)
	var unknown *checklist.UnknownQuestionsError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, []int64{9999}, unknown.IDs)

	subs, err := store.NewSubmissionRepo(conn).ListByChecklist(ctx, cl.ID)
	require.NoError(t, err)
	assert.Empty(t, subs, "nothing is written when one answer is rejected")
}

func TestSubmissionRepo_RejectsStaleQuestion(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	cl := testutil.CreateTestChecklist(t, conn, testutil.SampleChecklist())
	ids := testutil.AllQuestionIDs(cl)
	require.NoError(t, store.NewChecklistRepo(conn).DeleteQuestion(ctx, ids[0]))

	_, err := store.NewSubmissionRepo(conn).Create(ctx, models.Submission{
		ChecklistID: cl.ID,
		Answers:     []models.Answer{{QuestionID: ids[0], Value: "Oui"}},
	})
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestSubmissionRepo_EmptyAndMissingChecklist(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := store.NewSubmissionRepo(conn)
	cl := testutil.CreateTestChecklist(t, conn, testutil.SampleChecklist())

	_, err := repo.Create(ctx, models.Submission{ChecklistID: cl.ID})
	assert.ErrorIs(t, err, store.ErrValidation)
	assert.ErrorIs(t, err, checklist.ErrEmptyAnswerSet)

	_, err = repo.Create(ctx, models.Submission{ChecklistID: 404, Answers: []models.Answer{{QuestionID: 1, Value: "Oui"}}})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubmissionRepo_ListByChecklistNewestFirst(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	cl := testutil.CreateTestChecklist(t, conn, testutil.SampleChecklist())
	other := testutil.CreateTestChecklist(t, conn, testutil.SampleChecklist())
	ids := testutil.AllQuestionIDs(cl)

	older := testutil.SubmitTestAnswers(t, conn, cl.ID, t1, []models.Answer{{QuestionID: ids[0], Value: "Non"}})
	newer := testutil.SubmitTestAnswers(t, conn, cl.ID, t2, []models.Answer{{QuestionID: ids[0], Value: "Oui"}, {QuestionID: ids[2], Value: "Oui"}})
	testutil.SubmitTestAnswers(t, conn, other.ID, t2, []models.Answer{{QuestionID: testutil.AllQuestionIDs(other)[0], Value: "Oui"}})

	subs, err := store.NewSubmissionRepo(conn).ListByChecklist(ctx, cl.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, newer.ID, subs[0].ID)
	assert.Len(t, subs[0].Answers, 2)
	assert.Equal(t, older.ID, subs[1].ID)
	assert.Equal(t, "Non", subs[1].Answers[0].Value)

	h := checklist.BuildHistory(cl, subs, nil)
	assert.Equal(t, 2, h.SubmissionCount)
	assert.Equal(t, "Oui", h.Steps[0].Questions[0].Latest.Value)
}

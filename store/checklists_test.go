// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store_test

import (
	"context"
	"testing"

	"github.com/danielhkuo/safecheck/models"
	"github.com/danielhkuo/safecheck/store"
	"github.com/danielhkuo/safecheck/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestChecklistRepo_CreateAndGet(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cl := testutil.CreateTestChecklist(t, conn, testutil.SampleChecklist())

	got, err := store.NewChecklistRepo(conn).Get(context.Background(), cl.ID)
	require.NoError(t, err)

	assert.Equal(t, "Bloc opératoire", got.Label)
	assert.Equal(t, "2018", got.Version)
	assert.True(t, got.Active)
	assert.False(t, got.CreatedAt.IsZero())
	require.Len(t, got.Steps, 3)
	assert.Equal(t, models.StepStandard, got.Steps[0].Kind)
	assert.Equal(t, models.StepDecision, got.Steps[2].Kind)
	assert.True(t, got.HasDecisionStep())

	require.Len(t, got.Steps[0].Questions, 2)
	assert.Equal(t, "Identité du patient confirmée", got.Steps[0].Questions[0].Text)
	assert.Equal(t, models.QuestionBooleanNA, got.Steps[0].Questions[1].Type)
	assert.True(t, got.Steps[0].Questions[0].Required)

	list := got.Steps[1].Questions[0]
	assert.Equal(t, models.QuestionSingleChoiceList, list.Type)
	require.Len(t, list.Options, 3)
	assert.Equal(t, "Non recommandée", list.Options[2].Value)
	assert.Equal(t, 4, got.QuestionCount())
}

func TestChecklistRepo_CreateValidation(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	repo := store.NewChecklistRepo(conn)
	ctx := context.Background()

	tests := []struct {
		name string
		in   models.ChecklistInput
	}{
		{"missing label", models.ChecklistInput{Label: "  "}},
		{"missing step name", models.ChecklistInput{Label: "X", Steps: []models.StepInput{{Name: ""}}}},
		{"bad step kind", models.ChecklistInput{Label: "X", Steps: []models.StepInput{{Name: "A", Kind: "final"}}}},
		{"bad question type", models.ChecklistInput{Label: "X", Steps: []models.StepInput{{Name: "A", Questions: []models.QuestionInput{{Text: "Q", Type: "Number"}}}}}},
		{"missing question text", models.ChecklistInput{Label: "X", Steps: []models.StepInput{{Name: "A", Questions: []models.QuestionInput{{Type: "Boolean"}}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(ctx, tt.in)
			assert.ErrorIs(t, err, store.ErrValidation)
		})
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestChecklistRepo_NonListQuestionDropsOptions(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cl := testutil.CreateTestChecklist(t, conn, models.ChecklistInput{
		Label: "X",
		Steps: []models.StepInput{{Name: "A", Questions: []models.QuestionInput{
			{Text: "Q", Type: "texte", Options: []models.OptionInput{{Value: "ignored"}}},
		}}},
	})

	q := cl.Steps[0].Questions[0]
	assert.Equal(t, models.QuestionFreeText, q.Type)
	assert.Empty(t, q.Options)
	assert.Equal(t, models.DefaultVersion, cl.Version)
}

func TestChecklistRepo_ListAndFindByLabel(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	repo := store.NewChecklistRepo(conn)
	ctx := context.Background()

	first := testutil.CreateTestChecklist(t, conn, testutil.SampleChecklist())
	testutil.CreateTestChecklist(t, conn, models.ChecklistInput{Label: "Endoscopie", Active: boolPtr(false)})

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.False(t, list[1].Active)

	found, err := repo.FindByLabel(ctx, "Bloc opératoire")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Len(t, found.Steps, 3)

	_, err = repo.FindByLabel(ctx, "Radiologie")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestChecklistRepo_GetMissing(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	_, err := store.NewChecklistRepo(conn).Get(context.Background(), 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestChecklistRepo_UpdateReconciles(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	repo := store.NewChecklistRepo(conn)
	ctx := context.Background()
	cl := testutil.CreateTestChecklist(t, conn, testutil.SampleChecklist())

	identity := cl.Steps[0].Questions[0]
	site := cl.Steps[0].Questions[1]
	antibio := cl.Steps[1].Questions[0]

	// Step 0 matched by id and renamed; identity kept by id, site matched by
	// text, one new question. Step 1 matched by name with its list options
	// replaced. The decision step is dropped.
	in := models.ChecklistInput{
		Label:   "Bloc opératoire v2",
		Version: "2024",
		Steps: []models.StepInput{
			{
				ID:   cl.Steps[0].ID,
				Name: "Avant induction",
				Questions: []models.QuestionInput{
					{Text: "Site opératoire marqué", Type: "BooleanNA"},
					{ID: identity.ID, Text: "Identité vérifiée", Type: "Boolean"},
					{Text: "Allergies recherchées", Type: "Boolean"},
				},
			},
			{
				Name: "Avant intervention chirurgicale",
				Questions: []models.QuestionInput{
					{Text: "Antibioprophylaxie effectuée", Type: "SingleChoiceList", Options: []models.OptionInput{{Value: "Oui"}, {Value: "Non"}}},
				},
			},
		},
	}

	got, err := repo.Update(ctx, cl.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "Bloc opératoire v2", got.Label)
	assert.Equal(t, "2024", got.Version)
	require.Len(t, got.Steps, 2)
	assert.Equal(t, cl.Steps[0].ID, got.Steps[0].ID)
	assert.Equal(t, "Avant induction", got.Steps[0].Name)
	assert.Equal(t, cl.Steps[1].ID, got.Steps[1].ID)
	assert.False(t, got.HasDecisionStep())

	qs := got.Steps[0].Questions
	require.Len(t, qs, 3)
	assert.Equal(t, site.ID, qs[0].ID)
	assert.Equal(t, identity.ID, qs[1].ID)
	assert.Equal(t, "Identité vérifiée", qs[1].Text)
	assert.NotContains(t, []int64{site.ID, identity.ID}, qs[2].ID)

	require.Len(t, got.Steps[1].Questions, 1)
	assert.Equal(t, antibio.ID, got.Steps[1].Questions[0].ID)
	assert.Len(t, got.Steps[1].Questions[0].Options, 2)

	var orphanSteps int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM step WHERE checklist_id = $1`, cl.ID).Scan(&orphanSteps))
	assert.Equal(t, 2, orphanSteps)
}

func TestChecklistRepo_UpdateMissing(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	_, err := store.NewChecklistRepo(conn).Update(context.Background(), 42, models.ChecklistInput{Label: "X"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestChecklistRepo_DeleteCascades(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	repo := store.NewChecklistRepo(conn)
	ctx := context.Background()
	cl := testutil.CreateTestChecklist(t, conn, testutil.SampleChecklist())
	ids := testutil.AllQuestionIDs(cl)
	testutil.SubmitTestAnswers(t, conn, cl.ID, t1, []models.Answer{{QuestionID: ids[0], Value: "Oui"}})

	require.NoError(t, repo.Delete(ctx, cl.ID))
	assert.ErrorIs(t, repo.Delete(ctx, cl.ID), store.ErrNotFound)

	for _, table := range []string{"step", "question", "response_option", "submission", "submission_answer"} {
		var n int
		require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Zero(t, n, table)
	}
}

func TestChecklistRepo_QuestionIDsAndCurrentAnswers(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	repo := store.NewChecklistRepo(conn)
	ctx := context.Background()

	in := testutil.SampleChecklist()
	in.Steps[0].Questions[1].LastAnswer = "N/A"
	cl := testutil.CreateTestChecklist(t, conn, in)
	ids := testutil.AllQuestionIDs(cl)

	known, err := repo.QuestionIDs(ctx, cl.ID)
	require.NoError(t, err)
	assert.Len(t, known, len(ids))
	for _, id := range ids {
		assert.True(t, known[id])
	}

	current, err := repo.CurrentAnswers(ctx, cl.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Answer{{QuestionID: ids[1], Value: "N/A"}}, current)
}

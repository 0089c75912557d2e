// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package checklist

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/danielhkuo/safecheck/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerStore_SetIsIdempotent(t *testing.T) {
	var once, twice AnswerStore
	once.Set(1, "Oui")
	twice.Set(1, "Oui")
	twice.Set(1, "Oui")
	assert.Equal(t, once.List(), twice.List())
}

func TestAnswerStore_OverwriteKeepsPosition(t *testing.T) {
	var s AnswerStore
	s.Set(1, "Oui")
	s.Set(2, "Non")
	s.Set(1, "N/A")

	assert.Equal(t, []models.Answer{{QuestionID: 1, Value: "N/A"}, {QuestionID: 2, Value: "Non"}}, s.List())
	v, ok := s.Get(2)
	assert.True(t, ok)
	assert.Equal(t, "Non", v)
	_, ok = s.Get(3)
	assert.False(t, ok)
}

func TestAnswerStore_JSON(t *testing.T) {
	s := NewAnswerStore([]models.Answer{{QuestionID: 4, Value: "Oui"}, {QuestionID: 2, Value: "Non"}})
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"question_id":4,"value":"Oui"},{"question_id":2,"value":"Non"}]`, string(data))

	var back AnswerStore
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s.List(), back.List())
}

func TestValidateForSubmit(t *testing.T) {
	cl := buildChecklist([]int64{1, 2})

	_, err := ValidateForSubmit(cl, nil)
	assert.ErrorIs(t, err, ErrEmptyAnswerSet)

	_, err = ValidateForSubmit(cl, []models.Answer{})
	assert.ErrorIs(t, err, ErrEmptyAnswerSet)

	_, err = ValidateForSubmit(nil, []models.Answer{})
	assert.ErrorIs(t, err, ErrEmptyAnswerSet, "empty wins regardless of checklist")

	answers := []models.Answer{{QuestionID: 1, Value: "Oui"}, {QuestionID: 99, Value: "Non"}}
	_, err = ValidateForSubmit(cl, answers)
	require.ErrorIs(t, err, ErrUnknownQuestionIDs)
	var unknown *UnknownQuestionsError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, []int64{99}, unknown.IDs)

	ok := []models.Answer{{QuestionID: 2, Value: "Non"}, {QuestionID: 1, Value: "Oui"}}
	got, err := ValidateForSubmit(cl, ok)
	require.NoError(t, err)
	assert.Equal(t, ok, got)
}

func TestUnknownQuestionIDs_ReportsAll(t *testing.T) {
	known := map[int64]bool{1: true}
	answers := []models.Answer{{QuestionID: 50}, {QuestionID: 1}, {QuestionID: 9}, {QuestionID: 50}}
	assert.Equal(t, []int64{9, 50}, UnknownQuestionIDs(known, answers))
}

func TestIncompleteSteps(t *testing.T) {
	cl := buildChecklist([]int64{1}, []int64{2}, []int64{})
	assert.Equal(t, []int{1, 2}, IncompleteSteps(cl, answersOf(map[int64]string{1: "Oui"})))
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package checklist

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/danielhkuo/safecheck/models"
)

var (
	ErrEmptyAnswerSet     = errors.New("no answers to submit")
	ErrUnknownQuestionIDs = errors.New("answers reference unknown questions")
	ErrIncompleteSteps    = errors.New("checklist has incomplete steps")
	ErrStepLocked         = errors.New("step is locked until earlier steps are validated")
	ErrStepIncomplete     = errors.New("step has unanswered questions")
	ErrStepNotFound       = errors.New("step not found")
	ErrSessionClosed      = errors.New("session already submitted")
	ErrDecisionRequired   = errors.New("final decision required")
	ErrInvalidDecision    = errors.New("invalid decision")
)

// UnknownQuestionsError lists every answered question id missing from the
// checklist.
type UnknownQuestionsError struct {
	IDs []int64
}

func (e *UnknownQuestionsError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("%v: %s", ErrUnknownQuestionIDs, strings.Join(ids, ", "))
}

func (e *UnknownQuestionsError) Is(target error) bool {
	return target == ErrUnknownQuestionIDs
}

// IncompleteStepsError lists the indices of steps that are not complete.
type IncompleteStepsError struct {
	Steps []int
}

func (e *IncompleteStepsError) Error() string {
	return fmt.Sprintf("%v: %v", ErrIncompleteSteps, e.Steps)
}

func (e *IncompleteStepsError) Is(target error) bool {
	return target == ErrIncompleteSteps
}

// QuestionIDs returns the set of question ids currently in the checklist.
func QuestionIDs(cl *models.Checklist) map[int64]bool {
	ids := make(map[int64]bool)
	if cl == nil {
		return ids
	}
	for _, s := range cl.Steps {
		for _, q := range s.Questions {
			ids[q.ID] = true
		}
	}
	return ids
}

// UnknownQuestionIDs returns the answered ids not in known, sorted and
// deduplicated. The store runs the same function against the ids it reads
// inside the submission transaction.
func UnknownQuestionIDs(known map[int64]bool, answers []models.Answer) []int64 {
	seen := make(map[int64]bool)
	var unknown []int64
	for _, a := range answers {
		if known[a.QuestionID] || seen[a.QuestionID] {
			continue
		}
		seen[a.QuestionID] = true
		unknown = append(unknown, a.QuestionID)
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return unknown
}

// ValidateForSubmit checks a draft answer list against the checklist. It
// fails with ErrEmptyAnswerSet for an empty list and with an
// *UnknownQuestionsError naming all offending ids; otherwise the list is
// returned unchanged.
func ValidateForSubmit(cl *models.Checklist, answers []models.Answer) ([]models.Answer, error) {
	if len(answers) == 0 {
		return nil, ErrEmptyAnswerSet
	}
	if unknown := UnknownQuestionIDs(QuestionIDs(cl), answers); len(unknown) > 0 {
		return nil, &UnknownQuestionsError{IDs: unknown}
	}
	return answers, nil
}

// IncompleteSteps returns the indices of steps failing IsStepComplete.
func IncompleteSteps(cl *models.Checklist, answers AnswerStore) []int {
	if cl == nil {
		return nil
	}
	var out []int
	for i := range cl.Steps {
		if !IsStepComplete(&cl.Steps[i], answers) {
			out = append(out, i)
		}
	}
	return out
}

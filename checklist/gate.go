// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package checklist

import (
	"strings"

	"github.com/danielhkuo/safecheck/models"
)

// IsAnswered is the single "answered" predicate: a value counts only if it
// is non-empty after trimming whitespace.
func IsAnswered(value string) bool {
	return strings.TrimSpace(value) != ""
}

// IsStepComplete reports whether every question of the step is answered.
// A nil step or a step without questions is never complete.
func IsStepComplete(step *models.Step, answers AnswerStore) bool {
	if step == nil || len(step.Questions) == 0 {
		return false
	}
	for _, q := range step.Questions {
		if !IsAnswered(answers.Value(q.ID)) {
			return false
		}
	}
	return true
}

// IsStepAccessible reports whether the step at stepIndex may be opened.
// Step 0 is always accessible; a later step requires every earlier step to
// be validated. Missing flags count as not validated.
func IsStepAccessible(stepIndex int, validated []bool) bool {
	if stepIndex < 0 {
		return false
	}
	for i := 0; i < stepIndex; i++ {
		if i >= len(validated) || !validated[i] {
			return false
		}
	}
	return true
}

// LockedBy returns the indices of earlier steps that still block stepIndex.
func LockedBy(stepIndex int, validated []bool) []int {
	var missing []int
	for i := 0; i < stepIndex; i++ {
		if i >= len(validated) || !validated[i] {
			missing = append(missing, i)
		}
	}
	return missing
}

// FirstUnansweredQuestion returns the position of the first unanswered
// question in the step. ok is false when the step is empty or fully
// answered, meaning navigation restarts at index 0.
func FirstUnansweredQuestion(step *models.Step, answers AnswerStore) (index int, ok bool) {
	if step == nil {
		return 0, false
	}
	for i, q := range step.Questions {
		if !IsAnswered(answers.Value(q.ID)) {
			return i, true
		}
	}
	return 0, false
}

// AnsweredCount returns how many questions of the step are answered.
func AnsweredCount(step *models.Step, answers AnswerStore) int {
	if step == nil {
		return 0
	}
	n := 0
	for _, q := range step.Questions {
		if IsAnswered(answers.Value(q.ID)) {
			n++
		}
	}
	return n
}

// StepProgress returns the answered share of the step on a 0-100 scale.
func StepProgress(step *models.Step, answers AnswerStore) float64 {
	if step == nil || len(step.Questions) == 0 {
		return 0
	}
	return float64(AnsweredCount(step, answers)) / float64(len(step.Questions)) * 100
}

// GlobalProgress returns the answered share of all questions on a 0-100
// scale, or 0 for a checklist without questions.
func GlobalProgress(cl *models.Checklist, answers AnswerStore) float64 {
	if cl == nil {
		return 0
	}
	total, answered := 0, 0
	for i := range cl.Steps {
		total += len(cl.Steps[i].Questions)
		answered += AnsweredCount(&cl.Steps[i], answers)
	}
	if total == 0 {
		return 0
	}
	return float64(answered) / float64(total) * 100
}

// AdvanceAfterAnswer returns the question index to show after the question
// at questionIndex was answered. It moves forward by one only when
// auto-advance is on, the question is answered and it is not the last of
// the step; leaving a step is always an explicit validation.
func AdvanceAfterAnswer(step *models.Step, questionIndex int, answers AnswerStore, autoAdvance bool) int {
	if !autoAdvance || step == nil {
		return questionIndex
	}
	if questionIndex < 0 || questionIndex >= len(step.Questions)-1 {
		return questionIndex
	}
	if !IsAnswered(answers.Value(step.Questions[questionIndex].ID)) {
		return questionIndex
	}
	return questionIndex + 1
}

func stepAt(cl *models.Checklist, index int) *models.Step {
	if cl == nil || index < 0 || index >= len(cl.Steps) {
		return nil
	}
	return &cl.Steps[index]
}

// stepOf returns the index of the step holding questionID, or -1.
func stepOf(cl *models.Checklist, questionID int64) int {
	if cl == nil {
		return -1
	}
	for i := range cl.Steps {
		for _, q := range cl.Steps[i].Questions {
			if q.ID == questionID {
				return i
			}
		}
	}
	return -1
}

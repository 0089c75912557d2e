// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"strings"
	"time"
)

// QuestionType is the answer domain of a question.
type QuestionType string

// Question type constants
const (
	QuestionBoolean          QuestionType = "Boolean"
	QuestionBooleanNA        QuestionType = "BooleanNA"
	QuestionFreeText         QuestionType = "FreeText"
	QuestionSingleChoiceList QuestionType = "SingleChoiceList"
)

// StepKind marks steps that carry special meaning during a fill-in session.
type StepKind string

// Step kind constants
const (
	StepStandard StepKind = "standard"
	StepDecision StepKind = "decision"
)

// Answer values for Boolean and BooleanNA questions
const (
	AnswerYes           = "Oui"
	AnswerNo            = "Non"
	AnswerNotApplicable = "N/A"
)

// Final decision and consequence values
const (
	DecisionGo   = "Oui"
	DecisionNoGo = "Non"

	ConsequenceDelay  = "Retard"
	ConsequenceCancel = "Annulation"
)

// DefaultVersion is the checklist version used when none is given.
const DefaultVersion = "2018"

// ParseQuestionType resolves a question type name case-insensitively.
// The legacy names "Texte" and "Liste" are accepted as aliases.
func ParseQuestionType(s string) (QuestionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "boolean":
		return QuestionBoolean, true
	case "booleanna":
		return QuestionBooleanNA, true
	case "freetext", "texte", "text":
		return QuestionFreeText, true
	case "singlechoicelist", "liste", "list":
		return QuestionSingleChoiceList, true
	}
	return "", false
}

// ParseStepKind resolves a step kind, defaulting empty input to StepStandard.
func ParseStepKind(s string) (StepKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return StepStandard, true
	case "decision":
		return StepDecision, true
	}
	return "", false
}

// AnswerChoices returns the selectable values for a question, or nil for
// free text questions.
func AnswerChoices(q Question) []string {
	switch q.Type {
	case QuestionBoolean:
		return []string{AnswerYes, AnswerNo}
	case QuestionBooleanNA:
		return []string{AnswerYes, AnswerNo, AnswerNotApplicable}
	case QuestionSingleChoiceList:
		values := make([]string, 0, len(q.Options))
		for _, o := range q.Options {
			values = append(values, o.Value)
		}
		return values
	}
	return nil
}

// Domain types

type Checklist struct {
	ID          int64     `json:"id"`
	Label       string    `json:"label"`
	Version     string    `json:"version"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	Steps       []Step    `json:"steps"`
}

// QuestionCount returns the number of questions across all steps.
func (c *Checklist) QuestionCount() int {
	n := 0
	for _, s := range c.Steps {
		n += len(s.Questions)
	}
	return n
}

// HasDecisionStep reports whether any step is marked as the final decision.
func (c *Checklist) HasDecisionStep() bool {
	for _, s := range c.Steps {
		if s.Kind == StepDecision {
			return true
		}
	}
	return false
}

type Step struct {
	ID          int64      `json:"id"`
	ChecklistID int64      `json:"checklist_id"`
	Name        string     `json:"name"`
	Position    int        `json:"position"`
	Kind        StepKind   `json:"kind"`
	Questions   []Question `json:"questions"`
}

type Question struct {
	ID         int64        `json:"id"`
	StepID     int64        `json:"step_id"`
	Text       string       `json:"text"`
	Type       QuestionType `json:"type"`
	Required   bool         `json:"required"`
	Comment    string       `json:"comment,omitempty"`
	LastAnswer string       `json:"last_answer,omitempty"`
	Position   int          `json:"position"`
	Options    []Option     `json:"options"`
}

type Option struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Value      string `json:"value"`
	Position   int    `json:"position"`
}

type Answer struct {
	QuestionID int64  `json:"question_id"`
	Value      string `json:"value"`
}

type Submission struct {
	ID          int64     `json:"id"`
	ChecklistID int64     `json:"checklist_id"`
	SubmittedBy string    `json:"submitted_by"`
	SubmittedAt time.Time `json:"submitted_at"`
	Answers     []Answer  `json:"answers"`
	Decision    string    `json:"decision,omitempty"`
	Consequence string    `json:"consequence,omitempty"`
}

// History types

// AnswerEntry is one historical answer to a question. Entries recovered from
// the legacy current-answer source carry no submission id and no timestamp.
type AnswerEntry struct {
	SubmissionID *int64     `json:"submission_id,omitempty"`
	Value        string     `json:"value"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	SubmittedBy  string     `json:"submitted_by,omitempty"`
	SubmittedAgo string     `json:"submitted_ago,omitempty"`
}

type QuestionHistory struct {
	Question
	Answers []AnswerEntry `json:"answers"`
	Latest  *AnswerEntry  `json:"latest,omitempty"`
}

type StepHistory struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Position  int               `json:"position"`
	Kind      StepKind          `json:"kind"`
	Questions []QuestionHistory `json:"questions"`
}

// HistoryRow is one line of the flat all-answers table.
type HistoryRow struct {
	AnswerEntry
	StepName     string `json:"step_name"`
	QuestionText string `json:"question_text"`
}

type ChecklistHistory struct {
	ID                 int64         `json:"id"`
	Label              string        `json:"label"`
	Version            string        `json:"version"`
	Description        string        `json:"description"`
	Steps              []StepHistory `json:"steps"`
	SubmissionCount    int           `json:"submission_count"`
	HasRealSubmissions bool          `json:"has_real_submissions"`
	CountLabel         string        `json:"count_label"`
	Rows               []HistoryRow  `json:"rows"`
}

// Request types

type OptionInput struct {
	ID    int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Value string `json:"value" yaml:"value"`
}

type QuestionInput struct {
	ID         int64         `json:"id,omitempty" yaml:"id,omitempty"`
	Text       string        `json:"text" yaml:"text"`
	Type       string        `json:"type" yaml:"type"`
	Required   *bool         `json:"required,omitempty" yaml:"required,omitempty"`
	Comment    string        `json:"comment,omitempty" yaml:"comment,omitempty"`
	LastAnswer string        `json:"last_answer,omitempty" yaml:"last_answer,omitempty"`
	Options    []OptionInput `json:"options,omitempty" yaml:"options,omitempty"`
}

type StepInput struct {
	ID        int64           `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string          `json:"name" yaml:"name"`
	Kind      string          `json:"kind,omitempty" yaml:"kind,omitempty"`
	Questions []QuestionInput `json:"questions" yaml:"questions"`
}

type ChecklistInput struct {
	Label       string      `json:"label" yaml:"label"`
	Version     string      `json:"version,omitempty" yaml:"version,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Active      *bool       `json:"active,omitempty" yaml:"active,omitempty"`
	Steps       []StepInput `json:"steps" yaml:"steps"`
}

type CreateSubmissionRequest struct {
	SubmittedBy string     `json:"submitted_by"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	Answers     []Answer   `json:"answers"`
	Decision    string     `json:"decision,omitempty"`
	Consequence string     `json:"consequence,omitempty"`
}

type StartSessionRequest struct {
	SubmittedBy string `json:"submitted_by"`
	AutoAdvance *bool  `json:"auto_advance,omitempty"`
}

type SetAnswerRequest struct {
	QuestionID int64  `json:"question_id"`
	Value      string `json:"value"`
}

type SetDecisionRequest struct {
	Decision    string `json:"decision"`
	Consequence string `json:"consequence,omitempty"`
}

// Response types

type StartSessionResponse struct {
	SessionToken string `json:"session_token"`
}

type SubmitSessionResponse struct {
	Submission Submission `json:"submission"`
	Message    string     `json:"message"`
}

// Error response

type ErrorResponse struct {
	Error              string  `json:"error"`
	Message            string  `json:"message,omitempty"`
	Code               string  `json:"code,omitempty"`
	UnknownQuestionIDs []int64 `json:"unknown_question_ids,omitempty"`
	IncompleteSteps    []int   `json:"incomplete_steps,omitempty"`
}

// Error codes
const (
	CodeEmptyAnswerSet     = "empty_answer_set"
	CodeUnknownQuestionIDs = "unknown_question_ids"
	CodeIncompleteSteps    = "incomplete_steps"
	CodeValidationError    = "validation_error"
	CodeNotFound           = "not_found"
	CodeStepLocked         = "step_locked"
	CodeStepIncomplete     = "step_incomplete"
	CodeSessionClosed      = "session_closed"
	CodeDecisionRequired   = "decision_required"
	CodeInvalidDecision    = "invalid_decision"
)

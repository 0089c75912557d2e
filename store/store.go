// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/safecheck/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned when input is rejected before any write.
	ErrValidation = errors.New("validation error")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// normalizeChecklist checks a checklist tree and resolves its defaults.
// Input ids are kept as match hints for Update.
func normalizeChecklist(in models.ChecklistInput) (models.Checklist, error) {
	cl := models.Checklist{
		Label:       strings.TrimSpace(in.Label),
		Version:     strings.TrimSpace(in.Version),
		Description: in.Description,
		Active:      true,
		Steps:       make([]models.Step, 0, len(in.Steps)),
	}
	if cl.Label == "" {
		return models.Checklist{}, invalid("label is required")
	}
	if cl.Version == "" {
		cl.Version = models.DefaultVersion
	}
	if in.Active != nil {
		cl.Active = *in.Active
	}

	for i, s := range in.Steps {
		kind, ok := models.ParseStepKind(s.Kind)
		if !ok {
			return models.Checklist{}, invalid("step %d: unknown kind %q", i, s.Kind)
		}
		step := models.Step{
			ID:        s.ID,
			Name:      strings.TrimSpace(s.Name),
			Position:  i,
			Kind:      kind,
			Questions: make([]models.Question, 0, len(s.Questions)),
		}
		if step.Name == "" {
			return models.Checklist{}, invalid("step %d: name is required", i)
		}
		for j, qin := range s.Questions {
			q, err := normalizeQuestion(qin)
			if err != nil {
				return models.Checklist{}, fmt.Errorf("step %d: question %d: %w", i, j, err)
			}
			q.Position = j
			step.Questions = append(step.Questions, q)
		}
		cl.Steps = append(cl.Steps, step)
	}
	return cl, nil
}

// normalizeQuestion checks a question and drops options of non-list types.
func normalizeQuestion(in models.QuestionInput) (models.Question, error) {
	qt, ok := models.ParseQuestionType(in.Type)
	if !ok {
		return models.Question{}, invalid("unknown question type %q", in.Type)
	}
	q := models.Question{
		ID:         in.ID,
		Text:       strings.TrimSpace(in.Text),
		Type:       qt,
		Required:   true,
		Comment:    in.Comment,
		LastAnswer: in.LastAnswer,
		Options:    []models.Option{},
	}
	if q.Text == "" {
		return models.Question{}, invalid("text is required")
	}
	if in.Required != nil {
		q.Required = *in.Required
	}
	if qt == models.QuestionSingleChoiceList {
		for _, o := range in.Options {
			v := strings.TrimSpace(o.Value)
			if v == "" {
				continue
			}
			q.Options = append(q.Options, models.Option{ID: o.ID, Value: v, Position: len(q.Options)})
		}
	}
	return q, nil
}

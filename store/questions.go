// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/safecheck/models"
)

const questionColumns = `q.id, q.step_id, q.prompt, q.qtype, q.required, q.comment, q.last_answer, q.ordinal`

// GetQuestion loads one question with its options.
func (r *ChecklistRepo) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	questions, err := r.queryQuestions(ctx, `
		SELECT `+questionColumns+`
		FROM question q
		WHERE q.id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("question %d: %w", id, ErrNotFound)
	}
	return &questions[0], nil
}

// ListQuestionsByChecklist returns the questions of a checklist in order.
func (r *ChecklistRepo) ListQuestionsByChecklist(ctx context.Context, checklistID int64) ([]models.Question, error) {
	ok, err := r.Exists(ctx, checklistID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("checklist %d: %w", checklistID, ErrNotFound)
	}
	return r.queryQuestions(ctx, `
		SELECT `+questionColumns+`
		FROM question q
		JOIN step s ON s.id = q.step_id
		WHERE s.checklist_id = $1
		ORDER BY s.ordinal, s.id, q.ordinal, q.id
	`, checklistID)
}

// ListQuestionsByStep returns the questions of a step in order.
func (r *ChecklistRepo) ListQuestionsByStep(ctx context.Context, stepID int64) ([]models.Question, error) {
	if err := r.requireStep(ctx, stepID); err != nil {
		return nil, err
	}
	return r.queryQuestions(ctx, `
		SELECT `+questionColumns+`
		FROM question q
		WHERE q.step_id = $1
		ORDER BY q.ordinal, q.id
	`, stepID)
}

// CreateQuestion appends a question to a step.
func (r *ChecklistRepo) CreateQuestion(ctx context.Context, stepID int64, in models.QuestionInput) (*models.Question, error) {
	q, err := normalizeQuestion(in)
	if err != nil {
		return nil, err
	}
	if err := r.requireStep(ctx, stepID); err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(ordinal) + 1, 0) FROM question WHERE step_id = $1
	`, stepID).Scan(&q.Position)
	if err != nil {
		return nil, fmt.Errorf("computing question position: %w", err)
	}

	id, err := r.insertQuestion(ctx, stepID, q)
	if err != nil {
		return nil, err
	}
	return r.GetQuestion(ctx, id)
}

// UpdateQuestion overwrites a question in place, keeping its step and
// position. An empty last answer keeps the stored one.
func (r *ChecklistRepo) UpdateQuestion(ctx context.Context, id int64, in models.QuestionInput) (*models.Question, error) {
	q, err := normalizeQuestion(in)
	if err != nil {
		return nil, err
	}
	existing, err := r.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Position = existing.Position
	if q.LastAnswer == "" {
		q.LastAnswer = existing.LastAnswer
	}
	if err := r.writeQuestion(ctx, id, q); err != nil {
		return nil, err
	}
	return r.GetQuestion(ctx, id)
}

// DeleteQuestion removes a question and its options. Past submission
// answers that reference it are kept.
func (r *ChecklistRepo) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM question WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting question %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting question %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("question %d: %w", id, ErrNotFound)
	}
	return nil
}

// SetLastAnswers stores each answer as the current answer of its question.
func (r *ChecklistRepo) SetLastAnswers(ctx context.Context, answers []models.Answer) error {
	for _, a := range answers {
		_, err := r.db.ExecContext(ctx, `
			UPDATE question SET last_answer = $1 WHERE id = $2
		`, a.Value, a.QuestionID)
		if err != nil {
			return fmt.Errorf("recording answer to question %d: %w", a.QuestionID, err)
		}
	}
	return nil
}

func (r *ChecklistRepo) requireStep(ctx context.Context, stepID int64) error {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM step WHERE id = $1`, stepID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("step %d: %w", stepID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("getting step %d: %w", stepID, err)
	}
	return nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/safecheck/checklist"
	"github.com/danielhkuo/safecheck/db"
	"github.com/danielhkuo/safecheck/models"
)

// SubmissionRepo persists filled-in checklists.
type SubmissionRepo struct {
	db db.DBTX
}

func NewSubmissionRepo(conn db.DBTX) *SubmissionRepo {
	return &SubmissionRepo{db: conn}
}

// Create stores a submission after checking every answer against the
// checklist's current questions. Any unknown question id rejects the whole
// submission with ErrValidation wrapping a *checklist.UnknownQuestionsError.
// Accepted answers also become the current answers of their questions.
// Run it on a transaction so the check and the writes are atomic.
func (r *SubmissionRepo) Create(ctx context.Context, sub models.Submission) (*models.Submission, error) {
	checklists := NewChecklistRepo(r.db)

	ok, err := checklists.Exists(ctx, sub.ChecklistID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("checklist %d: %w", sub.ChecklistID, ErrNotFound)
	}
	if len(sub.Answers) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrValidation, checklist.ErrEmptyAnswerSet)
	}

	known, err := checklists.QuestionIDs(ctx, sub.ChecklistID)
	if err != nil {
		return nil, err
	}
	if unknown := checklist.UnknownQuestionIDs(known, sub.Answers); len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrValidation, &checklist.UnknownQuestionsError{IDs: unknown})
	}

	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}
	sub.SubmittedAt = sub.SubmittedAt.UTC().Truncate(time.Microsecond)

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO submission (checklist_id, submitted_by, submitted_at, decision, consequence)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, sub.ChecklistID, sub.SubmittedBy, sub.SubmittedAt, sub.Decision, sub.Consequence).Scan(&sub.ID)
	if err != nil {
		return nil, fmt.Errorf("inserting submission: %w", err)
	}

	for i, a := range sub.Answers {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO submission_answer (submission_id, ordinal, question_id, value)
			VALUES ($1, $2, $3, $4)
		`, sub.ID, i, a.QuestionID, a.Value)
		if err != nil {
			return nil, fmt.Errorf("inserting submission answer: %w", err)
		}
	}

	if err := checklists.SetLastAnswers(ctx, sub.Answers); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Get loads one submission with its answers.
func (r *SubmissionRepo) Get(ctx context.Context, id int64) (*models.Submission, error) {
	var s models.Submission
	err := r.db.QueryRowContext(ctx, `
		SELECT id, checklist_id, submitted_by, submitted_at, decision, consequence
		FROM submission
		WHERE id = $1
	`, id).Scan(&s.ID, &s.ChecklistID, &s.SubmittedBy, &s.SubmittedAt, &s.Decision, &s.Consequence)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("submission %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting submission %d: %w", id, err)
	}

	answers, err := r.answers(ctx, `
		SELECT submission_id, question_id, value
		FROM submission_answer
		WHERE submission_id = $1
		ORDER BY ordinal
	`, id)
	if err != nil {
		return nil, err
	}
	s.Answers = answers[id]
	if s.Answers == nil {
		s.Answers = []models.Answer{}
	}
	return &s, nil
}

// ListByChecklist returns the submissions of a checklist, newest first.
func (r *SubmissionRepo) ListByChecklist(ctx context.Context, checklistID int64) ([]models.Submission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, checklist_id, submitted_by, submitted_at, decision, consequence
		FROM submission
		WHERE checklist_id = $1
		ORDER BY submitted_at DESC, id DESC
	`, checklistID)
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}
	subs := []models.Submission{}
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.ChecklistID, &s.SubmittedBy, &s.SubmittedAt, &s.Decision, &s.Consequence); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning submission: %w", err)
		}
		subs = append(subs, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}

	answers, err := r.answers(ctx, `
		SELECT sa.submission_id, sa.question_id, sa.value
		FROM submission_answer sa
		JOIN submission s ON s.id = sa.submission_id
		WHERE s.checklist_id = $1
		ORDER BY sa.submission_id, sa.ordinal
	`, checklistID)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		subs[i].Answers = answers[subs[i].ID]
		if subs[i].Answers == nil {
			subs[i].Answers = []models.Answer{}
		}
	}
	return subs, nil
}

func (r *SubmissionRepo) answers(ctx context.Context, query string, args ...any) (map[int64][]models.Answer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading submission answers: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]models.Answer)
	for rows.Next() {
		var subID int64
		var a models.Answer
		if err := rows.Scan(&subID, &a.QuestionID, &a.Value); err != nil {
			return nil, fmt.Errorf("scanning submission answer: %w", err)
		}
		out[subID] = append(out[subID], a)
	}
	return out, rows.Err()
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/safecheck/db"
	"github.com/danielhkuo/safecheck/models"
)

// ChecklistRepo reads and writes checklist trees. Multi-row writes (Create,
// Update, Delete) must run on a transaction to be atomic.
type ChecklistRepo struct {
	db db.DBTX
}

func NewChecklistRepo(conn db.DBTX) *ChecklistRepo {
	return &ChecklistRepo{db: conn}
}

// List returns all checklists without their steps, oldest first.
func (r *ChecklistRepo) List(ctx context.Context) ([]models.Checklist, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, label, version, description, active, created_at
		FROM checklist
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing checklists: %w", err)
	}
	defer rows.Close()

	checklists := []models.Checklist{}
	for rows.Next() {
		var c models.Checklist
		if err := rows.Scan(&c.ID, &c.Label, &c.Version, &c.Description, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning checklist: %w", err)
		}
		c.Steps = []models.Step{}
		checklists = append(checklists, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing checklists: %w", err)
	}
	return checklists, nil
}

// Get loads a checklist with its steps, questions and options in order.
func (r *ChecklistRepo) Get(ctx context.Context, id int64) (*models.Checklist, error) {
	var c models.Checklist
	err := r.db.QueryRowContext(ctx, `
		SELECT id, label, version, description, active, created_at
		FROM checklist
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Label, &c.Version, &c.Description, &c.Active, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("checklist %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting checklist %d: %w", id, err)
	}

	if c.Steps, err = r.loadSteps(ctx, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByLabel returns the first checklist with the given label.
func (r *ChecklistRepo) FindByLabel(ctx context.Context, label string) (*models.Checklist, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM checklist WHERE label = $1 ORDER BY id LIMIT 1
	`, label).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("checklist %q: %w", label, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("finding checklist %q: %w", label, err)
	}
	return r.Get(ctx, id)
}

// loadSteps reads the tree below a checklist. Each query is fully drained
// before the next one starts, so a single-connection pool never blocks.
func (r *ChecklistRepo) loadSteps(ctx context.Context, checklistID int64) ([]models.Step, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, checklist_id, name, ordinal, kind
		FROM step
		WHERE checklist_id = $1
		ORDER BY ordinal, id
	`, checklistID)
	if err != nil {
		return nil, fmt.Errorf("loading steps: %w", err)
	}
	steps := []models.Step{}
	stepIndex := make(map[int64]int)
	for rows.Next() {
		var s models.Step
		if err := rows.Scan(&s.ID, &s.ChecklistID, &s.Name, &s.Position, &s.Kind); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning step: %w", err)
		}
		s.Questions = []models.Question{}
		stepIndex[s.ID] = len(steps)
		steps = append(steps, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading steps: %w", err)
	}

	questions, err := r.queryQuestions(ctx, `
		SELECT q.id, q.step_id, q.prompt, q.qtype, q.required, q.comment, q.last_answer, q.ordinal
		FROM question q
		JOIN step s ON s.id = q.step_id
		WHERE s.checklist_id = $1
		ORDER BY s.ordinal, s.id, q.ordinal, q.id
	`, checklistID)
	if err != nil {
		return nil, err
	}
	for _, q := range questions {
		i := stepIndex[q.StepID]
		steps[i].Questions = append(steps[i].Questions, q)
	}
	return steps, nil
}

// queryQuestions runs a question query and attaches the options of every
// returned question.
func (r *ChecklistRepo) queryQuestions(ctx context.Context, query string, args ...any) ([]models.Question, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading questions: %w", err)
	}
	questions := []models.Question{}
	byID := make(map[int64]int)
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.StepID, &q.Text, &q.Type, &q.Required, &q.Comment, &q.LastAnswer, &q.Position); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		q.Options = []models.Option{}
		byID[q.ID] = len(questions)
		questions = append(questions, q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading questions: %w", err)
	}

	for i := range questions {
		if questions[i].Type != models.QuestionSingleChoiceList {
			continue
		}
		opts, err := r.loadOptions(ctx, questions[i].ID)
		if err != nil {
			return nil, err
		}
		questions[i].Options = opts
	}
	return questions, nil
}

func (r *ChecklistRepo) loadOptions(ctx context.Context, questionID int64) ([]models.Option, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, question_id, value, ordinal
		FROM response_option
		WHERE question_id = $1
		ORDER BY ordinal, id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("loading options: %w", err)
	}
	defer rows.Close()

	opts := []models.Option{}
	for rows.Next() {
		var o models.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Value, &o.Position); err != nil {
			return nil, fmt.Errorf("scanning option: %w", err)
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}

// Create inserts a whole checklist tree and returns it with its new ids.
func (r *ChecklistRepo) Create(ctx context.Context, in models.ChecklistInput) (*models.Checklist, error) {
	cl, err := normalizeChecklist(in)
	if err != nil {
		return nil, err
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO checklist (label, version, description, active, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, cl.Label, cl.Version, cl.Description, cl.Active, time.Now().UTC()).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("inserting checklist: %w", err)
	}

	for _, s := range cl.Steps {
		if err := r.insertStep(ctx, id, s); err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, id)
}

func (r *ChecklistRepo) insertStep(ctx context.Context, checklistID int64, s models.Step) error {
	var stepID int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO step (checklist_id, name, ordinal, kind)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, checklistID, s.Name, s.Position, s.Kind).Scan(&stepID)
	if err != nil {
		return fmt.Errorf("inserting step %q: %w", s.Name, err)
	}
	for _, q := range s.Questions {
		if _, err := r.insertQuestion(ctx, stepID, q); err != nil {
			return err
		}
	}
	return nil
}

func (r *ChecklistRepo) insertQuestion(ctx context.Context, stepID int64, q models.Question) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO question (step_id, prompt, qtype, required, comment, last_answer, ordinal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, stepID, q.Text, q.Type, q.Required, q.Comment, q.LastAnswer, q.Position).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting question: %w", err)
	}
	if err := r.insertOptions(ctx, id, q.Options); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *ChecklistRepo) insertOptions(ctx context.Context, questionID int64, opts []models.Option) error {
	for i, o := range opts {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO response_option (question_id, value, ordinal)
			VALUES ($1, $2, $3)
		`, questionID, o.Value, i)
		if err != nil {
			return fmt.Errorf("inserting option: %w", err)
		}
	}
	return nil
}

// Update replaces the content of a checklist with the incoming tree while
// keeping the ids of rows that still exist. Steps are matched by id, then
// by name; questions inside a matched step by id, then by text. Unmatched
// stored rows are deleted and unmatched incoming rows inserted. A matched
// question gets its options replaced.
func (r *ChecklistRepo) Update(ctx context.Context, id int64, in models.ChecklistInput) (*models.Checklist, error) {
	want, err := normalizeChecklist(in)
	if err != nil {
		return nil, err
	}
	have, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE checklist SET label = $1, version = $2, description = $3, active = $4
		WHERE id = $5
	`, want.Label, want.Version, want.Description, want.Active, id)
	if err != nil {
		return nil, fmt.Errorf("updating checklist %d: %w", id, err)
	}

	used := make(map[int64]bool)
	for _, s := range want.Steps {
		old := matchStep(have.Steps, s, used)
		if old == nil {
			if err := r.insertStep(ctx, id, s); err != nil {
				return nil, err
			}
			continue
		}
		used[old.ID] = true
		_, err := r.db.ExecContext(ctx, `
			UPDATE step SET name = $1, ordinal = $2, kind = $3 WHERE id = $4
		`, s.Name, s.Position, s.Kind, old.ID)
		if err != nil {
			return nil, fmt.Errorf("updating step %d: %w", old.ID, err)
		}
		if err := r.reconcileQuestions(ctx, old, s.Questions); err != nil {
			return nil, err
		}
	}

	for _, s := range have.Steps {
		if used[s.ID] {
			continue
		}
		if _, err := r.db.ExecContext(ctx, `DELETE FROM step WHERE id = $1`, s.ID); err != nil {
			return nil, fmt.Errorf("deleting step %d: %w", s.ID, err)
		}
	}
	return r.Get(ctx, id)
}

func (r *ChecklistRepo) reconcileQuestions(ctx context.Context, old *models.Step, want []models.Question) error {
	used := make(map[int64]bool)
	for _, q := range want {
		match := matchQuestion(old.Questions, q, used)
		if match == nil {
			if _, err := r.insertQuestion(ctx, old.ID, q); err != nil {
				return err
			}
			continue
		}
		used[match.ID] = true
		if q.LastAnswer == "" {
			q.LastAnswer = match.LastAnswer
		}
		if err := r.writeQuestion(ctx, match.ID, q); err != nil {
			return err
		}
	}

	for _, q := range old.Questions {
		if used[q.ID] {
			continue
		}
		if _, err := r.db.ExecContext(ctx, `DELETE FROM question WHERE id = $1`, q.ID); err != nil {
			return fmt.Errorf("deleting question %d: %w", q.ID, err)
		}
	}
	return nil
}

// writeQuestion overwrites a stored question and replaces its options.
func (r *ChecklistRepo) writeQuestion(ctx context.Context, id int64, q models.Question) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE question
		SET prompt = $1, qtype = $2, required = $3, comment = $4, last_answer = $5, ordinal = $6
		WHERE id = $7
	`, q.Text, q.Type, q.Required, q.Comment, q.LastAnswer, q.Position, id)
	if err != nil {
		return fmt.Errorf("updating question %d: %w", id, err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM response_option WHERE question_id = $1`, id); err != nil {
		return fmt.Errorf("clearing options of question %d: %w", id, err)
	}
	return r.insertOptions(ctx, id, q.Options)
}

func matchStep(have []models.Step, s models.Step, used map[int64]bool) *models.Step {
	if s.ID != 0 {
		for i := range have {
			if have[i].ID == s.ID && !used[have[i].ID] {
				return &have[i]
			}
		}
	}
	for i := range have {
		if have[i].Name == s.Name && !used[have[i].ID] {
			return &have[i]
		}
	}
	return nil
}

func matchQuestion(have []models.Question, q models.Question, used map[int64]bool) *models.Question {
	if q.ID != 0 {
		for i := range have {
			if have[i].ID == q.ID && !used[have[i].ID] {
				return &have[i]
			}
		}
	}
	for i := range have {
		if have[i].Text == q.Text && !used[have[i].ID] {
			return &have[i]
		}
	}
	return nil
}

// Delete removes a checklist with everything below it, its submissions and
// its fill-in sessions.
func (r *ChecklistRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM checklist WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting checklist %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting checklist %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("checklist %d: %w", id, ErrNotFound)
	}
	return nil
}

// Exists reports whether a checklist with the given id exists.
func (r *ChecklistRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM checklist WHERE id = $1`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking checklist %d: %w", id, err)
	}
	return n > 0, nil
}

// QuestionIDs returns the ids of every question currently in the checklist.
func (r *ChecklistRepo) QuestionIDs(ctx context.Context, checklistID int64) (map[int64]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT q.id
		FROM question q
		JOIN step s ON s.id = q.step_id
		WHERE s.checklist_id = $1
	`, checklistID)
	if err != nil {
		return nil, fmt.Errorf("loading question ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning question id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// CurrentAnswers returns the non-empty answers stored on the questions
// themselves, in checklist order.
func (r *ChecklistRepo) CurrentAnswers(ctx context.Context, checklistID int64) ([]models.Answer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT q.id, q.last_answer
		FROM question q
		JOIN step s ON s.id = q.step_id
		WHERE s.checklist_id = $1 AND q.last_answer <> ''
		ORDER BY s.ordinal, s.id, q.ordinal, q.id
	`, checklistID)
	if err != nil {
		return nil, fmt.Errorf("loading current answers: %w", err)
	}
	defer rows.Close()

	answers := []models.Answer{}
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.QuestionID, &a.Value); err != nil {
			return nil, fmt.Errorf("scanning current answer: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect string) error {
	var stmt string
	switch dialect {
	case DialectPostgres:
		stmt = postgresSchema
	case DialectSQLite:
		stmt = sqliteSchema
	default:
		return fmt.Errorf("failed to create schema: unsupported dialect %q", dialect)
	}

	_, err := db.Exec(stmt)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const postgresSchema = `
-- Checklists
CREATE TABLE IF NOT EXISTS checklist (
    id BIGSERIAL PRIMARY KEY,
    label TEXT NOT NULL,
    version TEXT NOT NULL DEFAULT '2018',
    description TEXT NOT NULL DEFAULT '',
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_checklist_label ON checklist(label);

-- Steps
CREATE TABLE IF NOT EXISTS step (
    id BIGSERIAL PRIMARY KEY,
    checklist_id BIGINT NOT NULL REFERENCES checklist(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    kind TEXT NOT NULL DEFAULT 'standard' CHECK (kind IN ('standard', 'decision'))
);

CREATE INDEX IF NOT EXISTS idx_step_checklist_id ON step(checklist_id);

-- Questions
CREATE TABLE IF NOT EXISTS question (
    id BIGSERIAL PRIMARY KEY,
    step_id BIGINT NOT NULL REFERENCES step(id) ON DELETE CASCADE,
    prompt TEXT NOT NULL,
    qtype TEXT NOT NULL,
    required BOOLEAN NOT NULL DEFAULT TRUE,
    comment TEXT NOT NULL DEFAULT '',
    last_answer TEXT NOT NULL DEFAULT '',
    ordinal INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_question_step_id ON question(step_id);

-- Options of single-choice questions
CREATE TABLE IF NOT EXISTS response_option (
    id BIGSERIAL PRIMARY KEY,
    question_id BIGINT NOT NULL REFERENCES question(id) ON DELETE CASCADE,
    value TEXT NOT NULL,
    ordinal INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_response_option_question_id ON response_option(question_id);

-- Submissions
CREATE TABLE IF NOT EXISTS submission (
    id BIGSERIAL PRIMARY KEY,
    checklist_id BIGINT NOT NULL REFERENCES checklist(id) ON DELETE CASCADE,
    submitted_by TEXT NOT NULL DEFAULT '',
    submitted_at TIMESTAMP NOT NULL DEFAULT NOW(),
    decision TEXT NOT NULL DEFAULT '',
    consequence TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_submission_checklist_id ON submission(checklist_id);

-- Submission answers (question_id is a weak reference: history outlives questions)
CREATE TABLE IF NOT EXISTS submission_answer (
    submission_id BIGINT NOT NULL REFERENCES submission(id) ON DELETE CASCADE,
    ordinal INTEGER NOT NULL,
    question_id BIGINT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (submission_id, ordinal)
);

-- Fill-in sessions
CREATE TABLE IF NOT EXISTS fill_session (
    token TEXT PRIMARY KEY,
    checklist_id BIGINT NOT NULL REFERENCES checklist(id) ON DELETE CASCADE,
    state TEXT NOT NULL,
    submission_id BIGINT,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_fill_session_checklist_id ON fill_session(checklist_id);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS checklist (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    label TEXT NOT NULL,
    version TEXT NOT NULL DEFAULT '2018',
    description TEXT NOT NULL DEFAULT '',
    active BOOLEAN NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_checklist_label ON checklist(label);

CREATE TABLE IF NOT EXISTS step (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    checklist_id INTEGER NOT NULL REFERENCES checklist(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    kind TEXT NOT NULL DEFAULT 'standard' CHECK (kind IN ('standard', 'decision'))
);

CREATE INDEX IF NOT EXISTS idx_step_checklist_id ON step(checklist_id);

CREATE TABLE IF NOT EXISTS question (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    step_id INTEGER NOT NULL REFERENCES step(id) ON DELETE CASCADE,
    prompt TEXT NOT NULL,
    qtype TEXT NOT NULL,
    required BOOLEAN NOT NULL DEFAULT 1,
    comment TEXT NOT NULL DEFAULT '',
    last_answer TEXT NOT NULL DEFAULT '',
    ordinal INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_question_step_id ON question(step_id);

CREATE TABLE IF NOT EXISTS response_option (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    question_id INTEGER NOT NULL REFERENCES question(id) ON DELETE CASCADE,
    value TEXT NOT NULL,
    ordinal INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_response_option_question_id ON response_option(question_id);

CREATE TABLE IF NOT EXISTS submission (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    checklist_id INTEGER NOT NULL REFERENCES checklist(id) ON DELETE CASCADE,
    submitted_by TEXT NOT NULL DEFAULT '',
    submitted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    decision TEXT NOT NULL DEFAULT '',
    consequence TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_submission_checklist_id ON submission(checklist_id);

CREATE TABLE IF NOT EXISTS submission_answer (
    submission_id INTEGER NOT NULL REFERENCES submission(id) ON DELETE CASCADE,
    ordinal INTEGER NOT NULL,
    question_id INTEGER NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (submission_id, ordinal)
);

CREATE TABLE IF NOT EXISTS fill_session (
    token TEXT PRIMARY KEY,
    checklist_id INTEGER NOT NULL REFERENCES checklist(id) ON DELETE CASCADE,
    state TEXT NOT NULL,
    submission_id INTEGER,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_fill_session_checklist_id ON fill_session(checklist_id);
`

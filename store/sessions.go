// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/safecheck/checklist"
	"github.com/danielhkuo/safecheck/db"
)

// SessionRepo is the draft cache of fill-in sessions, keyed by session
// token. The whole session is stored as one JSON document. A submitted
// session stays readable but is closed: its row carries the submission id
// and no longer accepts writes.
type SessionRepo struct {
	db db.DBTX
}

func NewSessionRepo(conn db.DBTX) *SessionRepo {
	return &SessionRepo{db: conn}
}

// Save inserts or replaces the session stored under token. Saving over a
// closed session fails with checklist.ErrSessionClosed.
func (r *SessionRepo) Save(ctx context.Context, token string, s checklist.Session) error {
	state, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO fill_session (token, checklist_id, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at
		WHERE fill_session.submission_id IS NULL
	`, token, s.ChecklistID, string(state), now, now)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return requireOneRow(result)
}

// Close stores the submitted session s under token and marks the row
// closed. Only one caller can close a given session; the others get
// checklist.ErrSessionClosed, as do callers whose token is unknown.
func (r *SessionRepo) Close(ctx context.Context, token string, s checklist.Session) error {
	if s.SubmissionID == 0 {
		return fmt.Errorf("closing session: no submission id")
	}
	state, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE fill_session SET state = $2, submission_id = $3, updated_at = $4
		WHERE token = $1 AND submission_id IS NULL
	`, token, string(state), s.SubmissionID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	return requireOneRow(result)
}

func requireOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return checklist.ErrSessionClosed
	}
	return nil
}

// Load returns the session stored under token.
func (r *SessionRepo) Load(ctx context.Context, token string) (checklist.Session, error) {
	var state string
	err := r.db.QueryRowContext(ctx, `
		SELECT state FROM fill_session WHERE token = $1
	`, token).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return checklist.Session{}, fmt.Errorf("session: %w", ErrNotFound)
	}
	if err != nil {
		return checklist.Session{}, fmt.Errorf("loading session: %w", err)
	}

	var s checklist.Session
	if err := json.Unmarshal([]byte(state), &s); err != nil {
		return checklist.Session{}, fmt.Errorf("decoding session: %w", err)
	}
	return s, nil
}

// Delete drops the session stored under token. Deleting a missing session
// is not an error.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM fill_session WHERE token = $1`, token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/danielhkuo/safecheck/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(db.DialectSQLite, db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestOpen_UnsupportedDialect(t *testing.T) {
	_, err := db.Open("mysql", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestOpen_SQLiteFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "safecheck.db")
	conn, err := db.Open(db.DialectSQLite, path)
	require.NoError(t, err)
	defer conn.Close()

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM checklist`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestCreateSchema_Idempotent(t *testing.T) {
	conn := openMemory(t)
	require.NoError(t, db.CreateSchema(conn, db.DialectSQLite))
	require.NoError(t, db.CreateSchema(conn, db.DialectSQLite))
}

func TestSchema_CascadeDelete(t *testing.T) {
	conn := openMemory(t)

	res, err := conn.Exec(`INSERT INTO checklist (label) VALUES ($1)`, "Bloc")
	require.NoError(t, err)
	clID, err := res.LastInsertId()
	require.NoError(t, err)
	_, err = conn.Exec(`INSERT INTO step (checklist_id, name, ordinal) VALUES ($1, $2, $3)`, clID, "Avant", 0)
	require.NoError(t, err)

	_, err = conn.Exec(`DELETE FROM checklist WHERE id = $1`, clID)
	require.NoError(t, err)

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM step`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestSchema_RejectsUnknownStepKind(t *testing.T) {
	conn := openMemory(t)
	res, err := conn.Exec(`INSERT INTO checklist (label) VALUES ($1)`, "Bloc")
	require.NoError(t, err)
	clID, _ := res.LastInsertId()

	_, err = conn.Exec(`INSERT INTO step (checklist_id, name, ordinal, kind) VALUES ($1, $2, $3, $4)`, clID, "X", 0, "other")
	assert.Error(t, err)
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	conn := openMemory(t)
	uow := db.NewTxRunner(conn)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO checklist (label) VALUES ($1)`, "committed")
		return err
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM checklist WHERE label = $1`, "committed").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	conn := openMemory(t)
	uow := db.NewTxRunner(conn)
	boom := errors.New("deliberate failure")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO checklist (label) VALUES ($1)`, "rolled back"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM checklist`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	conn := openMemory(t)
	uow := db.NewTxRunner(conn)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO checklist (label) VALUES ($1)`, "panicked")
			panic("boom")
		})
	})

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM checklist`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestWithinTx_CanceledContext(t *testing.T) {
	conn := openMemory(t)
	uow := db.NewTxRunner(conn)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

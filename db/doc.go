// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates its schema.

# Connecting

Open selects the driver from the database type, connects and creates the
schema:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

Two types are supported:

  - postgres: github.com/lib/pq, url is a connection string
  - sqlite: modernc.org/sqlite, url is a file path or ":memory:"

SQLite connections run with foreign keys on and a single open connection.

# Schema Creation

CreateSchema is safe to call multiple times - uses IF NOT EXISTS for all
tables and indexes. Each dialect has its own schema text.

# Tables

  - checklist: label, version, description, active flag
  - step: ordered steps of a checklist, kind standard or decision
  - question: ordered questions of a step, with type and last answer
  - response_option: ordered options of single-choice questions
  - submission: one filled-in checklist, with decision and consequence
  - submission_answer: answers of a submission
  - fill_session: draft state of an in-progress fill-in, as JSON

# Relationships

	checklist 1──* step 1──* question 1──* response_option
	checklist 1──* submission 1──* submission_answer
	checklist 1──* fill_session

All foreign keys use ON DELETE CASCADE. submission_answer.question_id is
deliberately not a foreign key: deleting a question keeps past answers.

# Transactions

Repositories accept a DBTX so they work on *sql.DB or *sql.Tx. Multi-row
writes go through a UnitOfWork:

	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return store.NewChecklistRepo(tx).Delete(ctx, id)
	})
*/
package db

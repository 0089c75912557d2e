// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the safecheck API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - ChecklistHandler: checklist definitions (list, get, create, update, delete)
  - QuestionHandler: question CRUD by checklist, step and id
  - SubmissionHandler: direct submissions, submission reads and the history view
  - SessionHandler: fill-in sessions driven by the step-gate engine

Handlers are created via constructor functions that accept *sql.DB and Config:

	checklistHandler := handlers.NewChecklistHandler(db, cfg)

Multi-row writes run inside a db.UnitOfWork transaction.

# Fill-in Sessions

A session is started on a checklist and identified afterwards by the
X-Session-Token header:

	POST /checklists/{id}/sessions     → StartSession (returns session_token)
	POST /sessions/me/steps/{index}/start → StartStep (409 step_locked)
	POST /sessions/me/answers          → SetAnswer
	POST /sessions/me/validate-step    → ValidateStep (409 step_incomplete)
	POST /sessions/me/decision         → SetDecision
	POST /sessions/me/submit           → Submit

Every session response is a checklist.SessionView. The draft is loaded at
the start of a request and saved at the end; on a successful submit it is
deleted in the same transaction that stores the submission.

# Errors

Errors carry a machine readable code next to the HTTP status:

	400 empty_answer_set, unknown_question_ids, validation_error, invalid_decision
	404 not_found
	409 incomplete_steps, step_locked, step_incomplete, session_closed, decision_required

unknown_question_ids lists the offending ids; incomplete_steps lists the
blocking step indices. Anything else is logged and answered with a 500.

# History

	GET /checklists/{id}/history → GetHistory

Aggregates every submission per question, newest first, with relative
"submitted_ago" labels. Checklists without submissions fall back to the
answers stored on their questions.
*/
package handlers

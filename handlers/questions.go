// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/safecheck/cliparse"
	"github.com/danielhkuo/safecheck/db"
	"github.com/danielhkuo/safecheck/middleware"
	"github.com/danielhkuo/safecheck/models"
	"github.com/danielhkuo/safecheck/store"
)

type QuestionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	uow db.UnitOfWork
}

func NewQuestionHandler(conn *sql.DB, cfg cliparse.Config) *QuestionHandler {
	return &QuestionHandler{db: conn, cfg: cfg, uow: db.NewTxRunner(conn)}
}

// ListByChecklist handles GET /checklists/{id}/questions
func (h *QuestionHandler) ListByChecklist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	questions, err := store.NewChecklistRepo(h.db).ListQuestionsByChecklist(r.Context(), id)
	if err != nil {
		writeError(w, err, "list questions")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, questions)
}

// ListByStep handles GET /steps/{id}/questions
func (h *QuestionHandler) ListByStep(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	questions, err := store.NewChecklistRepo(h.db).ListQuestionsByStep(r.Context(), id)
	if err != nil {
		writeError(w, err, "list step questions")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, questions)
}

// CreateQuestion handles POST /steps/{id}/questions
func (h *QuestionHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	stepID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.QuestionInput
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var created *models.Question
	err := h.uow.WithinTx(r.Context(), func(ctx context.Context, tx db.DBTX) error {
		var err error
		created, err = store.NewChecklistRepo(tx).CreateQuestion(ctx, stepID, req)
		return err
	})
	if err != nil {
		writeError(w, err, "create question")
		return
	}

	slog.Info("question created", "question_id", created.ID, "step_id", stepID)

	middleware.JSONResponse(w, http.StatusCreated, created)
}

// GetQuestion handles GET /questions/{id}
func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	q, err := store.NewChecklistRepo(h.db).GetQuestion(r.Context(), id)
	if err != nil {
		writeError(w, err, "load question")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, q)
}

// UpdateQuestion handles PUT /questions/{id}
func (h *QuestionHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.QuestionInput
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var updated *models.Question
	err := h.uow.WithinTx(r.Context(), func(ctx context.Context, tx db.DBTX) error {
		var err error
		updated, err = store.NewChecklistRepo(tx).UpdateQuestion(ctx, id, req)
		return err
	})
	if err != nil {
		writeError(w, err, "update question")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, updated)
}

// DeleteQuestion handles DELETE /questions/{id}
func (h *QuestionHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := store.NewChecklistRepo(h.db).DeleteQuestion(r.Context(), id); err != nil {
		writeError(w, err, "delete question")
		return
	}

	slog.Info("question deleted", "question_id", id)

	w.WriteHeader(http.StatusNoContent)
}

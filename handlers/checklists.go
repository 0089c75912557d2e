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

type ChecklistHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	uow db.UnitOfWork
}

func NewChecklistHandler(conn *sql.DB, cfg cliparse.Config) *ChecklistHandler {
	return &ChecklistHandler{db: conn, cfg: cfg, uow: db.NewTxRunner(conn)}
}

// ListChecklists handles GET /checklists
func (h *ChecklistHandler) ListChecklists(w http.ResponseWriter, r *http.Request) {
	checklists, err := store.NewChecklistRepo(h.db).List(r.Context())
	if err != nil {
		writeError(w, err, "list checklists")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, checklists)
}

// GetChecklist handles GET /checklists/{id}
func (h *ChecklistHandler) GetChecklist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	cl, err := store.NewChecklistRepo(h.db).Get(r.Context(), id)
	if err != nil {
		writeError(w, err, "load checklist")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, cl)
}

// CreateChecklist handles POST /checklists
func (h *ChecklistHandler) CreateChecklist(w http.ResponseWriter, r *http.Request) {
	var req models.ChecklistInput
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var created *models.Checklist
	err := h.uow.WithinTx(r.Context(), func(ctx context.Context, tx db.DBTX) error {
		var err error
		created, err = store.NewChecklistRepo(tx).Create(ctx, req)
		return err
	})
	if err != nil {
		writeError(w, err, "create checklist")
		return
	}

	slog.Info("checklist created", "checklist_id", created.ID, "label", created.Label)

	middleware.JSONResponse(w, http.StatusCreated, created)
}

// UpdateChecklist handles PUT /checklists/{id}
func (h *ChecklistHandler) UpdateChecklist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.ChecklistInput
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var updated *models.Checklist
	err := h.uow.WithinTx(r.Context(), func(ctx context.Context, tx db.DBTX) error {
		var err error
		updated, err = store.NewChecklistRepo(tx).Update(ctx, id, req)
		return err
	})
	if err != nil {
		writeError(w, err, "update checklist")
		return
	}

	slog.Info("checklist updated", "checklist_id", id)

	middleware.JSONResponse(w, http.StatusOK, updated)
}

// DeleteChecklist handles DELETE /checklists/{id}
func (h *ChecklistHandler) DeleteChecklist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := store.NewChecklistRepo(h.db).Delete(r.Context(), id); err != nil {
		writeError(w, err, "delete checklist")
		return
	}

	slog.Info("checklist deleted", "checklist_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/safecheck/checklist"
	"github.com/danielhkuo/safecheck/cliparse"
	"github.com/danielhkuo/safecheck/db"
	"github.com/danielhkuo/safecheck/middleware"
	"github.com/danielhkuo/safecheck/models"
	"github.com/danielhkuo/safecheck/store"
)

type SubmissionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	uow db.UnitOfWork
	now func() time.Time
}

func NewSubmissionHandler(conn *sql.DB, cfg cliparse.Config) *SubmissionHandler {
	return &SubmissionHandler{db: conn, cfg: cfg, uow: db.NewTxRunner(conn), now: time.Now}
}

// CreateSubmission handles POST /checklists/{id}/submissions
func (h *SubmissionHandler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	checklistID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.CreateSubmissionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	cl, err := store.NewChecklistRepo(h.db).Get(r.Context(), checklistID)
	if err != nil {
		writeError(w, err, "load checklist")
		return
	}

	// Client-side gate against the loaded snapshot
	answers, err := checklist.ValidateForSubmit(cl, req.Answers)
	if err != nil {
		writeError(w, err, "validate submission")
		return
	}

	consequence, err := checklist.CheckDecision(req.Decision, req.Consequence)
	if err != nil {
		writeError(w, err, "validate submission")
		return
	}

	sub := models.Submission{
		ChecklistID: checklistID,
		SubmittedBy: strings.TrimSpace(req.SubmittedBy),
		Answers:     answers,
		Decision:    req.Decision,
		Consequence: consequence,
	}
	if req.SubmittedAt != nil {
		sub.SubmittedAt = *req.SubmittedAt
	}

	var saved *models.Submission
	err = h.uow.WithinTx(r.Context(), func(ctx context.Context, tx db.DBTX) error {
		var err error
		saved, err = store.NewSubmissionRepo(tx).Create(ctx, sub)
		return err
	})
	if err != nil {
		writeError(w, err, "create submission")
		return
	}

	slog.Info("submission created", "submission_id", saved.ID, "checklist_id", checklistID, "answers", len(saved.Answers))

	middleware.JSONResponse(w, http.StatusCreated, saved)
}

// ListSubmissions handles GET /checklists/{id}/submissions
func (h *SubmissionHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	checklistID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	exists, err := store.NewChecklistRepo(h.db).Exists(r.Context(), checklistID)
	if err != nil {
		writeError(w, err, "load checklist")
		return
	}
	if !exists {
		middleware.ErrorDetail(w, http.StatusNotFound, models.ErrorResponse{
			Message: "Checklist not found",
			Code:    models.CodeNotFound,
		})
		return
	}

	subs, err := store.NewSubmissionRepo(h.db).ListByChecklist(r.Context(), checklistID)
	if err != nil {
		writeError(w, err, "list submissions")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, checklist.OrderSubmissions(subs))
}

// GetSubmission handles GET /submissions/{id}
func (h *SubmissionHandler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	sub, err := store.NewSubmissionRepo(h.db).Get(r.Context(), id)
	if err != nil {
		writeError(w, err, "load submission")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, sub)
}

// GetHistory handles GET /checklists/{id}/history
func (h *SubmissionHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	checklistID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	checklists := store.NewChecklistRepo(h.db)
	cl, err := checklists.Get(r.Context(), checklistID)
	if err != nil {
		writeError(w, err, "load checklist")
		return
	}

	subs, err := store.NewSubmissionRepo(h.db).ListByChecklist(r.Context(), checklistID)
	if err != nil {
		writeError(w, err, "list submissions")
		return
	}

	current, err := checklists.CurrentAnswers(r.Context(), checklistID)
	if err != nil {
		writeError(w, err, "load current answers")
		return
	}

	history := checklist.BuildHistory(cl, subs, current)
	checklist.LabelAges(&history, h.now())

	middleware.JSONResponse(w, http.StatusOK, history)
}

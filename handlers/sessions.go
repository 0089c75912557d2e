// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/danielhkuo/safecheck/auth"
	"github.com/danielhkuo/safecheck/checklist"
	"github.com/danielhkuo/safecheck/cliparse"
	"github.com/danielhkuo/safecheck/db"
	"github.com/danielhkuo/safecheck/middleware"
	"github.com/danielhkuo/safecheck/models"
	"github.com/danielhkuo/safecheck/store"
)

// SessionHandler drives fill-in sessions. The draft is loaded at the start
// of each request and saved at the end; the engine itself never touches
// storage.
type SessionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	uow db.UnitOfWork
}

func NewSessionHandler(conn *sql.DB, cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{db: conn, cfg: cfg, uow: db.NewTxRunner(conn)}
}

// StartSession handles POST /checklists/{id}/sessions
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	checklistID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	// Body is optional
	var req models.StartSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	cl, err := store.NewChecklistRepo(h.db).Get(r.Context(), checklistID)
	if err != nil {
		writeError(w, err, "load checklist")
		return
	}

	autoAdvance := h.cfg.AutoAdvance
	if req.AutoAdvance != nil {
		autoAdvance = *req.AutoAdvance
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		slog.Error("failed to generate session token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	s := checklist.NewSession(cl, strings.TrimSpace(req.SubmittedBy), autoAdvance)
	if err := store.NewSessionRepo(h.db).Save(r.Context(), token, s); err != nil {
		writeError(w, err, "save session")
		return
	}

	slog.Info("session started", "checklist_id", checklistID)

	middleware.JSONResponse(w, http.StatusCreated, models.StartSessionResponse{SessionToken: token})
}

// load resolves the session of the request and the checklist it fills.
// On failure the response has been written.
func (h *SessionHandler) load(w http.ResponseWriter, r *http.Request) (string, checklist.Session, *models.Checklist, bool) {
	token, err := auth.SessionToken(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid session token")
		return "", checklist.Session{}, nil, false
	}

	s, err := store.NewSessionRepo(h.db).Load(r.Context(), token)
	if err != nil {
		writeError(w, err, "load session")
		return "", checklist.Session{}, nil, false
	}

	cl, err := store.NewChecklistRepo(h.db).Get(r.Context(), s.ChecklistID)
	if err != nil {
		writeError(w, err, "load checklist")
		return "", checklist.Session{}, nil, false
	}

	// The checklist may have been edited since the draft was saved
	return token, s.Fit(cl), cl, true
}

// save stores the session and responds with its view.
func (h *SessionHandler) save(w http.ResponseWriter, r *http.Request, token string, s checklist.Session, cl *models.Checklist) {
	if err := store.NewSessionRepo(h.db).Save(r.Context(), token, s); err != nil {
		writeError(w, err, "save session")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, s.View(cl))
}

// transition applies a session transition and saves its result.
func (h *SessionHandler) transition(w http.ResponseWriter, r *http.Request, step func(checklist.Session, *models.Checklist) (checklist.Session, error)) {
	token, s, cl, ok := h.load(w, r)
	if !ok {
		return
	}

	next, err := step(s, cl)
	if err != nil {
		writeError(w, err, "update session")
		return
	}
	h.save(w, r, token, next, cl)
}

// GetSession handles GET /sessions/me
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	_, s, cl, ok := h.load(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, s.View(cl))
}

// DeleteSession handles DELETE /sessions/me
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	token, err := auth.SessionToken(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid session token")
		return
	}

	if err := store.NewSessionRepo(h.db).Delete(r.Context(), token); err != nil {
		writeError(w, err, "delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetAnswer handles POST /sessions/me/answers
func (h *SessionHandler) SetAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.SetAnswerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	h.transition(w, r, func(s checklist.Session, cl *models.Checklist) (checklist.Session, error) {
		q := findQuestion(cl, req.QuestionID)
		if q == nil {
			return s, &checklist.UnknownQuestionsError{IDs: []int64{req.QuestionID}}
		}
		value := strings.TrimSpace(req.Value)
		if choices := models.AnswerChoices(*q); value != "" && len(choices) > 0 && !slices.Contains(choices, value) {
			return s, fmt.Errorf("%w: %q is not a valid answer", store.ErrValidation, value)
		}
		return s.Answer(cl, req.QuestionID, value)
	})
}

// StartStep handles POST /sessions/me/steps/{index}/start
func (h *SessionHandler) StartStep(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid index")
		return
	}

	h.transition(w, r, func(s checklist.Session, cl *models.Checklist) (checklist.Session, error) {
		return s.StartStep(cl, index)
	})
}

// NextQuestion handles POST /sessions/me/next
func (h *SessionHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(s checklist.Session, cl *models.Checklist) (checklist.Session, error) {
		return s.Next(cl), nil
	})
}

// PrevQuestion handles POST /sessions/me/prev
func (h *SessionHandler) PrevQuestion(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(s checklist.Session, _ *models.Checklist) (checklist.Session, error) {
		return s.Prev(), nil
	})
}

// BackToDashboard handles POST /sessions/me/dashboard
func (h *SessionHandler) BackToDashboard(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(s checklist.Session, _ *models.Checklist) (checklist.Session, error) {
		return s.BackToDashboard(), nil
	})
}

// ValidateStep handles POST /sessions/me/validate-step
func (h *SessionHandler) ValidateStep(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(s checklist.Session, cl *models.Checklist) (checklist.Session, error) {
		return s.ValidateStep(cl)
	})
}

// SetDecision handles POST /sessions/me/decision
func (h *SessionHandler) SetDecision(w http.ResponseWriter, r *http.Request) {
	var req models.SetDecisionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	h.transition(w, r, func(s checklist.Session, _ *models.Checklist) (checklist.Session, error) {
		return s.SetDecision(req.Decision, req.Consequence)
	})
}

// Submit handles POST /sessions/me/submit
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	token, s, cl, ok := h.load(w, r)
	if !ok {
		return
	}

	sub, err := s.PrepareSubmit(cl)
	if err != nil {
		writeError(w, err, "prepare submission")
		return
	}

	// The submission and the closing of the session commit together; on
	// any error the draft stays as it was. A concurrent submit of the same
	// session loses at Close and its submission is rolled back.
	var saved *models.Submission
	err = h.uow.WithinTx(r.Context(), func(ctx context.Context, tx db.DBTX) error {
		var err error
		saved, err = store.NewSubmissionRepo(tx).Create(ctx, sub)
		if err != nil {
			return err
		}
		return store.NewSessionRepo(tx).Close(ctx, token, s.MarkSubmitted(saved.ID))
	})
	if err != nil {
		writeError(w, err, "submit session")
		return
	}

	slog.Info("session submitted", "submission_id", saved.ID, "checklist_id", cl.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitSessionResponse{
		Submission: *saved,
		Message:    "Checklist submitted",
	})
}

func findQuestion(cl *models.Checklist, id int64) *models.Question {
	for i := range cl.Steps {
		for j := range cl.Steps[i].Questions {
			if cl.Steps[i].Questions[j].ID == id {
				return &cl.Steps[i].Questions[j]
			}
		}
	}
	return nil
}

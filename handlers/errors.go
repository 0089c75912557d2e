// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/safecheck/checklist"
	"github.com/danielhkuo/safecheck/middleware"
	"github.com/danielhkuo/safecheck/models"
	"github.com/danielhkuo/safecheck/store"
)

// pathID parses an integer path parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// writeError maps core and store errors to their HTTP response. Anything
// unrecognised is logged and reported as a database error.
func writeError(w http.ResponseWriter, err error, action string) {
	var unknown *checklist.UnknownQuestionsError
	var incomplete *checklist.IncompleteStepsError

	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, checklist.ErrStepNotFound):
		middleware.ErrorDetail(w, http.StatusNotFound, models.ErrorResponse{
			Message: err.Error(),
			Code:    models.CodeNotFound,
		})

	case errors.Is(err, checklist.ErrEmptyAnswerSet):
		middleware.ErrorDetail(w, http.StatusBadRequest, models.ErrorResponse{
			Message: checklist.ErrEmptyAnswerSet.Error(),
			Code:    models.CodeEmptyAnswerSet,
		})

	case errors.As(err, &unknown):
		// The store re-checks ids inside the write transaction
		code := models.CodeUnknownQuestionIDs
		if errors.Is(err, store.ErrValidation) {
			code = models.CodeValidationError
		}
		middleware.ErrorDetail(w, http.StatusBadRequest, models.ErrorResponse{
			Message:            unknown.Error(),
			Code:               code,
			UnknownQuestionIDs: unknown.IDs,
		})

	case errors.As(err, &incomplete):
		middleware.ErrorDetail(w, http.StatusConflict, models.ErrorResponse{
			Message:         incomplete.Error(),
			Code:            models.CodeIncompleteSteps,
			IncompleteSteps: incomplete.Steps,
		})

	case errors.Is(err, checklist.ErrStepLocked):
		conflict(w, err, models.CodeStepLocked)
	case errors.Is(err, checklist.ErrStepIncomplete):
		conflict(w, err, models.CodeStepIncomplete)
	case errors.Is(err, checklist.ErrSessionClosed):
		conflict(w, err, models.CodeSessionClosed)
	case errors.Is(err, checklist.ErrDecisionRequired):
		conflict(w, err, models.CodeDecisionRequired)

	case errors.Is(err, checklist.ErrInvalidDecision):
		middleware.ErrorDetail(w, http.StatusBadRequest, models.ErrorResponse{
			Message: err.Error(),
			Code:    models.CodeInvalidDecision,
		})

	case errors.Is(err, store.ErrValidation):
		middleware.ErrorDetail(w, http.StatusBadRequest, models.ErrorResponse{
			Message: err.Error(),
			Code:    models.CodeValidationError,
		})

	default:
		slog.Error("failed to "+action, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}

func conflict(w http.ResponseWriter, err error, code string) {
	middleware.ErrorDetail(w, http.StatusConflict, models.ErrorResponse{
		Message: err.Error(),
		Code:    code,
	})
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/safecheck/cliparse"
	"github.com/danielhkuo/safecheck/handlers"
	"github.com/danielhkuo/safecheck/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	checklistHandler := handlers.NewChecklistHandler(db, cfg)
	questionHandler := handlers.NewQuestionHandler(db, cfg)
	submissionHandler := handlers.NewSubmissionHandler(db, cfg)
	sessionHandler := handlers.NewSessionHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Checklist definitions
	mux.HandleFunc("GET /checklists", middleware.WithLogging(checklistHandler.ListChecklists))
	mux.HandleFunc("POST /checklists", middleware.WithLogging(checklistHandler.CreateChecklist))
	mux.HandleFunc("GET /checklists/{id}", middleware.WithLogging(checklistHandler.GetChecklist))
	mux.HandleFunc("PUT /checklists/{id}", middleware.WithLogging(checklistHandler.UpdateChecklist))
	mux.HandleFunc("DELETE /checklists/{id}", middleware.WithLogging(checklistHandler.DeleteChecklist))

	// Questions
	mux.HandleFunc("GET /checklists/{id}/questions", middleware.WithLogging(questionHandler.ListByChecklist))
	mux.HandleFunc("GET /steps/{id}/questions", middleware.WithLogging(questionHandler.ListByStep))
	mux.HandleFunc("POST /steps/{id}/questions", middleware.WithLogging(questionHandler.CreateQuestion))
	mux.HandleFunc("GET /questions/{id}", middleware.WithLogging(questionHandler.GetQuestion))
	mux.HandleFunc("PUT /questions/{id}", middleware.WithLogging(questionHandler.UpdateQuestion))
	mux.HandleFunc("DELETE /questions/{id}", middleware.WithLogging(questionHandler.DeleteQuestion))

	// Submissions and history
	mux.HandleFunc("GET /checklists/{id}/submissions", middleware.WithLogging(submissionHandler.ListSubmissions))
	mux.HandleFunc("POST /checklists/{id}/submissions", middleware.WithLogging(submissionHandler.CreateSubmission))
	mux.HandleFunc("GET /checklists/{id}/history", middleware.WithLogging(submissionHandler.GetHistory))
	mux.HandleFunc("GET /submissions/{id}", middleware.WithLogging(submissionHandler.GetSubmission))

	// Fill-in sessions (X-Session-Token)
	mux.HandleFunc("POST /checklists/{id}/sessions", middleware.WithLogging(sessionHandler.StartSession))
	mux.HandleFunc("GET /sessions/me", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("DELETE /sessions/me", middleware.WithLogging(sessionHandler.DeleteSession))
	mux.HandleFunc("POST /sessions/me/answers", middleware.WithLogging(sessionHandler.SetAnswer))
	mux.HandleFunc("POST /sessions/me/steps/{index}/start", middleware.WithLogging(sessionHandler.StartStep))
	mux.HandleFunc("POST /sessions/me/next", middleware.WithLogging(sessionHandler.NextQuestion))
	mux.HandleFunc("POST /sessions/me/prev", middleware.WithLogging(sessionHandler.PrevQuestion))
	mux.HandleFunc("POST /sessions/me/dashboard", middleware.WithLogging(sessionHandler.BackToDashboard))
	mux.HandleFunc("POST /sessions/me/validate-step", middleware.WithLogging(sessionHandler.ValidateStep))
	mux.HandleFunc("POST /sessions/me/decision", middleware.WithLogging(sessionHandler.SetDecision))
	mux.HandleFunc("POST /sessions/me/submit", middleware.WithLogging(sessionHandler.Submit))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("safecheck API v1"))
	})

	return mux
}

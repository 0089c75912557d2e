// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the safecheck API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Checklist definitions:

	GET    /checklists      - List checklists
	POST   /checklists      - Create checklist with steps and questions
	GET    /checklists/{id} - Get checklist
	PUT    /checklists/{id} - Replace steps and questions
	DELETE /checklists/{id} - Delete checklist and its submissions

Questions:

	GET    /checklists/{id}/questions - Questions of a checklist
	GET    /steps/{id}/questions      - Questions of a step
	POST   /steps/{id}/questions      - Add question to a step
	GET    /questions/{id}            - Get question
	PUT    /questions/{id}            - Update question
	DELETE /questions/{id}            - Delete question

Submissions:

	POST /checklists/{id}/submissions - Submit a complete answer set
	GET  /checklists/{id}/submissions - List submissions, newest first
	GET  /checklists/{id}/history     - Per-question answer history
	GET  /submissions/{id}            - Get submission with answers

Fill-in sessions (X-Session-Token):

	POST   /checklists/{id}/sessions          - Start session
	GET    /sessions/me                       - Current view
	DELETE /sessions/me                       - Discard draft
	POST   /sessions/me/answers               - Record answer
	POST   /sessions/me/steps/{index}/start   - Enter question mode
	POST   /sessions/me/next                  - Next question
	POST   /sessions/me/prev                  - Previous question
	POST   /sessions/me/dashboard             - Back to dashboard
	POST   /sessions/me/validate-step         - Validate current step
	POST   /sessions/me/decision              - Record GO / NO GO
	POST   /sessions/me/submit                - Submit and close

Every route except /health and / is wrapped with middleware.WithLogging.
*/
package router

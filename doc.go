// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the safecheck API server.

safecheck runs step-by-step medical safety checklists: a user fills the
steps in order, each step unlocks the next once validated, and the final
step records a GO / NO GO decision before the answers are submitted.

# Starting the Server

With no configuration the server uses a local SQLite file:

	go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -seed-defaults

# Configuration

Settings come from flags, then environment variables, then a .env file:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - SEED_FILE (-seed): YAML file with checklists to load at startup
  - SEED_DEFAULTS (-seed-defaults): load the bundled checklists
  - AUTO_ADVANCE (-auto-advance): default for new sessions (default: true)
  - CORS_ORIGIN (-cors-origin): allowed browser origin (default: request origin)

# Architecture

  - checklist: step-gate engine, submission validation and history aggregation
  - store: repositories for checklists, submissions and session drafts
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Session token generation and validation
  - db: Connection and schema for both dialects
  - seed: YAML checklist import and export
  - cliparse: Configuration parsing
  - cmd/checklistctl: admin CLI

See package documentation for each component.
*/
package main

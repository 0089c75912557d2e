// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseType: sqlite (default) or postgres
  - DatabaseURL: file path for sqlite (default: safecheck.db), connection string for postgres (required)
  - SeedFile: YAML checklist file imported at startup
  - SeedDefaults: import the built-in checklists at startup
  - AutoAdvance: move to the next question after an answer (default: true)
  - CORSOrigin: allowed origin; empty echoes the request origin
  - EnvFile: dotenv file read before the environment (default: .env)

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type
	--seed           Seed file
	--seed-defaults  Seed built-in checklists
	--auto-advance   Auto-advance after answers
	--cors-origin    Allowed CORS origin
	--env-file       Dotenv file

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	SEED_FILE     → --seed
	SEED_DEFAULTS → --seed-defaults
	AUTO_ADVANCE  → --auto-advance
	CORS_ORIGIN   → --cors-origin

CLI flags take precedence over environment variables. The dotenv file is
loaded first; a missing file is ignored and variables already present in
the environment are never overwritten by it.

# Validation

ParseFlags returns an error when:

  - the database type is neither sqlite nor postgres
  - postgres is selected without a database URL
  - PORT, SEED_DEFAULTS or AUTO_ADVANCE cannot be parsed

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(conn, cfg)
*/
package cliparse

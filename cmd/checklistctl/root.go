// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"database/sql"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/safecheck/cliparse"
	"github.com/danielhkuo/safecheck/db"
)

// App holds the connection settings shared by every subcommand. The
// connection is opened before a subcommand runs and closed after.
type App struct {
	DatabaseType string
	DatabaseURL  string

	// Now is the reference time for relative labels; time.Now when nil.
	Now func() time.Time

	conn *sql.DB
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) open() error {
	dialect := strings.ToLower(a.DatabaseType)
	url := a.DatabaseURL
	if url == "" && dialect == db.DialectSQLite {
		url = cliparse.DefaultSQLiteURL
	}

	conn, err := db.Open(dialect, url)
	if err != nil {
		return err
	}
	a.conn = conn
	return nil
}

func (a *App) close() error {
	if a.conn == nil {
		return nil
	}
	err := a.conn.Close()
	a.conn = nil
	return err
}

// NewRootCmd creates the top-level "checklistctl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:          "checklistctl",
		Short:        "Administer safecheck checklists and submissions",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.close()
		},
	}

	root.PersistentFlags().StringVar(&app.DatabaseType, "db-type", envOr("DATABASE_TYPE", db.DialectSQLite), "Database type: sqlite or postgres (env: DATABASE_TYPE)")
	root.PersistentFlags().StringVar(&app.DatabaseURL, "db", os.Getenv("DATABASE_URL"), "SQLite path or PostgreSQL URL (env: DATABASE_URL)")

	root.AddCommand(
		newMigrateCmd(app),
		newSeedCmd(app),
		newListCmd(app),
		newExportCmd(app),
		newHistoryCmd(app),
	)

	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

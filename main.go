package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/danielhkuo/safecheck/cliparse"
	"github.com/danielhkuo/safecheck/db"
	"github.com/danielhkuo/safecheck/middleware"
	"github.com/danielhkuo/safecheck/models"
	"github.com/danielhkuo/safecheck/router"
	"github.com/danielhkuo/safecheck/seed"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect and create schema (tables)
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database setup failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Load seed checklists
	if cfg.SeedDefaults || cfg.SeedFile != "" {
		if err := seedDatabase(context.Background(), db.NewTxRunner(dbConn), cfg); err != nil {
			slog.Error("seeding failed", "error", err)
			os.Exit(1)
		}
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.NewCORS(cfg.CORSOrigin)(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

func seedDatabase(ctx context.Context, uow db.UnitOfWork, cfg cliparse.Config) error {
	var checklists []models.ChecklistInput
	if cfg.SeedDefaults {
		defaults, err := seed.Defaults()
		if err != nil {
			return err
		}
		checklists = append(checklists, defaults...)
	}
	if cfg.SeedFile != "" {
		fromFile, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			return err
		}
		checklists = append(checklists, fromFile...)
	}

	res, err := seed.Run(ctx, uow, checklists)
	if err != nil {
		return err
	}
	slog.Info("Seed applied", "created", len(res.Created), "skipped", len(res.Skipped))
	return nil
}

// Package main is the entry point for the wealth simulation service.
// The service runs deterministic market simulations, scores investor
// behavior, and hosts a persistent day-trading game backed by SQLite.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/wealthsim/internal/config"
	"github.com/aristath/wealthsim/internal/database"
	"github.com/aristath/wealthsim/internal/modules/marketgame"
	marketgamehandlers "github.com/aristath/wealthsim/internal/modules/marketgame/handlers"
	"github.com/aristath/wealthsim/internal/modules/profile"
	profilehandlers "github.com/aristath/wealthsim/internal/modules/profile/handlers"
	"github.com/aristath/wealthsim/internal/modules/runs"
	runshandlers "github.com/aristath/wealthsim/internal/modules/runs/handlers"
	"github.com/aristath/wealthsim/internal/reliability"
	"github.com/aristath/wealthsim/internal/scheduler"
	"github.com/aristath/wealthsim/internal/server"
	"github.com/aristath/wealthsim/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("data_dir", cfg.DataDir).Int("port", cfg.Port).Msg("Starting wealthsim")

	profilesDB := mustOpenDB(log, cfg, "profiles", database.ProfileLedger)
	defer profilesDB.Close()

	runsDB := mustOpenDB(log, cfg, "runs", database.ProfileStandard)
	defer runsDB.Close()

	marketGameDB := mustOpenDB(log, cfg, "marketgame", database.ProfileStandard)
	defer marketGameDB.Close()

	databases := map[string]*database.DB{
		"profiles":   profilesDB,
		"runs":       runsDB,
		"marketgame": marketGameDB,
	}

	// Repositories and services
	profileRepo := profile.NewRepository(profilesDB, log)
	runsRepo := runs.NewRepository(runsDB, log)
	runsService := runs.NewService(runsRepo, profileRepo, log)

	gameStore := marketgame.NewStore(marketGameDB, log)
	gameService := marketgame.NewService(gameStore, profileRepo, runsRepo, log)

	// Optional backup pipeline
	var backupService *reliability.BackupService
	if cfg.Backup.Enabled() {
		storage, err := reliability.NewS3Client(cfg.Backup, log)
		if err != nil {
			log.Warn().Err(err).Msg("Backup storage unavailable, backups disabled")
		} else {
			backupService = reliability.NewBackupService(storage, databases, cfg.DataDir, log)
		}
	}

	// HTTP server
	srv := server.New(server.Config{
		Log:               log,
		ProfilesDB:        profilesDB,
		RunsDB:            runsDB,
		MarketGameDB:      marketGameDB,
		Config:            cfg,
		Port:              cfg.Port,
		DevMode:           cfg.DevMode,
		RunsHandler:       runshandlers.NewHandler(runsService, cfg, log),
		ProfileHandler:    profilehandlers.NewHandler(profileRepo, log),
		MarketGameHandler: marketgamehandlers.NewHandler(gameService, log),
		BackupService:     backupService,
	})

	// Background jobs
	sched := scheduler.New(log)

	maintenanceJob := reliability.NewDailyMaintenanceJob(databases, cfg.DataDir, log)
	if err := sched.AddJob("0 0 2 * * *", maintenanceJob); err != nil {
		log.Error().Err(err).Msg("Failed to register maintenance job")
	}

	if backupService != nil {
		backupJob := reliability.NewBackupJob(backupService, 30, log)
		if err := sched.AddJob("0 30 2 * * *", backupJob); err != nil {
			log.Error().Err(err).Msg("Failed to register backup job")
		}
	}

	sched.Start()

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or server failure
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	case err := <-serverErr:
		log.Error().Err(err).Msg("HTTP server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sched.Stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}

func mustOpenDB(log zerolog.Logger, cfg *config.Config, name string, profile database.DatabaseProfile) *database.DB {
	db, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, name+".db"),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		log.Fatal().Err(err).Str("database", name).Msg("Failed to open database")
	}
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Str("database", name).Msg("Failed to migrate database")
	}
	return db
}

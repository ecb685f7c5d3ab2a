package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"portal/internal/pkg/logger"
	"portal/internal/platform/config"
	"portal/internal/platform/database"
	"portal/internal/platform/repositories"
	"portal/internal/workers"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging, "worker"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions := repositories.NewSessionRepository(db)
	workers.Every(ctx, "session_sweep", cfg.Workers.SessionSweepInterval, func(ctx context.Context) error {
		_, err := workers.SweepSessions(ctx, sessions, time.Now())
		return err
	})
}

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"portal/internal/pkg/logger"
	"portal/internal/platform/config"
	"portal/internal/platform/database"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging, "migrate"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Str("database", cfg.Database.URL).Msg("migration completed successfully")
}

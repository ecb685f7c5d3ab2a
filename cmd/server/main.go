package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"portal/internal/api"
	"portal/internal/pkg/logger"
	"portal/internal/platform/config"
	"portal/internal/platform/database"
	"portal/internal/workers"
)

const rateLimitSweepInterval = 5 * time.Minute

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging, "server"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	app, err := api.NewApp(cfg, db)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      app.Handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		workers.Every(gctx, "rate_limit_sweep", rateLimitSweepInterval, func(context.Context) error {
			if n := app.RateLimiter.Sweep(); n > 0 {
				log.Debug().Int("buckets", n).Msg("idle rate limit buckets dropped")
			}
			return nil
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	stats := app.Dispatcher.Stats()
	log.Info().
		Uint64("sent", stats.Sent).
		Uint64("skipped", stats.Skipped).
		Uint64("rejected", stats.Rejected).
		Msg("server stopped")
}

package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StaleSessionStore deletes sessions that can no longer authenticate.
type StaleSessionStore interface {
	DeleteStale(ctx context.Context, cutoff int64) (int64, error)
}

// SweepSessions removes sessions that expired or were revoked before now.
func SweepSessions(ctx context.Context, sessions StaleSessionStore, now time.Time) (int64, error) {
	n, err := sessions.DeleteStale(ctx, now.Unix())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("sessions", n).Msg("stale sessions removed")
	}
	return n, nil
}

// Every runs job once immediately and then on each tick until ctx is done.
func Every(ctx context.Context, name string, interval time.Duration, job func(context.Context) error) {
	if interval <= 0 {
		log.Warn().Str("worker", name).Msg("worker disabled, no interval configured")
		return
	}

	run := func() {
		if err := job(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Str("worker", name).Msg("worker run failed")
		}
	}

	log.Info().Str("worker", name).Dur("interval", interval).Msg("worker started")
	run()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("worker", name).Msg("worker stopped")
			return
		case <-ticker.C:
			run()
		}
	}
}

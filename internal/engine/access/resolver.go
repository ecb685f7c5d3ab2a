package access

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"portal/internal/platform/config"
	"portal/internal/platform/models"
)

type ProfileLookup interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

// Resolver loads the profile behind an authenticated identity. A missing row
// is looked up again with exponential backoff, since provisioning may still
// be in flight.
type Resolver struct {
	profiles ProfileLookup
	attempts int
	delay    time.Duration
}

func NewResolver(profiles ProfileLookup, cfg config.AccessConfig) *Resolver {
	attempts := cfg.ProfileRetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Resolver{profiles: profiles, attempts: attempts, delay: cfg.ProfileRetryDelay}
}

// Resolve returns (nil, nil) when the profile is still absent after every attempt.
func (r *Resolver) Resolve(ctx context.Context, profileID string) (*models.Profile, error) {
	if profileID == "" {
		return nil, ErrUnauthenticated
	}

	for attempt := 0; ; attempt++ {
		p, err := r.profiles.GetByID(ctx, profileID)
		if err != nil {
			return nil, err
		}
		if p != nil || attempt+1 >= r.attempts {
			return p, nil
		}

		log.Debug().Str("profile_id", profileID).Int("attempt", attempt+1).Msg("profile not found yet, retrying")
		if err := sleep(ctx, r.backoff(attempt)); err != nil {
			return nil, err
		}
	}
}

func (r *Resolver) backoff(attempt int) time.Duration {
	return r.delay << attempt
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

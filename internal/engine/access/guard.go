package access

import (
	"context"

	"github.com/rs/zerolog/log"

	"portal/internal/platform/models"
)

type SessionRevoker interface {
	Revoke(ctx context.Context, id string) (bool, error)
}

// Subject is the authenticated caller as carried by its token.
type Subject struct {
	ProfileID string
	Email     string
	SessionID string
}

// Guard resolves the caller's profile, runs the gate and terminates the
// session on every denial, wrong role included.
type Guard struct {
	resolver *Resolver
	gate     *Gate
	sessions SessionRevoker
}

func NewGuard(resolver *Resolver, gate *Gate, sessions SessionRevoker) *Guard {
	return &Guard{resolver: resolver, gate: gate, sessions: sessions}
}

// Authorize returns the profile on Allow. A Retry decision re-resolves the
// profile on the resolver's backoff schedule and becomes a denial once the
// attempts run out.
func (g *Guard) Authorize(ctx context.Context, s Subject, required []models.Role) (*models.Profile, error) {
	var decision Decision
	for attempt := 0; attempt < g.resolver.attempts; attempt++ {
		p, err := g.resolver.Resolve(ctx, s.ProfileID)
		if err != nil {
			return nil, err
		}

		decision = g.gate.Evaluate(p, s.Email, required)
		switch decision.Outcome {
		case Allow:
			return p, nil
		case Deny:
			return nil, g.deny(ctx, s, decision.Reason)
		}

		if attempt+1 < g.resolver.attempts {
			if err := sleep(ctx, g.resolver.backoff(attempt)); err != nil {
				return nil, err
			}
		}
	}
	return nil, g.deny(ctx, s, decision.Reason)
}

func (g *Guard) deny(ctx context.Context, s Subject, reason string) error {
	revoked, err := g.sessions.Revoke(ctx, s.SessionID)
	if err != nil {
		return err
	}
	log.Info().
		Str("profile_id", s.ProfileID).
		Str("session_id", s.SessionID).
		Str("reason", reason).
		Bool("revoked", revoked).
		Msg("access denied, session terminated")
	return &DeniedError{Reason: reason}
}

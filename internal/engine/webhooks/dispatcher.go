package webhooks

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Result reports how a dispatch ended when it did not fail.
type Result struct {
	Skipped bool `json:"skipped"`
}

// Stats counts dispatch outcomes since start.
type Stats struct {
	Sent     uint64 `json:"sent"`
	Skipped  uint64 `json:"skipped"`
	Rejected uint64 `json:"rejected"`
}

// Dispatcher resolves a payload's channel and forwards it.
type Dispatcher struct {
	registry *Registry
	client   *Client
	now      func() time.Time

	sent     atomic.Uint64
	skipped  atomic.Uint64
	rejected atomic.Uint64
}

func NewDispatcher(registry *Registry, client *Client) *Dispatcher {
	return &Dispatcher{registry: registry, client: client, now: time.Now}
}

// Dispatch sends p to its channel's URL. An unconfigured channel is a
// successful no-op with Skipped set and no outbound call.
func (d *Dispatcher) Dispatch(ctx context.Context, p Payload) (Result, error) {
	ch := p.Channel()
	url, err := d.registry.Get(ctx, ch)
	if err != nil {
		return Result{}, err
	}
	if url == "" {
		d.skipped.Add(1)
		log.Debug().Str("channel", string(ch)).Msg("webhook not configured, notification skipped")
		return Result{Skipped: true}, nil
	}
	return d.send(ctx, ch, url, p)
}

// DispatchTo sends p to ch even if p would normally route elsewhere.
// It fails with ErrInvalidURL when ch has no URL.
func (d *Dispatcher) DispatchTo(ctx context.Context, ch Channel, p Payload) (Result, error) {
	url, err := d.registry.Get(ctx, ch)
	if err != nil {
		return Result{}, err
	}
	if url == "" {
		return Result{}, ErrInvalidURL
	}
	return d.send(ctx, ch, url, p)
}

func (d *Dispatcher) send(ctx context.Context, ch Channel, url string, p Payload) (Result, error) {
	if err := d.client.Send(ctx, url, BuildEmbed(p, d.now())); err != nil {
		d.rejected.Add(1)
		log.Warn().Err(err).Str("channel", string(ch)).Msg("webhook relay rejected notification")
		return Result{}, err
	}
	d.sent.Add(1)
	log.Info().Str("channel", string(ch)).Msg("notification relayed")
	return Result{}, nil
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Sent:     d.sent.Load(),
		Skipped:  d.skipped.Load(),
		Rejected: d.rejected.Load(),
	}
}

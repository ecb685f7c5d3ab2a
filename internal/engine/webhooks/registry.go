package webhooks

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"portal/internal/platform/models"
)

// SettingsStore is the key/value table backing the registry.
type SettingsStore interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, key, value string) error
}

// Registry maps channels to destination URLs stored in settings.
type Registry struct {
	store SettingsStore
}

func NewRegistry(store SettingsStore) *Registry {
	return &Registry{store: store}
}

// Get returns the configured URL for ch, or "" when none is set.
func (r *Registry) Get(ctx context.Context, ch Channel) (string, error) {
	s, err := r.store.Get(ctx, ch.SettingKey())
	if err != nil {
		return "", fmt.Errorf("read %s webhook: %w", ch, err)
	}
	if s == nil {
		return "", nil
	}
	return strings.TrimSpace(s.Value), nil
}

// Set stores rawURL for ch. An empty value clears the channel.
func (r *Registry) Set(ctx context.Context, ch Channel, rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if err := ValidateURL(rawURL); err != nil {
		return err
	}
	if err := r.store.Upsert(ctx, ch.SettingKey(), rawURL); err != nil {
		return fmt.Errorf("write %s webhook: %w", ch, err)
	}
	return nil
}

// All returns the URL of every channel, including empty ones.
func (r *Registry) All(ctx context.Context) (map[Channel]string, error) {
	out := make(map[Channel]string, len(Channels()))
	for _, ch := range Channels() {
		u, err := r.Get(ctx, ch)
		if err != nil {
			return nil, err
		}
		out[ch] = u
	}
	return out, nil
}

// ValidateURL accepts "" or an absolute http(s) URL with a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return nil
}

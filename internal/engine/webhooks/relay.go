package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"portal/internal/platform/config"
)

const maxErrorBody = 512

// Client posts embeds to a chat webhook under a fixed bot identity.
type Client struct {
	http      *http.Client
	username  string
	avatarURL string
}

func NewClient(cfg config.RelayConfig) *Client {
	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		username:  cfg.Username,
		avatarURL: cfg.AvatarURL,
	}
}

// Send posts e to url. Anything but a 2xx answer is ErrRelayRejected.
func (c *Client) Send(ctx context.Context, url string, e Embed) error {
	body, err := json.Marshal(Message{
		Username:  c.username,
		AvatarURL: c.avatarURL,
		Embeds:    []Embed{e},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRelayRejected, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRelayRejected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: HTTP %d: %s", ErrRelayRejected, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

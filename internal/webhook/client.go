// Package webhook triggers appliance actions through an IFTTT-style maker
// webhook relay.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single relay call.
const DefaultTimeout = 5 * time.Second

// Client posts commands to the relay.
type Client struct {
	baseURL    string
	key        string
	events     map[string]string
	httpClient *http.Client
}

// NewClient creates a relay client. events maps a device name to its relay event name.
func NewClient(baseURL, key string, events map[string]string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		key:        key,
		events:     events,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type payload struct {
	Value1 string `json:"value1"`
}

// Trigger sends command to the event configured for device.
func (c *Client) Trigger(ctx context.Context, device, command string) error {
	event, ok := c.events[device]
	if !ok || event == "" {
		return fmt.Errorf("no relay event configured for device %q", device)
	}

	body, err := json.Marshal(payload{Value1: command})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/trigger/%s/json/with/key/%s", c.baseURL, url.PathEscape(event), url.PathEscape(c.key))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// *url.Error embeds the endpoint, and the endpoint embeds the key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("relay event %s: %s", event, c.redact(err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("relay event %s returned %d: %s", event, resp.StatusCode, c.redact(string(respBody)))
	}

	log.Debug().
		Str("device", device).
		Str("event", event).
		Str("command", command).
		Msg("Webhook relay triggered")

	return nil
}

func (c *Client) redact(s string) string {
	if c.key == "" {
		return s
	}
	return strings.ReplaceAll(s, c.key, "[redacted]")
}

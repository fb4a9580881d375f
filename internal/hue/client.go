// Package hue is a minimal Hue bridge CLIP v2 client covering the calls the
// controller needs: grouped light updates, scene recall and catalog discovery.
//
// The bridge uses a self-signed certificate, so TLS verification is disabled.
package hue

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Client talks to a single Hue bridge.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Options configures a Client.
type Options struct {
	Timeout      time.Duration
	RateLimitRPS float64
	// BaseURL overrides https://<address>/clip/v2, used in tests.
	BaseURL string
}

// NewClient creates a client for the bridge at address.
func NewClient(address, token string, opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 10
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s/clip/v2", address)
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}

	burst := int(opts.RateLimitRPS)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst),
	}
}

// Close closes idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Connect tests connectivity to the bridge.
func (c *Client) Connect(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodGet, "resource/bridge", nil); err != nil {
		return fmt.Errorf("failed to connect to Hue bridge: %w", err)
	}
	return nil
}

// SetGroupedLight turns a grouped light on with the given brightness and color.
// It returns the bridge's decoded response body.
func (c *Client) SetGroupedLight(ctx context.Context, groupID string, update GroupedLightUpdate) (map[string]any, error) {
	return c.put(ctx, "resource/grouped_light/"+groupID, update)
}

// RecallScene activates a scene.
func (c *Client) RecallScene(ctx context.Context, sceneID string) (map[string]any, error) {
	return c.put(ctx, "resource/scene/"+sceneID, SceneRecall{Recall: Recall{Action: "active"}})
}

// GetScenes returns all scenes.
func (c *Client) GetScenes(ctx context.Context) ([]Scene, error) {
	var scenes []Scene
	if err := c.list(ctx, "resource/scene", &scenes); err != nil {
		return nil, err
	}
	return scenes, nil
}

// GetRooms returns all rooms.
func (c *Client) GetRooms(ctx context.Context) ([]Room, error) {
	var rooms []Room
	if err := c.list(ctx, "resource/room", &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *Client) put(ctx context.Context, path string, payload any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	respBody, err := c.do(ctx, http.MethodPut, path, body)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, fmt.Errorf("failed to decode bridge response: %w", err)
		}
	}

	log.Debug().Str("path", path).Msg("Bridge command sent")
	return result, nil
}

func (c *Client) list(ctx context.Context, path string, out any) error {
	respBody, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	envelope := struct {
		Data any `json:"data"`
	}{Data: out}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// do performs a rate-limited request and returns the body of a 2xx response.
// Non-2xx responses become errors carrying the upstream body text.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("hue-application-key", c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("bridge returned %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

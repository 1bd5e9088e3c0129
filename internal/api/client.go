package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/angristan/hue-panel/internal/config"
	"github.com/angristan/hue-panel/internal/logging"
)

// maxResponseSize bounds how much of a response body is read
const maxResponseSize = 4 << 20

// ConfigSource provides the bridge address and credential. It is consulted on
// every request so a new pairing takes effect immediately.
type ConfigSource interface {
	Load() config.BridgeConfig
}

// StaticConfig is a ConfigSource that never changes
type StaticConfig config.BridgeConfig

func (s StaticConfig) Load() config.BridgeConfig {
	return config.BridgeConfig(s)
}

// Client talks to a Hue bridge over the v1 REST API. It holds no state
// beyond its configuration source and HTTP client, and never retries.
type Client struct {
	source ConfigSource
	http   *http.Client
	scheme string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for all requests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewHTTPClient returns the pooled HTTP client shared by every bridge call
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 4 * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   2 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        16,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     60 * time.Second,
		},
	}
}

// NewClient creates a bridge client reading its configuration from source
func NewClient(source ConfigSource, opts ...Option) *Client {
	c := &Client{
		source: source,
		scheme: "http",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = NewHTTPClient()
	}
	return c
}

// resourceURL builds the absolute URL for path under the configured user
func (c *Client) resourceURL(path string) (string, string, error) {
	cfg := c.source.Load()
	if !cfg.Configured() {
		return "", "", ErrConfigMissing
	}
	return fmt.Sprintf("%s://%s/api/%s%s", c.scheme, cfg.BridgeIP, cfg.Username, path), cfg.BridgeIP, nil
}

// doRequest performs a request and returns the status and body
func (c *Client) doRequest(ctx context.Context, method, url, host string, body any) (status int, data []byte, err error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, ClassifyNetworkError(err, method, host)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", cerr)
		}
	}()

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, ClassifyNetworkError(err, method, host)
	}

	logging.Debug("Bridge request",
		zap.String("method", method),
		zap.String("host", host),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp.StatusCode, data, nil
}

// getResource fetches path under the configured user and decodes it as T
func getResource[T any](ctx context.Context, c *Client, path string) (T, error) {
	var zero T
	url, host, err := c.resourceURL(path)
	if err != nil {
		return zero, err
	}
	status, body, err := c.doRequest(ctx, http.MethodGet, url, host, nil)
	if err != nil {
		return zero, err
	}
	return decode[T](path, status, body)
}

// putResource sends cmd to path and returns the bridge's success payload
func (c *Client) putResource(ctx context.Context, path string, cmd any) (json.RawMessage, error) {
	url, host, err := c.resourceURL(path)
	if err != nil {
		return nil, err
	}
	status, body, err := c.doRequest(ctx, http.MethodPut, url, host, cmd)
	if err != nil {
		return nil, err
	}
	return decode[json.RawMessage](path, status, body)
}

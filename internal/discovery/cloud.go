package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultCloudURL is the vendor's bridge lookup service
const DefaultCloudURL = "https://discovery.meethue.com/"

// Cloud asks the vendor's discovery service which bridges share our public
// address.
type Cloud struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

type cloudEntry struct {
	ID                string `json:"id"`
	InternalIPAddress string `json:"internalipaddress"`
	Port              int    `json:"port"`
}

func (c *Cloud) Name() string { return "cloud" }

func (c *Cloud) Discover(ctx context.Context) (ips []string, err error) {
	url := c.URL
	if url == "" {
		url = DefaultCloudURL
	}
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloud discovery request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cloud discovery returned status %d", resp.StatusCode)
	}

	var entries []cloudEntry
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	for _, e := range entries {
		if e.InternalIPAddress != "" {
			ips = append(ips, e.InternalIPAddress)
		}
	}
	return ips, nil
}

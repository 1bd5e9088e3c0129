package discovery

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// fallbackPrefixes are swept when the local /24 cannot be determined
var fallbackPrefixes = []string{"192.168.1", "192.168.0", "10.0.0"}

// descriptionSignatures identify a bridge's description.xml
var descriptionSignatures = []string{"ipbridge", "philips hue", "hue bridge"}

// Sweep probes every host of the local /24 for a bridge description
type Sweep struct {
	// Concurrency defaults to 32 probes in flight
	Concurrency int
	// ProbeTimeout defaults to 500ms per host
	ProbeTimeout time.Duration
	Client       *http.Client
	// Prefixes returns the /24 prefixes ("a.b.c") to sweep
	Prefixes func() []string
	// URL returns the probe URL for an address
	URL func(ip string) string
}

func (s *Sweep) Name() string { return "sweep" }

func (s *Sweep) Discover(ctx context.Context) ([]string, error) {
	limit := s.Concurrency
	if limit <= 0 {
		limit = 32
	}
	timeout := s.ProbeTimeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	client := s.Client
	if client == nil {
		client = &http.Client{
			Timeout: timeout,
			// Probes never reuse connections
			Transport: &http.Transport{DisableKeepAlives: true},
		}
	}
	prefixes := s.Prefixes
	if prefixes == nil {
		prefixes = LocalPrefixes
	}
	probeURL := s.URL
	if probeURL == nil {
		probeURL = func(ip string) string { return "http://" + ip + "/description.xml" }
	}

	var (
		mu   sync.Mutex
		hits []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, prefix := range prefixes() {
		for _, ip := range expandPrefix(prefix) {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if probe(gctx, client, timeout, probeURL(ip)) {
					mu.Lock()
					hits = append(hits, ip)
					mu.Unlock()
				}
				return nil
			})
		}
	}
	_ = g.Wait()
	return hits, nil
}

func probe(ctx context.Context, client *http.Client, timeout time.Duration, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.Header.Get("hue-bridgeid") != "" ||
		strings.Contains(strings.ToLower(resp.Header.Get("Server")), "ipbridge") {
		return true
	}
	if resp.StatusCode != http.StatusOK {
		return false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<10))
	if err != nil {
		return false
	}
	lower := strings.ToLower(string(body))
	for _, sig := range descriptionSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

// LocalPrefixes returns the /24 of the interface used for outbound traffic,
// or the common private prefixes when it cannot be determined.
func LocalPrefixes() []string {
	if prefix, err := outboundPrefix(); err == nil {
		return []string{prefix}
	}
	return append([]string(nil), fallbackPrefixes...)
}

// outboundPrefix finds the local address the kernel would route public
// traffic from. Dialing UDP sends no packets.
func outboundPrefix() (string, error) {
	conn, err := net.Dial("udp4", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", fmt.Errorf("unexpected local address %v", conn.LocalAddr())
	}
	ip := addr.IP.To4()
	if ip == nil || ip.IsLoopback() || ip.IsUnspecified() {
		return "", fmt.Errorf("no usable IPv4 address")
	}
	return fmt.Sprintf("%d.%d.%d", ip[0], ip[1], ip[2]), nil
}

func expandPrefix(prefix string) []string {
	ips := make([]string, 0, 254)
	for i := 1; i <= 254; i++ {
		ips = append(ips, fmt.Sprintf("%s.%d", prefix, i))
	}
	return ips
}

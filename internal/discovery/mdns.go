package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/mdns"
)

// DefaultService is the mDNS service type bridges register
const DefaultService = "_hue._tcp"

// MDNS browses for the bridge's mDNS service
type MDNS struct {
	Service string
	Timeout time.Duration
}

func (m *MDNS) Name() string { return "mdns" }

func (m *MDNS) Discover(ctx context.Context) ([]string, error) {
	service := m.Service
	if service == "" {
		service = DefaultService
	}
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if d, ok := ctx.Deadline(); ok && time.Until(d) < timeout {
		timeout = time.Until(d)
	}
	if timeout <= 0 {
		return nil, ctx.Err()
	}

	entries := make(chan *mdns.ServiceEntry, 16)
	done := make(chan []string)
	go func() {
		var ips []string
		for entry := range entries {
			if ip := entryAddr(entry); ip != "" {
				ips = append(ips, ip)
			}
		}
		done <- ips
	}()

	params := mdns.DefaultParams(service)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	err := mdns.Query(params)
	close(entries)
	ips := <-done

	if err != nil {
		return ips, fmt.Errorf("mDNS query failed: %w", err)
	}
	return ips, nil
}

func entryAddr(e *mdns.ServiceEntry) string {
	if e == nil || e.AddrV4 == nil {
		return ""
	}
	return e.AddrV4.String()
}

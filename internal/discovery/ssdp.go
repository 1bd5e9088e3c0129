package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// SSDPAddr is the UPnP multicast group
const SSDPAddr = "239.255.255.250:1900"

const ssdpSearch = "M-SEARCH * HTTP/1.1\r\n" +
	"HOST: 239.255.255.250:1900\r\n" +
	"MAN: \"ssdp:discover\"\r\n" +
	"MX: 1\r\n" +
	"ST: urn:schemas-upnp-org:device:basic:1\r\n" +
	"\r\n"

// ssdpSignatures identify a Hue bridge in a search response
var ssdpSignatures = []string{"ipbridge", "hue-bridgeid"}

// SSDP multicasts an M-SEARCH and collects the addresses of responders that
// identify as Hue bridges.
type SSDP struct {
	// Target defaults to SSDPAddr
	Target string
	// Attempts defaults to 3
	Attempts int
	// AttemptTimeout defaults to one second
	AttemptTimeout time.Duration
}

func (s *SSDP) Name() string { return "ssdp" }

func (s *SSDP) Discover(ctx context.Context) ([]string, error) {
	target := s.Target
	if target == "" {
		target = SSDPAddr
	}
	attempts := s.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	wait := s.AttemptTimeout
	if wait <= 0 {
		wait = time.Second
	}

	addr, err := net.ResolveUDPAddr("udp4", target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", target, err)
	}

	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, fmt.Errorf("failed to open UDP socket: %w", err)
	}
	defer conn.Close()

	seen := make(map[string]struct{})
	var ips []string
	buf := make([]byte, 4096)

	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			break
		}
		if _, err := conn.WriteTo([]byte(ssdpSearch), addr); err != nil {
			return ips, fmt.Errorf("failed to send M-SEARCH: %w", err)
		}

		deadline := time.Now().Add(wait)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		if err := conn.SetReadDeadline(deadline); err != nil {
			return ips, err
		}

		for {
			n, from, err := conn.ReadFrom(buf)
			if err != nil {
				var ne net.Error
				if errors.As(err, &ne) && ne.Timeout() {
					break
				}
				return ips, fmt.Errorf("failed to read SSDP response: %w", err)
			}
			if !isBridgeResponse(string(buf[:n])) {
				continue
			}
			udp, ok := from.(*net.UDPAddr)
			if !ok {
				continue
			}
			ip := udp.IP.String()
			if _, dup := seen[ip]; !dup {
				seen[ip] = struct{}{}
				ips = append(ips, ip)
			}
		}
	}
	return ips, nil
}

func isBridgeResponse(msg string) bool {
	lower := strings.ToLower(msg)
	for _, sig := range ssdpSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

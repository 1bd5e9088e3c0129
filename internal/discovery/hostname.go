package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"

	"github.com/angristan/hue-panel/internal/logging"
)

const (
	// DefaultBridgeHostname is the name bridges advertise over mDNS
	DefaultBridgeHostname = "philips-hue.local"
	mdnsAddr              = "224.0.0.251:5353"
)

// Hostname resolves the bridge's well-known .local name, first with the
// system resolver and then with a direct mDNS query.
type Hostname struct {
	// Host defaults to DefaultBridgeHostname
	Host string
	// Timeout bounds both lookups together. Defaults to 1.5s
	Timeout time.Duration
	// LookupHost defaults to net.DefaultResolver.LookupHost
	LookupHost func(ctx context.Context, host string) ([]string, error)
	// MDNSAddr is where the fallback query is sent. Defaults to the mDNS
	// multicast group.
	MDNSAddr string
}

func (h *Hostname) Name() string { return "hostname" }

func (h *Hostname) Discover(ctx context.Context) ([]string, error) {
	host := h.Host
	if host == "" {
		host = DefaultBridgeHostname
	}
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	lookup := h.LookupHost
	if lookup == nil {
		lookup = net.DefaultResolver.LookupHost
	}

	resolveCtx, resolveCancel := context.WithTimeout(ctx, timeout/2)
	addrs, err := lookup(resolveCtx, host)
	resolveCancel()
	if err == nil {
		for _, a := range addrs {
			if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
				return []string{ip.String()}, nil
			}
		}
	} else {
		logging.Debug("System resolver failed, trying mDNS", zap.String("host", host), zap.Error(err))
	}

	ip, err := h.queryMDNS(ctx, host)
	if err != nil {
		return nil, err
	}
	return []string{ip}, nil
}

// queryMDNS sends a single A query for host and waits for the first answer
func (h *Hostname) queryMDNS(ctx context.Context, host string) (string, error) {
	target := h.MDNSAddr
	if target == "" {
		target = mdnsAddr
	}
	addr, err := net.ResolveUDPAddr("udp4", target)
	if err != nil {
		return "", err
	}

	fqdn := dns.Fqdn(host)
	msg := new(dns.Msg)
	msg.SetQuestion(fqdn, dns.TypeA)
	msg.RecursionDesired = false
	// Ask for a unicast reply so it reaches our ephemeral port
	msg.Question[0].Qclass |= 1 << 15

	packed, err := msg.Pack()
	if err != nil {
		return "", fmt.Errorf("failed to pack mDNS query: %w", err)
	}

	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return "", fmt.Errorf("failed to open UDP socket: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetReadDeadline(deadline); err != nil {
			return "", err
		}
	}
	if _, err := conn.WriteTo(packed, addr); err != nil {
		return "", fmt.Errorf("failed to send mDNS query: %w", err)
	}

	buf := make([]byte, 9000)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return "", fmt.Errorf("no mDNS answer for %s", host)
			}
			return "", err
		}

		var resp dns.Msg
		if err := resp.Unpack(buf[:n]); err != nil || !resp.Response {
			continue
		}
		for _, rr := range append(resp.Answer, resp.Extra...) {
			if a, ok := rr.(*dns.A); ok && strings.EqualFold(a.Hdr.Name, fqdn) {
				return a.A.String(), nil
			}
		}
	}
}

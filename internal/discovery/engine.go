// Package discovery finds Hue bridges on the local network.
//
// Several independent strategies run in parallel and their results are
// merged. A strategy that fails contributes nothing; discovery as a whole
// never returns an error.
package discovery

import (
	"context"
	"net/http"
	"net/netip"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/angristan/hue-panel/internal/logging"
)

// Strategy is one way of locating bridges
type Strategy interface {
	Name() string
	Discover(ctx context.Context) ([]string, error)
}

// Engine runs discovery strategies and merges their results
type Engine struct {
	cloud      Strategy
	strategies []Strategy
	timeout    time.Duration
}

// Option configures an Engine
type Option func(*Engine)

// WithStrategies replaces the local network strategies
func WithStrategies(strategies ...Strategy) Option {
	return func(e *Engine) {
		e.strategies = strategies
	}
}

// WithCloud replaces the cloud strategy. Nil disables it
func WithCloud(s Strategy) Option {
	return func(e *Engine) {
		e.cloud = s
	}
}

// WithTimeout bounds a whole discovery run
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// NewEngine returns an engine with the default strategies. hc is used for
// the cloud lookup.
func NewEngine(hc *http.Client, opts ...Option) *Engine {
	e := &Engine{
		cloud: &Cloud{Client: hc},
		strategies: []Strategy{
			&SSDP{},
			&Hostname{},
			&MDNS{},
			&Sweep{},
		},
		timeout: 20 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Discover returns the sorted, de-duplicated IPv4 addresses found by every
// strategy. The cloud lookup is skipped when skipCloud is set.
func (e *Engine) Discover(ctx context.Context, skipCloud bool) []string {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	strategies := append([]Strategy(nil), e.strategies...)
	if e.cloud != nil && !skipCloud {
		strategies = append(strategies, e.cloud)
	}

	var (
		mu    sync.Mutex
		found = make(map[netip.Addr]struct{})
		wg    sync.WaitGroup
	)
	for _, s := range strategies {
		wg.Add(1)
		go func(s Strategy) {
			defer wg.Done()
			start := time.Now()
			// A failing strategy keeps whatever it found before the error
			ips, err := s.Discover(ctx)
			if err != nil {
				logging.Debug("Discovery strategy failed",
					zap.String("strategy", s.Name()),
					zap.Strings("partial", ips),
					zap.Error(err))
			} else {
				logging.Debug("Discovery strategy finished",
					zap.String("strategy", s.Name()),
					zap.Strings("found", ips),
					zap.Duration("elapsed", time.Since(start)))
			}

			mu.Lock()
			defer mu.Unlock()
			for _, ip := range ips {
				if addr, ok := parseIPv4(ip); ok {
					found[addr] = struct{}{}
				}
			}
		}(s)
	}
	wg.Wait()

	addrs := make([]netip.Addr, 0, len(found))
	for addr := range found {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })

	out := make([]string, len(addrs))
	for i, addr := range addrs {
		out[i] = addr.String()
	}
	logging.Info("Discovery complete", zap.Strings("bridges", out))
	return out
}

func parseIPv4(s string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	addr = addr.Unmap()
	if !addr.Is4() || addr.IsUnspecified() {
		return netip.Addr{}, false
	}
	return addr, true
}

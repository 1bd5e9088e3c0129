package discovery

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeStrategy struct {
	name  string
	ips   []string
	err   error
	calls atomic.Int32
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Discover(ctx context.Context) ([]string, error) {
	f.calls.Add(1)
	return f.ips, f.err
}

func TestEngineUnion(t *testing.T) {
	a := &fakeStrategy{name: "a", ips: []string{"10.0.0.5"}}
	b := &fakeStrategy{name: "b", ips: []string{"10.0.0.5", "10.0.0.9"}}
	c := &fakeStrategy{name: "c", err: errors.New("boom")}

	e := NewEngine(nil, WithStrategies(a, b, c), WithCloud(nil))
	got := e.Discover(context.Background(), false)

	assert.Equal(t, []string{"10.0.0.5", "10.0.0.9"}, got)
}

func TestEngineNumericSort(t *testing.T) {
	a := &fakeStrategy{name: "a", ips: []string{"192.168.1.20", "192.168.1.3", "10.0.0.1"}}

	e := NewEngine(nil, WithStrategies(a), WithCloud(nil))
	got := e.Discover(context.Background(), false)

	assert.Equal(t, []string{"10.0.0.1", "192.168.1.3", "192.168.1.20"}, got)
}

func TestEngineDropsInvalidAddresses(t *testing.T) {
	a := &fakeStrategy{name: "a", ips: []string{"bridge.local", "fe80::1", "", "0.0.0.0", "10.0.0.7"}}

	e := NewEngine(nil, WithStrategies(a), WithCloud(nil))
	assert.Equal(t, []string{"10.0.0.7"}, e.Discover(context.Background(), false))
}

func TestEngineSkipCloud(t *testing.T) {
	local := &fakeStrategy{name: "local", ips: []string{"10.0.0.2"}}
	cloud := &fakeStrategy{name: "cloud", ips: []string{"10.0.0.3"}}

	e := NewEngine(nil, WithStrategies(local), WithCloud(cloud))

	assert.Equal(t, []string{"10.0.0.2"}, e.Discover(context.Background(), true))
	assert.Zero(t, cloud.calls.Load())

	assert.Equal(t, []string{"10.0.0.2", "10.0.0.3"}, e.Discover(context.Background(), false))
	assert.Equal(t, int32(1), cloud.calls.Load())
}

func TestEngineNothingFound(t *testing.T) {
	a := &fakeStrategy{name: "a", err: errors.New("offline")}

	e := NewEngine(nil, WithStrategies(a), WithCloud(nil))
	assert.Empty(t, e.Discover(context.Background(), false))
}

func TestEngineKeepsPartialResults(t *testing.T) {
	// e.g. SSDP heard a bridge on the first attempt, then the socket failed
	ssdp := &fakeStrategy{name: "ssdp", ips: []string{"10.0.0.8"}, err: errors.New("read: network is unreachable")}
	other := &fakeStrategy{name: "other", ips: []string{"10.0.0.4"}}

	e := NewEngine(nil, WithStrategies(ssdp, other), WithCloud(nil))
	assert.Equal(t, []string{"10.0.0.4", "10.0.0.8"}, e.Discover(context.Background(), false))
}

package screens

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angristan/hue-panel/internal/api"
	"github.com/angristan/hue-panel/internal/config"
	"github.com/angristan/hue-panel/internal/tui/messages"
)

type fakeDiscoverer struct {
	ips []string
}

func (f fakeDiscoverer) Discover(ctx context.Context, skipCloud bool) []string {
	return f.ips
}

// fakePairer fails with PairingRequired until pressAfter attempts were made
type fakePairer struct {
	mu         sync.Mutex
	attempts   int
	pressAfter int
	err        error
}

func (f *fakePairer) CreateUser(ctx context.Context, bridgeIP, deviceType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.err != nil {
		return "", f.err
	}
	if f.attempts <= f.pressAfter {
		return "", api.ErrPairingRequired
	}
	return "minted-user", nil
}

type fakeSaver struct {
	saved []config.BridgeConfig
	err   error
}

func (f *fakeSaver) Save(cfg config.BridgeConfig) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, cfg)
	return nil
}

func discovered(t *testing.T, m SetupModel) SetupModel {
	t.Helper()
	msg := m.discoverCmd()()
	m, _ = m.Update(msg)
	require.Equal(t, StateBridgeList, m.State())
	return m
}

// step runs cmd and feeds the single resulting message back into m
func step(t *testing.T, m SetupModel, cmd tea.Cmd) (SetupModel, tea.Cmd) {
	t.Helper()
	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	return m.Update(msgs[0])
}

func TestSetupModel_DiscoveryListsBridges(t *testing.T) {
	m := NewSetupModel(fakeDiscoverer{ips: []string{"192.168.1.10", "192.168.1.23"}}, &fakePairer{}, nil)
	assert.Equal(t, StateDiscovering, m.State())

	m = discovered(t, m)
	assert.Equal(t, []string{"192.168.1.10", "192.168.1.23"}, m.Bridges())
	assert.Contains(t, m.View(), "192.168.1.23")
}

func TestSetupModel_NothingFound(t *testing.T) {
	m := discovered(t, NewSetupModel(fakeDiscoverer{}, &fakePairer{}, nil))

	assert.Contains(t, m.View(), "No bridge found.")
	assert.Contains(t, m.View(), "Enter IP manually")
}

func TestSetupModel_PairingRetriesUntilLinkPressed(t *testing.T) {
	pairer := &fakePairer{pressAfter: 2}
	saver := &fakeSaver{}
	m := NewSetupModel(fakeDiscoverer{ips: []string{"10.0.0.5"}}, pairer, saver)
	m.SetPairTiming(time.Minute, time.Millisecond)
	m = discovered(t, m)

	m, cmd := m.Update(key("enter"))
	assert.Equal(t, StatePairing, m.State())

	// attempt 1 fails, a retry is scheduled
	m, cmd = step(t, m, cmd)
	assert.Equal(t, StatePairing, m.State())
	// retry tick
	m, cmd = step(t, m, cmd)
	// attempt 2 fails
	m, cmd = step(t, m, cmd)
	m, cmd = step(t, m, cmd)
	// attempt 3 succeeds
	m, cmd = step(t, m, cmd)

	assert.Equal(t, StateSuccess, m.State())
	assert.Equal(t, 3, pairer.attempts)
	require.Len(t, saver.saved, 1)
	assert.Equal(t, config.BridgeConfig{BridgeIP: "10.0.0.5", Username: "minted-user"}, saver.saved[0])

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ConfiguredMsg{Config: saver.saved[0]}, cmd())
}

func TestSetupModel_PairingGivesUp(t *testing.T) {
	m := NewSetupModel(fakeDiscoverer{ips: []string{"10.0.0.5"}}, &fakePairer{pressAfter: 100}, &fakeSaver{})
	now := time.Now()
	m.now = func() time.Time { return now }
	m = discovered(t, m)

	m, cmd := m.Update(key("enter"))
	now = now.Add(DefaultPairWindow + time.Second)
	m, _ = step(t, m, cmd)

	assert.Equal(t, StateError, m.State())
	assert.Contains(t, m.View(), "Press the link button on the bridge and retry")
}

func TestSetupModel_PairingOtherErrorStops(t *testing.T) {
	pairer := &fakePairer{err: &api.NetworkError{Kind: api.KindNetworkUnreachable, Op: "pair", Host: "10.0.0.5", Err: errors.New("connection refused")}}
	m := discovered(t, NewSetupModel(fakeDiscoverer{ips: []string{"10.0.0.5"}}, pairer, &fakeSaver{}))

	m, cmd := m.Update(key("enter"))
	m, next := step(t, m, cmd)

	assert.Equal(t, StateError, m.State())
	assert.Nil(t, next, "no retry for errors other than PairingRequired")
	assert.Equal(t, 1, pairer.attempts)
}

func TestSetupModel_ManualIPAndUsername(t *testing.T) {
	saver := &fakeSaver{}
	m := discovered(t, NewSetupModel(fakeDiscoverer{}, &fakePairer{pressAfter: 100}, saver))

	// The manual entry row is selected when nothing was found
	m, _ = m.Update(key("enter"))
	require.Equal(t, StateManualIP, m.State())
	m, _ = m.Update(key("10.0.0.7"))
	m, _ = m.Update(key("enter"))
	require.Equal(t, StatePairing, m.State())

	m, _ = m.Update(key("u"))
	require.Equal(t, StateManualUsername, m.State())
	m, _ = m.Update(key("known-user"))
	m, cmd := m.Update(key("enter"))

	assert.Equal(t, StateSuccess, m.State())
	require.Len(t, saver.saved, 1)
	assert.Equal(t, config.BridgeConfig{BridgeIP: "10.0.0.7", Username: "known-user"}, saver.saved[0])
	require.NotNil(t, cmd)
	assert.IsType(t, messages.ConfiguredMsg{}, cmd())
}

func TestSetupModel_SaveFailure(t *testing.T) {
	saver := &fakeSaver{err: &config.PersistenceError{Path: "/ro/config.json", Err: errors.New("read-only file system")}}
	m := discovered(t, NewSetupModel(fakeDiscoverer{ips: []string{"10.0.0.5"}}, &fakePairer{}, saver))

	m, cmd := m.Update(key("enter"))
	m, next := step(t, m, cmd)

	assert.Equal(t, StateError, m.State())
	assert.Nil(t, next)
	assert.Contains(t, m.View(), "Could not save settings: read-only file system")
}

func TestSetupModel_LateResultIgnored(t *testing.T) {
	m := discovered(t, NewSetupModel(fakeDiscoverer{ips: []string{"10.0.0.5"}}, &fakePairer{}, &fakeSaver{}))

	m, cmd := m.Update(key("enter"))
	m, _ = m.Update(key("esc"))
	require.Equal(t, StateBridgeList, m.State())

	m, _ = step(t, m, cmd)
	assert.Equal(t, StateBridgeList, m.State(), "cancelled pairing must not complete")
}

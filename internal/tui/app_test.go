package tui

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angristan/hue-panel/internal/api"
	"github.com/angristan/hue-panel/internal/config"
	"github.com/angristan/hue-panel/internal/coordinator"
	"github.com/angristan/hue-panel/internal/emulator"
	"github.com/angristan/hue-panel/internal/models"
	"github.com/angristan/hue-panel/internal/tui/messages"
)

func newDemoModel(t *testing.T, cfg config.BridgeConfig) (Model, *emulator.Bridge, *coordinator.Coordinator) {
	t.Helper()
	bridge := emulator.New(emulator.WithDemoData(), emulator.WithUser("demo"))
	srv := httptest.NewServer(bridge.Handler())
	t.Cleanup(srv.Close)

	if cfg.BridgeIP == "" && cfg.Username != "" {
		cfg.BridgeIP = strings.TrimPrefix(srv.URL, "http://")
	}
	client := api.NewClient(api.StaticConfig(cfg), api.WithHTTPClient(srv.Client()))
	coord := coordinator.New()
	t.Cleanup(coord.Close)

	model := NewModel(Options{
		Bridge:      client,
		Config:      api.StaticConfig(cfg),
		Coordinator: coord,
	})
	next, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 60})
	return next.(Model), bridge, coord
}

// pump delivers coordinator events to the model until one of kind arrives
func pump(t *testing.T, m Model, coord *coordinator.Coordinator, kind coordinator.EventKind) Model {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-coord.Events():
			next, _ := m.Update(messages.CoordinatorEventMsg{Event: ev})
			m = next.(Model)
			if ev.Kind == kind {
				return m
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %d", kind)
		}
	}
}

func TestDemoModeInit(t *testing.T) {
	model, _, coord := newDemoModel(t, config.BridgeConfig{Username: "demo"})
	require.Equal(t, ScreenMain, model.screen)

	next, _ := model.Update(messages.RefreshMsg{})
	model = pump(t, next.(Model), coord, coordinator.EventSnapshot)

	view := model.View()
	t.Logf("View output (first 200 chars): %s", view[:min(200, len(view))])

	assert.NotContains(t, view, "Loading")
	assert.Contains(t, view, "Connected")
	assert.Contains(t, view, "Living Room")
}

func TestUnconfiguredStartsInSetup(t *testing.T) {
	model, _, _ := newDemoModel(t, config.BridgeConfig{})
	assert.Equal(t, ScreenSetup, model.screen)

	next, _ := model.Update(messages.ConfiguredMsg{Config: config.BridgeConfig{BridgeIP: "10.0.0.2", Username: "x"}})
	assert.Equal(t, ScreenMain, next.(Model).screen)
}

func TestToggleReachesBridge(t *testing.T) {
	model, bridge, coord := newDemoModel(t, config.BridgeConfig{Username: "demo"})

	next, _ := model.Update(tea.KeyMsg{Type: tea.KeyTab})
	model = pump(t, next.(Model), coord, coordinator.EventSnapshot)

	first := model.mainScreen.Items()[0]
	before, ok := bridge.LightState(first.ID)
	require.True(t, ok)

	next, _ = model.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	model = pump(t, next.(Model), coord, coordinator.EventCommandDone)

	after, _ := bridge.LightState(first.ID)
	assert.Equal(t, !before.On, after.On)
	assert.Equal(t, after.On, model.mainScreen.Items()[0].On)
}

func TestPresetFlow(t *testing.T) {
	model, bridge, coord := newDemoModel(t, config.BridgeConfig{Username: "demo"})

	next, _ := model.Update(messages.ShowPresetsMsg{Key: models.LightKey(1), Name: "Lamp"})
	model = next.(Model)
	assert.Equal(t, ScreenPresets, model.screen)

	// Keys go to the modal, not the grid
	next, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	chosen := cmd()
	require.IsType(t, messages.PresetChosenMsg{}, chosen)

	next, _ = next.(Model).Update(chosen)
	model = pump(t, next.(Model), coord, coordinator.EventCommandDone)
	assert.Equal(t, ScreenMain, model.screen)

	state, _ := bridge.LightState(1)
	assert.True(t, state.On)
	assert.Equal(t, uint16(api.HueToDevice(models.DefaultPresets()[0].Hue)), state.Hue)
}

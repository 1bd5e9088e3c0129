package screens

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/mock"

	"github.com/angristan/hue-panel/internal/coordinator"
	"github.com/angristan/hue-panel/internal/models"
)

type MockBridge struct {
	mock.Mock
}

func states(args mock.Arguments) map[int]models.ItemState {
	if v, ok := args.Get(0).(map[int]models.ItemState); ok {
		return v
	}
	return nil
}

func raw(args mock.Arguments) json.RawMessage {
	if v, ok := args.Get(0).(json.RawMessage); ok {
		return v
	}
	return nil
}

func (m *MockBridge) ListLights(ctx context.Context) (map[int]models.LightState, error) {
	args := m.Called(ctx)
	return states(args), args.Error(1)
}

func (m *MockBridge) ListRooms(ctx context.Context) (map[int]models.RoomState, error) {
	args := m.Called(ctx)
	return states(args), args.Error(1)
}

func (m *MockBridge) ListLightsForRoom(ctx context.Context, roomID int) (map[int]models.LightState, error) {
	args := m.Called(ctx, roomID)
	return states(args), args.Error(1)
}

func (m *MockBridge) Light(ctx context.Context, id int) (models.LightState, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.LightState), args.Error(1)
}

func (m *MockBridge) Room(ctx context.Context, id int) (models.RoomState, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.RoomState), args.Error(1)
}

func (m *MockBridge) IsLightOn(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBridge) IsRoomOn(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBridge) SetLightOn(ctx context.Context, id int, on bool) (json.RawMessage, error) {
	args := m.Called(ctx, id, on)
	return raw(args), args.Error(1)
}

func (m *MockBridge) SetRoomOn(ctx context.Context, id int, on bool) (json.RawMessage, error) {
	args := m.Called(ctx, id, on)
	return raw(args), args.Error(1)
}

func (m *MockBridge) SetLightBrightness(ctx context.Context, id int, percent int) (json.RawMessage, error) {
	args := m.Called(ctx, id, percent)
	return raw(args), args.Error(1)
}

func (m *MockBridge) SetRoomBrightness(ctx context.Context, id int, percent int) (json.RawMessage, error) {
	args := m.Called(ctx, id, percent)
	return raw(args), args.Error(1)
}

func (m *MockBridge) SetLightColor(ctx context.Context, id int, hueDegrees, satPercent float64) (json.RawMessage, error) {
	args := m.Called(ctx, id, hueDegrees, satPercent)
	return raw(args), args.Error(1)
}

func (m *MockBridge) SetRoomColor(ctx context.Context, id int, hueDegrees, satPercent float64) (json.RawMessage, error) {
	args := m.Called(ctx, id, hueDegrees, satPercent)
	return raw(args), args.Error(1)
}

func (m *MockBridge) CreateUser(ctx context.Context, bridgeIP, deviceType string) (string, error) {
	args := m.Called(ctx, bridgeIP, deviceType)
	return args.String(0), args.Error(1)
}

var success = json.RawMessage(`[{"success":{}}]`)

func newTestMain(t *testing.T, bridge *MockBridge, opts ...coordinator.Option) (MainModel, *coordinator.Coordinator) {
	t.Helper()
	coord := coordinator.New(append([]coordinator.Option{coordinator.WithTaskTimeout(2 * time.Second)}, opts...)...)
	t.Cleanup(coord.Close)

	m := NewMainModel(coord, bridge)
	m.SetSize(120, 40)
	return m, coord
}

func nextEvent(t *testing.T, coord *coordinator.Coordinator) coordinator.Event {
	t.Helper()
	select {
	case ev := <-coord.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for coordinator event")
		return coordinator.Event{}
	}
}

// deliver feeds the next coordinator event to m
func deliver(t *testing.T, m *MainModel, coord *coordinator.Coordinator) coordinator.Event {
	t.Helper()
	ev := nextEvent(t, coord)
	m.HandleEvent(ev)
	return ev
}

func key(s string) tea.KeyMsg {
	switch s {
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCmd executes cmd and flattens batches. Ticks inside cmd block for
// their duration.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

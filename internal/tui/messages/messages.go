package messages

import (
	"time"

	"github.com/angristan/hue-panel/internal/config"
	"github.com/angristan/hue-panel/internal/coordinator"
	"github.com/angristan/hue-panel/internal/models"
)

// ConfiguredMsg indicates the bridge credentials are saved and usable
type ConfiguredMsg struct {
	Config config.BridgeConfig
}

// CoordinatorEventMsg wraps a completed background fetch or command
type CoordinatorEventMsg struct {
	Event coordinator.Event
}

// StatusMsg shows a transient message in the status bar
type StatusMsg struct {
	Text string
}

// ClearStatusMsg clears the status bar if it still shows message ID
type ClearStatusMsg struct {
	ID int
}

// RefreshMsg requests a refresh of the visible grid
type RefreshMsg struct{}

// AutoRefreshMsg is the periodic refresh tick
type AutoRefreshMsg time.Time

// ClockMsg is the once-a-second header clock tick
type ClockMsg time.Time

// ShowPresetsMsg requests the colour preset picker for an item
type ShowPresetsMsg struct {
	Key  models.ItemKey
	Name string
}

// HidePresetsMsg closes the preset picker
type HidePresetsMsg struct{}

// PresetChosenMsg indicates a preset was picked for an item
type PresetChosenMsg struct {
	Key    models.ItemKey
	Preset models.ColorPreset
}

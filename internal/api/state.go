package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/angristan/hue-panel/internal/logging"
	"github.com/angristan/hue-panel/internal/models"
)

// stateWire is the light "state" and group "action" object. Fields are kept
// raw so absent and non-numeric values can be told apart.
type stateWire struct {
	On        *bool           `json:"on"`
	Bri       json.RawMessage `json:"bri"`
	Hue       json.RawMessage `json:"hue"`
	ColorMode json.RawMessage `json:"colormode"`
}

func (s stateWire) on() bool {
	return s.On != nil && *s.On
}

// supportsColor is true when a hue value is reported or the colour mode is
// hue/saturation or xy.
func (s stateWire) supportsColor() bool {
	if len(s.Hue) > 0 {
		return true
	}
	var mode string
	if err := json.Unmarshal(s.ColorMode, &mode); err != nil {
		return false
	}
	mode = strings.ToLower(mode)
	return mode == "hs" || mode == "xy"
}

// brightness returns the 0-100 brightness. A missing or non-numeric value
// counts as full when on and zero when off.
func (s stateWire) brightness(on bool) int {
	var b float64
	if len(s.Bri) == 0 || bytes.Equal(s.Bri, []byte("null")) || json.Unmarshal(s.Bri, &b) != nil {
		if on {
			return 100
		}
		return 0
	}
	return BrightnessToPercent(b)
}

type lightWire struct {
	Name  string    `json:"name"`
	State stateWire `json:"state"`
}

func (l lightWire) toModel(id int) models.LightState {
	on := l.State.on()
	name := l.Name
	if name == "" {
		name = "Light " + strconv.Itoa(id)
	}
	return models.LightState{
		ID:            id,
		Name:          name,
		On:            on,
		Brightness:    l.State.brightness(on),
		SupportsColor: l.State.supportsColor(),
	}
}

type groupStateWire struct {
	AllOn *bool `json:"all_on"`
	AnyOn *bool `json:"any_on"`
}

type groupWire struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Lights []string        `json:"lights"`
	Action stateWire       `json:"action"`
	State  *groupStateWire `json:"state"`
}

// on prefers the bridge's aggregate state over the last commanded action
func (g groupWire) on() bool {
	if g.State != nil {
		if g.State.AnyOn != nil {
			return *g.State.AnyOn
		}
		if g.State.AllOn != nil {
			return *g.State.AllOn
		}
	}
	return g.Action.on()
}

func (g groupWire) isRoom() bool {
	return g.Type == "Room"
}

func (g groupWire) toModel(id int) models.RoomState {
	on := g.on()
	name := g.Name
	if name == "" {
		name = "Room " + strconv.Itoa(id)
	}
	return models.RoomState{
		ID:            id,
		Name:          name,
		On:            on,
		Brightness:    g.Action.brightness(on),
		SupportsColor: g.Action.supportsColor(),
	}
}

// parseID converts a bridge map key to an integer ID
func parseID(resource, key string) (int, bool) {
	id, err := strconv.Atoi(key)
	if err != nil {
		logging.Warn("Skipping resource with non-numeric id",
			zap.String("resource", resource), zap.String("id", key))
		return 0, false
	}
	return id, true
}

// stateCommand is the body of a state/action PUT. Nil fields are omitted
type stateCommand struct {
	On  *bool `json:"on,omitempty"`
	Bri *int  `json:"bri,omitempty"`
	Hue *int  `json:"hue,omitempty"`
	Sat *int  `json:"sat,omitempty"`
}

func onCommand(on bool) stateCommand {
	return stateCommand{On: &on}
}

func brightnessCommand(percent int) stateCommand {
	on := true
	bri := BrightnessToDevice(percent)
	return stateCommand{On: &on, Bri: &bri}
}

func colorCommand(hueDegrees, satPercent float64) stateCommand {
	on := true
	hue := HueToDevice(hueDegrees)
	sat := SaturationToDevice(satPercent)
	return stateCommand{On: &on, Hue: &hue, Sat: &sat}
}

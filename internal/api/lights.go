package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/angristan/hue-panel/internal/models"
)

// ListLights returns every light keyed by ID
func (c *Client) ListLights(ctx context.Context) (map[int]models.LightState, error) {
	raw, err := getResource[map[string]lightWire](ctx, c, "/lights")
	if err != nil {
		return nil, fmt.Errorf("failed to list lights: %w", err)
	}

	lights := make(map[int]models.LightState, len(raw))
	for key, l := range raw {
		id, ok := parseID("light", key)
		if !ok {
			continue
		}
		lights[id] = l.toModel(id)
	}
	return lights, nil
}

// Light returns a single light
func (c *Client) Light(ctx context.Context, id int) (models.LightState, error) {
	raw, err := getResource[lightWire](ctx, c, fmt.Sprintf("/lights/%d", id))
	if err != nil {
		return models.LightState{}, fmt.Errorf("failed to get light %d: %w", id, err)
	}
	return raw.toModel(id), nil
}

// IsLightOn reports the light's current on state
func (c *Client) IsLightOn(ctx context.Context, id int) (bool, error) {
	light, err := c.Light(ctx, id)
	if err != nil {
		return false, err
	}
	return light.On, nil
}

// SetLightOn switches a light on or off
func (c *Client) SetLightOn(ctx context.Context, id int, on bool) (json.RawMessage, error) {
	return c.setLightState(ctx, id, onCommand(on))
}

// SetLightBrightness sets brightness in percent and switches the light on
func (c *Client) SetLightBrightness(ctx context.Context, id int, percent int) (json.RawMessage, error) {
	return c.setLightState(ctx, id, brightnessCommand(percent))
}

// SetLightColor sets hue (degrees) and saturation (percent) and switches the
// light on.
func (c *Client) SetLightColor(ctx context.Context, id int, hueDegrees, satPercent float64) (json.RawMessage, error) {
	return c.setLightState(ctx, id, colorCommand(hueDegrees, satPercent))
}

func (c *Client) setLightState(ctx context.Context, id int, cmd stateCommand) (json.RawMessage, error) {
	resp, err := c.putResource(ctx, fmt.Sprintf("/lights/%d/state", id), cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to update light %d: %w", id, err)
	}
	return resp, nil
}

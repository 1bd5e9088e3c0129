package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/angristan/hue-panel/internal/models"
)

// ListRooms returns every group of type Room keyed by ID. Zones, entertainment
// areas and other group types are excluded.
func (c *Client) ListRooms(ctx context.Context) (map[int]models.RoomState, error) {
	raw, err := getResource[map[string]groupWire](ctx, c, "/groups")
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	rooms := make(map[int]models.RoomState, len(raw))
	for key, g := range raw {
		if !g.isRoom() {
			continue
		}
		id, ok := parseID("group", key)
		if !ok {
			continue
		}
		rooms[id] = g.toModel(id)
	}
	return rooms, nil
}

// Room returns a single group
func (c *Client) Room(ctx context.Context, id int) (models.RoomState, error) {
	g, err := c.group(ctx, id)
	if err != nil {
		return models.RoomState{}, err
	}
	return g.toModel(id), nil
}

func (c *Client) group(ctx context.Context, id int) (groupWire, error) {
	g, err := getResource[groupWire](ctx, c, fmt.Sprintf("/groups/%d", id))
	if err != nil {
		return groupWire{}, fmt.Errorf("failed to get room %d: %w", id, err)
	}
	return g, nil
}

// ListLightsForRoom returns the lights that are members of the room
func (c *Client) ListLightsForRoom(ctx context.Context, roomID int) (map[int]models.LightState, error) {
	g, err := c.group(ctx, roomID)
	if err != nil {
		return nil, err
	}

	members := make(map[int]struct{}, len(g.Lights))
	for _, key := range g.Lights {
		if id, ok := parseID("light", key); ok {
			members[id] = struct{}{}
		}
	}

	all, err := c.ListLights(ctx)
	if err != nil {
		return nil, err
	}

	lights := make(map[int]models.LightState, len(members))
	for id, light := range all {
		if _, ok := members[id]; ok {
			lights[id] = light
		}
	}
	return lights, nil
}

// IsRoomOn reports the room's effective on state
func (c *Client) IsRoomOn(ctx context.Context, id int) (bool, error) {
	g, err := c.group(ctx, id)
	if err != nil {
		return false, err
	}
	return g.on(), nil
}

// SetRoomOn switches every light in a room on or off
func (c *Client) SetRoomOn(ctx context.Context, id int, on bool) (json.RawMessage, error) {
	return c.setRoomAction(ctx, id, onCommand(on))
}

// SetRoomBrightness sets the room's brightness in percent and switches it on
func (c *Client) SetRoomBrightness(ctx context.Context, id int, percent int) (json.RawMessage, error) {
	return c.setRoomAction(ctx, id, brightnessCommand(percent))
}

// SetRoomColor sets the room's hue and saturation and switches it on
func (c *Client) SetRoomColor(ctx context.Context, id int, hueDegrees, satPercent float64) (json.RawMessage, error) {
	return c.setRoomAction(ctx, id, colorCommand(hueDegrees, satPercent))
}

func (c *Client) setRoomAction(ctx context.Context, id int, cmd stateCommand) (json.RawMessage, error) {
	resp, err := c.putResource(ctx, fmt.Sprintf("/groups/%d/action", id), cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to update room %d: %w", id, err)
	}
	return resp, nil
}

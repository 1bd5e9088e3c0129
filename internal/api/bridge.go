package api

import (
	"context"
	"encoding/json"

	"github.com/angristan/hue-panel/internal/models"
)

// Bridge is the set of operations the UI and CLI need from a Hue bridge
type Bridge interface {
	ListLights(ctx context.Context) (map[int]models.LightState, error)
	ListRooms(ctx context.Context) (map[int]models.RoomState, error)
	ListLightsForRoom(ctx context.Context, roomID int) (map[int]models.LightState, error)
	Light(ctx context.Context, id int) (models.LightState, error)
	Room(ctx context.Context, id int) (models.RoomState, error)

	IsLightOn(ctx context.Context, id int) (bool, error)
	IsRoomOn(ctx context.Context, id int) (bool, error)

	SetLightOn(ctx context.Context, id int, on bool) (json.RawMessage, error)
	SetRoomOn(ctx context.Context, id int, on bool) (json.RawMessage, error)
	SetLightBrightness(ctx context.Context, id int, percent int) (json.RawMessage, error)
	SetRoomBrightness(ctx context.Context, id int, percent int) (json.RawMessage, error)
	SetLightColor(ctx context.Context, id int, hueDegrees, satPercent float64) (json.RawMessage, error)
	SetRoomColor(ctx context.Context, id int, hueDegrees, satPercent float64) (json.RawMessage, error)

	CreateUser(ctx context.Context, bridgeIP, deviceType string) (string, error)
}

// Compile-time check that Client implements Bridge
var _ Bridge = (*Client)(nil)

package api

import (
	"context"
	"encoding/json"

	"github.com/angristan/hue-panel/internal/models"
)

// The helpers below route an operation to the light or room variant based on
// the item's kind.

func IsOn(ctx context.Context, b Bridge, key models.ItemKey) (bool, error) {
	if key.Kind == models.KindRoom {
		return b.IsRoomOn(ctx, key.ID)
	}
	return b.IsLightOn(ctx, key.ID)
}

func SetOn(ctx context.Context, b Bridge, key models.ItemKey, on bool) (json.RawMessage, error) {
	if key.Kind == models.KindRoom {
		return b.SetRoomOn(ctx, key.ID, on)
	}
	return b.SetLightOn(ctx, key.ID, on)
}

func SetBrightness(ctx context.Context, b Bridge, key models.ItemKey, percent int) (json.RawMessage, error) {
	if key.Kind == models.KindRoom {
		return b.SetRoomBrightness(ctx, key.ID, percent)
	}
	return b.SetLightBrightness(ctx, key.ID, percent)
}

func SetColor(ctx context.Context, b Bridge, key models.ItemKey, hueDegrees, satPercent float64) (json.RawMessage, error) {
	if key.Kind == models.KindRoom {
		return b.SetRoomColor(ctx, key.ID, hueDegrees, satPercent)
	}
	return b.SetLightColor(ctx, key.ID, hueDegrees, satPercent)
}

// Item fetches the current state of a light or room
func Item(ctx context.Context, b Bridge, key models.ItemKey) (models.ItemState, error) {
	if key.Kind == models.KindRoom {
		return b.Room(ctx, key.ID)
	}
	return b.Light(ctx, key.ID)
}

package models

import (
	"fmt"
	"sort"
	"strings"
)

// Kind distinguishes the two controllable targets on a bridge
type Kind int

const (
	KindLight Kind = iota
	KindRoom
)

func (k Kind) String() string {
	switch k {
	case KindRoom:
		return "room"
	default:
		return "light"
	}
}

// ItemKey identifies a single light or room
type ItemKey struct {
	Kind Kind
	ID   int
}

func (k ItemKey) String() string {
	return fmt.Sprintf("%s:%d", k.Kind, k.ID)
}

// LightKey returns the key for light id
func LightKey(id int) ItemKey { return ItemKey{Kind: KindLight, ID: id} }

// RoomKey returns the key for room id
func RoomKey(id int) ItemKey { return ItemKey{Kind: KindRoom, ID: id} }

// ItemState is a snapshot of a light or a room
type ItemState struct {
	ID   int
	Name string
	// Effective on/off state
	On bool
	// Brightness as a percentage (0-100)
	Brightness int
	// Whether hue/saturation commands are meaningful
	SupportsColor bool
}

// LightState and RoomState share one record shape
type (
	LightState = ItemState
	RoomState  = ItemState
)

// Sorted returns the states ordered by case-insensitive name, then ID
func Sorted(items map[int]ItemState) []ItemState {
	out := make([]ItemState, 0, len(items))
	for _, it := range items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

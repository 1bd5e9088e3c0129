package models

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorPreset is a named hue/saturation pair
type ColorPreset struct {
	Name string `yaml:"name"`
	// Hue in degrees (0-360)
	Hue float64 `yaml:"hue"`
	// Saturation as a percentage (0-100)
	Saturation float64 `yaml:"saturation"`
}

// DefaultPresets returns the built-in presets
func DefaultPresets() []ColorPreset {
	return []ColorPreset{
		{Name: "Warm", Hue: 30, Saturation: 90},
		{Name: "Neutral", Hue: 45, Saturation: 40},
		{Name: "Cool", Hue: 200, Saturation: 60},
		{Name: "Blue", Hue: 220, Saturation: 80},
		{Name: "Purple", Hue: 280, Saturation: 85},
		{Name: "Green", Hue: 110, Saturation: 80},
		{Name: "Red", Hue: 0, Saturation: 90},
		{Name: "Yellow", Hue: 55, Saturation: 95},
	}
}

// Swatch returns a hex colour approximating the preset at full value
func (p ColorPreset) Swatch() string {
	h := math.Mod(p.Hue, 360)
	if h < 0 {
		h += 360
	}
	s := math.Max(0, math.Min(100, p.Saturation)) / 100
	return colorful.Hsv(h, s, 1).Clamped().Hex()
}

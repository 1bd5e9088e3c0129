package api

import "math"

// Device ranges of the v1 API
const (
	deviceBrightnessMin = 1
	deviceBrightnessMax = 254
	deviceHueMax        = 65535
	deviceSaturationMax = 254
)

// BrightnessToDevice converts a 0-100 percentage to the bridge's 1-254 scale.
// Out-of-range input is clamped.
func BrightnessToDevice(percent int) int {
	p := clamp(float64(percent), 0, 100)
	b := int(math.Round(p * deviceBrightnessMax / 100))
	return int(clamp(float64(b), deviceBrightnessMin, deviceBrightnessMax))
}

// BrightnessToPercent converts a bridge brightness value to 0-100
func BrightnessToPercent(device float64) int {
	p := math.Round(device * 100 / deviceBrightnessMax)
	return int(clamp(p, 0, 100))
}

// HueToDevice converts degrees to the bridge's 0-65535 hue scale. Degrees
// wrap modulo 360, including negative values.
func HueToDevice(degrees float64) int {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return 0
	}
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	return int(math.Round(d * deviceHueMax / 360))
}

// SaturationToDevice converts a 0-100 percentage to the bridge's 0-254 scale
func SaturationToDevice(percent float64) int {
	s := clamp(percent, 0, 100)
	return int(math.Round(s * deviceSaturationMax / 100))
}

// clamp maps NaN to lo
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

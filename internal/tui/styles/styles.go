package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	ColorPrimary    = lipgloss.Color("#B794F4") // Lavender
	ColorSecondary  = lipgloss.Color("#9F7AEA")
	ColorAccent     = lipgloss.Color("#E9D8FD")
	ColorSurface    = lipgloss.Color("#2D2D44")
	ColorSurfaceAlt = lipgloss.Color("#3D3D5C")

	ColorText        = lipgloss.Color("#FAFAFA")
	ColorTextMuted   = lipgloss.Color("#A0A0B0")
	ColorTextDim     = lipgloss.Color("#6B6B80")
	ColorTextInverse = lipgloss.Color("#1A1A2E")

	ColorSuccess = lipgloss.Color("#68D391")
	ColorWarning = lipgloss.Color("#F6E05E")
	ColorError   = lipgloss.Color("#FC8181")

	ColorLightOn  = lipgloss.Color("#FBBF24") // Warm yellow for on
	ColorLightOff = lipgloss.Color("#4A4A5A")
)

// Brightness bar gradient, dim to bright
var brightnessGradient = []lipgloss.Color{
	"#3D3D5C", "#4A4A6A", "#5A5A7A", "#6A6A8A", "#7A7A9A",
	"#8A8AAA", "#9A9ABA", "#AAAACA", "#BABADA", "#FBBF24",
}

var (
	StyleHeaderGradient = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorText).
				Background(ColorPrimary).
				Padding(0, 2)

	StyleTab = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 2)

	StyleTabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorTextInverse).
			Background(ColorPrimary).
			Padding(0, 2)

	// Tile styles
	StyleTile = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSurfaceAlt).
			Padding(0, 1)

	StyleTileSelected = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)

	StyleTileBusy = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSurface).
			Foreground(ColorTextDim).
			Padding(0, 1)

	StyleLightName = lipgloss.NewStyle().
			Foreground(ColorText)

	StyleLightNameDim = lipgloss.NewStyle().
				Foreground(ColorTextMuted)

	StyleStatusOn = lipgloss.NewStyle().
			Foreground(ColorLightOn).
			Bold(true)

	StyleStatusOff = lipgloss.NewStyle().
			Foreground(ColorLightOff)

	StyleBrightnessBarEmpty = lipgloss.NewStyle().
				Foreground(ColorSurfaceAlt)

	// Modal styles
	StyleModal = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorPrimary).
			Background(ColorSurface).
			Padding(1, 2)

	StyleModalTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	StyleListItem = lipgloss.NewStyle().
			Foreground(ColorText).
			Padding(0, 1)

	StyleListItemSelected = lipgloss.NewStyle().
				Foreground(ColorTextInverse).
				Background(ColorPrimary).
				Padding(0, 1)

	StyleInputFocused = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)

	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorTextDim).
			MarginTop(1)

	StyleHelpKey = lipgloss.NewStyle().
			Foreground(ColorPrimary)

	StyleSpinner = lipgloss.NewStyle().
			Foreground(ColorPrimary)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	StyleTextMuted = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	StylePrimary = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)
)

// GetBrightnessColor returns the color of a 1-10 brightness segment, or the
// empty color if brightness does not reach it.
func GetBrightnessColor(segment int, brightness int) lipgloss.Color {
	if segment < 1 || segment > len(brightnessGradient) || brightness < segment*10 {
		return ColorSurfaceAlt
	}
	return brightnessGradient[segment-1]
}

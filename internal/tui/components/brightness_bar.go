package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/angristan/hue-panel/internal/tui/styles"
)

// RenderBrightnessBar renders a horizontal bar for a 0-100 brightness.
// An item that is off renders as an empty track.
func RenderBrightnessBar(brightness int, on bool, width int) string {
	if width <= 0 {
		return ""
	}
	if !on || brightness <= 0 {
		return styles.StyleBrightnessBarEmpty.Render(strings.Repeat("─", width))
	}

	segments := (brightness * width) / 100
	if segments == 0 {
		segments = 1
	}
	if segments > width {
		segments = width
	}

	var b strings.Builder
	for i := 1; i <= width; i++ {
		if i <= segments {
			color := segmentColor(i, width, brightness)
			b.WriteString(lipgloss.NewStyle().Foreground(color).Render("█"))
		} else {
			b.WriteString(styles.StyleBrightnessBarEmpty.Render("─"))
		}
	}
	return b.String()
}

// segmentColor maps segment i of total onto the 1-10 gradient
func segmentColor(segment, total, brightness int) lipgloss.Color {
	mapped := (segment * 10) / total
	mapped = max(1, min(10, mapped))
	return styles.GetBrightnessColor(mapped, brightness)
}

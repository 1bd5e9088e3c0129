package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/angristan/hue-panel/internal/models"
	"github.com/angristan/hue-panel/internal/tui/styles"
)

const (
	minTileWidth = 24
	maxTileWidth = 36
	barWidth     = 10
)

// TileWidth returns the tile width for a grid of the given total width and
// the number of tiles per row.
func TileWidth(total int) (width, perRow int) {
	perRow = max(1, total/(minTileWidth+2))
	width = total/perRow - 2
	return max(minTileWidth, min(maxTileWidth, width)), perRow
}

// RenderTile renders a single light or room tile. Busy tiles are dimmed
// while a command for them is in flight.
func RenderTile(item models.ItemState, selected, busy bool, width int) string {
	statusIcon := "○"
	statusStyle := styles.StyleStatusOff
	if item.On {
		statusIcon = "●"
		statusStyle = styles.StyleStatusOn
	}

	nameStyle := styles.StyleLightName
	if !item.On {
		nameStyle = styles.StyleLightNameDim
	}

	colorTag := ""
	if item.SupportsColor {
		colorTag = styles.StylePrimary.Render(" ◆")
	}

	nameWidth := max(4, width-6)
	line1 := fmt.Sprintf("%s %s%s", statusStyle.Render(statusIcon), nameStyle.Render(truncate(item.Name, nameWidth)), colorTag)
	line2 := fmt.Sprintf("  %s %3d%%", RenderBrightnessBar(item.Brightness, item.On, barWidth), item.Brightness)

	cardStyle := styles.StyleTile
	switch {
	case busy:
		cardStyle = styles.StyleTileBusy
		line1 = styles.StyleTextMuted.Render(fmt.Sprintf("%s %s …", statusIcon, truncate(item.Name, nameWidth)))
	case selected:
		cardStyle = styles.StyleTileSelected
	}

	return cardStyle.Width(width).Render(line1 + "\n" + line2)
}

// RenderGrid arranges tiles in rows of perRow
func RenderGrid(tiles []string, perRow int) string {
	if perRow < 1 {
		perRow = 1
	}
	var rows []string
	for i := 0; i < len(tiles); i += perRow {
		end := min(i+perRow, len(tiles))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles[i:end]...))
	}
	return strings.Join(rows, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

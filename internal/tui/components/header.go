package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/angristan/hue-panel/internal/tui/styles"
)

// RenderHeader renders the title bar with a status on the right and the
// clock at the far right.
func RenderHeader(width int, title, status, clock string) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.ColorText).
		Background(styles.ColorPrimary).
		Padding(0, 1)

	statusStyle := lipgloss.NewStyle().
		Foreground(styles.ColorSuccess).
		Padding(0, 1)

	if status == "" {
		status = "Disconnected"
		statusStyle = statusStyle.Foreground(styles.ColorError)
	}

	left := titleStyle.Render(title)
	right := statusStyle.Render(status)
	if clock != "" {
		right += styles.StyleTextMuted.Render(clock + " ")
	}

	spacing := width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 0 {
		spacing = 0
	}

	return left + strings.Repeat(" ", spacing) + right
}

// RenderTabs renders a tab strip with the active tab highlighted
func RenderTabs(labels []string, active int) string {
	parts := make([]string, len(labels))
	for i, label := range labels {
		style := styles.StyleTab
		if i == active {
			style = styles.StyleTabActive
		}
		parts[i] = style.Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

package screens

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/angristan/hue-panel/internal/models"
	"github.com/angristan/hue-panel/internal/tui/messages"
	"github.com/angristan/hue-panel/internal/tui/styles"
)

// PresetsModel is the colour preset modal
type PresetsModel struct {
	presets  []models.ColorPreset
	selected int

	// Item the preset will be applied to
	target     models.ItemKey
	targetName string

	// Custom colour entry, reached from the row after the presets
	editing  bool
	hueInput textinput.Model
	satInput textinput.Model
	err      error

	width  int
	height int
}

// NewPresetsModel creates a preset picker over presets
func NewPresetsModel(presets []models.ColorPreset) PresetsModel {
	if len(presets) == 0 {
		presets = models.DefaultPresets()
	}

	hue := textinput.New()
	hue.Placeholder = "0-360"
	hue.CharLimit = 6

	sat := textinput.New()
	sat.Placeholder = "0-100"
	sat.CharLimit = 6

	return PresetsModel{presets: presets, hueInput: hue, satInput: sat}
}

// SetSize sets the terminal size
func (m *PresetsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetTarget points the picker at an item and resets the selection
func (m *PresetsModel) SetTarget(key models.ItemKey, name string) {
	m.target = key
	m.targetName = name
	m.selected = 0
	m.stopEditing()
}

// Target returns the item the picker applies to
func (m PresetsModel) Target() models.ItemKey {
	return m.target
}

// Update handles messages
func (m PresetsModel) Update(msg tea.Msg) (PresetsModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.editing {
			return m.updateInputs(msg)
		}
		return m, nil
	}
	if m.editing {
		return m.updateCustom(key)
	}

	switch key.String() {
	case "esc", "c", "q":
		return m, func() tea.Msg { return messages.HidePresetsMsg{} }

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.presets) {
			m.selected++
		}

	case "enter", " ":
		if m.selected == len(m.presets) {
			m.editing = true
			m.err = nil
			m.hueInput.Focus()
			return m, textinput.Blink
		}
		if m.selected >= 0 && m.selected < len(m.presets) {
			chosen := messages.PresetChosenMsg{Key: m.target, Preset: m.presets[m.selected]}
			return m, func() tea.Msg { return chosen }
		}
	}

	return m, nil
}

func (m PresetsModel) updateCustom(key tea.KeyMsg) (PresetsModel, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.stopEditing()
		return m, nil

	case "tab", "shift+tab", "up", "down":
		if m.hueInput.Focused() {
			m.hueInput.Blur()
			m.satInput.Focus()
		} else {
			m.satInput.Blur()
			m.hueInput.Focus()
		}
		return m, nil

	case "enter":
		preset, err := parseCustomColor(m.hueInput.Value(), m.satInput.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		chosen := messages.PresetChosenMsg{Key: m.target, Preset: preset}
		m.stopEditing()
		return m, func() tea.Msg { return chosen }
	}

	return m.updateInputs(key)
}

func (m PresetsModel) updateInputs(msg tea.Msg) (PresetsModel, tea.Cmd) {
	var hueCmd, satCmd tea.Cmd
	m.hueInput, hueCmd = m.hueInput.Update(msg)
	m.satInput, satCmd = m.satInput.Update(msg)
	return m, tea.Batch(hueCmd, satCmd)
}

func (m *PresetsModel) stopEditing() {
	m.editing = false
	m.err = nil
	m.hueInput.Reset()
	m.satInput.Reset()
	m.hueInput.Blur()
	m.satInput.Blur()
}

// parseCustomColor reads hue degrees and saturation percent typed by the user
func parseCustomColor(hue, sat string) (models.ColorPreset, error) {
	h, err := parseBounded(hue, 360)
	if err != nil {
		return models.ColorPreset{}, fmt.Errorf("hue: %w", err)
	}
	s, err := parseBounded(sat, 100)
	if err != nil {
		return models.ColorPreset{}, fmt.Errorf("saturation: %w", err)
	}
	return models.ColorPreset{Name: "Custom", Hue: h, Saturation: s}, nil
}

func parseBounded(text string, limit float64) (float64, error) {
	text = strings.TrimSpace(text)
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a number", text)
	}
	if v < 0 || v > limit {
		return 0, fmt.Errorf("must be between 0 and %g", limit)
	}
	return v, nil
}

// View renders the preset modal
func (m PresetsModel) View() string {
	var b strings.Builder

	title := "Colours"
	if m.targetName != "" {
		title = m.targetName + " Colours"
	}
	b.WriteString(styles.StyleModalTitle.Render(title))
	b.WriteString("\n\n")

	for i, p := range m.presets {
		style := styles.StyleListItem
		cursor := "  "
		if i == m.selected {
			style = styles.StyleListItemSelected
			cursor = "> "
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Swatch())).Render("██")
		b.WriteString(cursor + swatch + " " + style.Render(p.Name) + "\n")
	}

	if m.editing {
		b.WriteString("\n")
		b.WriteString("Hue:        " + m.hueInput.View() + "\n")
		b.WriteString("Saturation: " + m.satInput.View() + "\n")
		if m.err != nil {
			b.WriteString(styles.StyleError.Render(m.err.Error()) + "\n")
		}
		b.WriteString("\n")
		b.WriteString(styles.StyleHelp.Render("tab switch field • enter apply • esc back"))
	} else {
		style := styles.StyleListItem
		cursor := "  "
		if m.selected == len(m.presets) {
			style = styles.StyleListItemSelected
			cursor = "> "
		}
		b.WriteString(cursor + "   " + style.Render("Custom...") + "\n")
		b.WriteString("\n")
		b.WriteString(styles.StyleHelp.Render("↑/↓ navigate • enter apply • esc close"))
	}

	modalWidth := m.width * 70 / 100
	modalWidth = max(30, min(50, modalWidth))
	modal := styles.StyleModal.Width(modalWidth).Render(b.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

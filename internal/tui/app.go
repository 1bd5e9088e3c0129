// Package tui is the terminal front-end. It renders coordinator snapshots
// and turns key presses into coordinator commands.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/angristan/hue-panel/internal/api"
	"github.com/angristan/hue-panel/internal/coordinator"
	"github.com/angristan/hue-panel/internal/models"
	"github.com/angristan/hue-panel/internal/tui/messages"
	"github.com/angristan/hue-panel/internal/tui/screens"
)

// Screen represents the current screen state
type Screen int

const (
	ScreenSetup Screen = iota
	ScreenMain
	ScreenPresets
)

// Options wires the model to the core
type Options struct {
	Bridge      api.Bridge
	Config      api.ConfigSource
	Coordinator *coordinator.Coordinator
	Discoverer  screens.Discoverer
	// Store persists credentials from the setup screen; nil keeps them in
	// memory only.
	Store   screens.Saver
	Presets []models.ColorPreset
	// Notice is shown in the status bar at startup
	Notice string
}

// Model is the main application model
type Model struct {
	opts Options

	// Current screen
	screen Screen

	// Screen models
	setupScreen   screens.SetupModel
	mainScreen    screens.MainModel
	presetsScreen screens.PresetsModel

	// Window size
	width  int
	height int
}

// NewModel creates a new application model
func NewModel(opts Options) Model {
	m := Model{
		opts:          opts,
		setupScreen:   screens.NewSetupModel(opts.Discoverer, opts.Bridge, opts.Store),
		mainScreen:    screens.NewMainModel(opts.Coordinator, opts.Bridge),
		presetsScreen: screens.NewPresetsModel(opts.Presets),
	}

	// Determine initial screen
	m.screen = ScreenSetup
	if opts.Config != nil && opts.Config.Load().Configured() {
		m.screen = ScreenMain
	}

	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("Hue"),
		waitForEvent(m.opts.Coordinator.Events()),
	}
	if m.opts.Notice != "" {
		notice := m.opts.Notice
		cmds = append(cmds, func() tea.Msg { return messages.StatusMsg{Text: notice} })
	}

	switch m.screen {
	case ScreenSetup:
		cmds = append(cmds, m.setupScreen.Init())
	case ScreenMain:
		cmds = append(cmds, m.mainScreen.Init())
	}

	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.mainScreen.SetSize(msg.Width, msg.Height)
		m.setupScreen.SetSize(msg.Width, msg.Height)
		m.presetsScreen.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.routeKey(msg)

	case messages.CoordinatorEventMsg:
		// Events always reach the main screen so the grid stays current
		// behind the preset modal.
		cmd := m.mainScreen.HandleEvent(msg.Event)
		return m, tea.Batch(cmd, waitForEvent(m.opts.Coordinator.Events()))

	case messages.ConfiguredMsg:
		m.screen = ScreenMain
		return m, m.mainScreen.Init()

	case messages.ShowPresetsMsg:
		m.presetsScreen.SetTarget(msg.Key, msg.Name)
		m.screen = ScreenPresets
		return m, nil

	case messages.HidePresetsMsg:
		m.screen = ScreenMain
		return m, nil

	case messages.PresetChosenMsg:
		m.screen = ScreenMain
		return m, m.mainScreen.ApplyPreset(msg.Key, msg.Preset)
	}

	// Ticks and refreshes belong to whichever screen started them
	if m.screen == ScreenSetup {
		var cmd tea.Cmd
		m.setupScreen, cmd = m.setupScreen.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		var cmd tea.Cmd
		m.mainScreen, cmd = m.mainScreen.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) routeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case ScreenSetup:
		m.setupScreen, cmd = m.setupScreen.Update(msg)
	case ScreenMain:
		m.mainScreen, cmd = m.mainScreen.Update(msg)
	case ScreenPresets:
		m.presetsScreen, cmd = m.presetsScreen.Update(msg)
	}
	return m, cmd
}

// View renders the current screen
func (m Model) View() string {
	switch m.screen {
	case ScreenSetup:
		return m.setupScreen.View()
	case ScreenMain:
		return m.mainScreen.View()
	case ScreenPresets:
		return m.presetsScreen.View()
	default:
		return "Unknown screen"
	}
}

// waitForEvent delivers the next coordinator event to the update loop. It
// yields nil once the coordinator is closed.
func waitForEvent(events <-chan coordinator.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return messages.CoordinatorEventMsg{Event: ev}
	}
}

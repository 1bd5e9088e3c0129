package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/angristan/hue-panel/internal/api"
	"github.com/angristan/hue-panel/internal/config"
	"github.com/angristan/hue-panel/internal/tui/messages"
	"github.com/angristan/hue-panel/internal/tui/styles"
)

const (
	// DefaultPairWindow is how long pairing keeps retrying
	DefaultPairWindow = 30 * time.Second
	// DefaultPairRetry is the delay between pairing attempts
	DefaultPairRetry = 2 * time.Second
	pairTimeout      = 5 * time.Second
)

// Discoverer finds candidate bridge addresses
type Discoverer interface {
	Discover(ctx context.Context, skipCloud bool) []string
}

// Pairer mints a username on a bridge
type Pairer interface {
	CreateUser(ctx context.Context, bridgeIP, deviceType string) (string, error)
}

// Saver persists bridge credentials
type Saver interface {
	Save(cfg config.BridgeConfig) error
}

// SetupState represents the current setup state
type SetupState int

const (
	StateDiscovering SetupState = iota
	StateBridgeList
	StateManualIP
	StateManualUsername
	StatePairing
	StateSuccess
	StateError
)

// SetupModel is the setup screen model
type SetupModel struct {
	state     SetupState
	bridges   []string
	selected  int
	ipInput   textinput.Model
	userInput textinput.Model
	spinner   spinner.Model
	err       error
	message   string

	discoverer Discoverer
	pairer     Pairer
	saver      Saver

	// Pairing state
	pairingHost  string
	pairingSince time.Time
	attempts     int
	pairWindow   time.Duration
	pairRetry    time.Duration
	now          func() time.Time

	// Window size
	width  int
	height int
}

// NewSetupModel creates a new setup screen model. A nil saver leaves
// credentials unsaved.
func NewSetupModel(discoverer Discoverer, pairer Pairer, saver Saver) SetupModel {
	ip := textinput.New()
	ip.Placeholder = "192.168.1.x"
	ip.CharLimit = 15

	user := textinput.New()
	user.Placeholder = "existing username"
	user.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.StyleSpinner

	return SetupModel{
		state:      StateDiscovering,
		ipInput:    ip,
		userInput:  user,
		spinner:    sp,
		discoverer: discoverer,
		pairer:     pairer,
		saver:      saver,
		pairWindow: DefaultPairWindow,
		pairRetry:  DefaultPairRetry,
		now:        time.Now,
	}
}

// Init initializes the setup screen
func (m SetupModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.discoverCmd(),
	)
}

// SetSize sets the terminal size
func (m *SetupModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetPairTiming overrides the pairing window and retry delay
func (m *SetupModel) SetPairTiming(window, retry time.Duration) {
	m.pairWindow = window
	m.pairRetry = retry
}

// State returns the current setup state
func (m SetupModel) State() SetupState {
	return m.state
}

// Bridges returns the discovered bridge addresses
func (m SetupModel) Bridges() []string {
	return m.bridges
}

func (m *SetupModel) startPairing(host string) tea.Cmd {
	m.state = StatePairing
	m.pairingHost = host
	m.pairingSince = m.now()
	m.attempts = 0
	m.err = nil
	m.message = ""
	return m.pairCmd(host)
}

func (m *SetupModel) focusManualIP() tea.Cmd {
	m.state = StateManualIP
	m.ipInput.SetValue(m.pairingHost)
	m.ipInput.Focus()
	return textinput.Blink
}

// Update handles messages
func (m SetupModel) Update(msg tea.Msg) (SetupModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case StateBridgeList:
			switch msg.String() {
			case "up", "k":
				if m.selected > 0 {
					m.selected--
				}
			case "down", "j":
				if m.selected < len(m.bridges) {
					m.selected++
				}
			case "enter":
				if m.selected < len(m.bridges) {
					cmds = append(cmds, m.startPairing(m.bridges[m.selected]))
				} else {
					cmds = append(cmds, m.focusManualIP())
				}
			case "m":
				cmds = append(cmds, m.focusManualIP())
			case "r":
				m.state = StateDiscovering
				cmds = append(cmds, m.spinner.Tick, m.discoverCmd())
			case "q":
				return m, tea.Quit
			}
			return m, tea.Batch(cmds...)

		case StateManualIP:
			switch msg.String() {
			case "enter":
				host := strings.TrimSpace(m.ipInput.Value())
				if host != "" {
					m.ipInput.Blur()
					cmds = append(cmds, m.startPairing(host))
				}
				return m, tea.Batch(cmds...)
			case "esc":
				m.state = StateBridgeList
				m.ipInput.Blur()
				return m, nil
			}

		case StatePairing:
			switch msg.String() {
			case "u":
				m.state = StateManualUsername
				m.userInput.Focus()
				return m, textinput.Blink
			case "esc":
				m.state = StateBridgeList
				m.pairingHost = ""
				return m, nil
			}
			return m, nil

		case StateManualUsername:
			switch msg.String() {
			case "enter":
				username := strings.TrimSpace(m.userInput.Value())
				if username == "" {
					return m, nil
				}
				m.userInput.Blur()
				return m.finish(config.BridgeConfig{BridgeIP: m.pairingHost, Username: username})
			case "esc":
				m.userInput.Blur()
				return m, m.startPairing(m.pairingHost)
			}

		case StateError:
			switch msg.String() {
			case "r", "enter":
				if m.pairingHost != "" {
					return m, m.startPairing(m.pairingHost)
				}
				m.state = StateDiscovering
				return m, m.discoverCmd()
			case "esc":
				m.state = StateBridgeList
				return m, nil
			case "q":
				return m, tea.Quit
			}
			return m, nil
		}

	case BridgesDiscoveredMsg:
		m.bridges = msg.Bridges
		m.selected = 0
		m.state = StateBridgeList

	case pairResultMsg:
		if m.state != StatePairing || msg.host != m.pairingHost {
			return m, nil
		}
		m.attempts++
		if msg.err == nil {
			return m.finish(config.BridgeConfig{BridgeIP: msg.host, Username: msg.username})
		}
		if errors.Is(msg.err, api.ErrPairingRequired) && m.now().Sub(m.pairingSince) < m.pairWindow {
			host := msg.host
			return m, tea.Tick(m.pairRetry, func(time.Time) tea.Msg {
				return pairRetryMsg{host: host}
			})
		}
		m.state = StateError
		m.err = msg.err

	case pairRetryMsg:
		if m.state == StatePairing && msg.host == m.pairingHost {
			cmds = append(cmds, m.pairCmd(msg.host))
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Update text inputs
	switch m.state {
	case StateManualIP:
		var cmd tea.Cmd
		m.ipInput, cmd = m.ipInput.Update(msg)
		cmds = append(cmds, cmd)
	case StateManualUsername:
		var cmd tea.Cmd
		m.userInput, cmd = m.userInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// finish saves cfg and hands it to the application
func (m SetupModel) finish(cfg config.BridgeConfig) (SetupModel, tea.Cmd) {
	if m.saver != nil {
		if err := m.saver.Save(cfg); err != nil {
			m.state = StateError
			m.err = err
			return m, nil
		}
	}
	m.state = StateSuccess
	m.message = "Connected to " + cfg.BridgeIP
	return m, func() tea.Msg { return messages.ConfiguredMsg{Config: cfg} }
}

// View renders the setup screen
func (m SetupModel) View() string {
	var b strings.Builder

	header := styles.StyleHeaderGradient.Render("  Hue Setup  ")
	b.WriteString(lipgloss.Place(m.width, 3, lipgloss.Center, lipgloss.Top, header))
	b.WriteString("\n\n")

	var content string
	switch m.state {
	case StateDiscovering:
		content = fmt.Sprintf("%s Searching for Hue bridges...", m.spinner.View())
	case StateBridgeList:
		content = m.renderBridgeList()
	case StateManualIP:
		content = "Enter bridge IP address:\n\n" +
			styles.StyleInputFocused.Render(m.ipInput.View()) +
			"\n\n" + styles.StyleHelp.Render("enter confirm • esc back")
	case StateManualUsername:
		content = fmt.Sprintf("Username for %s:\n\n", m.pairingHost) +
			styles.StyleInputFocused.Render(m.userInput.View()) +
			"\n\n" + styles.StyleHelp.Render("enter save • esc back to pairing")
	case StatePairing:
		content = m.renderPairing()
	case StateSuccess:
		content = styles.StyleSuccess.Render("✓ " + m.message)
	case StateError:
		content = styles.StyleError.Render("✗ "+api.Describe(m.err)) +
			"\n\n" + styles.StyleHelp.Render("r retry • esc back • q quit")
	}

	b.WriteString(lipgloss.Place(m.width, m.height-6, lipgloss.Center, lipgloss.Center, content))

	return b.String()
}

func (m SetupModel) renderBridgeList() string {
	var b strings.Builder

	if len(m.bridges) == 0 {
		b.WriteString(styles.StyleTextMuted.Render("No bridge found."))
		b.WriteString("\n\n")
	} else {
		b.WriteString("Found bridges:\n\n")
		for i, host := range m.bridges {
			cursor := "  "
			style := styles.StyleLightName
			if i == m.selected {
				cursor = "> "
				style = styles.StyleListItemSelected
			}
			b.WriteString(cursor + style.Render(host) + "\n")
		}
	}

	cursor := "  "
	style := styles.StyleLightName
	if m.selected >= len(m.bridges) {
		cursor = "> "
		style = styles.StyleListItemSelected
	}
	b.WriteString("\n" + cursor + style.Render("Enter IP manually...") + "\n")

	b.WriteString("\n" + styles.StyleHelp.Render("↑/↓ navigate • enter select • r rescan • m manual"))

	return b.String()
}

func (m SetupModel) renderPairing() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s Pairing with %s...\n\n", m.spinner.View(), m.pairingHost))
	b.WriteString(styles.StylePrimary.Render("Press the link button on your Hue bridge"))
	if m.attempts > 0 {
		left := m.pairWindow - m.now().Sub(m.pairingSince)
		b.WriteString(styles.StyleTextMuted.Render(fmt.Sprintf("\n\nattempt %d, %ds left", m.attempts, max(0, int(left.Seconds())))))
	}
	b.WriteString("\n\n" + styles.StyleHelp.Render("u enter username • esc cancel"))

	return b.String()
}

// Commands

func (m SetupModel) discoverCmd() tea.Cmd {
	discoverer := m.discoverer
	return func() tea.Msg {
		if discoverer == nil {
			return BridgesDiscoveredMsg{}
		}
		return BridgesDiscoveredMsg{Bridges: discoverer.Discover(context.Background(), false)}
	}
}

func (m SetupModel) pairCmd(host string) tea.Cmd {
	pairer := m.pairer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pairTimeout)
		defer cancel()

		username, err := pairer.CreateUser(ctx, host, api.DefaultDeviceType())
		return pairResultMsg{host: host, username: username, err: err}
	}
}

// Messages

type BridgesDiscoveredMsg struct {
	Bridges []string
}

type pairResultMsg struct {
	host     string
	username string
	err      error
}

type pairRetryMsg struct {
	host string
}

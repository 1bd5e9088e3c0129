package screens

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/angristan/hue-panel/internal/api"
	"github.com/angristan/hue-panel/internal/coordinator"
	"github.com/angristan/hue-panel/internal/models"
	"github.com/angristan/hue-panel/internal/tui/components"
	"github.com/angristan/hue-panel/internal/tui/messages"
	"github.com/angristan/hue-panel/internal/tui/styles"
)

// GridCollection is the name of the collection behind the tile grid
const GridCollection = "grid"

const (
	// DefaultRefreshInterval is how often the visible grid is refetched
	DefaultRefreshInterval = 15 * time.Second
	statusDuration         = 2 * time.Second
	brightnessStep         = 10
	tileHeight             = 4
)

// View is what the tile grid is showing
type View int

const (
	ViewRooms View = iota
	ViewLights
	ViewRoomLights
)

// MainModel is the main dashboard screen model
type MainModel struct {
	coord   *coordinator.Coordinator
	bridge  api.Bridge
	grid    *coordinator.Collection[[]models.ItemState]
	pending *PendingTracker

	view     View
	room     models.ItemState // set in ViewRoomLights
	items    []models.ItemState
	selected int
	scroll   int // first visible row

	loading bool
	spinner spinner.Model

	status   string
	statusID int
	now      time.Time

	refreshEvery time.Duration
	width        int
	height       int
}

// NewMainModel creates a new main screen model. All bridge calls go through
// coord.
func NewMainModel(coord *coordinator.Coordinator, bridge api.Bridge) MainModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.StyleSpinner

	return MainModel{
		coord:        coord,
		bridge:       bridge,
		grid:         coordinator.NewCollection[[]models.ItemState](coord, GridCollection),
		pending:      NewPendingTracker(),
		loading:      true,
		spinner:      sp,
		now:          time.Now(),
		refreshEvery: DefaultRefreshInterval,
	}
}

// Init starts the tick loops and requests the first snapshot
func (m MainModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		clockTickCmd(),
		autoRefreshCmd(m.refreshEvery),
		func() tea.Msg { return messages.RefreshMsg{} },
	)
}

func (m *MainModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.ensureVisible()
}

// SetRefreshInterval overrides the auto refresh period
func (m *MainModel) SetRefreshInterval(d time.Duration) {
	m.refreshEvery = d
}

// Items returns the tiles currently shown
func (m MainModel) Items() []models.ItemState {
	return m.items
}

// CurrentView returns what the grid is showing
func (m MainModel) CurrentView() View {
	return m.view
}

// Status returns the transient status message, if any
func (m MainModel) Status() string {
	return m.status
}

// Loading reports whether a fetch for the grid is outstanding
func (m MainModel) Loading() bool {
	return m.loading
}

// keyFor returns the command key of a tile in the current view
func (m MainModel) keyFor(item models.ItemState) models.ItemKey {
	if m.view == ViewRooms {
		return models.RoomKey(item.ID)
	}
	return models.LightKey(item.ID)
}

func (m MainModel) selectedItem() (int, models.ItemState, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return 0, models.ItemState{}, false
	}
	return m.selected, m.items[m.selected], true
}

// source names the bridge query behind the current view. Requests for the
// same source share one in-flight call.
func (m MainModel) source() (string, func(ctx context.Context) ([]models.ItemState, error)) {
	bridge := m.bridge
	switch m.view {
	case ViewLights:
		return "lights", func(ctx context.Context) ([]models.ItemState, error) {
			lights, err := bridge.ListLights(ctx)
			if err != nil {
				return nil, err
			}
			return models.Sorted(lights), nil
		}
	case ViewRoomLights:
		roomID := m.room.ID
		return fmt.Sprintf("room:%d", roomID), func(ctx context.Context) ([]models.ItemState, error) {
			lights, err := bridge.ListLightsForRoom(ctx, roomID)
			if err != nil {
				return nil, err
			}
			return models.Sorted(lights), nil
		}
	default:
		return "rooms", func(ctx context.Context) ([]models.ItemState, error) {
			rooms, err := bridge.ListRooms(ctx)
			if err != nil {
				return nil, err
			}
			return models.Sorted(rooms), nil
		}
	}
}

// fetch requests a fresh snapshot for the current view. Whatever an older
// request returns is discarded.
func (m *MainModel) fetch() {
	source, fn := m.source()
	m.grid.BeginFetch(source, fn)
	m.loading = true
}

// switchView shows v and fetches its contents. The old tiles are cleared so
// they are never mistaken for the new view's.
func (m *MainModel) switchView(v View) {
	m.view = v
	m.items = nil
	m.selected = 0
	m.scroll = 0
	m.fetch()
}

func (m *MainModel) setStatus(text string) tea.Cmd {
	m.statusID++
	m.status = text
	id := m.statusID
	return tea.Tick(statusDuration, func(time.Time) tea.Msg {
		return messages.ClearStatusMsg{ID: id}
	})
}

// HandleEvent applies a coordinator event to the screen
func (m *MainModel) HandleEvent(ev coordinator.Event) tea.Cmd {
	switch ev.Kind {
	case coordinator.EventSnapshot:
		if ev.Collection != m.grid.Name() || !m.grid.IsCurrent(ev.Token) {
			return nil
		}
		data, _ := ev.Data.([]models.ItemState)
		items := make([]models.ItemState, len(data))
		copy(items, data)
		for i := range items {
			m.pending.Reconcile(m.keyFor(items[i]), &items[i])
		}
		m.items = items
		m.loading = false
		if m.selected >= len(m.items) {
			m.selected = max(0, len(m.items)-1)
		}
		m.ensureVisible()
		return nil

	case coordinator.EventCommandDone:
		if ev.Err == nil {
			return nil
		}
		// Drop the optimistic value and show what the bridge really has
		m.pending.Forget(ev.Key)
		m.fetch()
		return m.setStatus(ev.Message)

	case coordinator.EventNotice:
		if ev.Collection == m.grid.Name() && m.grid.IsCurrent(ev.Token) {
			m.loading = false
		}
		return m.setStatus(ev.Message)
	}
	return nil
}

// toggle flips the selected tile. A tile with a command in flight ignores
// input.
func (m *MainModel) toggle() {
	i, item, ok := m.selectedItem()
	if !ok {
		return
	}
	key := m.keyFor(item)
	target := !item.On
	bridge := m.bridge

	dispatched := m.coord.Dispatch(key, func(ctx context.Context) error {
		_, err := api.SetOn(ctx, bridge, key, target)
		return err
	})
	if !dispatched {
		return
	}
	m.pending.Add(key, FieldOn, boolToInt(target), DirExact)
	m.items[i].On = target
}

// debouncer returns the brightness debouncer of key. Its commit goes
// through the busy guard like any other command.
func (m MainModel) debouncer(key models.ItemKey) *coordinator.Debouncer {
	coord, bridge := m.coord, m.bridge
	return coord.Debouncer(key, func(percent int) {
		sent := coord.Dispatch(key, func(ctx context.Context) error {
			_, err := api.SetBrightness(ctx, bridge, key, percent)
			return err
		})
		if !sent {
			// Runs off the UI thread; the failure event reverts the tile
			coord.Reject(key, coordinator.ErrDropped)
		}
	})
}

// setBrightness shows percent on the selected tile right away and commits
// it once input goes quiet.
func (m *MainModel) setBrightness(percent int, flush bool) {
	i, item, ok := m.selectedItem()
	if !ok {
		return
	}
	key := m.keyFor(item)
	if m.coord.Busy(key) {
		return
	}
	percent = max(1, min(100, percent))

	dir := DirExact
	switch {
	case percent > item.Brightness:
		dir = DirUp
	case percent < item.Brightness:
		dir = DirDown
	}

	d := m.debouncer(key)
	d.Set(percent)
	m.pending.Add(key, FieldBrightness, percent, dir)
	m.pending.Add(key, FieldOn, 1, DirExact)
	m.items[i].Brightness = percent
	m.items[i].On = true
	if flush {
		d.Flush()
	}
}

// nudge moves the selected tile's brightness by delta
func (m *MainModel) nudge(delta int) {
	_, item, ok := m.selectedItem()
	if !ok {
		return
	}
	current := item.Brightness
	if !item.On {
		current = 0
	}
	if v, ok := m.debouncer(m.keyFor(item)).Pending(); ok {
		current = v
	}
	m.setBrightness(current+delta, false)
}

// flushSelected commits a pending slider value now. It reports whether
// anything was pending.
func (m *MainModel) flushSelected() bool {
	_, item, ok := m.selectedItem()
	if !ok {
		return false
	}
	return m.debouncer(m.keyFor(item)).Flush()
}

// ApplyPreset sends a colour preset to key
func (m *MainModel) ApplyPreset(key models.ItemKey, preset models.ColorPreset) tea.Cmd {
	bridge := m.bridge
	dispatched := m.coord.Dispatch(key, func(ctx context.Context) error {
		_, err := api.SetColor(ctx, bridge, key, preset.Hue, preset.Saturation)
		return err
	})
	if !dispatched {
		return nil
	}

	name := key.String()
	for i := range m.items {
		if m.keyFor(m.items[i]) == key {
			m.items[i].On = true
			name = m.items[i].Name
		}
	}
	m.pending.Add(key, FieldOn, 1, DirExact)
	return m.setStatus(fmt.Sprintf("%s → %s", name, preset.Name))
}

func (m MainModel) Update(msg tea.Msg) (MainModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.ensureVisible()
			}

		case "down", "j":
			if m.selected < len(m.items)-1 {
				m.selected++
				m.ensureVisible()
			}

		case "home":
			m.selected = 0
			m.ensureVisible()

		case "end":
			m.selected = max(0, len(m.items)-1)
			m.ensureVisible()

		case "left", "h":
			m.nudge(-brightnessStep)

		case "right", "l":
			m.nudge(brightnessStep)

		case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
			if brightness := brightnessFromKey(msg.String()); brightness > 0 {
				m.setBrightness(brightness, true)
			}

		case " ":
			m.toggle()

		case "enter":
			if m.flushSelected() {
				break
			}
			if _, item, ok := m.selectedItem(); ok && m.view == ViewRooms {
				m.room = item
				m.switchView(ViewRoomLights)
			}

		case "esc", "backspace":
			if m.view == ViewRoomLights {
				m.switchView(ViewRooms)
			}

		case "tab":
			if m.view == ViewLights {
				m.switchView(ViewRooms)
			} else {
				m.switchView(ViewLights)
			}

		case "c":
			if _, item, ok := m.selectedItem(); ok {
				if !item.SupportsColor {
					cmds = append(cmds, m.setStatus(item.Name+" has no colour"))
					break
				}
				show := messages.ShowPresetsMsg{Key: m.keyFor(item), Name: item.Name}
				return m, func() tea.Msg { return show }
			}

		case "r":
			m.fetch()
			cmds = append(cmds, m.spinner.Tick)
		}

	case messages.RefreshMsg:
		m.fetch()

	case messages.AutoRefreshMsg:
		m.pending.Cleanup()
		m.fetch()
		cmds = append(cmds, autoRefreshCmd(m.refreshEvery))

	case messages.ClockMsg:
		m.now = time.Time(msg)
		cmds = append(cmds, clockTickCmd())

	case messages.ClearStatusMsg:
		if msg.ID == m.statusID {
			m.status = ""
		}

	case messages.StatusMsg:
		cmds = append(cmds, m.setStatus(msg.Text))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// visibleRows returns how many tile rows fit in the viewport
func (m MainModel) visibleRows() int {
	// header, tabs, blank, status, help
	return max(1, (m.height-6)/tileHeight)
}

// ensureVisible adjusts scroll so the selected tile's row is visible
func (m *MainModel) ensureVisible() {
	_, perRow := components.TileWidth(m.width)
	row := m.selected / perRow
	visible := m.visibleRows()

	if row < m.scroll {
		m.scroll = row
	}
	if row >= m.scroll+visible {
		m.scroll = row - visible + 1
	}
	totalRows := (len(m.items) + perRow - 1) / perRow
	m.scroll = max(0, min(m.scroll, totalRows-visible))
}

func (m MainModel) View() string {
	var b strings.Builder

	status := lipgloss.NewStyle().Foreground(styles.ColorSuccess).Render("● Connected")
	if m.loading {
		status = styles.StyleWarning.Render(m.spinner.View() + " Loading...")
	}
	b.WriteString(components.RenderHeader(m.width, " HUE ", status, m.now.Format("15:04")))
	b.WriteString("\n")

	active := 0
	if m.view == ViewLights {
		active = 1
	}
	tabs := components.RenderTabs([]string{"Rooms", "Lights"}, active)
	if m.view == ViewRoomLights {
		tabs += styles.StylePrimary.Render("  › " + m.room.Name)
	}
	b.WriteString(tabs)
	b.WriteString("\n\n")

	b.WriteString(m.renderGrid())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m MainModel) renderGrid() string {
	if len(m.items) == 0 {
		if m.loading {
			return fmt.Sprintf("  %s Loading...", m.spinner.View())
		}
		return styles.StyleTextMuted.Render("  Nothing here")
	}

	width, perRow := components.TileWidth(m.width)
	first := m.scroll * perRow
	last := min(len(m.items), first+m.visibleRows()*perRow)

	tiles := make([]string, 0, last-first)
	for i := first; i < last; i++ {
		item := m.items[i]
		busy := m.coord.Busy(m.keyFor(item))
		tiles = append(tiles, components.RenderTile(item, i == m.selected, busy, width))
	}

	grid := components.RenderGrid(tiles, perRow)
	if last < len(m.items) {
		grid += "\n" + styles.StyleTextMuted.Render(fmt.Sprintf("  ↓ %d more", len(m.items)-last))
	}
	return grid
}

func (m MainModel) renderStatusBar() string {
	if m.status != "" {
		return styles.StylePrimary.Render(m.status)
	}

	on := 0
	for _, item := range m.items {
		if item.On {
			on++
		}
	}
	noun := "lights"
	if m.view == ViewRooms {
		noun = "rooms"
	}
	return styles.StyleTextMuted.Render(fmt.Sprintf("%d/%d %s on", on, len(m.items), noun))
}

func (m MainModel) renderHelp() string {
	keys := []string{
		styles.StyleHelpKey.Render("↑↓") + " nav",
		styles.StyleHelpKey.Render("←→") + " dim",
		styles.StyleHelpKey.Render("space") + " toggle",
		styles.StyleHelpKey.Render("enter") + " open/apply",
		styles.StyleHelpKey.Render("tab") + " rooms/lights",
		styles.StyleHelpKey.Render("c") + " colour",
		styles.StyleHelpKey.Render("r") + " refresh",
		styles.StyleHelpKey.Render("q") + " quit",
	}

	// For narrow terminals, show fewer keys
	if m.width < 60 {
		keys = []string{
			styles.StyleHelpKey.Render("↑↓") + " nav",
			styles.StyleHelpKey.Render("space") + " toggle",
			styles.StyleHelpKey.Render("q") + " quit",
		}
	}

	return styles.StyleHelp.Render(strings.Join(keys, "  "))
}

func clockTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return messages.ClockMsg(t)
	})
}

func autoRefreshCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return messages.AutoRefreshMsg(t)
	})
}

func brightnessFromKey(key string) int {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return -1
	}
	if key == "0" {
		return 100
	}
	return int(key[0]-'0') * 10
}

package emulator

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amimof/huego"
	"github.com/google/uuid"
)

// Bridge is an in-memory Hue bridge speaking the v1 REST API. It backs demo
// mode, the emulate command and end-to-end tests.
type Bridge struct {
	mu        sync.RWMutex
	lights    map[int]*huego.Light
	groups    map[int]*huego.Group
	users     map[string]struct{}
	linkUntil time.Time

	bridgeID string
	latency  time.Duration
	requests atomic.Int64
}

// Option configures a Bridge
type Option func(*Bridge)

// WithLatency delays every API response by d
func WithLatency(d time.Duration) Option {
	return func(b *Bridge) {
		b.latency = d
	}
}

// WithUser registers an already paired username
func WithUser(username string) Option {
	return func(b *Bridge) {
		b.users[username] = struct{}{}
	}
}

// WithDemoData seeds the bridge with a few furnished rooms
func WithDemoData() Option {
	return func(b *Bridge) {
		b.seedDemoData()
	}
}

// New creates an empty bridge
func New(opts ...Option) *Bridge {
	b := &Bridge{
		lights:   make(map[int]*huego.Light),
		groups:   make(map[int]*huego.Group),
		users:    make(map[string]struct{}),
		bridgeID: "001788FFFE0DE4A1",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BridgeID returns the identifier advertised in description.xml
func (b *Bridge) BridgeID() string {
	return b.bridgeID
}

// Requests returns how many API requests have been served
func (b *Bridge) Requests() int64 {
	return b.requests.Load()
}

// PressLinkButton opens the pairing window for d
func (b *Bridge) PressLinkButton(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.linkUntil = time.Now().Add(d)
}

// AddUser registers username as paired
func (b *Bridge) AddUser(username string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[username] = struct{}{}
}

// Users returns the paired usernames
func (b *Bridge) Users() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	users := make([]string, 0, len(b.users))
	for u := range b.users {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

// AddLight adds or replaces a light. Colour lights report colormode "hs",
// white ambiance lights "ct" and plain dimmables no colour mode at all.
func (b *Bridge) AddLight(id int, name string, kind LightKind, on bool, bri uint8) {
	state := &huego.State{On: on, Bri: bri, Reachable: true}
	light := &huego.Light{
		ID:               id,
		Name:             name,
		State:            state,
		ManufacturerName: "Signify Netherlands B.V.",
		UniqueID:         "00:17:88:01:00:00:00:" + strconv.Itoa(10+id) + "-0b",
	}
	switch kind {
	case ColorLight:
		state.ColorMode = "hs"
		state.Hue = 8402
		state.Sat = 140
		light.Type = "Extended color light"
		light.ModelID = "LCT015"
	case AmbianceLight:
		state.ColorMode = "ct"
		state.Ct = 366
		light.Type = "Color temperature light"
		light.ModelID = "LTW001"
	default:
		light.Type = "Dimmable light"
		light.ModelID = "LWB010"
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lights[id] = light
}

// AddGroup adds or replaces a group. groupType is the bridge's group type,
// e.g. "Room", "Zone" or "Entertainment".
func (b *Bridge) AddGroup(id int, name, groupType string, lightIDs ...int) {
	members := make([]string, len(lightIDs))
	for i, lid := range lightIDs {
		members[i] = strconv.Itoa(lid)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	g := &huego.Group{
		ID:     id,
		Name:   name,
		Type:   groupType,
		Lights: members,
		State:  &huego.State{},
	}
	b.groups[id] = g
	b.refreshGroup(g)
}

// LightKind selects the capabilities of an emulated light
type LightKind int

const (
	DimmableLight LightKind = iota
	AmbianceLight
	ColorLight
)

// LightState returns a copy of a light's state
func (b *Bridge) LightState(id int) (huego.State, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	l, ok := b.lights[id]
	if !ok {
		return huego.State{}, false
	}
	return *l.State, true
}

// register mints a new username if the link button window is open
func (b *Bridge) register() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if time.Now().After(b.linkUntil) {
		return "", false
	}
	username := strings.ReplaceAll(uuid.NewString(), "-", "")
	b.users[username] = struct{}{}
	return username, true
}

func (b *Bridge) authorized(username string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.users[username]
	return ok
}

// refreshGroup recomputes a group's aggregate state and mirrors the first
// member's colour capability into its action. Callers hold b.mu.
func (b *Bridge) refreshGroup(g *huego.Group) {
	allOn, anyOn := len(g.Lights) > 0, false
	for _, key := range g.Lights {
		id, _ := strconv.Atoi(key)
		l, ok := b.lights[id]
		if !ok {
			continue
		}
		if l.State.On {
			anyOn = true
		} else {
			allOn = false
		}
		if g.State.Bri == 0 {
			g.State.Bri = l.State.Bri
		}
		if g.State.ColorMode == "" {
			g.State.ColorMode = l.State.ColorMode
		}
	}
	g.GroupState = &huego.GroupState{AllOn: allOn, AnyOn: anyOn}
	g.State.On = anyOn
}

func (b *Bridge) seedDemoData() {
	b.AddLight(1, "Ceiling Light", ColorLight, true, 203)
	b.AddLight(2, "Floor Lamp", ColorLight, true, 152)
	b.AddLight(3, "TV Bias Light", ColorLight, true, 101)
	b.AddLight(4, "Accent Strip", ColorLight, false, 254)
	b.AddLight(5, "Bedside Left", AmbianceLight, true, 76)
	b.AddLight(6, "Bedside Right", AmbianceLight, false, 76)
	b.AddLight(7, "Bedroom Ceiling", ColorLight, false, 200)
	b.AddLight(8, "Main Light", AmbianceLight, true, 254)
	b.AddLight(9, "Under Cabinet", DimmableLight, true, 127)
	b.AddLight(10, "Desk Lamp", AmbianceLight, true, 254)
	b.AddLight(11, "Monitor Light", ColorLight, false, 150)
	b.AddLight(12, "Bookshelf", DimmableLight, false, 100)

	b.AddGroup(1, "Living Room", "Room", 1, 2, 3, 4)
	b.AddGroup(2, "Bedroom", "Room", 5, 6, 7)
	b.AddGroup(3, "Kitchen", "Room", 8, 9)
	b.AddGroup(4, "Office", "Room", 10, 11, 12)
	b.AddGroup(5, "Downstairs", "Zone", 1, 2, 3, 4, 8, 9)
	b.AddGroup(6, "TV Area", "Entertainment", 3, 4)
}

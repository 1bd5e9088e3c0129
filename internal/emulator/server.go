package emulator

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/amimof/huego"
	"go.uber.org/zap"

	"github.com/angristan/hue-panel/internal/logging"
)

// Bridge error types emitted by the emulator
const (
	errUnauthorized      = 1
	errInvalidJSON       = 2
	errNotAvailable      = 3
	errMethodUnavailable = 4
	errParamUnavailable  = 6
	errInvalidValue      = 7
	errLinkButton        = 101
)

type apiError struct {
	Type        int    `json:"type"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

// Handler returns the HTTP handler serving the bridge
func (b *Bridge) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/description.xml", b.handleDescription)
	mux.HandleFunc("/api", b.handleAPI)
	mux.HandleFunc("/api/", b.handleAPI)
	return mux
}

func (b *Bridge) handleDescription(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/xml")
	w.Header().Set("hue-bridgeid", b.bridgeID)
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8" ?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
<specVersion>
<major>1</major>
<minor>0</minor>
</specVersion>
<URLBase>http://%s/</URLBase>
<device>
<deviceType>urn:schemas-upnp-org:device:Basic:1</deviceType>
<friendlyName>Philips hue (%s)</friendlyName>
<manufacturer>Signify</manufacturer>
<modelDescription>Philips hue Personal Wireless Lighting</modelDescription>
<modelName>Philips hue bridge 2015</modelName>
<modelNumber>BSB002</modelNumber>
<serialNumber>%s</serialNumber>
<UDN>uuid:2f402f80-da50-11e1-9b23-%s</UDN>
</device>
</root>`, r.Host, r.Host, strings.ToLower(b.bridgeID), strings.ToLower(b.bridgeID[len(b.bridgeID)-12:]))
}

func (b *Bridge) handleAPI(w http.ResponseWriter, r *http.Request) {
	b.requests.Add(1)
	if b.latency > 0 {
		select {
		case <-time.After(b.latency):
		case <-r.Context().Done():
			return
		}
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api"), "/")
	logging.Debug("Emulator request", zap.String("method", r.Method), zap.String("path", path))

	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, errMethodUnavailable, "/", "method, "+r.Method+", not available for resource, /")
			return
		}
		b.handleRegister(w, r)
		return
	}

	parts := strings.Split(path, "/")
	if !b.authorized(parts[0]) {
		writeError(w, errUnauthorized, "/"+strings.Join(parts[1:], "/"), "unauthorized user")
		return
	}

	rest := parts[1:]
	if len(rest) == 0 {
		writeError(w, errNotAvailable, "/", "resource, /, not available")
		return
	}

	switch {
	case rest[0] == "lights" && len(rest) == 1 && r.Method == http.MethodGet:
		b.handleGetLights(w)
	case rest[0] == "lights" && len(rest) == 2 && r.Method == http.MethodGet:
		b.handleGetLight(w, rest[1])
	case rest[0] == "lights" && len(rest) == 3 && rest[2] == "state" && r.Method == http.MethodPut:
		b.handleSetLightState(w, r, rest[1])
	case rest[0] == "groups" && len(rest) == 1 && r.Method == http.MethodGet:
		b.handleGetGroups(w)
	case rest[0] == "groups" && len(rest) == 2 && r.Method == http.MethodGet:
		b.handleGetGroup(w, rest[1])
	case rest[0] == "groups" && len(rest) == 3 && rest[2] == "action" && r.Method == http.MethodPut:
		b.handleSetGroupAction(w, r, rest[1])
	default:
		address := "/" + strings.Join(rest, "/")
		writeError(w, errNotAvailable, address, "resource, "+address+", not available")
	}
}

func (b *Bridge) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceType string `json:"devicetype"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errInvalidJSON, "", "body contains invalid json")
		return
	}
	if req.DeviceType == "" || len(req.DeviceType) > 40 {
		writeError(w, errInvalidValue, "/devicetype", "invalid value, "+req.DeviceType+", for parameter, devicetype")
		return
	}

	username, ok := b.register()
	if !ok {
		writeError(w, errLinkButton, "", "link button not pressed")
		return
	}
	logging.Info("Emulator paired client", zap.String("devicetype", req.DeviceType))
	writeJSON(w, []map[string]any{{"success": map[string]string{"username": username}}})
}

func (b *Bridge) handleGetLights(w http.ResponseWriter) {
	b.mu.RLock()
	lights := make(map[string]huego.Light, len(b.lights))
	for id, l := range b.lights {
		lights[strconv.Itoa(id)] = copyLight(l)
	}
	b.mu.RUnlock()
	writeJSON(w, lights)
}

func (b *Bridge) handleGetLight(w http.ResponseWriter, key string) {
	b.mu.RLock()
	l, ok := b.lookupLight(key)
	var out huego.Light
	if ok {
		out = copyLight(l)
	}
	b.mu.RUnlock()

	if !ok {
		writeError(w, errNotAvailable, "/lights/"+key, "resource, /lights/"+key+", not available")
		return
	}
	writeJSON(w, out)
}

func (b *Bridge) handleGetGroups(w http.ResponseWriter) {
	b.mu.RLock()
	groups := make(map[string]huego.Group, len(b.groups))
	for id, g := range b.groups {
		groups[strconv.Itoa(id)] = copyGroup(g)
	}
	b.mu.RUnlock()
	writeJSON(w, groups)
}

func (b *Bridge) handleGetGroup(w http.ResponseWriter, key string) {
	b.mu.RLock()
	g, ok := b.lookupGroup(key)
	var out huego.Group
	if ok {
		out = copyGroup(g)
	}
	b.mu.RUnlock()

	if !ok {
		writeError(w, errNotAvailable, "/groups/"+key, "resource, /groups/"+key+", not available")
		return
	}
	writeJSON(w, out)
}

func (b *Bridge) handleSetLightState(w http.ResponseWriter, r *http.Request, key string) {
	address := "/lights/" + key + "/state"
	update, apiErr := parseUpdate(r, address)
	if apiErr != nil {
		writeErrors(w, *apiErr)
		return
	}

	b.mu.Lock()
	l, ok := b.lookupLight(key)
	if ok {
		update.apply(l.State)
		for _, g := range b.groups {
			if contains(g.Lights, key) {
				b.refreshGroup(g)
			}
		}
	}
	b.mu.Unlock()

	if !ok {
		writeError(w, errNotAvailable, "/lights/"+key, "resource, /lights/"+key+", not available")
		return
	}
	writeJSON(w, update.successes(address))
}

func (b *Bridge) handleSetGroupAction(w http.ResponseWriter, r *http.Request, key string) {
	address := "/groups/" + key + "/action"
	update, apiErr := parseUpdate(r, address)
	if apiErr != nil {
		writeErrors(w, *apiErr)
		return
	}

	b.mu.Lock()
	g, ok := b.lookupGroup(key)
	if ok {
		update.apply(g.State)
		for _, member := range g.Lights {
			if l, found := b.lookupLight(member); found {
				update.applyToMember(l.State)
			}
		}
		for _, other := range b.groups {
			b.refreshGroup(other)
		}
	}
	b.mu.Unlock()

	if !ok {
		writeError(w, errNotAvailable, "/groups/"+key, "resource, /groups/"+key+", not available")
		return
	}
	writeJSON(w, update.successes(address))
}

func (b *Bridge) lookupLight(key string) (*huego.Light, bool) {
	id, err := strconv.Atoi(key)
	if err != nil {
		return nil, false
	}
	l, ok := b.lights[id]
	return l, ok
}

func (b *Bridge) lookupGroup(key string) (*huego.Group, bool) {
	id, err := strconv.Atoi(key)
	if err != nil {
		return nil, false
	}
	g, ok := b.groups[id]
	return g, ok
}

// stateUpdate holds the recognised fields of a state or action body
type stateUpdate struct {
	on  *bool
	bri *uint8
	hue *uint16
	sat *uint8
}

func parseUpdate(r *http.Request, address string) (stateUpdate, *apiError) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return stateUpdate{}, &apiError{Type: errInvalidJSON, Address: address, Description: "body contains invalid json"}
	}

	var u stateUpdate
	for name, raw := range body {
		invalid := &apiError{
			Type:        errInvalidValue,
			Address:     address + "/" + name,
			Description: fmt.Sprintf("invalid value, %s, for parameter, %s", raw, name),
		}
		switch name {
		case "on":
			var v bool
			if json.Unmarshal(raw, &v) != nil {
				return stateUpdate{}, invalid
			}
			u.on = &v
		case "bri":
			v, ok := intInRange(raw, 1, 254)
			if !ok {
				return stateUpdate{}, invalid
			}
			bri := uint8(v)
			u.bri = &bri
		case "hue":
			v, ok := intInRange(raw, 0, 65535)
			if !ok {
				return stateUpdate{}, invalid
			}
			hue := uint16(v)
			u.hue = &hue
		case "sat":
			v, ok := intInRange(raw, 0, 254)
			if !ok {
				return stateUpdate{}, invalid
			}
			sat := uint8(v)
			u.sat = &sat
		default:
			return stateUpdate{}, &apiError{
				Type:        errParamUnavailable,
				Address:     address + "/" + name,
				Description: "parameter, " + name + ", not available",
			}
		}
	}
	return u, nil
}

func intInRange(raw json.RawMessage, lo, hi int) (int, bool) {
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, v >= lo && v <= hi
}

func (u stateUpdate) apply(s *huego.State) {
	if u.on != nil {
		s.On = *u.on
	}
	if u.bri != nil {
		s.Bri = *u.bri
	}
	if u.hue != nil {
		s.Hue = *u.hue
		s.ColorMode = "hs"
	}
	if u.sat != nil {
		s.Sat = *u.sat
		s.ColorMode = "hs"
	}
}

// applyToMember applies a group action to a member light. Colour is only
// applied to lights that can show it.
func (u stateUpdate) applyToMember(s *huego.State) {
	colorCapable := s.ColorMode == "hs" || s.ColorMode == "xy"
	if !colorCapable {
		u.hue, u.sat = nil, nil
	}
	u.apply(s)
}

func (u stateUpdate) successes(address string) []map[string]any {
	values := map[string]any{}
	if u.on != nil {
		values["on"] = *u.on
	}
	if u.bri != nil {
		values["bri"] = *u.bri
	}
	if u.hue != nil {
		values["hue"] = *u.hue
	}
	if u.sat != nil {
		values["sat"] = *u.sat
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]map[string]any, 0, len(names))
	for _, name := range names {
		out = append(out, map[string]any{
			"success": map[string]any{address + "/" + name: values[name]},
		})
	}
	return out
}

func copyLight(l *huego.Light) huego.Light {
	out := *l
	state := *l.State
	out.State = &state
	return out
}

func copyGroup(g *huego.Group) huego.Group {
	out := *g
	action := *g.State
	out.State = &action
	if g.GroupState != nil {
		gs := *g.GroupState
		out.GroupState = &gs
	}
	out.Lights = append([]string(nil), g.Lights...)
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("Emulator failed to write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, errType int, address, description string) {
	writeErrors(w, apiError{Type: errType, Address: address, Description: description})
}

func writeErrors(w http.ResponseWriter, errs ...apiError) {
	out := make([]map[string]apiError, len(errs))
	for i, e := range errs {
		out[i] = map[string]apiError{"error": e}
	}
	writeJSON(w, out)
}

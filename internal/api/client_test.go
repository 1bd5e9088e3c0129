package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angristan/hue-panel/internal/config"
	"github.com/angristan/hue-panel/internal/emulator"
	"github.com/angristan/hue-panel/internal/models"
)

func newEmulated(t *testing.T) (*emulator.Bridge, *httptest.Server, *Client) {
	t.Helper()
	bridge := emulator.New(emulator.WithDemoData(), emulator.WithUser("tester"))
	srv := httptest.NewServer(bridge.Handler())
	t.Cleanup(srv.Close)

	host := strings.TrimPrefix(srv.URL, "http://")
	client := NewClient(StaticConfig{BridgeIP: host, Username: "tester"}, WithHTTPClient(srv.Client()))
	return bridge, srv, client
}

func TestConfigMissingBeforeNetwork(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	client := NewClient(StaticConfig{}, WithHTTPClient(srv.Client()))
	_, err := client.ListLights(context.Background())

	assert.ErrorIs(t, err, ErrConfigMissing)
	assert.Equal(t, KindConfigMissing, KindOf(err))
	assert.Zero(t, hits)
}

func TestClientReadsConfigOnEveryCall(t *testing.T) {
	bridge, srv, _ := newEmulated(t)
	bridge.AddUser("second")

	t.Setenv(config.EnvBridgeIP, "")
	t.Setenv(config.EnvUsername, "")
	store, err := config.NewStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	client := NewClient(store, WithHTTPClient(srv.Client()))
	_, err = client.ListRooms(context.Background())
	require.ErrorIs(t, err, ErrConfigMissing)

	host := strings.TrimPrefix(srv.URL, "http://")
	require.NoError(t, store.Save(config.BridgeConfig{BridgeIP: host, Username: "second"}))

	rooms, err := client.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Len(t, rooms, 4)
}

func TestListRoomsOnlyRooms(t *testing.T) {
	_, _, client := newEmulated(t)

	rooms, err := client.ListRooms(context.Background())
	require.NoError(t, err)

	require.Len(t, rooms, 4)
	assert.Equal(t, "Living Room", rooms[1].Name)
	assert.True(t, rooms[1].On)
	assert.True(t, rooms[1].SupportsColor)
	_, hasZone := rooms[5]
	assert.False(t, hasZone)
}

func TestListLights(t *testing.T) {
	_, _, client := newEmulated(t)

	lights, err := client.ListLights(context.Background())
	require.NoError(t, err)
	require.Len(t, lights, 12)

	assert.Equal(t, models.LightState{ID: 1, Name: "Ceiling Light", On: true, Brightness: 80, SupportsColor: true}, lights[1])
	assert.False(t, lights[4].On)
	assert.False(t, lights[9].SupportsColor)
}

func TestListLightsForRoom(t *testing.T) {
	_, _, client := newEmulated(t)

	lights, err := client.ListLightsForRoom(context.Background(), 3)
	require.NoError(t, err)

	require.Len(t, lights, 2)
	assert.Equal(t, "Main Light", lights[8].Name)
	assert.Equal(t, "Under Cabinet", lights[9].Name)
}

func TestSetLightOnThenRead(t *testing.T) {
	_, _, client := newEmulated(t)
	ctx := context.Background()

	resp, err := client.SetLightOn(ctx, 3, false)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"success":{"/lights/3/state/on":false}}]`, string(resp))

	on, err := client.IsLightOn(ctx, 3)
	require.NoError(t, err)
	assert.False(t, on)
}

func TestSetRoomBrightnessTurnsOn(t *testing.T) {
	bridge, _, client := newEmulated(t)
	ctx := context.Background()

	_, err := client.SetRoomOn(ctx, 2, false)
	require.NoError(t, err)
	on, err := client.IsRoomOn(ctx, 2)
	require.NoError(t, err)
	require.False(t, on)

	_, err = client.SetRoomBrightness(ctx, 2, 50)
	require.NoError(t, err)

	on, err = client.IsRoomOn(ctx, 2)
	require.NoError(t, err)
	assert.True(t, on)

	state, _ := bridge.LightState(5)
	assert.Equal(t, uint8(127), state.Bri)
}

func TestSetLightColor(t *testing.T) {
	bridge, _, client := newEmulated(t)

	_, err := client.SetLightColor(context.Background(), 4, 200, 60)
	require.NoError(t, err)

	state, _ := bridge.LightState(4)
	assert.True(t, state.On)
	assert.Equal(t, uint16(HueToDevice(200)), state.Hue)
	assert.Equal(t, uint8(SaturationToDevice(60)), state.Sat)
}

func TestUnauthorizedUserIsBridgeError(t *testing.T) {
	_, srv, _ := newEmulated(t)
	host := strings.TrimPrefix(srv.URL, "http://")
	client := NewClient(StaticConfig{BridgeIP: host, Username: "stranger"}, WithHTTPClient(srv.Client()))

	_, err := client.ListLights(context.Background())

	var apiErr *BridgeAPIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 1, apiErr.Type)
	assert.Equal(t, "Hue error 1: unauthorized user (/lights)", Describe(err))
}

func TestMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>captive portal</html>"))
	}))
	defer srv.Close()

	client := NewClient(StaticConfig{BridgeIP: strings.TrimPrefix(srv.URL, "http://"), Username: "u"}, WithHTTPClient(srv.Client()))
	_, err := client.ListRooms(context.Background())

	assert.Equal(t, KindMalformedResponse, KindOf(err))
}

func TestTimeoutClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	hc := srv.Client()
	hc.Timeout = 50 * time.Millisecond
	client := NewClient(StaticConfig{BridgeIP: strings.TrimPrefix(srv.URL, "http://"), Username: "u"}, WithHTTPClient(hc))

	_, err := client.ListLights(context.Background())
	assert.Equal(t, KindNetworkTimeout, KindOf(err))
	assert.Equal(t, "Bridge not responding (timeout)", Describe(err))
}

func TestUnreachableClassified(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	host := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	client := NewClient(StaticConfig{BridgeIP: host, Username: "u"})
	_, err := client.ListLights(context.Background())
	assert.Equal(t, KindNetworkUnreachable, KindOf(err))
}

func TestCommandReturnsPayloadUnchanged(t *testing.T) {
	payload := `[{"success":{"/groups/1/action/on":true}}]`
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/u/groups/1/action", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	client := NewClient(StaticConfig{BridgeIP: strings.TrimPrefix(srv.URL, "http://"), Username: "u"}, WithHTTPClient(srv.Client()))
	resp, err := client.SetRoomColor(context.Background(), 1, 30, 90)
	require.NoError(t, err)

	assert.JSONEq(t, payload, string(resp))
	assert.Equal(t, map[string]any{"on": true, "hue": float64(5461), "sat": float64(229)}, gotBody)
}

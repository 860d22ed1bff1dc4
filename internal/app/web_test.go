// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"image/png"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/geo_scene/internal/config"
	"github.com/relabs-tech/geo_scene/internal/env"
	"github.com/relabs-tech/geo_scene/internal/geo"
	"github.com/relabs-tech/geo_scene/internal/markers"
	"github.com/relabs-tech/geo_scene/internal/orientation"
	"github.com/relabs-tech/geo_scene/internal/scene"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ARScale:             1,
		GlobeRadius:         5,
		GlobeMarkerLift:     0.1,
		GlobeCameraDistance: 15,
		GlobeSpinPerFrame:   0.01,
		MapSync:             true,
		MapZoom:             10,
		FrameInterval:       10,
		DefaultLat:          48.8566,
		DefaultLon:          2.3522,
		DefaultAlt:          35,
		SeaLevelPressurePa:  env.StandardSeaLevelPa,
		WebStaticDir:        t.TempDir(),
	}
}

func newTestServer(t *testing.T) (*webServer, *httptest.Server) {
	t.Helper()
	s := newWebServer(testConfig(t), zerolog.Nop())
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestWeb_ARFrameWaitsForFix(t *testing.T) {
	_, ts := newTestServer(t)

	var f scene.ARFrame
	getJSON(t, ts.URL+"/api/frame/ar", &f)
	assert.Nil(t, f.User)
	assert.Empty(t, f.Placements)
	assert.Equal(t, orientation.OrderYXZ, f.Camera.Order)
}

func TestWeb_ARFrameFallsBackToDefault(t *testing.T) {
	s, ts := newTestServer(t)
	s.started = time.Now().Add(-time.Minute)

	var f scene.ARFrame
	getJSON(t, ts.URL+"/api/frame/ar", &f)
	require.NotNil(t, f.User)
	assert.Equal(t, 48.8566, f.User.Latitude)
	assert.Len(t, f.Placements, 4)
}

func TestWeb_FixAndOrientationDriveFrame(t *testing.T) {
	s, ts := newTestServer(t)
	s.onFix(geo.NewPointAlt(48.8530, 2.3499, 90))
	s.onOrientation(orientation.Sample{Heading: 90})

	var f scene.ARFrame
	getJSON(t, ts.URL+"/api/frame/ar", &f)
	require.NotNil(t, f.User)
	assert.Equal(t, 48.8530, f.User.Latitude)
	assert.InDelta(t, math.Pi/2, f.Camera.Y, 1e-9)

	var nd *scene.Placement
	for i := range f.Placements {
		if f.Placements[i].Marker.Label == "Notre-Dame" {
			nd = &f.Placements[i]
		}
	}
	require.NotNil(t, nd)
	assert.InDelta(t, 0, nd.DistanceMeters, 1e-6)
	assert.InDelta(t, 0, nd.Position.Y, 1e-9)
}

func TestWeb_InvalidFixIgnored(t *testing.T) {
	s, _ := newTestServer(t)
	s.onFix(geo.NewPoint(95, 0))
	_, ok := s.tracker.User()
	assert.False(t, ok)
}

func TestWeb_BaroAltitudeFillsFix(t *testing.T) {
	s, _ := newTestServer(t)
	s.onBaro(env.Sample{Source: "phone", Pressure: 89875})
	s.onBaro(env.Sample{Pressure: -1}) // ignored
	s.onFix(geo.NewPoint(48.8566, 2.3522))

	u := s.user()
	require.NotNil(t, u)
	assert.InDelta(t, 1000, u.Alt(), 5)
}

func TestWeb_State(t *testing.T) {
	s, ts := newTestServer(t)
	s.onOrientation(orientation.Sample{Heading: 45})

	var st scene.State
	getJSON(t, ts.URL+"/api/state", &st)
	assert.True(t, st.HasOrientation)
	assert.Equal(t, 45.0, st.Orientation.Heading)
	assert.Nil(t, st.Fix)
}

func TestWeb_GlobeFrame(t *testing.T) {
	s, ts := newTestServer(t)

	var f scene.GlobeFrame
	getJSON(t, ts.URL+"/api/frame/globe", &f)
	assert.Equal(t, 5.0, f.Radius)
	assert.Empty(t, f.Placements)
	assert.Nil(t, f.Camera)
	require.NotNil(t, f.Map)
	assert.Equal(t, 0.0, f.Map.Center.Latitude)

	s.globe.Add(markers.Marker{ID: "country-FR", Point: geo.NewPoint(46, 2), Label: "France", Kind: markers.KindCountry})
	s.onFix(markers.DefaultFix())

	getJSON(t, ts.URL+"/api/frame/globe", &f)
	require.Len(t, f.Placements, 2)
	assert.Equal(t, markers.KindUser, f.Placements[1].Marker.Kind)
	require.NotNil(t, f.Camera)
	require.NotNil(t, f.Map)
	assert.Equal(t, 518, f.Map.TileX)
	assert.Equal(t, 352, f.Map.TileY)
}

func TestWeb_PinFocusesGlobeAndMap(t *testing.T) {
	s, ts := newTestServer(t)
	s.onFix(markers.DefaultFix())

	resp, err := http.Post(ts.URL+"/api/pins", "application/json", strings.NewReader(`{"lat":-33.9,"lon":151.2}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var f scene.GlobeFrame
	getJSON(t, ts.URL+"/api/frame/globe", &f)
	require.NotNil(t, f.Map)
	assert.Equal(t, -33.9, f.Map.Center.Latitude)
	assert.Equal(t, 151.2, f.Map.Center.Longitude)
	assert.Equal(t, 10, f.Map.Zoom)

	require.NotNil(t, f.Camera)
	want := s.globeView.Focus(geo.NewPoint(-33.9, 151.2), f.Spin)
	assert.InDelta(t, want.Position.X, f.Camera.Position.X, 1e-9)
	assert.InDelta(t, want.Position.Y, f.Camera.Position.Y, 1e-9)
	assert.InDelta(t, want.Position.Z, f.Camera.Position.Z, 1e-9)

	p, ok := s.tracker.User()
	require.True(t, ok)
	assert.Equal(t, 48.8566, p.Latitude, "user fix is untouched")
}

func TestWeb_Focus(t *testing.T) {
	s, ts := newTestServer(t)
	s.onFix(markers.DefaultFix())

	post := func(body string) int {
		resp, err := http.Post(ts.URL+"/api/focus", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, post(`{"lat":35.68,"lon":139.69,"zoom":4}`))
	var f scene.GlobeFrame
	getJSON(t, ts.URL+"/api/frame/globe", &f)
	require.NotNil(t, f.Map)
	assert.Equal(t, 35.68, f.Map.Center.Latitude)
	assert.Equal(t, 4, f.Map.Zoom)

	// A clicked marker recentres the map at a fixed zoom.
	assert.Equal(t, http.StatusOK, post(`{"id":"notre-dame"}`))
	getJSON(t, ts.URL+"/api/frame/globe", &f)
	nd, _ := s.landmarks.Get("notre-dame")
	assert.Equal(t, nd.Point.Latitude, f.Map.Center.Latitude)
	assert.Equal(t, markerFocusZoom, f.Map.Zoom)

	assert.Equal(t, http.StatusNotFound, post(`{"id":"nowhere"}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"lat":95,"lon":0}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"lat":10}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"lat":10,"lon":10,"zoom":-1}`))
	assert.Equal(t, http.StatusBadRequest, post(`not json`))

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/focus", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	getJSON(t, ts.URL+"/api/frame/globe", &f)
	assert.Equal(t, 48.8566, f.Map.Center.Latitude, "back on the user")
	assert.Equal(t, 10, f.Map.Zoom)
}

func TestWeb_FocusMessage(t *testing.T) {
	s, _ := newTestServer(t)

	p := geo.NewPoint(-33.9, 151.2)
	s.applyMessage(wsMessage{Action: "focus", Fix: &p})
	st := s.tracker.Snapshot()
	require.NotNil(t, st.Focus)
	assert.Equal(t, p, st.Focus.Point)
	assert.Nil(t, st.Fix, "focus is not a fix")

	bad := geo.NewPoint(-100, 0)
	s.applyMessage(wsMessage{Action: "focus", Fix: &bad})
	assert.Equal(t, p, s.tracker.Snapshot().Focus.Point)

	s.applyMessage(wsMessage{Action: "focus", ID: "tour-eiffel"})
	f := s.globeFrame()
	require.NotNil(t, f.Map)
	require.NotNil(t, f.Camera)
	assert.Equal(t, markerFocusZoom, f.Map.Zoom)
	assert.InDelta(t, 48.8584, f.Map.Center.Latitude, 1e-3)

	s.applyMessage(wsMessage{Action: "focus"})
	assert.Nil(t, s.tracker.Snapshot().Focus)
}

func TestWeb_GlobeSpinAdvancesWithTime(t *testing.T) {
	s, _ := newTestServer(t)
	now := s.started
	s.now = func() time.Time { return now }
	assert.Equal(t, 0.0, s.globeFrame().Spin)

	now = s.started.Add(time.Second) // 100 frames at 10 ms
	assert.InDelta(t, 1.0, s.globeFrame().Spin, 1e-9)
}

func TestWeb_Pins(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/pins", "application/json", strings.NewReader(`{"lat":10,"lon":20}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var pin markers.Marker
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pin))
	assert.Equal(t, markers.KindPin, pin.Kind)
	assert.Equal(t, 10.0, pin.Point.Latitude)

	geoResp, err := http.Get(ts.URL + "/api/markers.geojson?set=globe")
	require.NoError(t, err)
	body, _ := io.ReadAll(geoResp.Body)
	geoResp.Body.Close()
	assert.Equal(t, "application/geo+json", geoResp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), pin.ID)

	del := func(id string) int {
		req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/pins/"+id, nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	assert.Equal(t, http.StatusNoContent, del(pin.ID))
	assert.Equal(t, http.StatusNotFound, del(pin.ID))
	assert.Equal(t, http.StatusNotFound, del("tour-eiffel"))
}

func TestWeb_PinValidation(t *testing.T) {
	_, ts := newTestServer(t)

	for _, body := range []string{`{"lat":100,"lon":0}`, `{"lat":0,"lon":-181}`, `{"lat":1}`, `{}`, `nope`} {
		resp, err := http.Post(ts.URL+"/api/pins", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestWeb_GeoJSONSets(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/markers.geojson")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Tour Eiffel")

	resp, err = http.Get(ts.URL + "/api/markers.geojson?set=moon")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWeb_Images(t *testing.T) {
	s, ts := newTestServer(t)
	s.onFix(markers.DefaultFix())

	tests := []struct {
		path   string
		status int
		w, h   int
	}{
		{"/api/hud.png", http.StatusOK, 128, 64},
		{"/api/radar.png", http.StatusOK, 128, 128},
		{"/api/radar.png?size=64&range=1000", http.StatusOK, 64, 64},
		{"/api/radar.png?size=8", http.StatusBadRequest, 0, 0},
		{"/api/radar.png?range=-5", http.StatusBadRequest, 0, 0},
		{"/api/radar.png?range=NaN", http.StatusBadRequest, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.status, resp.StatusCode)
			if tt.status != http.StatusOK {
				return
			}
			assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
			img, err := png.Decode(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.w, img.Bounds().Dx())
			assert.Equal(t, tt.h, img.Bounds().Dy())
		})
	}
}

func TestWeb_StaticFiles(t *testing.T) {
	s, ts := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.cfg.WebStaticDir, "index.html"), []byte("<h1>geo scene</h1>"), 0o644))

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "geo scene")
}

func TestWeb_FramesWebSocket(t *testing.T) {
	s, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/frames"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(wsMessage{Action: "orientation", Orientation: &orientation.Sample{Heading: 180}}))
	fix := markers.DefaultFix()
	require.NoError(t, conn.WriteJSON(wsMessage{Action: "fix", Fix: &fix}))
	require.NoError(t, conn.WriteJSON(wsMessage{Action: "bogus"}))

	deadline := time.Now().Add(3 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		var frame wsFrame
		require.NoError(t, conn.ReadJSON(&frame))
		assert.Equal(t, "frame", frame.Type)
		if frame.AR.User != nil && len(frame.AR.Placements) == 4 && math.Abs(frame.AR.Camera.Y-math.Pi) < 1e-9 {
			require.NotNil(t, frame.Globe.Camera)
			break
		}
		require.True(t, time.Now().Before(deadline), "frame never reflected the client update")
	}

	p, ok := s.tracker.User()
	require.True(t, ok)
	assert.Equal(t, 35.0, p.Alt())
}

func TestWeb_LoadCountries(t *testing.T) {
	countries := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/alpha/FR" {
			_, _ = w.Write([]byte(`[{"name":{"common":"France"},"cca2":"FR","latlng":[46,2],"flags":{"png":"fr.png"}}]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer countries.Close()

	s, _ := newTestServer(t)
	s.cfg.CountriesCodes = []string{"FR", "XX"}
	s.loadCountries(context.Background(), markers.NewCountryClient(countries.URL, zerolog.Nop()))

	ms := s.globe.Snapshot()
	require.Len(t, ms, 1)
	assert.Equal(t, "France", ms[0].Label)
	assert.Equal(t, "fr.png", ms[0].Flag)
}

func TestWeb_ApplyMessageIgnoresEmpty(t *testing.T) {
	s, _ := newTestServer(t)
	s.applyMessage(wsMessage{Action: "fix"})
	s.applyMessage(wsMessage{Action: "orientation"})
	st := s.tracker.Snapshot()
	assert.Nil(t, st.Fix)
	assert.False(t, st.HasOrientation)
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/relabs-tech/geo_scene/internal/config"
	"github.com/relabs-tech/geo_scene/internal/env"
	"github.com/relabs-tech/geo_scene/internal/geo"
	"github.com/relabs-tech/geo_scene/internal/hud"
	"github.com/relabs-tech/geo_scene/internal/logging"
	"github.com/relabs-tech/geo_scene/internal/markers"
	"github.com/relabs-tech/geo_scene/internal/orientation"
	"github.com/relabs-tech/geo_scene/internal/scene"
)

// defaultFixAfter is how long the server waits for a real fix before
// placing markers around the configured default position.
const defaultFixAfter = 10 * time.Second

// markerFocusZoom is the map zoom used when a globe marker is clicked.
const markerFocusZoom = 6

// webServer owns the scene state behind the HTTP and websocket API.
type webServer struct {
	cfg       *config.Config
	log       zerolog.Logger
	tracker   *scene.Tracker
	landmarks *markers.Set // AR overlay
	globe     *markers.Set // countries and pins
	ar        scene.AR
	globeView scene.Globe
	started   time.Time
	now       func() time.Time
	upgrader  websocket.Upgrader
}

func newWebServer(cfg *config.Config, log zerolog.Logger) *webServer {
	return &webServer{
		cfg:       cfg,
		log:       log,
		tracker:   scene.NewTracker(),
		landmarks: markers.NewSet(markers.Landmarks()...),
		globe:     markers.NewSet(),
		ar:        scene.AR{Scale: cfg.ARScale},
		globeView: scene.Globe{
			Radius:         cfg.GlobeRadius,
			MarkerLift:     cfg.GlobeMarkerLift,
			CameraDistance: cfg.GlobeCameraDistance,
			SpinPerFrame:   cfg.GlobeSpinPerFrame,
			MapSync:        cfg.MapSync,
			MapZoom:        cfg.MapZoom,
		},
		started: time.Now(),
		now:     time.Now,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for local development
			},
		},
	}
}

func RunWeb() error {
	cfg := config.Get()
	log := logging.For("web")
	s := newWebServer(cfg, log)

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb, log)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := s.subscribe(client); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	go s.loadCountries(ctx, markers.NewCountryClient(cfg.CountriesBaseURL, logging.For("countries")))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("web server shutdown")
		}
	}()

	log.Info().Str("addr", srv.Addr).Str("static", cfg.WebStaticDir).Msg("web server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *webServer) subscribe(client mqtt.Client) error {
	if err := subscribeJSON(client, s.cfg.TopicGeoFix, s.log, s.onFix); err != nil {
		return err
	}
	if err := subscribeJSON(client, s.cfg.TopicOrientation, s.log, s.onOrientation); err != nil {
		return err
	}
	return subscribeJSON(client, s.cfg.TopicBaro, s.log, s.onBaro)
}

func (s *webServer) onFix(p geo.Point) {
	if !p.Valid() {
		s.log.Warn().Float64("lat", p.Latitude).Float64("lon", p.Longitude).Msg("ignoring out-of-range fix")
		return
	}
	s.tracker.SetFix(p)
}

func (s *webServer) onOrientation(o orientation.Sample) {
	s.tracker.SetOrientation(o)
}

func (s *webServer) onBaro(e env.Sample) {
	alt, ok := e.Altitude(s.cfg.SeaLevelPressurePa)
	if !ok {
		s.log.Warn().Float64("pressure_pa", e.Pressure).Msg("ignoring unusable pressure reading")
		return
	}
	s.tracker.SetBaro(alt)
}

func (s *webServer) loadCountries(ctx context.Context, client *markers.CountryClient) {
	codes := s.cfg.CountriesCodes
	if len(codes) == 0 {
		codes = markers.DefaultCountryCodes
	}
	pacing := time.Duration(s.cfg.CountriesPacing) * time.Millisecond

	n, err := client.LoadAll(ctx, codes, pacing, s.globe.Upsert)
	if err != nil {
		s.log.Warn().Err(err).Int("loaded", n).Msg("country load interrupted")
		return
	}
	s.log.Info().Int("loaded", n).Int("requested", len(codes)).Msg("countries loaded")
}

// user returns the tracked fix, or the configured default once
// defaultFixAfter has passed without one. nil means still waiting.
func (s *webServer) user() *geo.Point {
	if p, ok := s.tracker.User(); ok {
		return &p
	}
	if s.now().Sub(s.started) < defaultFixAfter {
		return nil
	}
	p := geo.NewPointAlt(s.cfg.DefaultLat, s.cfg.DefaultLon, s.cfg.DefaultAlt)
	return &p
}

func (s *webServer) frameInterval() time.Duration {
	if s.cfg.FrameInterval <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(s.cfg.FrameInterval) * time.Millisecond
}

func (s *webServer) arFrame() scene.ARFrame {
	return s.ar.Frame(s.user(), s.tracker.Snapshot().Orientation, s.landmarks.Snapshot())
}

func (s *webServer) globeFrame() scene.GlobeFrame {
	ms := s.globe.Snapshot()
	u := s.user()
	if u != nil {
		ms = append(ms, markers.Marker{ID: "user", Point: *u, Label: "you", Kind: markers.KindUser})
	}
	frames := int(s.now().Sub(s.started) / s.frameInterval())

	// A clicked point or marker takes the camera and map over from the user.
	view, focus := s.globeView, u
	if f := s.tracker.Snapshot().Focus; f != nil {
		focus = &f.Point
		if f.Zoom > 0 {
			view.MapZoom = f.Zoom
		}
	}
	return view.Frame(ms, view.Spin(frames), focus)
}

// focusOn points the globe camera and map at p. zoom 0 keeps MAP_ZOOM.
func (s *webServer) focusOn(p geo.Point, zoom int) error {
	if !p.Valid() {
		return errors.New("lat must be -90..90 and lon -180..180")
	}
	s.tracker.SetFocus(scene.Focus{Point: p, Zoom: zoom})
	s.log.Debug().Float64("lat", p.Latitude).Float64("lon", p.Longitude).Int("zoom", zoom).Msg("focus")
	return nil
}

// focusMarker focuses on a globe or landmark marker by ID.
func (s *webServer) focusMarker(id string) error {
	m, ok := s.globe.Get(id)
	if !ok {
		m, ok = s.landmarks.Get(id)
	}
	if !ok {
		return fmt.Errorf("marker %q not found", id)
	}
	return s.focusOn(m.Point, markerFocusZoom)
}

func (s *webServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/frame/ar", s.handleARFrame)
	mux.HandleFunc("GET /api/frame/globe", s.handleGlobeFrame)
	mux.HandleFunc("GET /api/markers.geojson", s.handleGeoJSON)
	mux.HandleFunc("POST /api/pins", s.handleAddPin)
	mux.HandleFunc("DELETE /api/pins/{id}", s.handleDeletePin)
	mux.HandleFunc("POST /api/focus", s.handleFocus)
	mux.HandleFunc("DELETE /api/focus", s.handleClearFocus)
	mux.HandleFunc("GET /api/hud.png", s.handleHUD)
	mux.HandleFunc("GET /api/radar.png", s.handleRadar)
	mux.HandleFunc("GET /ws/frames", s.handleFramesWS)

	// Static files as the root
	mux.Handle("/", http.FileServer(http.Dir(s.cfg.WebStaticDir)))
	return mux
}

func (s *webServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("json encode error")
	}
}

func (s *webServer) handleState(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.tracker.Snapshot())
}

func (s *webServer) handleARFrame(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.arFrame())
}

func (s *webServer) handleGlobeFrame(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.globeFrame())
}

func (s *webServer) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	var ms []markers.Marker
	switch set := r.URL.Query().Get("set"); set {
	case "", "ar":
		ms = s.landmarks.Snapshot()
	case "globe":
		ms = s.globe.Snapshot()
	default:
		http.Error(w, fmt.Sprintf("unknown marker set %q", set), http.StatusBadRequest)
		return
	}
	if u := s.user(); u != nil {
		ms = append(ms, markers.Marker{ID: "user", Point: *u, Label: "you", Kind: markers.KindUser})
	}

	body, err := markers.FeatureCollection(ms)
	if err != nil {
		s.log.Error().Err(err).Msg("geojson encode error")
		http.Error(w, "encode error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(body)
}

type pinRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

func (s *webServer) handleAddPin(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Lat == nil || req.Lon == nil {
		http.Error(w, "lat and lon are required", http.StatusBadRequest)
		return
	}
	pin := markers.NewPin(*req.Lat, *req.Lon)
	if !pin.Point.Valid() {
		http.Error(w, "lat must be -90..90 and lon -180..180", http.StatusBadRequest)
		return
	}
	s.globe.Add(pin)
	_ = s.focusOn(pin.Point, 0)
	s.log.Info().Str("id", pin.ID).Float64("lat", *req.Lat).Float64("lon", *req.Lon).Msg("pin added")
	s.writeJSON(w, http.StatusCreated, pin)
}

func (s *webServer) handleDeletePin(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for _, m := range s.globe.Snapshot() {
		if m.ID == id && m.Kind == markers.KindPin {
			s.globe.Remove(id)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.Error(w, "pin not found", http.StatusNotFound)
}

type focusRequest struct {
	ID   string   `json:"id,omitempty"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
	Zoom int      `json:"zoom,omitempty"`
}

// handleFocus centres the globe camera and map on a clicked point, or on a
// marker when id is given.
func (s *webServer) handleFocus(w http.ResponseWriter, r *http.Request) {
	var req focusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	switch {
	case req.ID != "":
		if err := s.focusMarker(req.ID); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
	case req.Lat != nil && req.Lon != nil:
		if req.Zoom < 0 {
			http.Error(w, "zoom must be positive", http.StatusBadRequest)
			return
		}
		if err := s.focusOn(geo.NewPoint(*req.Lat, *req.Lon), req.Zoom); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "id or lat and lon are required", http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, s.tracker.Snapshot().Focus)
}

func (s *webServer) handleClearFocus(w http.ResponseWriter, _ *http.Request) {
	s.tracker.ClearFocus()
	w.WriteHeader(http.StatusNoContent)
}

func (s *webServer) handleHUD(w http.ResponseWriter, _ *http.Request) {
	img := hud.Render(s.arFrame(), s.tracker.Snapshot().Orientation)
	w.Header().Set("Content-Type", "image/png")
	if err := hud.EncodePNG(w, img); err != nil {
		s.log.Error().Err(err).Msg("hud encode error")
	}
}

func (s *webServer) handleRadar(w http.ResponseWriter, r *http.Request) {
	size, err := queryFloat(r, "size", 128)
	if err != nil || size < 32 || size > 512 {
		http.Error(w, "size must be 32..512", http.StatusBadRequest)
		return
	}
	rangeMeters, err := queryFloat(r, "range", 5000)
	if err != nil || rangeMeters <= 0 {
		http.Error(w, "range must be > 0", http.StatusBadRequest)
		return
	}

	img := hud.Radar(s.arFrame(), int(size), rangeMeters)
	w.Header().Set("Content-Type", "image/png")
	if err := hud.EncodePNG(w, img); err != nil {
		s.log.Error().Err(err).Msg("radar encode error")
	}
}

func queryFloat(r *http.Request, key string, def float64) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}

// WebSocket message types
type wsMessage struct {
	Action      string              `json:"action"` // fix, orientation, focus
	Fix         *geo.Point          `json:"fix,omitempty"`
	Orientation *orientation.Sample `json:"orientation,omitempty"`
	ID          string              `json:"id,omitempty"`   // focus on a marker
	Zoom        int                 `json:"zoom,omitempty"` // focus zoom, 0 keeps MAP_ZOOM
}

type wsFrame struct {
	Type  string           `json:"type"`
	AR    scene.ARFrame    `json:"ar"`
	Globe scene.GlobeFrame `json:"globe"`
}

// handleFramesWS pushes AR and globe frames every FRAME_INTERVAL. The
// browser may send its own geolocation and device orientation back on the
// same socket.
func (s *webServer) handleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade error")
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg wsMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.log.Warn().Err(err).Msg("websocket read error")
				}
				return
			}
			s.applyMessage(msg)
		}
	}()

	ticker := time.NewTicker(s.frameInterval())
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			frame := wsFrame{Type: "frame", AR: s.arFrame(), Globe: s.globeFrame()}
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(frame); err != nil {
				s.log.Debug().Err(err).Msg("websocket write error")
				return
			}
		}
	}
}

func (s *webServer) applyMessage(msg wsMessage) {
	switch msg.Action {
	case "fix":
		if msg.Fix == nil {
			s.log.Warn().Msg("fix message without fix")
			return
		}
		s.onFix(*msg.Fix)
	case "orientation":
		if msg.Orientation == nil {
			s.log.Warn().Msg("orientation message without orientation")
			return
		}
		s.onOrientation(*msg.Orientation)
	case "focus":
		var err error
		switch {
		case msg.ID != "":
			err = s.focusMarker(msg.ID)
		case msg.Fix != nil:
			err = s.focusOn(*msg.Fix, msg.Zoom)
		default:
			s.tracker.ClearFocus()
		}
		if err != nil {
			s.log.Warn().Err(err).Msg("focus message ignored")
		}
	default:
		s.log.Warn().Str("action", msg.Action).Msg("unknown websocket action")
	}
}

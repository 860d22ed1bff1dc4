// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker              string
	MQTTClientIDGPS         string
	MQTTClientIDOrientation string
	MQTTClientIDWeb         string
	MQTTClientIDConsole     string

	// Topics
	TopicGeoFix      string
	TopicOrientation string
	TopicIMURaw      string
	TopicBaro        string

	// GPS
	GPSSerialPort string
	GPSBaudRate   int

	// Orientation producer: "mock" or "accel" (tilt from TopicIMURaw)
	OrientationSource         string
	OrientationSampleInterval int // milliseconds

	// Web Server
	WebServerPort int
	WebStaticDir  string
	FrameInterval int // milliseconds between websocket frames

	// AR overlay, scene units per meter
	ARScale float64

	// Globe
	GlobeRadius         float64
	GlobeMarkerLift     float64
	GlobeCameraDistance float64
	GlobeSpinPerFrame   float64 // radians
	MapSync             bool
	MapZoom             int

	// Country lookup
	CountriesBaseURL string
	CountriesCodes   []string
	CountriesPacing  int // milliseconds between lookups

	// Fallback position when geolocation is unavailable
	DefaultLat float64
	DefaultLon float64
	DefaultAlt float64

	// Barometer
	SeaLevelPressurePa float64

	LogLevel string
}

// Package-level state for the singleton: InitGlobal sets it once, Get reads
// it under the read lock.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

var defaults = map[string]any{
	"MQTT_CLIENT_ID_GPS":          "geo-scene-gps-producer",
	"MQTT_CLIENT_ID_ORIENTATION":  "geo-scene-orientation-producer",
	"MQTT_CLIENT_ID_WEB":          "geo-scene-web",
	"MQTT_CLIENT_ID_CONSOLE":      "geo-scene-console",
	"TOPIC_GEO_FIX":               "geoscene/fix",
	"TOPIC_ORIENTATION":           "geoscene/orientation",
	"TOPIC_IMU_RAW":               "inertial/imu/left",
	"TOPIC_BARO":                  "geoscene/baro",
	"GPS_SERIAL_PORT":             "/dev/serial0",
	"GPS_BAUD_RATE":               "9600",
	"ORIENTATION_SOURCE":          "mock",
	"ORIENTATION_SAMPLE_INTERVAL": "100",
	"WEB_SERVER_PORT":             "8080",
	"WEB_STATIC_DIR":              "web",
	"FRAME_INTERVAL":              "100",
	"GLOBE_MARKER_LIFT":           "0",
	"GLOBE_CAMERA_DISTANCE":       "0",
	"GLOBE_SPIN_PER_FRAME":        "0",
	"MAP_SYNC":                    "false",
	"MAP_ZOOM":                    "2",
	"COUNTRIES_BASE_URL":          "https://restcountries.com/v3.1",
	"COUNTRIES_CODES":             "",
	"COUNTRIES_PACING":            "100",
	"DEFAULT_LAT":                 "48.8566",
	"DEFAULT_LON":                 "2.3522",
	"DEFAULT_ALT":                 "35",
	"SEA_LEVEL_PRESSURE_PA":       "101325",
	"LOG_LEVEL":                   "info",
}

var knownKeys = func() map[string]bool {
	keys := map[string]bool{
		"mqtt_broker":  true,
		"ar_scale":     true,
		"globe_radius": true,
	}
	for k := range defaults {
		keys[strings.ToLower(k)] = true
	}
	return keys
}()

// Load reads the KEY=VALUE configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("env")
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	for _, key := range v.AllKeys() {
		if !knownKeys[key] {
			return nil, fmt.Errorf("unknown config key: %q", strings.ToUpper(key))
		}
	}

	p := parser{v: v}
	cfg := &Config{
		MQTTBroker:              p.str("MQTT_BROKER"),
		MQTTClientIDGPS:         p.str("MQTT_CLIENT_ID_GPS"),
		MQTTClientIDOrientation: p.str("MQTT_CLIENT_ID_ORIENTATION"),
		MQTTClientIDWeb:         p.str("MQTT_CLIENT_ID_WEB"),
		MQTTClientIDConsole:     p.str("MQTT_CLIENT_ID_CONSOLE"),

		TopicGeoFix:      p.str("TOPIC_GEO_FIX"),
		TopicOrientation: p.str("TOPIC_ORIENTATION"),
		TopicIMURaw:      p.str("TOPIC_IMU_RAW"),
		TopicBaro:        p.str("TOPIC_BARO"),

		GPSSerialPort: p.str("GPS_SERIAL_PORT"),
		GPSBaudRate:   p.integer("GPS_BAUD_RATE"),

		OrientationSource:         strings.ToLower(p.str("ORIENTATION_SOURCE")),
		OrientationSampleInterval: p.integer("ORIENTATION_SAMPLE_INTERVAL"),

		WebServerPort: p.integer("WEB_SERVER_PORT"),
		WebStaticDir:  p.str("WEB_STATIC_DIR"),
		FrameInterval: p.integer("FRAME_INTERVAL"),

		ARScale: p.float("AR_SCALE"),

		GlobeRadius:         p.float("GLOBE_RADIUS"),
		GlobeMarkerLift:     p.float("GLOBE_MARKER_LIFT"),
		GlobeCameraDistance: p.float("GLOBE_CAMERA_DISTANCE"),
		GlobeSpinPerFrame:   p.float("GLOBE_SPIN_PER_FRAME"),
		MapSync:             p.boolean("MAP_SYNC"),
		MapZoom:             p.integer("MAP_ZOOM"),

		CountriesBaseURL: strings.TrimRight(p.str("COUNTRIES_BASE_URL"), "/"),
		CountriesCodes:   splitList(p.str("COUNTRIES_CODES")),
		CountriesPacing:  p.integer("COUNTRIES_PACING"),

		DefaultLat: p.float("DEFAULT_LAT"),
		DefaultLon: p.float("DEFAULT_LON"),
		DefaultAlt: p.float("DEFAULT_ALT"),

		SeaLevelPressurePa: p.float("SEA_LEVEL_PRESSURE_PA"),

		LogLevel: p.str("LOG_LEVEL"),
	}
	if p.err != nil {
		return nil, p.err
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parser keeps the first conversion error so Load can build the struct in
// one literal.
type parser struct {
	v   *viper.Viper
	err error
}

func (p *parser) str(key string) string {
	return strings.TrimSpace(p.v.GetString(key))
}

func (p *parser) integer(key string) int {
	raw := p.str(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n
}

func (p *parser) float(key string) float64 {
	raw := p.str(key)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return f
}

func (p *parser) boolean(key string) bool {
	raw := p.str(key)
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return b
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// validate checks that all required fields are set and in range.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.ARScale <= 0 {
		return fmt.Errorf("AR_SCALE is required and must be > 0")
	}
	if c.GlobeRadius <= 0 {
		return fmt.Errorf("GLOBE_RADIUS is required and must be > 0")
	}
	if c.GlobeMarkerLift < 0 {
		return fmt.Errorf("GLOBE_MARKER_LIFT must be >= 0, got %g", c.GlobeMarkerLift)
	}
	if c.GlobeCameraDistance != 0 && c.GlobeCameraDistance <= c.GlobeRadius {
		return fmt.Errorf("GLOBE_CAMERA_DISTANCE must be outside the globe (> %g), got %g", c.GlobeRadius, c.GlobeCameraDistance)
	}
	if c.OrientationSource != "mock" && c.OrientationSource != "accel" {
		return fmt.Errorf("ORIENTATION_SOURCE must be mock or accel, got %q", c.OrientationSource)
	}
	if c.OrientationSampleInterval <= 0 {
		return fmt.Errorf("ORIENTATION_SAMPLE_INTERVAL must be > 0")
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("FRAME_INTERVAL must be > 0")
	}
	if c.MapZoom < 0 || c.MapZoom > 18 {
		return fmt.Errorf("MAP_ZOOM must be 0-18, got %d", c.MapZoom)
	}
	if c.DefaultLat < -90 || c.DefaultLat > 90 {
		return fmt.Errorf("DEFAULT_LAT must be -90..90, got %g", c.DefaultLat)
	}
	if c.DefaultLon < -180 || c.DefaultLon > 180 {
		return fmt.Errorf("DEFAULT_LON must be -180..180, got %g", c.DefaultLon)
	}
	if c.GPSBaudRate <= 0 {
		return fmt.Errorf("GPS_BAUD_RATE must be > 0")
	}
	return nil
}

// InitGlobal initializes the global configuration from file. Only the first
// call loads; later calls return that first result.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance, nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import "github.com/relabs-tech/geo_scene/internal/geo"

// Fix represents a single combined GPS fix suitable for JSON and MQTT.
type Fix struct {
	Time        string  `json:"time"`        // e.g. "12:34:56.0000"
	Date        string  `json:"date"`        // e.g. "06/12/25"
	Latitude    float64 `json:"lat"`         // decimal degrees
	Longitude   float64 `json:"lon"`         // decimal degrees
	Altitude    float64 `json:"alt"`         // meters above mean sea level, see HasAltitude
	HasAltitude bool    `json:"has_alt"`     // GGA reported a valid fix with altitude
	SpeedKnots  float64 `json:"speed_knots"` // speed over ground
	CourseDeg   float64 `json:"course_deg"`  // course over ground
	Validity    string  `json:"validity"`    // "A" (valid) / "V" (void)
	FixQuality  string  `json:"fix_quality"` // GGA quality, "0" = invalid
	Satellites  int64   `json:"satellites"`
	HDOP        float64 `json:"hdop"`
}

// Point converts the fix into a geographic sample. Altitude is only
// attached when the receiver reported one.
func (f Fix) Point() geo.Point {
	if f.HasAltitude {
		return geo.NewPointAlt(f.Latitude, f.Longitude, f.Altitude)
	}
	return geo.NewPoint(f.Latitude, f.Longitude)
}

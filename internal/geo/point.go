// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geo

import "math"

// Point is a single geographic sample. A new sample replaces the previous
// one; points are never edited in place.
type Point struct {
	Latitude  float64  `json:"lat"`           // decimal degrees, [-90, 90]
	Longitude float64  `json:"lon"`           // decimal degrees, [-180, 180]
	Altitude  *float64 `json:"alt,omitempty"` // meters, nil when the fix has none
}

// NewPoint returns a ground-level point without altitude.
func NewPoint(lat, lon float64) Point {
	return Point{Latitude: lat, Longitude: lon}
}

// NewPointAlt returns a point carrying an altitude in meters.
func NewPointAlt(lat, lon, alt float64) Point {
	return Point{Latitude: lat, Longitude: lon, Altitude: &alt}
}

// HasAltitude reports whether the point carries a usable altitude.
func (p Point) HasAltitude() bool {
	return p.Altitude != nil && !math.IsNaN(*p.Altitude) && !math.IsInf(*p.Altitude, 0)
}

// Alt returns the altitude in meters, 0 when absent or not a number.
func (p Point) Alt() float64 {
	if !p.HasAltitude() {
		return 0
	}
	return *p.Altitude
}

// WithAltitude returns a copy of p with the given altitude.
func (p Point) WithAltitude(alt float64) Point {
	p.Altitude = &alt
	return p
}

// Valid reports whether latitude and longitude are finite and in range.
// The projection functions do not call it; it is for hosts that want to
// drop garbage fixes before they reach the scene.
func (p Point) Valid() bool {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

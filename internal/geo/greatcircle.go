// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000.0

// DistanceMeters returns the haversine great-circle distance between a and b.
// Altitude does not take part.
func DistanceMeters(a, b Point) float64 {
	phi1 := toRad(a.Latitude)
	phi2 := toRad(b.Latitude)
	dPhi := toRad(b.Latitude - a.Latitude)
	dLambda := toRad(b.Longitude - a.Longitude)

	sinDPhi := math.Sin(dPhi / 2)
	sinDLambda := math.Sin(dLambda / 2)

	h := sinDPhi*sinDPhi + math.Cos(phi1)*math.Cos(phi2)*sinDLambda*sinDLambda
	// Rounding pushes h just past 1 for near-antipodal pairs.
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// BearingDegrees returns the initial compass bearing from a towards b in
// [0, 360), 0 being north. It is not symmetric: the bearing back from b to
// a is generally not the reverse course. Identical points yield 0.
func BearingDegrees(a, b Point) float64 {
	if a.Latitude == b.Latitude && a.Longitude == b.Longitude {
		return 0
	}
	phi1 := toRad(a.Latitude)
	phi2 := toRad(b.Latitude)
	dLambda := toRad(b.Longitude - a.Longitude)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	if x == 0 && y == 0 {
		return 0
	}

	deg := math.Mod(toDeg(math.Atan2(y, x))+360, 360)
	if math.IsNaN(deg) || deg >= 360 {
		return 0
	}
	return deg
}

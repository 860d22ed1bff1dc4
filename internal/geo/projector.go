// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Project maps a geographic point onto a sphere of the given radius
// centered on the scene origin.
//
//	phi   = 90 - lat    (colatitude)
//	theta = lon + 180
//	x = -r * sin(phi) * cos(theta)
//	y =  r * cos(phi)
//	z =  r * sin(phi) * sin(theta)
//
// The +180 offset and the signs put the antimeridian seam where the
// reference globe renders it: lat 0, lon 0 lands on +X, the antimeridian
// on -X and the north pole on +Y. Altitude is ignored and out-of-range
// input is not rejected.
func Project(p Point, radius float64) r3.Vec {
	phi := toRad(90 - p.Latitude)
	theta := toRad(p.Longitude + 180)

	sinPhi, cosPhi := math.Sincos(phi)
	sinTheta, cosTheta := math.Sincos(theta)

	return r3.Vec{
		X: -(radius * sinPhi * cosTheta),
		Y: radius * cosPhi,
		Z: radius * sinPhi * sinTheta,
	}
}

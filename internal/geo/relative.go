// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// RelativePosition places target in the user's local scene frame: +X east,
// +Y up, -Z north. scale is scene units per meter and has no default.
//
// The horizontal offset comes from great-circle distance and bearing, the
// vertical one from the altitude difference (missing altitude counts as 0).
// The result is only valid for the given user fix; recompute it whenever
// the user moves or the target set changes.
func RelativePosition(user, target Point, scale float64) r3.Vec {
	distance := DistanceMeters(user, target)
	bearing := toRad(BearingDegrees(user, target))

	sinB, cosB := math.Sincos(bearing)

	return r3.Vec{
		X: sinB * distance * scale,
		Y: (target.Alt() - user.Alt()) * scale,
		Z: -cosB * distance * scale,
	}
}
